package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/homier/chainmap"
	flag "github.com/spf13/pflag"
)

// Run is the main entry point. Returns exit code: 0 on success, 1 when a
// command or setup step failed, 2 on bad usage.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	flagSet := flag.NewFlagSet("chainmap", flag.ContinueOnError)
	flagSet.SetOutput(&strings.Builder{}) // discard pflag output

	configPath := flagSet.StringP("config", "c", "", "Use specified config file")
	capacity := flagSet.Int("capacity", 0, "Initial bucket count (0 allocates on first insert)")
	hash := flagSet.String("hash", "", "Hash function: maphash or siphash")
	sipKey := flagSet.String("sip-key", "", "SipHash key as 32 hex characters")
	load := flagSet.StringP("load", "l", "", "Load a snapshot before reading commands")
	help := flagSet.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, flagSet)

			return 0
		}

		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut, flagSet)

		return 2
	}

	if *help {
		printUsage(out, flagSet)

		return 0
	}

	if flagSet.NArg() > 0 {
		fmt.Fprintln(errOut, "error: unexpected arguments:", strings.Join(flagSet.Args(), " "))
		printUsage(errOut, flagSet)

		return 2
	}

	workDir := env["PWD"]
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}

		workDir = wd
	}

	cfg, err := LoadConfig(workDir, *configPath, env)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	if flagSet.Changed("capacity") {
		cfg.Capacity = *capacity
	}

	if flagSet.Changed("hash") {
		cfg.Hash = *hash
	}

	if flagSet.Changed("sip-key") {
		cfg.SipKey = *sipKey
	}

	if err := validateConfig(cfg); err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 2
	}

	if cfg.HistoryFile == "" {
		if home := env["HOME"]; home != "" {
			cfg.HistoryFile = filepath.Join(home, ".chainmap_history")
		}
	}

	m, err := newMap(cfg)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	if *load != "" {
		if _, err := LoadSnapshot(*load, m); err != nil {
			fmt.Fprintln(errOut, "error:", err)

			return 1
		}
	}

	r := newREPL(m, cfg, out)

	if f, ok := in.(*os.File); ok && isTerminal(f.Fd()) {
		if err := r.RunInteractive(); err != nil {
			fmt.Fprintln(errOut, "error:", err)

			return 1
		}

		return 0
	}

	failed, err := r.RunScript(in)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	if failed > 0 {
		return 1
	}

	return 0
}

// newMap builds an empty map with the configured capacity and hash.
func newMap(cfg Config) (*chainmap.Map[string, string], error) {
	opts := []chainmap.Option[string]{chainmap.WithCapacity[string](cfg.Capacity)}

	if cfg.Hash == hashSiphash {
		k0, k1, err := parseSipKey(cfg.SipKey)
		if err != nil {
			return nil, err
		}

		opts = append(opts, chainmap.WithHashFunc(chainmap.MakeSipHashFunc[string](k0, k1)))
	}

	return chainmap.New[string, string](opts...), nil
}

func printUsage(w io.Writer, flagSet *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: chainmap [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reads commands from the terminal, or one per line from stdin.")
	fmt.Fprintln(w, "Type 'help' at the prompt for the command list.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
