package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/homier/chainmap"
	"github.com/peterh/liner"
)

var commands = []string{
	"put", "get", "has", "del", "delete",
	"scan", "ls", "rscan", "first", "last",
	"len", "count", "stats", "info",
	"bulk", "seq", "bench",
	"save", "load", "reset",
	"help", "exit", "quit", "q",
}

// REPL executes shell commands against a single map.
type REPL struct {
	m   *chainmap.Map[string, string]
	cfg Config
	out io.Writer

	// newKey generates keys for bulk.
	newKey func() string

	liner *liner.State
}

func newREPL(m *chainmap.Map[string, string], cfg Config, out io.Writer) *REPL {
	return &REPL{
		m:   m,
		cfg: cfg,
		out: out,
		newKey: func() string {
			return uuid.Must(uuid.NewV7()).String()
		},
	}
}

// Exec runs one command line. quit reports an exit command; err is non-nil
// when the command failed. Output goes to the REPL's writer either way.
func (r *REPL) Exec(line string) (quit bool, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 || strings.HasPrefix(parts[0], "#") {
		return false, nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "exit", "quit", "q":
		return true, nil
	case "help", "?":
		r.printHelp()
	case "put":
		err = r.cmdPut(args)
	case "get":
		err = r.cmdGet(args)
	case "has":
		err = r.cmdHas(args)
	case "del", "delete":
		err = r.cmdDelete(args)
	case "scan", "ls":
		err = r.cmdScan(args, false)
	case "rscan":
		err = r.cmdScan(args, true)
	case "first":
		r.printEnd(r.m.First())
	case "last":
		r.printEnd(r.m.Last())
	case "len", "count":
		fmt.Fprintln(r.out, r.m.Len())
	case "stats", "info":
		r.cmdStats()
	case "bulk":
		err = r.cmdBulk(args)
	case "seq":
		err = r.cmdSeq(args)
	case "bench":
		err = r.cmdBench(args)
	case "save":
		err = r.cmdSave(args)
	case "load":
		err = r.cmdLoad(args)
	case "reset":
		r.m.Reset()
		fmt.Fprintln(r.out, "OK")
	default:
		err = fmt.Errorf("%w: %s (type 'help' for commands)", errUnknownCommand, cmd)
	}

	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
	}

	return false, err
}

// RunScript executes one command per line from in. It stops at an exit
// command or EOF and returns the number of failed commands.
func (r *REPL) RunScript(in io.Reader) (int, error) {
	failed := 0

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		quit, err := r.Exec(scanner.Text())
		if err != nil {
			failed++
		}

		if quit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("reading input: %w", err)
	}

	return failed, nil
}

// RunInteractive starts the line-editing loop on the controlling terminal.
func (r *REPL) RunInteractive() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if path := r.cfg.HistoryFile; path != "" {
		if f, err := os.Open(path); err == nil { //nolint:gosec // path is intentionally user-controlled
			_, _ = r.liner.ReadHistory(f)
			_ = f.Close()
		}
	}

	defer r.saveHistory()

	fmt.Fprintf(r.out, "chainmap (hash=%s, capacity=%d)\n", r.cfg.Hash, r.m.Capacity())
	fmt.Fprintln(r.out, "Type 'help' for available commands.")

	for {
		line, err := r.liner.Prompt("chainmap> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nBye!")

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		r.liner.AppendHistory(line)

		if quit, _ := r.Exec(line); quit {
			fmt.Fprintln(r.out, "Bye!")

			return nil
		}
	}
}

func (r *REPL) saveHistory() {
	if r.cfg.HistoryFile == "" {
		return
	}

	if f, err := os.Create(r.cfg.HistoryFile); err == nil {
		_, _ = r.liner.WriteHistory(f)
		_ = f.Close()
	}
}

// completer provides tab completion for commands.
func (r *REPL) completer(line string) []string {
	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  put <key> <value...>      Insert or update an entry")
	fmt.Fprintln(r.out, "  get <key>                 Retrieve a value")
	fmt.Fprintln(r.out, "  has <key>                 Report whether a key exists")
	fmt.Fprintln(r.out, "  del <key>                 Delete an entry")
	fmt.Fprintln(r.out, "  scan [limit]              List entries in insertion order")
	fmt.Fprintln(r.out, "  rscan [limit]             List entries newest first")
	fmt.Fprintln(r.out, "  first / last              Show the oldest / newest entry")
	fmt.Fprintln(r.out, "  len                       Count entries")
	fmt.Fprintln(r.out, "  stats                     Show table statistics")
	fmt.Fprintln(r.out, "  bulk <count> [prefix]     Insert N entries with random keys")
	fmt.Fprintln(r.out, "  seq <count> [start]       Insert N sequential entries")
	fmt.Fprintln(r.out, "  bench <count>             Benchmark put+get+del on a scratch map")
	fmt.Fprintln(r.out, "  save [path]               Write a snapshot")
	fmt.Fprintln(r.out, "  load [path]               Read a snapshot into the map")
	fmt.Fprintln(r.out, "  reset                     Remove all entries")
	fmt.Fprintln(r.out, "  help                      Show this help")
	fmt.Fprintln(r.out, "  exit / quit / q           Exit")
}

func (r *REPL) cmdPut(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: put <key> <value...>", errUsage)
	}

	key, value := args[0], strings.Join(args[1:], " ")

	existed := r.m.Has(key)
	if err := r.m.Set(key, value); err != nil {
		return err
	}

	if existed {
		fmt.Fprintln(r.out, "OK (updated)")
	} else {
		fmt.Fprintln(r.out, "OK")
	}

	return nil
}

func (r *REPL) cmdGet(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get <key>", errUsage)
	}

	v, ok := r.m.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", errNotFound, args[0])
	}

	fmt.Fprintln(r.out, v)

	return nil
}

func (r *REPL) cmdHas(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: has <key>", errUsage)
	}

	fmt.Fprintln(r.out, r.m.Has(args[0]))

	return nil
}

func (r *REPL) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: del <key>", errUsage)
	}

	if !r.m.Delete(args[0]) {
		return fmt.Errorf("%w: %s", errNotFound, args[0])
	}

	fmt.Fprintln(r.out, "OK")

	return nil
}

func (r *REPL) cmdScan(args []string, reverse bool) error {
	limit := 0

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("%w: limit must be a positive integer", errUsage)
		}

		limit = n
	}

	seq := r.m.All()
	if reverse {
		seq = r.m.Backward()
	}

	shown := 0

	for k, v := range seq {
		if limit > 0 && shown == limit {
			break
		}

		fmt.Fprintf(r.out, "  %s = %s\n", k, v)
		shown++
	}

	fmt.Fprintf(r.out, "(%d of %d entries)\n", shown, r.m.Len())

	return nil
}

func (r *REPL) printEnd(k, v string, ok bool) {
	if !ok {
		fmt.Fprintln(r.out, "(empty)")

		return
	}

	fmt.Fprintf(r.out, "  %s = %s\n", k, v)
}

func (r *REPL) cmdStats() {
	st := r.m.Stats()

	fmt.Fprintf(r.out, "Size:          %d\n", st.Size)
	fmt.Fprintf(r.out, "Capacity:      %d\n", st.Capacity)
	fmt.Fprintf(r.out, "Load factor:   %.3f\n", st.LoadFactor)
	fmt.Fprintf(r.out, "Used buckets:  %d\n", st.UsedBuckets)
	fmt.Fprintf(r.out, "Longest chain: %d\n", st.LongestChain)
	fmt.Fprintf(r.out, "Arena slots:   %d (%d free)\n", st.ArenaSlots, st.FreeSlots)
	fmt.Fprintf(r.out, "Hash:          %s\n", r.cfg.Hash)
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errBadCount
	}

	return n, nil
}

func (r *REPL) cmdBulk(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: bulk <count> [prefix]", errUsage)
	}

	count, err := parseCount(args[0])
	if err != nil {
		return err
	}

	prefix := ""
	if len(args) >= 2 {
		prefix = args[1]
	}

	start := time.Now()

	for i := range count {
		if err := r.m.Set(prefix+r.newKey(), strconv.Itoa(i)); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	r.printRate("inserted", count, time.Since(start))

	return nil
}

func (r *REPL) cmdSeq(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: seq <count> [start]", errUsage)
	}

	count, err := parseCount(args[0])
	if err != nil {
		return err
	}

	first := 0
	if len(args) >= 2 {
		first, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: start must be an integer", errUsage)
		}
	}

	start := time.Now()

	for i := range count {
		n := first + i
		if err := r.m.Set("key-"+strconv.Itoa(n), strconv.Itoa(n)); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	r.printRate("inserted", count, time.Since(start))

	return nil
}

// cmdBench measures a scratch map with the same hash setup, leaving the
// session's map untouched.
func (r *REPL) cmdBench(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: bench <count>", errUsage)
	}

	count, err := parseCount(args[0])
	if err != nil {
		return err
	}

	scratch, err := newMap(r.cfg)
	if err != nil {
		return err
	}

	keys := make([]string, count)
	for i := range keys {
		keys[i] = "bench-" + strconv.Itoa(i)
	}

	start := time.Now()
	for _, k := range keys {
		if err := scratch.Set(k, k); err != nil {
			return err
		}
	}

	r.printRate("put", count, time.Since(start))

	start = time.Now()
	for _, k := range keys {
		scratch.Get(k)
	}

	r.printRate("get", count, time.Since(start))

	start = time.Now()
	for _, k := range keys {
		scratch.Delete(k)
	}

	r.printRate("del", count, time.Since(start))

	return nil
}

func (r *REPL) printRate(what string, count int, elapsed time.Duration) {
	rate := float64(count) / max(elapsed.Seconds(), 1e-9)
	fmt.Fprintf(r.out, "OK: %s %d entries in %v (%.0f ops/sec)\n", what, count, elapsed.Round(time.Microsecond), rate)
}

func (r *REPL) snapshotPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return r.cfg.SnapshotFile
}

func (r *REPL) cmdSave(args []string) error {
	path := r.snapshotPath(args)

	n, err := SaveSnapshot(path, r.m)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "OK: saved %d entries to %s\n", n, path)

	return nil
}

func (r *REPL) cmdLoad(args []string) error {
	path := r.snapshotPath(args)

	n, err := LoadSnapshot(path, r.m)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "OK: loaded %d entries from %s\n", n, path)

	return nil
}
