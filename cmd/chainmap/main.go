// chainmap is an interactive shell over an insertion-ordered hash map.
//
// Usage:
//
//	chainmap [flags]                 Start the shell on a terminal
//	chainmap [flags] < script.txt    Run one command per line
//
// Flags:
//
//	-c, --config        Use specified config file
//	    --capacity      Initial bucket count
//	    --hash          maphash or siphash
//	    --sip-key       SipHash key as 32 hex characters
//	-l, --load          Load a snapshot before reading commands
//
// Commands:
//
//	put <key> <value...>   Insert or update an entry
//	get <key>              Retrieve a value
//	del <key>              Delete an entry
//	scan [limit]           List entries in insertion order
//	rscan [limit]          List entries newest first
//	stats                  Show table statistics
//	save [path]            Write a snapshot
//	load [path]            Read a snapshot
//	help                   Show all commands
package main

import (
	"os"
	"strings"

	"github.com/homier/chainmap/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env))
}
