//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package cli

// Line editing needs termios; everywhere else input is read as a script.
func isTerminal(uintptr) bool {
	return false
}
