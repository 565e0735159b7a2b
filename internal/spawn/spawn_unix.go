//go:build unix

package spawn

import "golang.org/x/sys/unix"

// Getpid returns the process ID of the caller.
func Getpid() int {
	return unix.Getpid()
}

// Exit terminates the process immediately with the given status. Deferred
// functions do not run.
func Exit(code int) {
	unix.Exit(code)
}
