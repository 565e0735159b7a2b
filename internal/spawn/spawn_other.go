//go:build !unix

package spawn

import "os"

func Getpid() int {
	return os.Getpid()
}

func Exit(code int) {
	os.Exit(code)
}
