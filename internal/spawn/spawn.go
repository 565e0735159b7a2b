// Package spawn creates child processes by re-executing the running binary.
// The Go runtime is multi-threaded, so the child is started with exec and
// recognises itself through ChildEnv instead of a bare fork.
package spawn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strconv"
)

// ChildEnv marks a process started by Spawner. Its value is the PID of the
// parent that started it.
const ChildEnv = "FORKDEMO_CHILD"

// IsChild reports whether the current process was started by a Spawner. A
// marker inherited from anywhere other than the direct parent is ignored.
func IsChild() bool {
	ppid, err := strconv.Atoi(os.Getenv(ChildEnv))
	if err != nil {
		return false
	}
	return ppid > 0 && ppid == os.Getppid()
}

// Spawner starts copies of an executable in child mode. The zero value
// re-executes the current binary with no arguments and the parent's stdio.
type Spawner struct {
	Path   string
	Args   []string
	Env    []string // nil means os.Environ()
	Stdout io.Writer
	Stderr io.Writer
}

// Child is a started child process.
type Child struct {
	cmd *exec.Cmd
}

func (s Spawner) Spawn(ctx context.Context) (*Child, error) {
	path := s.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		path = exe
	}

	env := s.Env
	if env == nil {
		env = os.Environ()
	}

	cmd := exec.CommandContext(ctx, path, s.Args...)
	cmd.Env = append(slices.Clone(env), ChildEnv+"="+strconv.Itoa(Getpid()))
	cmd.Stdout = orDefault(s.Stdout, os.Stdout)
	cmd.Stderr = orDefault(s.Stderr, os.Stderr)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start child %s: %w", path, err)
	}

	return &Child{cmd: cmd}, nil
}

func (c *Child) PID() int {
	return c.cmd.Process.Pid
}

// Wait blocks until the child terminates. The exit status is discarded: a
// non-zero exit is not an error, only a failure to wait is.
func (c *Child) Wait() error {
	err := c.cmd.Wait()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func orDefault(w io.Writer, def *os.File) io.Writer {
	if w == nil {
		return def
	}
	return w
}
