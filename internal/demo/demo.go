// Package demo is the forkdemo program: it greets, spawns one child when it
// was given arguments, prints both process IDs and the arguments, and waits
// for the child.
package demo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"forkdemo/internal/metrics"
	"forkdemo/internal/proc"
	"forkdemo/internal/spawn"
)

// Welcome is the first line every run prints.
const Welcome = "Welcome ..."

// Child is a spawned process the parent can wait for.
type Child interface {
	PID() int
	Wait() error
}

// Forker creates the child process.
type Forker interface {
	Fork(ctx context.Context) (Child, error)
}

type spawnForker struct {
	spawner spawn.Spawner
}

// SpawnForker adapts a spawn.Spawner to Forker.
func SpawnForker(s spawn.Spawner) Forker {
	return spawnForker{spawner: s}
}

func (f spawnForker) Fork(ctx context.Context) (Child, error) {
	c, err := f.spawner.Spawn(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Runner runs the parent side of the program. Metrics, Procs and Logger are
// optional.
type Runner struct {
	Out     io.Writer
	Forker  Forker
	Getpid  func() int
	Metrics *metrics.Metrics
	Procs   *proc.Reader
	Logger  *slog.Logger
}

// Run prints the welcome line and, when args is not empty, forks one child,
// prints the parent and child PIDs followed by the numbered arguments, and
// waits for the child. The child's exit status is discarded.
func (r *Runner) Run(ctx context.Context, args []string) error {
	logger := r.logger()

	fmt.Fprintln(r.Out, Welcome)
	pid := r.getpid()

	if r.Metrics != nil {
		r.Metrics.SetArguments(len(args))
	}
	if len(args) == 0 {
		logger.Debug("No arguments, not spawning a child", "pid", pid)
		return nil
	}

	child, err := r.Forker.Fork(ctx)
	if err != nil {
		if r.Metrics != nil {
			r.Metrics.IncSpawnFailures()
		}
		return fmt.Errorf("spawn child: %w", err)
	}
	if r.Metrics != nil {
		r.Metrics.IncChildrenSpawned()
	}
	r.describe(logger, child.PID())

	fmt.Fprintf(r.Out, "PID parent = %d  PID child = %d\n", pid, child.PID())
	fmt.Fprintf(r.Out, "\nArguments:\n")
	for i, arg := range args {
		fmt.Fprintf(r.Out, "%d: %s\n", i+1, arg)
	}

	start := time.Now()
	if err := child.Wait(); err != nil {
		logger.Debug("Waiting for child failed", "pid", child.PID(), "error", err)
	}
	if r.Metrics != nil {
		r.Metrics.ObserveChildWait(time.Since(start))
	}

	if r.Procs != nil && r.Procs.Exists(child.PID()) {
		logger.Warn("Child still present after wait", "pid", child.PID())
	} else {
		logger.Debug("Child reaped", "pid", child.PID())
	}
	return nil
}

// RunChild is the child branch: it prints its own PID and terminates at once
// with status 0. It never returns.
func RunChild(w io.Writer) {
	fmt.Fprintf(w, "\nPID child = %d\n", spawn.Getpid())
	spawn.Exit(0)
}

func (r *Runner) describe(logger *slog.Logger, pid int) {
	if r.Procs == nil {
		return
	}
	info, err := r.Procs.Lookup(pid)
	if err != nil {
		logger.Debug("Could not inspect child", "pid", pid, "error", err)
		return
	}
	attrs := []any{
		"pid", info.PID,
		"ppid", info.PPID,
		"comm", info.Comm,
		"state", info.State,
	}
	if tids, err := r.Procs.Threads(pid); err == nil {
		attrs = append(attrs, "threads", len(tids))
	} else {
		logger.Debug("Could not list child threads", "pid", pid, "error", err)
	}
	logger.Debug("Spawned child", attrs...)
}

func (r *Runner) getpid() int {
	if r.Getpid != nil {
		return r.Getpid()
	}
	return spawn.Getpid()
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
