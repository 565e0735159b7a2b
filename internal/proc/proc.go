// Package proc reads process information from procfs. It is used to describe
// the spawned child and to confirm it has been reaped.
package proc

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/prometheus/procfs"
)

// Info is a snapshot of /proc/<pid>/stat.
type Info struct {
	PID   int
	PPID  int
	Comm  string
	State string
}

// Reader reads process information below a procfs mount point.
type Reader struct {
	fs   procfs.FS
	root string
}

// New returns a Reader for the given mount point. An empty root means
// procfs.DefaultMountPoint.
func New(root string) (*Reader, error) {
	if root == "" {
		root = procfs.DefaultMountPoint
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open procfs %s: %w", root, err)
	}
	return &Reader{fs: fs, root: root}, nil
}

// Lookup returns the stat snapshot of pid.
func (r *Reader) Lookup(pid int) (Info, error) {
	p, err := r.fs.Proc(pid)
	if err != nil {
		return Info{}, fmt.Errorf("open process %d: %w", pid, err)
	}
	stat, err := p.Stat()
	if err != nil {
		return Info{}, fmt.Errorf("read stat for process %d: %w", pid, err)
	}
	return Info{
		PID:   stat.PID,
		PPID:  stat.PPID,
		Comm:  stat.Comm,
		State: stat.State,
	}, nil
}

// Exists reports whether a process with the given PID exists. A zombie still
// exists until its parent waits for it.
func (r *Reader) Exists(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.Stat(filepath.Join(r.root, strconv.Itoa(pid)))
	return err == nil
}

// Threads returns the sorted thread IDs of pid.
func (r *Reader) Threads(pid int) ([]int, error) {
	threads, err := r.fs.AllThreads(pid)
	if err != nil {
		return nil, fmt.Errorf("read threads for process %d: %w", pid, err)
	}

	tids := make([]int, 0, len(threads))
	for _, t := range threads {
		tids = append(tids, t.PID)
	}
	sort.Ints(tids)
	return tids, nil
}
