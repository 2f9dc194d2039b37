// Package pidfile keeps a single daemon instance per runtime directory.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning is returned when the pidfile names a live process.
var ErrAlreadyRunning = errors.New("already running")

// File is an acquired pidfile.
type File struct {
	path string
	pid  int
}

// Acquire writes the current pid to path. A pidfile naming a live process
// fails with ErrAlreadyRunning; one naming a dead process is replaced.
func Acquire(path string) (*File, error) {
	if pid, err := Read(path); err == nil {
		if pid != os.Getpid() && Alive(pid) {
			return nil, fmt.Errorf("%w (PID: %d)", ErrAlreadyRunning, pid)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale pidfile: %w", err)
		}
	} else if !os.IsNotExist(err) {
		// Unreadable or garbage content: treat as stale.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale pidfile: %w", err)
		}
	}

	pid := os.Getpid()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: pidfile %s was created concurrently", ErrAlreadyRunning, path)
		}
		return nil, fmt.Errorf("failed to create pidfile: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", pid); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write pidfile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write pidfile: %w", err)
	}
	return &File{path: path, pid: pid}, nil
}

// Path returns the pidfile location.
func (f *File) Path() string { return f.path }

// Release removes the pidfile if it still names this process.
func (f *File) Release() error {
	if f == nil {
		return nil
	}
	pid, err := Read(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if pid != f.pid {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Read parses the pid stored at path.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pidfile %s: %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Alive reports whether a process with pid exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
