package ui

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

const closeTimeout = 2 * time.Second

// ProcessSink forwards directives to an external overlay process, one JSON
// object per line on its stdin. The process is started on the first show
// and restarted on a later show if it has exited.
type ProcessSink struct {
	argv   []string
	logger *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writer *bufio.Writer
	exited chan struct{}
}

// NewProcessSink creates a sink for the overlay command argv.
func NewProcessSink(argv []string, logger *slog.Logger) (*ProcessSink, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("overlay command is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessSink{
		argv:   append([]string(nil), argv...),
		logger: logger,
	}, nil
}

// Handle writes d to the overlay. Updates and hides are dropped while no
// overlay is running.
func (s *ProcessSink) Handle(d Directive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningLocked() {
		if d.Kind != KindShow {
			return nil
		}
		if err := s.startLocked(); err != nil {
			return err
		}
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal directive: %w", err)
	}
	data = append(data, '\n')
	if _, err := s.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write to overlay: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("failed to write to overlay: %w", err)
	}
	return nil
}

// Running reports whether the overlay process is alive.
func (s *ProcessSink) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *ProcessSink) runningLocked() bool {
	if s.cmd == nil {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

func (s *ProcessSink) startLocked() error {
	cmd := exec.Command(s.argv[0], s.argv[1:]...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open overlay stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start overlay %q: %w", s.argv[0], err)
	}

	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		if err != nil {
			s.logger.Warn("overlay exited", "command", s.argv[0], "error", err)
		} else {
			s.logger.Info("overlay exited", "command", s.argv[0])
		}
		close(exited)
	}()

	s.cmd = cmd
	s.stdin = stdin
	s.writer = bufio.NewWriter(stdin)
	s.exited = exited
	s.logger.Info("overlay started", "command", s.argv[0], "pid", cmd.Process.Pid)
	return nil
}

// Close closes the overlay's stdin and waits for it to exit, killing it
// after a grace period.
func (s *ProcessSink) Close() error {
	s.mu.Lock()
	cmd, stdin, exited := s.cmd, s.stdin, s.exited
	s.cmd = nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}
	stdin.Close()
	select {
	case <-exited:
	case <-time.After(closeTimeout):
		s.logger.Warn("overlay did not exit, killing", "command", s.argv[0])
		cmd.Process.Kill()
		<-exited
	}
	return nil
}
