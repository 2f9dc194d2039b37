package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// maxRequestLen bounds a request line; the longest command is far shorter.
	maxRequestLen = 256
	readTimeout   = 5 * time.Second
)

// ErrRequestTooLong is reported for request lines longer than maxRequestLen.
var ErrRequestTooLong = errors.New("request too long")

// Server accepts one command per connection and forwards it to the daemon
// loop through a shared request queue.
type Server struct {
	socketPath   string
	listener     net.Listener
	queue        chan<- Request
	logger       *slog.Logger
	ctx          context.Context
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server for socketPath that submits parsed commands to queue.
func NewServer(socketPath string, queue chan<- Request, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		queue:      queue,
		logger:     logger,
	}
}

// Start removes a stale socket, begins listening and accepts connections in
// the background. Requests still waiting when ctx is done are answered with
// a shutdown error.
func (s *Server) Start(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err == nil {
		s.logger.Info("removed stale socket", "path", s.socketPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener
	s.ctx = ctx

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "path", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection reads one line, waits for the daemon's reply and writes
// it back as one JSON line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	reader := bufio.NewReader(io.LimitReader(conn, maxRequestLen))
	data, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}
	if len(data) >= maxRequestLen && !strings.HasSuffix(data, "\n") {
		s.logger.Warn("rejected IPC request", "error", ErrRequestTooLong, "length", len(data))
		s.send(conn, NewErrorResponse(ErrRequestTooLong.Error()))
		return
	}

	cmd, err := ParseCommand(data)
	if err != nil {
		s.logger.Warn("rejected IPC request", "error", err)
		s.send(conn, NewErrorResponse(err.Error()))
		return
	}
	s.logger.Debug("received IPC command", "command", cmd)

	s.send(conn, s.submit(cmd))
}

func (s *Server) submit(cmd Command) Response {
	req := NewRequest(cmd)
	select {
	case s.queue <- req:
	case <-s.ctx.Done():
		return NewErrorResponse(ErrShuttingDown.Error())
	}

	resp, err := req.Wait(s.ctx)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) send(conn net.Conn, resp Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send response", "error", err)
	}
}

// Stop closes the listener and removes the socket file. Connections already
// accepted finish on their own.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove socket", "path", s.socketPath, "error", err)
	}
}
