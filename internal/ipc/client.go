package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/mrutab/internal/runtimepath"
	"github.com/1broseidon/mrutab/internal/windows"
)

// DefaultTimeout bounds connecting to and talking with the daemon.
const DefaultTimeout = 5 * time.Second

// ErrDaemon wraps error responses returned by the daemon.
var ErrDaemon = errors.New("daemon error")

// Client sends single commands to the daemon.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for socketPath, or the default runtime socket
// when socketPath is empty.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err == nil {
			socketPath = path
		}
		// Keep constructor non-failing; Send surfaces connection errors.
	}

	return &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
	}
}

// WithTimeout returns a copy of the client using timeout instead of the default.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	cp := *c
	cp.timeout = timeout
	return &cp
}

// Send writes cmd and reads the daemon's reply. Error responses are
// returned as errors wrapping ErrDaemon.
func (c *Client) Send(cmd Command) (Response, error) {
	if c.socketPath == "" {
		return Response{}, fmt.Errorf("failed to connect to daemon: no socket path (is XDG_RUNTIME_DIR set?)")
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return Response{}, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write([]byte(string(cmd) + "\n")); err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.IsError() {
		return resp, fmt.Errorf("%w: %s", ErrDaemon, resp.Error)
	}
	return resp, nil
}

// Do sends a command that only acknowledges.
func (c *Client) Do(cmd Command) error {
	_, err := c.Send(cmd)
	return err
}

// Status retrieves the switcher status.
func (c *Client) Status() (*StatusData, error) {
	resp, err := c.Send(CommandStatus)
	if err != nil {
		return nil, err
	}
	if !resp.IsStatus() {
		return nil, fmt.Errorf("unexpected response to %s", CommandStatus)
	}
	status := resp.Status
	return &status, nil
}

// List retrieves the MRU window list in the daemon's configured mode.
func (c *Client) List() ([]windows.Window, error) {
	resp, err := c.Send(CommandList)
	if err != nil {
		return nil, err
	}
	if !resp.IsWindows() {
		return nil, fmt.Errorf("unexpected response to %s", CommandList)
	}
	return resp.Windows, nil
}

// Ping checks if the daemon is responding.
func (c *Client) Ping() error {
	_, err := c.Status()
	return err
}
