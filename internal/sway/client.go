package sway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/mrutab/internal/compositor"
)

// ErrNoSocket is returned when neither SWAYSOCK nor I3SOCK is set.
var ErrNoSocket = errors.New("SWAYSOCK not set")

// SocketPath returns the IPC socket from SWAYSOCK, falling back to I3SOCK.
func SocketPath() (string, error) {
	if sock := os.Getenv("SWAYSOCK"); sock != "" {
		return sock, nil
	}
	if sock := os.Getenv("I3SOCK"); sock != "" {
		return sock, nil
	}
	return "", ErrNoSocket
}

// Client is a compositor.Client for sway. Requests share one connection;
// each focus subscription opens its own.
type Client struct {
	socketPath string
	logger     *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var _ compositor.Client = (*Client)(nil)

// Dial connects to the sway IPC socket at socketPath.
func Dial(socketPath string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to sway at %s: %w", socketPath, err)
	}
	logger.Debug("connected to sway", "path", socketPath)
	return &Client{socketPath: socketPath, logger: logger, conn: conn}, nil
}

// Close closes the request connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// request sends one message and reads its reply.
func (c *Client) request(ctx context.Context, msgType uint32, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, net.ErrClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}

	if err := writeMessage(c.conn, msgType, payload); err != nil {
		return nil, err
	}
	replyType, reply, err := readMessage(c.conn)
	if err != nil {
		return nil, err
	}
	if replyType != msgType {
		return nil, fmt.Errorf("unexpected reply type %d for request %d", replyType, msgType)
	}
	return reply, nil
}

// Tree returns the full container tree.
func (c *Client) Tree(ctx context.Context) (*compositor.Node, error) {
	data, err := c.request(ctx, msgGetTree, nil)
	if err != nil {
		return nil, fmt.Errorf("get_tree: %w", err)
	}
	var root compositor.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return &root, nil
}

// Workspaces returns the workspace list.
func (c *Client) Workspaces(ctx context.Context) ([]compositor.Workspace, error) {
	data, err := c.request(ctx, msgGetWorkspaces, nil)
	if err != nil {
		return nil, fmt.Errorf("get_workspaces: %w", err)
	}
	var workspaces []compositor.Workspace
	if err := json.Unmarshal(data, &workspaces); err != nil {
		return nil, fmt.Errorf("decode workspaces: %w", err)
	}
	return workspaces, nil
}

// FocusWindow focuses the container with the given con_id.
func (c *Client) FocusWindow(ctx context.Context, id int64) error {
	return c.command(ctx, fmt.Sprintf("[con_id=%d] focus", id))
}

// command runs a sway command and reports the first failure.
func (c *Client) command(ctx context.Context, cmd string) error {
	data, err := c.request(ctx, msgRunCommand, []byte(cmd))
	if err != nil {
		return fmt.Errorf("run_command: %w", err)
	}

	var results []commandResult
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("decode command reply: %w", err)
	}
	var failures []string
	for _, r := range results {
		if !r.Success {
			failures = append(failures, r.Error)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%s: %s", cmd, strings.Join(failures, "; "))
	}
	return nil
}

// SubscribeFocus streams the con_id of every newly focused window until ctx
// is done or the connection fails.
func (c *Client) SubscribeFocus(ctx context.Context, out chan<- int64) error {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("connect for subscription: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := writeMessage(conn, msgSubscribe, []byte(`["window"]`)); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	msgType, reply, err := readMessage(conn)
	if err != nil {
		return c.subscriptionError(ctx, err)
	}
	var result subscribeResult
	if msgType != msgSubscribe || json.Unmarshal(reply, &result) != nil || !result.Success {
		return fmt.Errorf("subscribe rejected: %s", reply)
	}
	c.logger.Debug("subscribed to window events")

	for {
		msgType, payload, err := readMessage(conn)
		if err != nil {
			return c.subscriptionError(ctx, err)
		}
		if msgType != eventWindow {
			continue
		}

		var ev windowEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			c.logger.Warn("failed to decode window event", "error", err)
			continue
		}
		if ev.Change != "focus" {
			continue
		}

		select {
		case out <- ev.Container.ID:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) subscriptionError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("read window event: %w", err)
}
