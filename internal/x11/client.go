package x11

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/mrutab/internal/compositor"
)

// Client is a compositor.Client for EWMH window managers. Desktops are
// reported as workspaces. Focus subscriptions use a dedicated connection.
type Client struct {
	display string
	logger  *slog.Logger

	mu   sync.Mutex
	conn *Connection
}

var _ compositor.Client = (*Client)(nil)

// Dial connects to display, or to $DISPLAY when display is empty.
func Dial(display string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("connect to X11: %w", err)
	}
	return &Client{display: display, logger: logger, conn: conn}, nil
}

// Tree synthesizes a root/workspace/window tree from the EWMH client list.
func (c *Client) Tree(ctx context.Context) (*compositor.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	clients, err := c.conn.listClients()
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	current := currentDesktop(c.conn.GetCurrentDesktop, c.logger)
	var active int64
	if win, err := c.conn.GetActiveWindow(); err == nil {
		active = int64(win)
	}
	return buildTree(clients, c.conn.GetDesktopNames(), current, active), nil
}

// Workspaces returns one workspace per desktop.
func (c *Client) Workspaces(ctx context.Context) ([]compositor.Workspace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := currentDesktop(c.conn.GetCurrentDesktop, c.logger)
	count, err := c.conn.GetDesktopCount()
	if err != nil {
		count = current + 1
	}
	return buildWorkspaces(count, c.conn.GetDesktopNames(), current), nil
}

// currentDesktop reads _NET_CURRENT_DESKTOP, falling back to desktop 0 for
// window managers that do not publish it.
func currentDesktop(get func() (int, error), logger *slog.Logger) int {
	current, err := get()
	if err != nil {
		logger.Debug("no current desktop, using desktop 0", "error", err)
		return 0
	}
	return current
}

// FocusWindow activates the window.
func (c *Client) FocusWindow(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.FocusWindow(xproto.Window(id))
}

// SubscribeFocus watches _NET_ACTIVE_WINDOW on the root window and streams
// each newly active window until ctx is done.
func (c *Client) SubscribeFocus(ctx context.Context, out chan<- int64) error {
	conn, err := NewConnection(c.display)
	if err != nil {
		return fmt.Errorf("connect for subscription: %w", err)
	}
	stop := context.AfterFunc(ctx, conn.Close)
	defer func() {
		if stop() {
			conn.Close()
		}
	}()

	activeAtom, err := xprop.Atm(conn.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}
	if err := xwindow.New(conn.XUtil, conn.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}
	c.logger.Debug("watching _NET_ACTIVE_WINDOW")

	var last xproto.Window
	for {
		ev, xerr := conn.XUtil.Conn().WaitForEvent()
		if ev == nil && xerr == nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.New("X11 connection closed")
		}
		if xerr != nil {
			c.logger.Debug("X11 error on subscription", "error", xerr)
			continue
		}

		pn, ok := ev.(xproto.PropertyNotifyEvent)
		if !ok || pn.Atom != activeAtom {
			continue
		}
		win, err := ewmh.ActiveWindowGet(conn.XUtil)
		if err != nil || win == 0 || win == last {
			continue
		}
		last = win

		select {
		case out <- int64(win):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the request connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.Close()
	return nil
}
