// Package daemon runs the switcher's control loop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/mrutab/internal/compositor"
	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/switcher"
	"github.com/1broseidon/mrutab/internal/windows"
)

// ErrChannelClosed is returned by Run when the command queue is closed.
var ErrChannelClosed = errors.New("command channel closed")

// focusBuffer bounds focus events queued while a command is being handled.
const focusBuffer = 64

// Presenter receives UI directives. Implementations must not block.
type Presenter interface {
	Show(list []windows.Window, selected int)
	UpdateSelection(index int)
	Hide()
}

// Config holds configuration for the daemon.
type Config struct {
	Mode            windows.Mode
	RefreshInterval time.Duration
	Logger          *slog.Logger
}

// Daemon owns the MRU list and the switching session. All state is touched
// only from the goroutine running Run.
type Daemon struct {
	mode            windows.Mode
	refreshInterval time.Duration
	client          compositor.Client
	manager         *windows.Manager
	presenter       Presenter
	session         *switcher.Session
	logger          *slog.Logger
}

// New creates a daemon for the given compositor. A nil presenter drops directives.
func New(cfg Config, client compositor.Client, presenter Presenter) *Daemon {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := cfg.Mode
	if mode == "" {
		mode = windows.ModeCurrent
	}
	if presenter == nil {
		presenter = nopPresenter{}
	}

	return &Daemon{
		mode:            mode,
		refreshInterval: cfg.RefreshInterval,
		client:          client,
		manager:         windows.NewManager(client, logger),
		presenter:       presenter,
		logger:          logger,
	}
}

// Run loads the initial window list, subscribes to focus changes and then
// handles one event at a time until a shutdown command arrives or ctx is
// done. Closing requests is fatal and yields ErrChannelClosed.
func (d *Daemon) Run(ctx context.Context, requests <-chan ipc.Request) error {
	if err := d.manager.Refresh(ctx); err != nil {
		return fmt.Errorf("initial refresh: %w", err)
	}
	d.logger.Info("daemon started",
		"mode", d.mode,
		"count", d.manager.Len(),
		"workspace", d.manager.CurrentWorkspace())

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// focus is closed once the subscription returns, after every event it
	// delivered, so buffered ids are handled before the end is observed.
	focus := make(chan int64, focusBuffer)
	var subErr error
	go func() {
		subErr = d.client.SubscribeFocus(subCtx, focus)
		close(focus)
	}()

	var ticks <-chan struct{}
	if d.refreshInterval > 0 {
		refresher := NewRefresher(RefresherConfig{Interval: d.refreshInterval, Logger: d.logger})
		go refresher.Run(subCtx)
		ticks = refresher.C()
	}

	defer d.endSession()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopped", "reason", ctx.Err())
			return nil

		case req, ok := <-requests:
			if !ok {
				d.logger.Error("command channel closed")
				return ErrChannelClosed
			}
			resp, stop := d.handle(ctx, req.Command)
			req.Respond(resp)
			if stop {
				d.logger.Info("daemon shutting down")
				return nil
			}

		case id, ok := <-focus:
			if ok {
				d.handleFocus(id)
				continue
			}
			if subErr != nil && !errors.Is(subErr, context.Canceled) {
				d.logger.Error("focus subscription ended", "error", subErr)
			} else {
				d.logger.Warn("focus subscription ended")
			}
			focus = nil

		case <-ticks:
			d.handleTick(ctx)
		}
	}
}

// handle applies one command and reports whether the loop should stop.
func (d *Daemon) handle(ctx context.Context, cmd ipc.Command) (ipc.Response, bool) {
	d.logger.Debug("handling command", "command", cmd, "switching", d.session != nil)

	switch cmd {
	case ipc.CommandShow, ipc.CommandNext:
		if d.session == nil {
			return d.startSession(ctx, true), false
		}
		d.cycle(true)
		return ipc.NewOKResponse(), false

	case ipc.CommandPrev:
		if d.session == nil {
			return d.startSession(ctx, false), false
		}
		d.cycle(false)
		return ipc.NewOKResponse(), false

	case ipc.CommandSelect:
		if d.session == nil {
			return ipc.NewOKResponse(), false
		}
		return d.selectCurrent(ctx), false

	case ipc.CommandCancel:
		if d.session != nil {
			d.logger.Debug("session cancelled")
			d.endSession()
		}
		return ipc.NewOKResponse(), false

	case ipc.CommandStatus:
		return ipc.NewStatusResponse(d.status()), false

	case ipc.CommandList:
		return d.list(ctx), false

	case ipc.CommandShutdown:
		return ipc.NewOKResponse(), true

	default:
		return ipc.NewErrorResponse(fmt.Sprintf("unknown command: %s", cmd)), false
	}
}

// startSession refreshes the window list and opens a session over the
// filtered view. A session started by prev begins on the first window and
// immediately steps back, landing on the last one.
func (d *Daemon) startSession(ctx context.Context, forward bool) ipc.Response {
	if err := d.manager.Refresh(ctx); err != nil {
		d.logger.Error("failed to refresh windows", "error", err)
		return ipc.NewErrorResponse(err.Error())
	}

	candidates := d.manager.Filtered(d.mode)
	if len(candidates) == 0 {
		d.logger.Debug("no windows to switch between", "mode", d.mode)
		return ipc.NewOKResponse()
	}

	d.session = switcher.Start(candidates, forward)
	if !forward {
		d.session.Cycle(false)
	}
	d.logger.Debug("session started", "count", d.session.Len(), "index", d.session.Index())
	d.presenter.Show(d.session.Candidates(), d.session.Index())
	return ipc.NewOKResponse()
}

func (d *Daemon) cycle(forward bool) {
	index := d.session.Cycle(forward)
	d.logger.Debug("selection moved", "index", index)
	d.presenter.UpdateSelection(index)
}

// selectCurrent focuses the selected window. When the compositor rejects
// the focus command the session stays open.
func (d *Daemon) selectCurrent(ctx context.Context) ipc.Response {
	target, ok := d.session.Current()
	if !ok {
		d.endSession()
		return ipc.NewOKResponse()
	}

	if err := d.manager.FocusWindow(ctx, target.ID); err != nil {
		d.logger.Error("failed to focus window", "window_id", target.ID, "error", err)
		return ipc.NewErrorResponse(err.Error())
	}

	d.session.Finalize()
	d.session = nil
	d.manager.OnFocus(target.ID)
	d.presenter.Hide()
	d.logger.Info("switched window", "window_id", target.ID, "title", target.Title)
	return ipc.NewOKResponse()
}

func (d *Daemon) endSession() {
	if d.session == nil {
		return
	}
	d.session = nil
	d.presenter.Hide()
}

func (d *Daemon) status() ipc.StatusData {
	if d.session == nil {
		return ipc.StatusData{}
	}
	index := d.session.Index()
	return ipc.StatusData{
		Switching:    true,
		WindowCount:  d.session.Len(),
		CurrentIndex: &index,
	}
}

// list returns the filtered MRU view. The list is refreshed first unless a
// session is running.
func (d *Daemon) list(ctx context.Context) ipc.Response {
	if d.session == nil {
		if err := d.manager.Refresh(ctx); err != nil {
			d.logger.Error("failed to refresh windows", "error", err)
			return ipc.NewErrorResponse(err.Error())
		}
	}
	return ipc.NewWindowsResponse(d.manager.Filtered(d.mode))
}

// handleFocus moves a newly focused window to the front. Focus changes
// during a session are ignored so the frozen candidates stay meaningful.
func (d *Daemon) handleFocus(id int64) {
	if id == windows.NoWindow {
		return
	}
	if d.session != nil {
		d.logger.Debug("ignoring focus event while switching", "window_id", id)
		return
	}
	d.manager.OnFocus(id)
	d.logger.Debug("focus changed", "window_id", id)
}

func (d *Daemon) handleTick(ctx context.Context) {
	if d.session != nil {
		return
	}
	if err := d.manager.Refresh(ctx); err != nil {
		d.logger.Warn("periodic refresh failed", "error", err)
	}
}

type nopPresenter struct{}

func (nopPresenter) Show([]windows.Window, int) {}
func (nopPresenter) UpdateSelection(int)        {}
func (nopPresenter) Hide()                      {}
