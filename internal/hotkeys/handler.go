// Package hotkeys binds global X11 keys to switcher commands.
package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/x11"
)

// Submitter delivers a command to the daemon loop.
type Submitter func(cmd ipc.Command)

// Handler manages global keyboard shortcuts
type Handler struct {
	conn   *x11.Connection
	xu     *xgbutil.XUtil
	root   xproto.Window
	submit Submitter
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on conn. The connection's event loop
// must only be driven by Run.
func NewHandler(conn *x11.Connection, submit Submitter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		conn:   conn,
		xu:     conn.XUtil,
		root:   conn.Root,
		submit: submit,
		logger: logger,
	}
}

// Register grabs every non-empty key sequence in bindings, for example
// {"next": "Mod1-Tab"}.
func (h *Handler) Register(bindings map[ipc.Command]string) error {
	cmds := make([]string, 0, len(bindings))
	for cmd := range bindings {
		cmds = append(cmds, string(cmd))
	}
	sort.Strings(cmds)

	for _, name := range cmds {
		cmd := ipc.Command(name)
		keys := bindings[cmd]
		if keys == "" {
			continue
		}
		if err := h.RegisterFunc(keys, func() {
			h.logger.Debug("hotkey triggered", "keys", keys, "command", cmd)
			h.submit(cmd)
		}); err != nil {
			return fmt.Errorf("failed to register %s hotkey %q: %w", cmd, keys, err)
		}
		h.logger.Info("registered hotkey", "keys", keys, "command", cmd)
	}
	return nil
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Run drives the X event loop until ctx is done. The loop notices
// cancellation on the next X event.
func (h *Handler) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, h.conn.Quit)
	defer stop()
	h.conn.EventLoop()
	h.logger.Debug("hotkey loop stopped")
}

// QueueSubmitter returns a Submitter that enqueues fire-and-forget requests
// on queue, giving up when ctx is done.
func QueueSubmitter(ctx context.Context, queue chan<- ipc.Request) Submitter {
	return func(cmd ipc.Command) {
		select {
		case queue <- ipc.NewRequest(cmd):
		case <-ctx.Done():
		}
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	ignore := ignoreMasks(caps, numLock, scrollLock)
	xevent.IgnoreMods = ignore
}

// ignoreMasks returns every combination of the lock modifiers, including
// none, so bindings fire regardless of lock state.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
