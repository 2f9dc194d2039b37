package windows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/1broseidon/mrutab/internal/compositor"
)

// Manager owns the MRU window list and the current workspace.
//
// Manager is not safe for concurrent use; the daemon loop is its only caller.
type Manager struct {
	client           compositor.Client
	windows          []Window
	currentWorkspace string
	logger           *slog.Logger
}

// NewManager creates a manager with an empty MRU list. Call Refresh to
// populate it.
func NewManager(client compositor.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client: client,
		logger: logger,
	}
}

// Refresh re-reads the window tree and merges it into the MRU list. On a
// tree query failure the list is left untouched. Failing to read the
// workspace list only keeps the previous current workspace.
func (m *Manager) Refresh(ctx context.Context) error {
	tree, err := m.client.Tree(ctx)
	if err != nil {
		return fmt.Errorf("%w: get tree: %v", ErrCompositorUnavailable, err)
	}

	snap := Collect(tree)
	m.windows = Reconcile(m.windows, snap.Windows, snap.Focused)
	m.logger.Debug("refreshed window list",
		"count", len(m.windows),
		"focused", snap.Focused)

	workspaces, err := m.client.Workspaces(ctx)
	if err != nil {
		m.logger.Warn("failed to read workspaces, keeping previous", "workspace", m.currentWorkspace, "error", err)
		return nil
	}
	if name, ok := compositor.FocusedWorkspace(workspaces); ok {
		m.currentWorkspace = name
	}
	return nil
}

// OnFocus moves the window to the front of the MRU list. Unknown ids are ignored.
func (m *Manager) OnFocus(id int64) {
	for i, w := range m.windows {
		if w.ID != id {
			continue
		}
		if i == 0 {
			return
		}
		copy(m.windows[1:i+1], m.windows[:i])
		m.windows[0] = w
		return
	}
}

// Filtered returns a copy of the MRU list restricted by mode.
func (m *Manager) Filtered(mode Mode) []Window {
	if mode == ModeCurrent && m.currentWorkspace != "" {
		out := make([]Window, 0, len(m.windows))
		for _, w := range m.windows {
			if w.Workspace == m.currentWorkspace {
				out = append(out, w)
			}
		}
		return out
	}
	out := make([]Window, len(m.windows))
	copy(out, m.windows)
	return out
}

// FocusWindow asks the compositor to focus id. The MRU list is not changed;
// the resulting focus event (or the caller) reorders it.
func (m *Manager) FocusWindow(ctx context.Context, id int64) error {
	if err := m.client.FocusWindow(ctx, id); err != nil {
		return fmt.Errorf("%w: focus window %d: %v", ErrCompositorCommandFailed, id, err)
	}
	return nil
}

// CurrentWorkspace returns the last known focused workspace name.
func (m *Manager) CurrentWorkspace() string {
	return m.currentWorkspace
}

// Len returns the number of tracked windows.
func (m *Manager) Len() int {
	return len(m.windows)
}
