// Package compositortest provides an in-memory compositor for tests.
package compositortest

import (
	"context"
	"errors"
	"sync"

	"github.com/1broseidon/mrutab/internal/compositor"
)

// Window describes one window of the fake compositor.
type Window struct {
	ID        int64
	AppID     string
	Title     string
	Workspace string
	Class     string
}

// Fake is a compositor.Client backed by a flat window list.
type Fake struct {
	mu sync.Mutex

	Windows          []Window
	Focused          int64
	CurrentWorkspace string

	TreeErr       error
	WorkspacesErr error
	FocusErr      error

	FocusCalls []int64
	events     chan int64
}

var _ compositor.Client = (*Fake)(nil)

// New returns a fake with the given windows on workspace "1".
func New(windows ...Window) *Fake {
	for i := range windows {
		if windows[i].Workspace == "" {
			windows[i].Workspace = "1"
		}
	}
	return &Fake{
		Windows:          windows,
		CurrentWorkspace: "1",
		events:           make(chan int64, 16),
	}
}

// Tree builds a root -> workspace -> window tree from the window list.
func (f *Fake) Tree(ctx context.Context) (*compositor.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TreeErr != nil {
		return nil, f.TreeErr
	}

	root := &compositor.Node{ID: 1, Type: compositor.NodeRoot}
	byName := map[string]*compositor.Node{}
	for _, w := range f.Windows {
		ws, ok := byName[w.Workspace]
		if !ok {
			ws = &compositor.Node{ID: int64(-len(byName) - 10), Name: w.Workspace, Type: compositor.NodeWorkspace}
			byName[w.Workspace] = ws
			root.Nodes = append(root.Nodes, ws)
		}
		node := &compositor.Node{
			ID:      w.ID,
			Name:    w.Title,
			Type:    compositor.NodeCon,
			PID:     1000 + int(w.ID),
			AppID:   w.AppID,
			Focused: w.ID == f.Focused,
		}
		if w.Class != "" {
			node.WindowProperties = &compositor.WindowProperties{Class: w.Class}
		}
		ws.Nodes = append(ws.Nodes, node)
	}
	return root, nil
}

// Workspaces lists the workspaces referenced by windows plus the current one.
func (f *Fake) Workspaces(ctx context.Context) ([]compositor.Workspace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WorkspacesErr != nil {
		return nil, f.WorkspacesErr
	}

	seen := map[string]bool{}
	var out []compositor.Workspace
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, compositor.Workspace{Name: name, Focused: name == f.CurrentWorkspace})
	}
	add(f.CurrentWorkspace)
	for _, w := range f.Windows {
		add(w.Workspace)
	}
	return out, nil
}

// FocusWindow records the call and marks the window focused.
func (f *Fake) FocusWindow(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FocusCalls = append(f.FocusCalls, id)
	if f.FocusErr != nil {
		return f.FocusErr
	}
	f.Focused = id
	return nil
}

// SubscribeFocus forwards ids passed to Emit until ctx is done.
func (f *Fake) SubscribeFocus(ctx context.Context, out chan<- int64) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id := <-f.events:
			select {
			case out <- id:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Emit queues a focus event for subscribers.
func (f *Fake) Emit(id int64) {
	f.events <- id
}

// Close is a no-op.
func (f *Fake) Close() error { return nil }

// SetWindows replaces the window list.
func (f *Fake) SetWindows(windows ...Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range windows {
		if windows[i].Workspace == "" {
			windows[i].Workspace = "1"
		}
	}
	f.Windows = windows
}

// FocusCallsSnapshot returns a copy of recorded focus calls.
func (f *Fake) FocusCallsSnapshot() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.FocusCalls...)
}

// ErrUnavailable is a convenience error for failure injection.
var ErrUnavailable = errors.New("fake compositor unavailable")
