package windows

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/1broseidon/mrutab/internal/compositor/compositortest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(t *testing.T, fake *compositortest.Fake) *Manager {
	t.Helper()
	m := NewManager(fake, discardLogger())
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	return m
}

func TestManager_RefreshAndOnFocus(t *testing.T) {
	fake := compositortest.New(
		compositortest.Window{ID: 1, Title: "A"},
		compositortest.Window{ID: 2, Title: "B"},
		compositortest.Window{ID: 3, Title: "C"},
	)
	m := newTestManager(t, fake)

	if got := ids(m.Filtered(ModeAll)); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Fatalf("initial order = %v, want [1 2 3]", got)
	}

	m.OnFocus(2)
	if got := ids(m.Filtered(ModeAll)); !reflect.DeepEqual(got, []int64{2, 1, 3}) {
		t.Fatalf("after OnFocus(2) = %v, want [2 1 3]", got)
	}

	m.OnFocus(3)
	if got := ids(m.Filtered(ModeAll)); !reflect.DeepEqual(got, []int64{3, 2, 1}) {
		t.Fatalf("after OnFocus(3) = %v, want [3 2 1]", got)
	}

	m.OnFocus(42)
	if got := ids(m.Filtered(ModeAll)); !reflect.DeepEqual(got, []int64{3, 2, 1}) {
		t.Fatalf("OnFocus(unknown) changed order to %v", got)
	}
}

func TestManager_RefreshKeepsOrderAndDropsClosed(t *testing.T) {
	fake := compositortest.New(
		compositortest.Window{ID: 1, Title: "A"},
		compositortest.Window{ID: 2, Title: "B"},
		compositortest.Window{ID: 3, Title: "C"},
	)
	m := newTestManager(t, fake)
	m.OnFocus(3)

	fake.SetWindows(
		compositortest.Window{ID: 1, Title: "A renamed"},
		compositortest.Window{ID: 3, Title: "C"},
		compositortest.Window{ID: 4, Title: "D"},
	)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	got := m.Filtered(ModeAll)
	if want := []int64{3, 1, 4}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("order = %v, want %v", ids(got), want)
	}
	if got[1].Title != "A renamed" {
		t.Fatalf("title = %q, want fresh title", got[1].Title)
	}
}

func TestManager_RefreshFailureKeepsList(t *testing.T) {
	fake := compositortest.New(compositortest.Window{ID: 1}, compositortest.Window{ID: 2})
	m := newTestManager(t, fake)
	m.OnFocus(2)

	fake.TreeErr = compositortest.ErrUnavailable
	err := m.Refresh(context.Background())
	if !errors.Is(err, ErrCompositorUnavailable) {
		t.Fatalf("Refresh() error = %v, want ErrCompositorUnavailable", err)
	}
	if got := ids(m.Filtered(ModeAll)); !reflect.DeepEqual(got, []int64{2, 1}) {
		t.Fatalf("list changed after failed refresh: %v", got)
	}
}

func TestManager_FilteredByWorkspace(t *testing.T) {
	fake := compositortest.New(
		compositortest.Window{ID: 1, Workspace: "1"},
		compositortest.Window{ID: 2, Workspace: "2"},
		compositortest.Window{ID: 3, Workspace: "1"},
	)
	m := newTestManager(t, fake)

	if got := ids(m.Filtered(ModeCurrent)); !reflect.DeepEqual(got, []int64{1, 3}) {
		t.Fatalf("Filtered(current) = %v, want [1 3]", got)
	}
	if got := ids(m.Filtered(ModeAll)); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Fatalf("Filtered(all) = %v, want [1 2 3]", got)
	}
	if m.CurrentWorkspace() != "1" {
		t.Fatalf("CurrentWorkspace() = %q, want 1", m.CurrentWorkspace())
	}

	// Workspace query failures keep the previous workspace.
	fake.WorkspacesErr = compositortest.ErrUnavailable
	fake.CurrentWorkspace = "2"
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() with workspace error should succeed, got %v", err)
	}
	if m.CurrentWorkspace() != "1" {
		t.Fatalf("CurrentWorkspace() = %q, want previous value 1", m.CurrentWorkspace())
	}
}

func TestManager_FilteredUnknownWorkspaceFallsBackToAll(t *testing.T) {
	fake := compositortest.New(
		compositortest.Window{ID: 1, Workspace: "1"},
		compositortest.Window{ID: 2, Workspace: "2"},
	)
	fake.WorkspacesErr = compositortest.ErrUnavailable
	m := newTestManager(t, fake)

	if got := ids(m.Filtered(ModeCurrent)); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("Filtered(current) without workspace = %v, want all", got)
	}
}

func TestManager_FilteredReturnsCopy(t *testing.T) {
	fake := compositortest.New(compositortest.Window{ID: 1, Title: "A"})
	m := newTestManager(t, fake)

	view := m.Filtered(ModeAll)
	view[0].Title = "mutated"
	if m.Filtered(ModeAll)[0].Title != "A" {
		t.Fatalf("Filtered() exposed internal state")
	}
}

func TestManager_FocusWindow(t *testing.T) {
	fake := compositortest.New(compositortest.Window{ID: 1}, compositortest.Window{ID: 2})
	m := newTestManager(t, fake)

	if err := m.FocusWindow(context.Background(), 2); err != nil {
		t.Fatalf("FocusWindow() error: %v", err)
	}
	if got := fake.FocusCallsSnapshot(); !reflect.DeepEqual(got, []int64{2}) {
		t.Fatalf("focus calls = %v, want [2]", got)
	}
	if got := ids(m.Filtered(ModeAll)); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Fatalf("FocusWindow must not reorder, got %v", got)
	}

	fake.FocusErr = errors.New("no such window")
	err := m.FocusWindow(context.Background(), 1)
	if !errors.Is(err, ErrCompositorCommandFailed) {
		t.Fatalf("FocusWindow() error = %v, want ErrCompositorCommandFailed", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"current", ModeCurrent, false},
		{"all", ModeAll, false},
		{"", ModeCurrent, false},
		{"everything", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
