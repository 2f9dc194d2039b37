package windows

import (
	"reflect"
	"testing"

	"github.com/1broseidon/mrutab/internal/compositor"
)

func leaf(id int64, name string, pid int, focused bool) *compositor.Node {
	return &compositor.Node{
		ID:      id,
		Name:    name,
		Type:    compositor.NodeCon,
		PID:     pid,
		Focused: focused,
		AppID:   name,
	}
}

func sampleTree() *compositor.Node {
	xterm := leaf(12, "xterm", 400, false)
	xterm.AppID = ""
	xterm.WindowProperties = &compositor.WindowProperties{Class: "XTerm"}

	floating := leaf(13, "pavucontrol", 500, false)
	floating.Type = compositor.NodeFloatingCon

	return &compositor.Node{
		ID:   1,
		Type: compositor.NodeRoot,
		Nodes: []*compositor.Node{{
			ID:   2,
			Name: "eDP-1",
			Type: compositor.NodeOutput,
			Nodes: []*compositor.Node{
				{
					ID:   3,
					Name: "1",
					Type: compositor.NodeWorkspace,
					Nodes: []*compositor.Node{
						leaf(10, "firefox", 100, false),
						{
							ID:      4,
							Type:    compositor.NodeCon,
							Focused: true, // focused split container, not a window
							Nodes: []*compositor.Node{
								leaf(11, "foot", 200, false),
							},
						},
					},
					FloatingNodes: []*compositor.Node{floating},
				},
				{
					ID:   5,
					Name: "2",
					Type: compositor.NodeWorkspace,
					Nodes: []*compositor.Node{
						xterm,
						leaf(14, "placeholder", 0, false),
					},
				},
			},
		}},
	}
}

func TestCollect_FlattensWindowsWithWorkspace(t *testing.T) {
	snap := Collect(sampleTree())

	want := []Window{
		{ID: 10, AppID: "firefox", Title: "firefox", Workspace: "1"},
		{ID: 11, AppID: "foot", Title: "foot", Workspace: "1"},
		{ID: 13, AppID: "pavucontrol", Title: "pavucontrol", Workspace: "1"},
		{ID: 12, Title: "xterm", Workspace: "2", WindowClass: "XTerm"},
	}
	if !reflect.DeepEqual(snap.Windows, want) {
		t.Fatalf("Collect() windows = %+v\nwant %+v", snap.Windows, want)
	}
	if snap.Focused != NoWindow {
		t.Fatalf("focused container must not count as window, got %d", snap.Focused)
	}
}

func TestCollect_FocusedWindow(t *testing.T) {
	tree := sampleTree()
	tree.Nodes[0].Nodes[1].Nodes[0].Focused = true

	snap := Collect(tree)
	if snap.Focused != 12 {
		t.Fatalf("Focused = %d, want 12", snap.Focused)
	}
}

func TestCollect_NilTree(t *testing.T) {
	snap := Collect(nil)
	if len(snap.Windows) != 0 || snap.Focused != NoWindow {
		t.Fatalf("Collect(nil) = %+v, want empty", snap)
	}
}
