package windows

import "github.com/1broseidon/mrutab/internal/compositor"

// Snapshot is the flattened result of one window tree query.
type Snapshot struct {
	Windows []Window
	Focused int64
}

// Collect walks tree depth-first and returns every real window plus the
// focused window id (NoWindow if the focused node is not a window).
func Collect(tree *compositor.Node) Snapshot {
	var snap Snapshot
	if tree == nil {
		return snap
	}
	collect(tree, "", &snap)
	return snap
}

func collect(node *compositor.Node, workspace string, snap *Snapshot) {
	if node.Type == compositor.NodeWorkspace && node.Name != "" {
		workspace = node.Name
	}

	if isWindow(node) {
		snap.Windows = append(snap.Windows, windowFromNode(node, workspace))
		if node.Focused && snap.Focused == NoWindow {
			snap.Focused = node.ID
		}
	}

	for _, child := range node.Nodes {
		if child != nil {
			collect(child, workspace, snap)
		}
	}
	for _, child := range node.FloatingNodes {
		if child != nil {
			collect(child, workspace, snap)
		}
	}
}

// isWindow separates application windows from layout containers: only leaf
// containers with a process attached qualify.
func isWindow(node *compositor.Node) bool {
	return node.IsContainer() && node.IsLeaf() && node.PID > 0
}

func windowFromNode(node *compositor.Node, workspace string) Window {
	w := Window{
		ID:        node.ID,
		AppID:     node.AppID,
		Title:     node.Name,
		Workspace: workspace,
	}
	if node.WindowProperties != nil {
		w.WindowClass = node.WindowProperties.Class
	}
	return w
}
