// Package compositor describes the window-tree protocol mrutab expects from a
// compositor. Backends (sway, x11) translate their native model into Node trees.
package compositor

import "context"

// NodeType classifies a node in the window tree.
type NodeType string

const (
	NodeRoot        NodeType = "root"
	NodeOutput      NodeType = "output"
	NodeWorkspace   NodeType = "workspace"
	NodeCon         NodeType = "con"
	NodeFloatingCon NodeType = "floating_con"
)

// WindowProperties carries X11 properties of XWayland or X11 clients.
type WindowProperties struct {
	Class    string `json:"class,omitempty"`
	Instance string `json:"instance,omitempty"`
	Title    string `json:"title,omitempty"`
}

// Node is one entry of the compositor window tree. The JSON tags follow the
// i3/sway GET_TREE reply so the sway backend can decode straight into it.
type Node struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             NodeType          `json:"type"`
	Focused          bool              `json:"focused"`
	PID              int               `json:"pid,omitempty"`
	AppID            string            `json:"app_id,omitempty"`
	WindowProperties *WindowProperties `json:"window_properties,omitempty"`
	Nodes            []*Node           `json:"nodes"`
	FloatingNodes    []*Node           `json:"floating_nodes"`
}

// IsContainer reports whether the node is a tiling or floating container.
func (n *Node) IsContainer() bool {
	return n.Type == NodeCon || n.Type == NodeFloatingCon
}

// IsLeaf reports whether the node has no tiling or floating children.
func (n *Node) IsLeaf() bool {
	return len(n.Nodes) == 0 && len(n.FloatingNodes) == 0
}

// Workspace is an entry of the compositor workspace list.
type Workspace struct {
	Num     int    `json:"num"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
	Visible bool   `json:"visible"`
	Output  string `json:"output"`
}

// Client is the RPC surface mrutab needs from a compositor.
type Client interface {
	// Tree returns the full window tree.
	Tree(ctx context.Context) (*Node, error)
	// Workspaces returns the workspace list.
	Workspaces(ctx context.Context) ([]Workspace, error)
	// FocusWindow asks the compositor to focus the window with the given id.
	FocusWindow(ctx context.Context, id int64) error
	// SubscribeFocus delivers the id of every newly focused window to out
	// until ctx is cancelled or the event stream fails. It blocks.
	SubscribeFocus(ctx context.Context, out chan<- int64) error
	// Close releases the backend connection.
	Close() error
}

// FocusedWorkspace returns the name of the focused workspace, if any.
func FocusedWorkspace(workspaces []Workspace) (string, bool) {
	for _, ws := range workspaces {
		if ws.Focused {
			return ws.Name, true
		}
	}
	return "", false
}
