package x11

import (
	"strconv"

	"github.com/1broseidon/mrutab/internal/compositor"
)

// desktopName returns the EWMH name of desktop i, falling back to its
// 1-based number.
func desktopName(i int, names []string) string {
	if i >= 0 && i < len(names) && names[i] != "" {
		return names[i]
	}
	return strconv.Itoa(i + 1)
}

// buildTree arranges clients under one workspace node per desktop, in
// client-list order. Sticky windows belong to the current desktop.
func buildTree(clients []clientInfo, names []string, current int, active int64) *compositor.Node {
	root := &compositor.Node{ID: -1, Name: "root", Type: compositor.NodeRoot}

	byDesktop := map[int]*compositor.Node{}
	workspace := func(desktop int) *compositor.Node {
		if ws, ok := byDesktop[desktop]; ok {
			return ws
		}
		ws := &compositor.Node{
			ID:   int64(-2 - desktop),
			Name: desktopName(desktop, names),
			Type: compositor.NodeWorkspace,
		}
		byDesktop[desktop] = ws
		root.Nodes = append(root.Nodes, ws)
		return ws
	}

	for _, c := range clients {
		desktop := c.Desktop
		if desktop < 0 {
			desktop = current
		}

		// _NET_WM_PID is optional; every client-list entry is a managed window.
		pid := c.PID
		if pid <= 0 {
			pid = 1
		}

		node := &compositor.Node{
			ID:      int64(c.ID),
			Name:    c.Title,
			Type:    compositor.NodeCon,
			Focused: int64(c.ID) == active,
			PID:     pid,
		}
		if c.Class != "" || c.Instance != "" {
			node.WindowProperties = &compositor.WindowProperties{
				Class:    c.Class,
				Instance: c.Instance,
				Title:    c.Title,
			}
		}
		ws := workspace(desktop)
		ws.Nodes = append(ws.Nodes, node)
	}
	return root
}

// buildWorkspaces lists every desktop with the current one focused.
func buildWorkspaces(count int, names []string, current int) []compositor.Workspace {
	if count < current+1 {
		count = current + 1
	}
	out := make([]compositor.Workspace, count)
	for i := range out {
		out[i] = compositor.Workspace{
			Num:     i + 1,
			Name:    desktopName(i, names),
			Focused: i == current,
			Visible: i == current,
		}
	}
	return out
}
