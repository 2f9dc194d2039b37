package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// clientInfo is what the tree builder needs to know about one managed window.
type clientInfo struct {
	ID       xproto.Window
	Desktop  int
	Title    string
	Class    string
	Instance string
	PID      int
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW, or 0 when nothing is focused.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// listClients reads the EWMH client list and the properties of each normal
// window. Windows that vanish while being read are skipped.
func (c *Connection) listClients() ([]clientInfo, error) {
	ids, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, err
	}

	clients := make([]clientInfo, 0, len(ids))
	for _, id := range ids {
		if !c.IsNormalWindow(id) {
			continue
		}
		desktop, err := c.GetWindowDesktop(id)
		if err != nil {
			continue
		}

		info := clientInfo{ID: id, Desktop: desktop}
		if name, err := ewmh.WmNameGet(c.XUtil, id); err == nil && name != "" {
			info.Title = name
		} else if name, err := icccm.WmNameGet(c.XUtil, id); err == nil {
			info.Title = name
		}
		if class, err := icccm.WmClassGet(c.XUtil, id); err == nil {
			info.Class = class.Class
			info.Instance = class.Instance
		}
		if pid, err := ewmh.WmPidGet(c.XUtil, id); err == nil {
			info.PID = int(pid)
		}
		clients = append(clients, info)
	}
	return clients, nil
}
