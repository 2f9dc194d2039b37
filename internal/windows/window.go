// Package windows tracks the compositor's windows in most-recently-used order.
package windows

import "errors"

// NoWindow is the id used when no window is focused. Neither sway nor X11
// assign id 0 to a real window.
const NoWindow int64 = 0

var (
	// ErrCompositorUnavailable is returned when the window tree cannot be queried.
	ErrCompositorUnavailable = errors.New("compositor unavailable")
	// ErrCompositorCommandFailed is returned when the compositor rejects a command.
	ErrCompositorCommandFailed = errors.New("compositor command failed")
)

// Window is a snapshot of one compositor window.
type Window struct {
	ID          int64  `json:"id"`
	AppID       string `json:"app_id,omitempty"`
	Title       string `json:"title"`
	Workspace   string `json:"workspace"`
	WindowClass string `json:"window_class,omitempty"`
}

// Label returns the app id, falling back to the window class.
func (w Window) Label() string {
	if w.AppID != "" {
		return w.AppID
	}
	if w.WindowClass != "" {
		return w.WindowClass
	}
	return "<unknown>"
}

// Mode selects which windows a switching session offers.
type Mode string

const (
	// ModeCurrent offers windows on the focused workspace only.
	ModeCurrent Mode = "current"
	// ModeAll offers windows from every workspace.
	ModeAll Mode = "all"
)

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCurrent, ModeAll:
		return Mode(s), nil
	case "":
		return ModeCurrent, nil
	default:
		return "", errors.New("mode must be one of: current, all")
	}
}
