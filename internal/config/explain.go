package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	mode
//	backend
//	log_level
//	socket_path
//	refresh_interval
//	overlay_command
//	display
//	hotkeys
//	hotkeys.next
//	hotkeys.prev
//	hotkeys.select
//	hotkeys.cancel
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "hotkeys" {
		return lookupHotkey(cfg.Hotkeys, path, parts[1:])
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch parts[0] {
	case "mode":
		return string(cfg.Mode), nil
	case "backend":
		return string(cfg.Backend), nil
	case "log_level":
		return cfg.LogLevel, nil
	case "socket_path":
		return cfg.SocketPath, nil
	case "refresh_interval":
		return cfg.RefreshInterval.String(), nil
	case "overlay_command":
		return append([]string(nil), cfg.OverlayCommand...), nil
	case "display":
		return cfg.Display, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}

func lookupHotkey(h Hotkeys, path string, rest []string) (any, error) {
	if len(rest) == 0 {
		return h, nil
	}
	if len(rest) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	switch rest[0] {
	case "next":
		return h.Next, nil
	case "prev":
		return h.Prev, nil
	case "select":
		return h.Select, nil
	case "cancel":
		return h.Cancel, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
