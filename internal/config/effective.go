package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/mrutab/internal/windows"
)

// ValidationError reports an invalid setting and, when known, where it was set.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Mode != nil {
		cfg.Mode = windows.Mode(strings.ToLower(strings.TrimSpace(*raw.Mode)))
	}
	if raw.Backend != nil {
		cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(*raw.Backend)))
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.SocketPath != nil {
		path, err := expandHome(strings.TrimSpace(*raw.SocketPath))
		if err != nil {
			return nil, &ValidationError{Path: "socket_path", Err: err}
		}
		cfg.SocketPath = path
	}
	if raw.RefreshInterval != nil {
		cfg.RefreshInterval = *raw.RefreshInterval
	}
	if raw.OverlayCommand != nil {
		cfg.OverlayCommand = append([]string(nil), raw.OverlayCommand...)
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if h := raw.Hotkeys; h != nil {
		cfg.Hotkeys.Next = derefString(h.Next, cfg.Hotkeys.Next)
		cfg.Hotkeys.Prev = derefString(h.Prev, cfg.Hotkeys.Prev)
		cfg.Hotkeys.Select = derefString(h.Select, cfg.Hotkeys.Select)
		cfg.Hotkeys.Cancel = derefString(h.Cancel, cfg.Hotkeys.Cancel)
	}

	return cfg, nil
}

func derefString(p *string, def string) string {
	if p == nil {
		return def
	}
	return strings.TrimSpace(*p)
}
