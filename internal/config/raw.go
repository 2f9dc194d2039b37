package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawHotkeys mirrors Hotkeys with presence tracking.
type RawHotkeys struct {
	Next   *string `yaml:"next"`
	Prev   *string `yaml:"prev"`
	Select *string `yaml:"select"`
	Cancel *string `yaml:"cancel"`
}

// RawConfig is one file's worth of settings; nil means "not set here".
type RawConfig struct {
	Include         IncludeList    `yaml:"include"`
	Mode            *string        `yaml:"mode"`
	Backend         *string        `yaml:"backend"`
	LogLevel        *string        `yaml:"log_level"`
	SocketPath      *string        `yaml:"socket_path"`
	RefreshInterval *time.Duration `yaml:"refresh_interval"`
	OverlayCommand  []string       `yaml:"overlay_command"`
	Display         *string        `yaml:"display"`
	Hotkeys         *RawHotkeys    `yaml:"hotkeys"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Mode != nil {
		out.Mode = overlay.Mode
	}
	if overlay.Backend != nil {
		out.Backend = overlay.Backend
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.SocketPath != nil {
		out.SocketPath = overlay.SocketPath
	}
	if overlay.RefreshInterval != nil {
		out.RefreshInterval = overlay.RefreshInterval
	}
	if overlay.OverlayCommand != nil {
		out.OverlayCommand = append([]string(nil), overlay.OverlayCommand...)
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Hotkeys != nil {
		base := RawHotkeys{}
		if out.Hotkeys != nil {
			base = *out.Hotkeys
		}
		merged := mergeRawHotkeys(base, *overlay.Hotkeys)
		out.Hotkeys = &merged
	}

	return out
}

func mergeRawHotkeys(base RawHotkeys, overlay RawHotkeys) RawHotkeys {
	out := base
	if overlay.Next != nil {
		out.Next = overlay.Next
	}
	if overlay.Prev != nil {
		out.Prev = overlay.Prev
	}
	if overlay.Select != nil {
		out.Select = overlay.Select
	}
	if overlay.Cancel != nil {
		out.Cancel = overlay.Cancel
	}
	return out
}
