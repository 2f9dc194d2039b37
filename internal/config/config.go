// Package config loads the mrutab YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/1broseidon/mrutab/internal/windows"
)

// Backend selects the compositor integration.
type Backend string

const (
	BackendAuto Backend = "auto"
	BackendSway Backend = "sway"
	BackendX11  Backend = "x11"
)

// Hotkeys maps switcher commands to X11 key sequences such as "Mod1-Tab".
// Empty sequences are not bound.
type Hotkeys struct {
	Next   string `yaml:"next"`
	Prev   string `yaml:"prev"`
	Select string `yaml:"select"`
	Cancel string `yaml:"cancel"`
}

// Any reports whether at least one hotkey is configured.
func (h Hotkeys) Any() bool {
	return h.Next != "" || h.Prev != "" || h.Select != "" || h.Cancel != ""
}

// Config is the effective configuration.
type Config struct {
	Mode            windows.Mode  `yaml:"mode"`
	Backend         Backend       `yaml:"backend"`
	LogLevel        string        `yaml:"log_level"`
	SocketPath      string        `yaml:"socket_path"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	OverlayCommand  []string      `yaml:"overlay_command"`
	Display         string        `yaml:"display"`
	Hotkeys         Hotkeys       `yaml:"hotkeys"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Mode:     windows.ModeCurrent,
		Backend:  BackendAuto,
		LogLevel: "info",
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if _, err := windows.ParseMode(string(c.Mode)); err != nil {
		return &ValidationError{Path: "mode", Err: err}
	}
	switch c.Backend {
	case BackendAuto, BackendSway, BackendX11:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: auto, sway, x11")}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if c.RefreshInterval < 0 {
		return &ValidationError{Path: "refresh_interval", Err: fmt.Errorf("refresh_interval must be >= 0")}
	}
	if c.RefreshInterval > 0 && c.RefreshInterval < 100*time.Millisecond {
		return &ValidationError{Path: "refresh_interval", Err: fmt.Errorf("refresh_interval must be 0 (disabled) or at least 100ms")}
	}
	if len(c.OverlayCommand) > 0 && strings.TrimSpace(c.OverlayCommand[0]) == "" {
		return &ValidationError{Path: "overlay_command", Err: fmt.Errorf("overlay_command must start with a program name")}
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
}
