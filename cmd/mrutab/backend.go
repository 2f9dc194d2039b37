package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/mrutab/internal/compositor"
	"github.com/1broseidon/mrutab/internal/config"
	"github.com/1broseidon/mrutab/internal/sway"
	"github.com/1broseidon/mrutab/internal/x11"
)

var errNoBackend = errors.New("no compositor found: set SWAYSOCK for sway or DISPLAY for X11, or choose a backend in the config")

// selectBackend resolves "auto" from the environment.
func selectBackend(cfg *config.Config, getenv func(string) string) (config.Backend, error) {
	switch cfg.Backend {
	case config.BackendSway, config.BackendX11:
		return cfg.Backend, nil
	case config.BackendAuto, "":
	default:
		return "", fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if getenv("SWAYSOCK") != "" || getenv("I3SOCK") != "" {
		return config.BackendSway, nil
	}
	if cfg.Display != "" || getenv("DISPLAY") != "" {
		return config.BackendX11, nil
	}
	return "", errNoBackend
}

// openCompositor connects to the selected backend.
func openCompositor(backend config.Backend, cfg *config.Config, logger *slog.Logger) (compositor.Client, error) {
	switch backend {
	case config.BackendSway:
		path, err := sway.SocketPath()
		if err != nil {
			return nil, err
		}
		return sway.Dial(path, logger.With("backend", "sway"))
	case config.BackendX11:
		return x11.Dial(cfg.Display, logger.With("backend", "x11"))
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
