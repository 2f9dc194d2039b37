package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mrutab/internal/config"
	"github.com/1broseidon/mrutab/internal/runtimepath"
	"github.com/1broseidon/mrutab/internal/windows"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	mode       string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mrutab",
		Short: "mrutab - most-recently-used Alt-Tab window switcher",
		Long: `mrutab keeps the compositor's windows in most-recently-used order and
lets you cycle through them like Alt-Tab.

Run "mrutab daemon" once per session, then bind "mrutab next", "mrutab prev",
"mrutab select" and "mrutab cancel" to keys (or configure X11 hotkeys).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/mrutab/config.yaml)")
	root.PersistentFlags().StringVar(&opts.mode, "mode", "", "workspace mode override (current or all)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newDaemonCmd(opts))
	for _, cmd := range newSwitchCmds(opts) {
		root.AddCommand(cmd)
	}
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newMCPCmd(opts))
	root.AddCommand(newTUICmd(opts))

	return root
}

// loadResult loads the config file named by --config, or the default location.
func (o *rootOptions) loadResult() (*config.LoadResult, error) {
	if o.configPath == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(o.configPath)
}

// effectiveConfig loads the config and applies flag overrides.
func (o *rootOptions) effectiveConfig() (*config.Config, error) {
	res, err := o.loadResult()
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	if o.mode != "" {
		mode, err := windows.ParseMode(strings.ToLower(o.mode))
		if err != nil {
			return nil, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = mode
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// socketPath resolves the daemon socket for client commands. A broken config
// falls back to the default socket so key bindings keep working.
func (o *rootOptions) socketPath(stderr io.Writer) (string, error) {
	res, err := o.loadResult()
	if err != nil {
		fmt.Fprintf(stderr, "warning: %v (using default socket)\n", err)
		return runtimepath.SocketPath()
	}
	return resolveSocketPath(res.Config)
}

func resolveSocketPath(cfg *config.Config) (string, error) {
	if cfg.SocketPath != "" {
		return cfg.SocketPath, nil
	}
	return runtimepath.SocketPath()
}

func slogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
