package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mrutab/internal/config"
	"github.com/1broseidon/mrutab/internal/daemon"
	"github.com/1broseidon/mrutab/internal/hotkeys"
	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/pidfile"
	"github.com/1broseidon/mrutab/internal/runtimepath"
	"github.com/1broseidon/mrutab/internal/ui"
	"github.com/1broseidon/mrutab/internal/x11"
)

// requestQueue is the capacity of the command queue shared by the IPC
// server, hotkeys and signals.
const requestQueue = 16

const drainTimeout = 2 * time.Second

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Start the mrutab daemon (foreground)",
		Long: `Start the daemon in the foreground. It tracks window focus, serves the
IPC socket and, on X11, binds the configured hotkeys.

SIGUSR1 starts a switching session; SIGINT and SIGTERM shut down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.effectiveConfig()
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), cfg)
		},
	}
}

func runDaemon(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := newLogger(os.Stderr, cfg.SlogLevel())

	pidPath, err := runtimepath.PidfilePath()
	if err != nil {
		return err
	}
	pf, err := pidfile.Acquire(pidPath)
	if err != nil {
		return fmt.Errorf("mrutab daemon %w", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Warn("failed to remove pidfile", "path", pidPath, "error", err)
		}
	}()

	backend, err := selectBackend(cfg, os.Getenv)
	if err != nil {
		return err
	}
	client, err := openCompositor(backend, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()
	logger.Info("connected to compositor", "backend", backend, "mode", cfg.Mode)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	queue := make(chan ipc.Request, requestQueue)

	sinks := []ui.Sink{ui.NewLogSink(logger)}
	if len(cfg.OverlayCommand) > 0 {
		overlay, err := ui.NewProcessSink(cfg.OverlayCommand, logger)
		if err != nil {
			return err
		}
		defer overlay.Close()
		sinks = append(sinks, overlay)
	}
	dispatcher := ui.NewDispatcher(logger, sinks...)
	// Stopped with Close once the daemon has issued its final hide.
	go dispatcher.Run(context.WithoutCancel(ctx))

	socketPath, err := resolveSocketPath(cfg)
	if err != nil {
		return err
	}
	server := ipc.NewServer(socketPath, queue, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	submit := hotkeys.QueueSubmitter(ctx, queue)
	if backend == config.BackendX11 && cfg.Hotkeys.Any() {
		if err := startHotkeys(ctx, cfg, submit, logger); err != nil {
			logger.Warn("hotkeys disabled", "error", err)
		}
	} else if cfg.Hotkeys.Any() {
		logger.Warn("hotkeys are only bound by the x11 backend; bind `mrutab next` etc. in the compositor config instead")
	}

	go handleSignals(ctx, cancel, submit, logger)

	d := daemon.New(daemon.Config{
		Mode:            cfg.Mode,
		RefreshInterval: cfg.RefreshInterval,
		Logger:          logger,
	}, client, dispatcher)

	logger.Info("mrutab daemon started", "socket", socketPath)
	runErr := d.Run(ctx, queue)

	cancel()
	server.Stop()
	dispatcher.Close()
	select {
	case <-dispatcher.Done():
	case <-time.After(drainTimeout):
		logger.Warn("timed out delivering UI directives")
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("mrutab daemon stopped")
	return nil
}

func startHotkeys(ctx context.Context, cfg *config.Config, submit hotkeys.Submitter, logger *slog.Logger) error {
	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		return err
	}
	handler := hotkeys.NewHandler(conn, submit, logger)
	err = handler.Register(map[ipc.Command]string{
		ipc.CommandNext:   cfg.Hotkeys.Next,
		ipc.CommandPrev:   cfg.Hotkeys.Prev,
		ipc.CommandSelect: cfg.Hotkeys.Select,
		ipc.CommandCancel: cfg.Hotkeys.Cancel,
	})
	if err != nil {
		conn.Close()
		return err
	}
	go func() {
		handler.Run(ctx)
		conn.Close()
	}()
	return nil
}

// handleSignals maps SIGUSR1 to show and SIGINT/SIGTERM to shutdown.
func handleSignals(ctx context.Context, cancel context.CancelFunc, submit hotkeys.Submitter, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGUSR1:
				logger.Debug("received SIGUSR1")
				submit(ipc.CommandShow)
			default:
				logger.Info("shutting down mrutab daemon", "signal", sig.String())
				cancel()
				return
			}
		}
	}
}
