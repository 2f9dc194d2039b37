package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Designed to be invoked by MCP clients.
The tools talk to a running mrutab daemon over its socket.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.socketPath(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			level := slogLevel(opts.verbose)
			// stdout carries the protocol; logs go to stderr.
			logger := newLogger(os.Stderr, level)

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mcp.NewServer(ipc.NewClient(path), logger)
			logger.Debug("mcp server starting", "socket", path)
			return server.Run(ctx)
		},
	})
	return cmd
}
