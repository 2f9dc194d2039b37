// Package mcp exposes the switcher to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/windows"
)

const (
	ServerName    = "mrutab"
	ServerVersion = "0.1.0"
)

// Switcher is the daemon surface the tools call. *ipc.Client satisfies it.
type Switcher interface {
	Do(cmd ipc.Command) error
	Status() (*ipc.StatusData, error)
	List() ([]windows.Window, error)
}

// Server is the MCP server for the mrutab daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	switcher  Switcher
	logger    *slog.Logger
}

// NewServer creates a server whose tools forward to switcher.
func NewServer(switcher Switcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		switcher: switcher,
		logger:   logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switcher_status",
		Description: "Report whether a window-switching session is active, how many windows it offers, and which one is selected.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List windows in most-recently-used order, filtered by the daemon's workspace mode. The first entry is the focused window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switcher_command",
		Description: "Drive the switcher: show or next starts a session (or advances it), prev moves backwards, select focuses the highlighted window, cancel abandons the session.",
	}, s.handleCommand)
}
