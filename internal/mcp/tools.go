package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/windows"
)

// sessionCommands are the commands switcher_command accepts. status, list
// and shutdown have their own tools or are not exposed.
var sessionCommands = []ipc.Command{
	ipc.CommandShow,
	ipc.CommandNext,
	ipc.CommandPrev,
	ipc.CommandSelect,
	ipc.CommandCancel,
}

func parseSessionCommand(raw string) (ipc.Command, error) {
	cmd, err := ipc.ParseCommand(raw)
	if err != nil {
		return "", fmt.Errorf("invalid command %q: must be one of %s", raw, sessionCommandNames())
	}
	for _, allowed := range sessionCommands {
		if cmd == allowed {
			return cmd, nil
		}
	}
	return "", fmt.Errorf("command %q is not available here: must be one of %s", raw, sessionCommandNames())
}

func sessionCommandNames() string {
	names := make([]string, len(sessionCommands))
	for i, c := range sessionCommands {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func toStatusOutput(st *ipc.StatusData) StatusOutput {
	if st == nil {
		return StatusOutput{}
	}
	return StatusOutput{
		Switching:    st.Switching,
		WindowCount:  st.WindowCount,
		CurrentIndex: st.CurrentIndex,
	}
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.switcher.Status()
	if err != nil {
		s.logger.Warn("switcher_status failed", "error", err)
		return nil, StatusOutput{}, err
	}
	return nil, toStatusOutput(st), nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	if args.Limit < 0 {
		return nil, ListWindowsOutput{}, fmt.Errorf("limit must be >= 0")
	}
	list, err := s.switcher.List()
	if err != nil {
		s.logger.Warn("list_windows failed", "error", err)
		return nil, ListWindowsOutput{}, err
	}
	if list == nil {
		list = []windows.Window{}
	}
	total := len(list)
	if args.Limit > 0 && args.Limit < total {
		list = list[:args.Limit]
	}
	return nil, ListWindowsOutput{Windows: list, Total: total}, nil
}

func (s *Server) handleCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args CommandInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	cmd, err := parseSessionCommand(args.Command)
	if err != nil {
		return nil, CommandOutput{}, err
	}
	if err := s.switcher.Do(cmd); err != nil {
		s.logger.Warn("switcher_command failed", "command", cmd, "error", err)
		return nil, CommandOutput{}, err
	}
	s.logger.Debug("switcher_command", "command", cmd)

	st, err := s.switcher.Status()
	if err != nil {
		return nil, CommandOutput{}, fmt.Errorf("%s succeeded but status failed: %w", cmd, err)
	}
	return nil, CommandOutput{Command: string(cmd), Status: toStatusOutput(st)}, nil
}
