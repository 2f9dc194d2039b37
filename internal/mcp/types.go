package mcp

import "github.com/1broseidon/mrutab/internal/windows"

// StatusInput is the input for the switcher_status tool.
type StatusInput struct{}

// StatusOutput is the output for the switcher_status tool.
type StatusOutput struct {
	Switching    bool `json:"switching"`
	WindowCount  int  `json:"window_count"`
	CurrentIndex *int `json:"current_index,omitempty"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of windows to return (default: all)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []windows.Window `json:"windows"`
	Total   int              `json:"total"`
}

// CommandInput is the input for the switcher_command tool.
type CommandInput struct {
	Command string `json:"command" jsonschema:"One of: show, next, prev, select, cancel"`
}

// CommandOutput is the output for the switcher_command tool.
type CommandOutput struct {
	Command string       `json:"command"`
	Status  StatusOutput `json:"status"`
}
