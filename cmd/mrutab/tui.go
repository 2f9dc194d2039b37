package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/mrutab/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open an interactive remote control for the daemon",
		Long: `Open a full-screen view of the MRU list. Tab/shift-tab cycle, enter selects,
esc cancels and q quits. Requires a running daemon.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newIPCClient(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return tui.Run(client)
		},
	}
}
