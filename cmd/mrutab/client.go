package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/ui"
	"github.com/1broseidon/mrutab/internal/windows"
)

var switchCommandHelp = map[ipc.Command]string{
	ipc.CommandShow:     "Start a switching session on the previous window",
	ipc.CommandNext:     "Start a session or move to the next window",
	ipc.CommandPrev:     "Start a session or move to the previous window",
	ipc.CommandSelect:   "Focus the highlighted window and end the session",
	ipc.CommandCancel:   "Abandon the session without changing focus",
	ipc.CommandShutdown: "Stop the daemon",
}

// newSwitchCmds builds the fire-and-forget commands that only report errors.
func newSwitchCmds(opts *rootOptions) []*cobra.Command {
	order := []ipc.Command{
		ipc.CommandShow,
		ipc.CommandNext,
		ipc.CommandPrev,
		ipc.CommandSelect,
		ipc.CommandCancel,
		ipc.CommandShutdown,
	}
	cmds := make([]*cobra.Command, 0, len(order))
	for _, command := range order {
		cmds = append(cmds, &cobra.Command{
			Use:   string(command),
			Short: switchCommandHelp[command],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				client, err := newIPCClient(opts, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				return client.Do(command)
			},
		})
	}
	return cmds
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the switcher state",
		Long:  "Show the switcher state. Output is JSON when --json is given or stdout is not a terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newIPCClient(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			st, err := client.Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSONLine(out, ipc.NewStatusResponse(*st))
			}
			fmt.Fprint(out, formatStatus(st))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List windows in most-recently-used order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newIPCClient(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			list, err := client.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSONLine(out, ipc.NewWindowsResponse(list))
			}
			fmt.Fprint(out, formatList(list))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")
	return cmd
}

func newIPCClient(opts *rootOptions, stderr io.Writer) (*ipc.Client, error) {
	path, err := opts.socketPath(stderr)
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(path), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatStatus(st *ipc.StatusData) string {
	var b strings.Builder
	if st.Switching {
		fmt.Fprintf(&b, "switching:    yes\n")
	} else {
		fmt.Fprintf(&b, "switching:    no\n")
	}
	fmt.Fprintf(&b, "window_count: %d\n", st.WindowCount)
	if st.CurrentIndex != nil {
		fmt.Fprintf(&b, "current:      %d\n", *st.CurrentIndex)
	}
	return b.String()
}

func formatList(list []windows.Window) string {
	if len(list) == 0 {
		return "no windows\n"
	}
	var b strings.Builder
	for _, row := range ui.FormatRows(list, -1) {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	return b.String()
}
