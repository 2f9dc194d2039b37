// Package tui is a terminal remote control for a running mrutab daemon.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/windows"
)

// Switcher is the daemon surface the TUI drives. *ipc.Client satisfies it.
type Switcher interface {
	Do(cmd ipc.Command) error
	Status() (*ipc.StatusData, error)
	List() ([]windows.Window, error)
}

// Run opens the full-screen remote control and blocks until the user quits.
func Run(sw Switcher) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(sw), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
