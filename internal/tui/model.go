package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/mrutab/internal/ipc"
	"github.com/1broseidon/mrutab/internal/windows"
)

const pollInterval = 500 * time.Millisecond

// snapshotMsg carries a fresh daemon state.
type snapshotMsg struct {
	status *ipc.StatusData
	list   []windows.Window
	err    error
}

// commandDoneMsg reports the outcome of a switcher command.
type commandDoneMsg struct {
	cmd ipc.Command
	err error
}

type tickMsg time.Time

type model struct {
	switcher Switcher
	keys     keyMap
	help     help.Model

	connected bool
	status    ipc.StatusData
	windows   []windows.Window
	lastError string

	width  int
	height int
}

func newModel(sw Switcher) model {
	return model{
		switcher: sw,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
}

func (m model) fetch() tea.Cmd {
	sw := m.switcher
	return func() tea.Msg {
		st, err := sw.Status()
		if err != nil {
			return snapshotMsg{err: err}
		}
		list, err := sw.List()
		if err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{status: st, list: list}
	}
}

func (m model) send(cmd ipc.Command) tea.Cmd {
	sw := m.switcher
	return func() tea.Msg {
		return commandDoneMsg{cmd: cmd, err: sw.Do(cmd)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m, m.send(ipc.CommandNext)
		case key.Matches(msg, m.keys.Prev):
			return m, m.send(ipc.CommandPrev)
		case key.Matches(msg, m.keys.Select):
			return m, m.send(ipc.CommandSelect)
		case key.Matches(msg, m.keys.Cancel):
			return m, m.send(ipc.CommandCancel)
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetch()
		}
		return m, nil

	case commandDoneMsg:
		if msg.err != nil {
			m.lastError = string(msg.cmd) + ": " + msg.err.Error()
		} else {
			m.lastError = ""
		}
		return m, m.fetch()

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.lastError = msg.err.Error()
			return m, nil
		}
		if !m.connected {
			m.lastError = ""
		}
		m.connected = true
		m.status = *msg.status
		m.windows = msg.list
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), tick())
	}

	return m, nil
}

// selected returns the highlighted row, or -1 when no session is active.
func (m model) selected() int {
	if !m.status.Switching || m.status.CurrentIndex == nil {
		return -1
	}
	return *m.status.CurrentIndex
}
