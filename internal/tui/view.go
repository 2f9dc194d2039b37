package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/mrutab/internal/windows"
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62"))

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	workspaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// View implements tea.Model.
func (m model) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	sections := []string{
		renderStatusBar(m.connected, m.status.Switching, len(m.windows), width),
		"",
		renderWindowList(m.windows, m.selected(), width),
	}
	if m.lastError != "" {
		sections = append(sections, "", errorStyle.Render(m.lastError))
	}
	sections = append(sections, "", m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderStatusBar(connected, switching bool, count int, width int) string {
	var status string
	if connected {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		state := "idle"
		if switching {
			state = "switching"
		}
		status = fmt.Sprintf("%s daemon connected  %s  windows:%d", dot, state, count)
	} else {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		status = dot + " daemon not running"
	}
	return statusBarStyle.Width(width).Render(status)
}

func renderWindowList(list []windows.Window, selected int, width int) string {
	if len(list) == 0 {
		return emptyStyle.Render("no windows")
	}
	rows := make([]string, len(list))
	for i, w := range list {
		line := fmt.Sprintf(" %-16s %s ", truncate(w.Label(), 16), w.Title)
		line = truncate(line, width-8)
		ws := workspaceStyle.Render(" [" + w.Workspace + "]")
		if i == selected {
			rows[i] = selectedRowStyle.Render(line) + ws
		} else {
			rows[i] = rowStyle.Render(line) + ws
		}
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
