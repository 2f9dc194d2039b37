package ui

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/mrutab/internal/windows"
)

// LogSink writes the switcher state to the debug log on every change.
type LogSink struct {
	logger  *slog.Logger
	windows []windows.Window
}

// NewLogSink creates a sink logging through logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Handle logs the candidate list with a marker on the selected row.
func (s *LogSink) Handle(d Directive) error {
	switch d.Kind {
	case KindShow:
		s.windows = d.Windows
		s.dump(d.Index)
	case KindUpdate:
		s.dump(d.Index)
	case KindHide:
		s.windows = nil
		s.logger.Debug("switcher hidden")
	}
	return nil
}

func (s *LogSink) dump(selected int) {
	s.logger.Debug("=== window switcher ===")
	for _, line := range FormatRows(s.windows, selected) {
		s.logger.Debug(line)
	}
	s.logger.Debug("=======================")
}

// FormatRows renders one line per window, marking the selected row with ">>>".
func FormatRows(list []windows.Window, selected int) []string {
	rows := make([]string, len(list))
	for i, w := range list {
		marker := "   "
		if i == selected {
			marker = ">>>"
		}
		rows[i] = fmt.Sprintf("%s [%d] %s - %s", marker, w.ID, w.Label(), w.Title)
	}
	return rows
}
