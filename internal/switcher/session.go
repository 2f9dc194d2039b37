// Package switcher holds the transient state of one Alt-Tab session.
package switcher

import "github.com/1broseidon/mrutab/internal/windows"

// Session is a cursor over a frozen copy of the candidate windows.
// Compositor events never change the candidates of a running session.
type Session struct {
	candidates []windows.Window
	cursor     int
	done       bool
}

// Start freezes candidates and places the cursor. With beginAtSecond the
// cursor starts on the second window, the usual target of a quick Alt-Tab.
func Start(candidates []windows.Window, beginAtSecond bool) *Session {
	frozen := make([]windows.Window, len(candidates))
	copy(frozen, candidates)

	cursor := 0
	if beginAtSecond && len(frozen) > 1 {
		cursor = 1
	}
	return &Session{candidates: frozen, cursor: cursor}
}

// Cycle moves the cursor one step, wrapping at either end, and returns the
// new index. An empty or finalized session stays at 0.
func (s *Session) Cycle(forward bool) int {
	n := len(s.candidates)
	if n == 0 || s.done {
		return 0
	}
	if forward {
		s.cursor = (s.cursor + 1) % n
	} else {
		s.cursor = (s.cursor - 1 + n) % n
	}
	return s.cursor
}

// Current returns the window under the cursor.
func (s *Session) Current() (windows.Window, bool) {
	if s.done || len(s.candidates) == 0 {
		return windows.Window{}, false
	}
	return s.candidates[s.cursor], true
}

// Finalize returns the selected window and ends the session.
func (s *Session) Finalize() (windows.Window, bool) {
	w, ok := s.Current()
	s.done = true
	return w, ok
}

// Len returns the number of candidates.
func (s *Session) Len() int {
	return len(s.candidates)
}

// Index returns the cursor position.
func (s *Session) Index() int {
	return s.cursor
}

// Candidates returns a copy of the frozen candidate list.
func (s *Session) Candidates() []windows.Window {
	out := make([]windows.Window, len(s.candidates))
	copy(out, s.candidates)
	return out
}
