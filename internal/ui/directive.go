// Package ui turns switcher state changes into directives for an overlay.
package ui

import "github.com/1broseidon/mrutab/internal/windows"

// Kind names a directive.
type Kind string

const (
	KindShow   Kind = "show"
	KindUpdate Kind = "update_selection"
	KindHide   Kind = "hide"
)

// Directive is one instruction for the overlay. Show carries the full
// candidate list; update carries only the new index.
type Directive struct {
	Kind    Kind             `json:"type"`
	Windows []windows.Window `json:"windows,omitempty"`
	Index   int              `json:"index"`
}

// Sink consumes directives in order.
type Sink interface {
	Handle(d Directive) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d Directive) error

// Handle calls f(d).
func (f SinkFunc) Handle(d Directive) error { return f(d) }
