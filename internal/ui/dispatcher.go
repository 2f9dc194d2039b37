package ui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/1broseidon/mrutab/internal/windows"
)

// Dispatcher queues directives without blocking the caller and delivers
// them to every sink from a single goroutine.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger

	mu      sync.Mutex
	pending []Directive
	closed  bool
	notify  chan struct{}
	done    chan struct{}
}

// NewDispatcher creates a dispatcher for sinks. Call Run to start delivery.
func NewDispatcher(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sinks:  sinks,
		logger: logger,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Show queues a show directive.
func (d *Dispatcher) Show(list []windows.Window, selected int) {
	cp := make([]windows.Window, len(list))
	copy(cp, list)
	d.enqueue(Directive{Kind: KindShow, Windows: cp, Index: selected})
}

// UpdateSelection queues a selection change.
func (d *Dispatcher) UpdateSelection(index int) {
	d.enqueue(Directive{Kind: KindUpdate, Index: index})
}

// Hide queues a hide directive.
func (d *Dispatcher) Hide() {
	d.enqueue(Directive{Kind: KindHide})
}

func (d *Dispatcher) enqueue(dir Directive) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.pending = append(d.pending, dir)
	d.mu.Unlock()

	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Run delivers queued directives until ctx is done or Close is called.
// Directives queued before the stop are still delivered.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			d.Close()
			d.flush()
			return
		case <-d.notify:
			d.flush()
			d.mu.Lock()
			closed := d.closed
			d.mu.Unlock()
			if closed {
				d.flush()
				return
			}
		}
	}
}

// Close stops accepting directives. Run returns after delivering what was queued.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Done is closed when Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) flush() {
	for {
		d.mu.Lock()
		batch := d.pending
		d.pending = nil
		d.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, dir := range batch {
			for _, sink := range d.sinks {
				if err := sink.Handle(dir); err != nil {
					d.logger.Warn("ui sink failed", "directive", dir.Kind, "error", err)
				}
			}
		}
	}
}
