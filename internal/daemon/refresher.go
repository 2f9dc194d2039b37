package daemon

import (
	"context"
	"log/slog"
	"time"
)

// RefresherConfig holds configuration for the refresher.
type RefresherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Refresher produces periodic refresh ticks for the daemon loop. Ticks are
// coalesced: a tick that finds the previous one unconsumed is dropped.
type Refresher struct {
	interval time.Duration
	ticks    chan struct{}
	logger   *slog.Logger
}

// NewRefresher creates a new refresher with the given configuration.
func NewRefresher(cfg RefresherConfig) *Refresher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Refresher{
		interval: interval,
		ticks:    make(chan struct{}, 1),
		logger:   logger,
	}
}

// C returns the tick channel.
func (r *Refresher) C() <-chan struct{} {
	return r.ticks
}

// Run starts the tick loop. Blocks until context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("refresher started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopped")
			return
		case <-ticker.C:
			r.RefreshNow()
		}
	}
}

// RefreshNow queues a tick without waiting for the interval.
func (r *Refresher) RefreshNow() {
	select {
	case r.ticks <- struct{}{}:
	default:
	}
}
