// ABOUTME: Background runner that fires periodic sync passes.
// ABOUTME: Supports out-of-band triggering without breaking the rate guard.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Runner drives the engine on a fixed interval until its context ends.
type Runner struct {
	engine   *Engine
	interval time.Duration
	log      *zap.Logger
	trigger  chan struct{}
}

// NewRunner builds a Runner. A non-positive interval defaults to the
// minimum sync spacing.
func NewRunner(e *Engine, interval time.Duration, logger *zap.Logger) *Runner {
	if interval <= 0 {
		interval = MinSyncInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		engine:   e,
		interval: interval,
		log:      logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests an immediate pass. The rate guard still applies, so a
// trigger shortly after a successful pass is a no-op.
func (r *Runner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run blocks, executing one pass immediately and then one per tick or
// trigger, until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.pass(ctx)
		case <-r.trigger:
			r.pass(ctx)
		}
	}
}

func (r *Runner) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	_, err := r.engine.SyncPass(ctx, false)
	switch {
	case errors.Is(err, ErrRecentlySynced):
		r.log.Debug("sync pass skipped by rate guard")
	case errors.Is(err, context.Canceled):
	case err != nil:
		r.log.Error("sync pass failed", zap.Error(err))
	}
}
