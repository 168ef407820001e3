package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TickFunc advances the simulation by dt.
type TickFunc func(dt time.Duration) error

// Ticker is a Service that calls a TickFunc at a fixed interval with the
// measured wall-clock time since the previous call.
//
// Invariant: fn is never called concurrently with itself.
type Ticker struct {
	interval time.Duration
	fn       TickFunc
	now      func() time.Time
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewTicker returns a Ticker firing every interval.
//
// Precondition: interval must be > 0; fn and logger must be non-nil.
func NewTicker(interval time.Duration, fn TickFunc, logger *zap.Logger) *Ticker {
	if interval <= 0 {
		panic("server.NewTicker: interval must be > 0")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Ticker{
		interval: interval,
		fn:       fn,
		now:      time.Now,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the tick loop until Stop is called or fn fails.
//
// Postcondition: Returns fn's error, or nil after Stop.
func (t *Ticker) Start() error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	last := t.now()
	var ticks uint64
	for {
		select {
		case <-t.ctx.Done():
			t.logger.Info("ticker stopped", zap.Uint64("ticks", ticks))
			return nil
		case <-ticker.C:
			now := t.now()
			dt := now.Sub(last)
			last = now
			if err := t.fn(dt); err != nil {
				return err
			}
			ticks++
		}
	}
}

// Stop ends the tick loop. It is safe to call more than once.
func (t *Ticker) Stop() {
	t.cancel()
}
