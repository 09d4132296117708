// Package refresh owns the timer that re-runs the event timing scheduler each
// time a session starts or ends.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/card-collection/internal/eventtiming"
	"github.com/benvon/card-collection/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultRetryDelay is how long to wait before retrying a failed session load
	DefaultRetryDelay = 30 * time.Second
)

// Source loads the sessions to schedule. It is called before every computation
// so authored changes are picked up.
type Source func(ctx context.Context) ([]*models.Card, error)

// Handler receives every computed timing. It runs on the Refresher's goroutine
// and is never called after Run returns.
type Handler func(ctx context.Context, timing *eventtiming.Timing) error

// Refresher computes session timings and re-arms a single-shot timer for the
// next transition
type Refresher struct {
	name        string
	scheduler   *eventtiming.Scheduler
	source      Source
	handler     Handler
	logger      *zap.Logger
	retryDelay  time.Duration
	maxInterval time.Duration
}

// Option configures a Refresher
type Option func(*Refresher)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Refresher) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetryDelay sets the wait after a failed load
func WithRetryDelay(d time.Duration) Option {
	return func(r *Refresher) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

// WithMaxInterval bounds the wait between computations so that newly authored
// sessions are noticed even when no transition is pending. Zero means the
// Refresher idles once no future transition remains.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Refresher) {
		r.maxInterval = d
	}
}

// New creates a Refresher. name identifies it in logs.
func New(name string, scheduler *eventtiming.Scheduler, source Source, handler Handler, opts ...Option) *Refresher {
	r := &Refresher{
		name:       name,
		scheduler:  scheduler,
		source:     source,
		handler:    handler,
		logger:     zap.NewNop(),
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run computes, hands the timing to the handler, and waits for the next
// transition, until ctx is cancelled. The pending timer is stopped before Run
// returns.
func (r *Refresher) Run(ctx context.Context) error {
	for {
		wait, armed := r.tick(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if !armed {
			r.logger.Info("session_refresher_idle", zap.String("refresher", r.name))
			<-ctx.Done()
			return ctx.Err()
		}

		r.logger.Debug("session_refresher_armed",
			zap.String("refresher", r.name),
			zap.Duration("wait", wait),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tick runs one computation and returns how long to wait before the next
func (r *Refresher) tick(ctx context.Context) (time.Duration, bool) {
	timing, err := r.compute(ctx)
	if err != nil {
		// A deadline from inside the source is retried; only our own ctx stops us
		if ctx.Err() != nil {
			return 0, false
		}
		r.logger.Warn("session_refresh_failed",
			zap.String("refresher", r.name),
			zap.Error(err),
			zap.Duration("retry_delay", r.retryDelay),
		)
		return r.retryDelay, true
	}

	switch {
	case timing.HasNextTransition && (r.maxInterval <= 0 || timing.NextTransition < r.maxInterval):
		return timing.NextTransition, true
	case r.maxInterval > 0:
		return r.maxInterval, true
	default:
		return 0, false
	}
}

func (r *Refresher) compute(ctx context.Context) (*eventtiming.Timing, error) {
	sessions, err := r.source(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	timing := r.scheduler.Compute(sessions)
	if err := r.handler(ctx, timing); err != nil {
		return nil, fmt.Errorf("timing handler: %w", err)
	}
	return timing, nil
}
