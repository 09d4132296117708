package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benvon/card-collection/internal/collection"
	"github.com/benvon/card-collection/internal/eventtiming"
	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/queue"
	"github.com/benvon/card-collection/internal/refresh"
	"github.com/benvon/card-collection/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransitionWatcher keeps one Refresher per collection and publishes a
// TransitionEvent every time a collection's session timing is recomputed
type TransitionWatcher struct {
	store       collection.Store
	publisher   queue.Publisher
	scheduler   *eventtiming.Scheduler
	logger      *zap.Logger
	maxInterval time.Duration
	retryDelay  time.Duration
}

// NewTransitionWatcher creates a new transition watcher
func NewTransitionWatcher(store collection.Store, publisher queue.Publisher, scheduler *eventtiming.Scheduler, logger *zap.Logger, maxInterval time.Duration) *TransitionWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransitionWatcher{
		store:       store,
		publisher:   publisher,
		scheduler:   scheduler,
		logger:      logger,
		maxInterval: maxInterval,
		retryDelay:  refresh.DefaultRetryDelay,
	}
}

// SetRetryDelay overrides how long a refresher waits after a failed load or publish
func (w *TransitionWatcher) SetRetryDelay(d time.Duration) {
	w.retryDelay = d
}

// Run watches the given collections, or every collection in the store when ids
// is empty, until ctx is cancelled
func (w *TransitionWatcher) Run(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		listed, err := w.store.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list collections: %w", err)
		}
		ids = listed
	}
	if len(ids) == 0 {
		return fmt.Errorf("no collections to watch")
	}

	w.logger.Info("transition_watcher_starting", zap.Strings("collections", ids))

	var wg sync.WaitGroup
	for _, id := range ids {
		r := refresh.New(id, w.scheduler, w.source(id), w.handler(id),
			refresh.WithLogger(w.logger),
			refresh.WithMaxInterval(w.maxInterval),
			refresh.WithRetryDelay(w.retryDelay),
		)
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("transition_refresher_stopped_with_error",
					zap.String("collection_id", id),
					zap.Error(err),
				)
			}
		}(id)
	}
	wg.Wait()

	w.logger.Info("transition_watcher_stopped")
	return ctx.Err()
}

func (w *TransitionWatcher) source(id string) refresh.Source {
	return func(ctx context.Context) ([]*models.Card, error) {
		c, err := w.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return eventtiming.Sessions(c.Cards), nil
	}
}

func (w *TransitionWatcher) handler(id string) refresh.Handler {
	return func(ctx context.Context, timing *eventtiming.Timing) error {
		event := EventFromTiming(id, timing)
		ctx, span := telemetry.StartSpan(ctx, "transition.publish",
			attribute.String("collection.id", id),
			attribute.Int("sessions.live", len(event.LiveCardIDs)),
		)
		err := w.publisher.Publish(ctx, event)
		telemetry.EndSpan(span, err)
		if err != nil {
			return fmt.Errorf("failed to publish transition event: %w", err)
		}
		w.logger.Info("published_transition_event",
			zap.String("collection_id", id),
			zap.String("event_id", event.ID.String()),
			zap.Int("live_count", len(event.LiveCardIDs)),
			zap.Int("upcoming_count", len(event.UpcomingCardIDs)),
			zap.Int("data_error_count", len(timing.DataErrors)),
		)
		return nil
	}
}

// EventFromTiming builds the event describing one computation
func EventFromTiming(collectionID string, timing *eventtiming.Timing) *models.TransitionEvent {
	event := models.NewTransitionEvent(collectionID, timing.Now)
	event.LiveCardIDs = models.CardIDs(timing.Live)
	event.UpcomingCardIDs = models.CardIDs(timing.UpcomingByStart())
	if ms, ok := timing.NextTransitionMs(); ok {
		event.NextTransitionMs = &ms
	}
	if at, ok := timing.NextTransitionAt(); ok {
		event.NextTransitionAt = &at
	}
	return event
}
