package queue

import (
	"context"

	"github.com/benvon/card-collection/internal/models"
)

// Publisher broadcasts session transition events
type Publisher interface {
	// Publish sends one event to every subscriber
	Publish(ctx context.Context, event *models.TransitionEvent) error

	// Close closes the publisher connection
	Close() error
}

// Subscriber receives session transition events
type Subscriber interface {
	// Subscribe returns a channel of events that is closed when ctx is cancelled
	// or the connection is lost; the error channel reports delivery problems
	Subscribe(ctx context.Context) (<-chan *models.TransitionEvent, <-chan error, error)
}
