package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/benvon/card-collection/internal/models"
)

// MemoryPublisher records published events in process memory
type MemoryPublisher struct {
	mu     sync.Mutex
	events []*models.TransitionEvent
	closed bool
	notify chan struct{}
}

// NewMemoryPublisher creates an empty in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{notify: make(chan struct{}, 1)}
}

var _ Publisher = (*MemoryPublisher)(nil)

// Publish records the event
func (p *MemoryPublisher) Publish(ctx context.Context, event *models.TransitionEvent) error {
	if _, err := EncodeEvent(event); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}
	p.events = append(p.events, event)
	select {
	case p.notify <- struct{}{}:
	default:
	}
	return nil
}

// Events returns a copy of everything published so far
func (p *MemoryPublisher) Events() []*models.TransitionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*models.TransitionEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Published signals after each successful Publish; signals coalesce
func (p *MemoryPublisher) Published() <-chan struct{} {
	return p.notify
}

// Close marks the publisher closed
func (p *MemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
