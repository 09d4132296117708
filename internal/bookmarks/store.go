// Package bookmarks persists the cards each visitor has saved.
package bookmarks

import (
	"context"
	"slices"
	"sync"

	"github.com/benvon/card-collection/internal/models"
)

// Store persists bookmarked card ids per visitor
type Store interface {
	List(ctx context.Context, visitorID string) ([]string, error)
	Add(ctx context.Context, visitorID, cardID string) error
	Remove(ctx context.Context, visitorID, cardID string) error
}

func validate(visitorID, cardID string) error {
	if visitorID == "" {
		return models.NewConfigurationError("visitor id", "", "must not be empty")
	}
	if cardID == "" {
		return models.NewConfigurationError("card id", "", "must not be empty")
	}
	return nil
}

// MemoryStore keeps bookmarks in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	visitors map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{visitors: make(map[string]map[string]struct{})}
}

var _ Store = (*MemoryStore)(nil)

// List returns the visitor's bookmarked ids, sorted
func (s *MemoryStore) List(ctx context.Context, visitorID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.visitors[visitorID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Add bookmarks a card; adding twice is a no-op
func (s *MemoryStore) Add(ctx context.Context, visitorID, cardID string) error {
	if err := validate(visitorID, cardID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.visitors[visitorID]
	if !ok {
		set = make(map[string]struct{})
		s.visitors[visitorID] = set
	}
	set[cardID] = struct{}{}
	return nil
}

// Remove drops a bookmark; removing a missing one is a no-op
func (s *MemoryStore) Remove(ctx context.Context, visitorID, cardID string) error {
	if err := validate(visitorID, cardID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.visitors[visitorID]
	delete(set, cardID)
	if len(set) == 0 {
		delete(s.visitors, visitorID)
	}
	return nil
}
