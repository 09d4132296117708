package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is where a time-bounded card sits relative to the current moment
type SessionState string

const (
	SessionUpcoming SessionState = "upcoming"
	SessionLive     SessionState = "live"
	SessionPast     SessionState = "past"
)

// TransitionEvent records a recomputation of a collection's visible sessions
type TransitionEvent struct {
	ID               uuid.UUID  `json:"id"`
	CollectionID     string     `json:"collection_id"`
	LiveCardIDs      []string   `json:"live_card_ids"`
	UpcomingCardIDs  []string   `json:"upcoming_card_ids"`
	NextTransitionMs *int64     `json:"next_transition_ms,omitempty"` // nil when nothing is left to schedule
	NextTransitionAt *time.Time `json:"next_transition_at,omitempty"`
	OccurredAt       time.Time  `json:"occurred_at"`
}

// NewTransitionEvent creates a new transition event stamped at now
func NewTransitionEvent(collectionID string, now time.Time) *TransitionEvent {
	return &TransitionEvent{
		ID:              uuid.New(),
		CollectionID:    collectionID,
		LiveCardIDs:     []string{},
		UpcomingCardIDs: []string{},
		OccurredAt:      now,
	}
}
