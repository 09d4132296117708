package queue

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/benvon/card-collection/internal/models"
)

// EncodeEvent serializes an event for the wire
func EncodeEvent(event *models.TransitionEvent) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("event is nil")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}

// DecodeEvent parses an event from the wire
func DecodeEvent(body []byte) (*models.TransitionEvent, error) {
	var event models.TransitionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.CollectionID == "" {
		return nil, fmt.Errorf("event %s has no collection id", event.ID)
	}
	return &event, nil
}

// expiration is the AMQP per-message TTL: an event is stale once its next transition passes
func expiration(event *models.TransitionEvent) string {
	if event.NextTransitionMs == nil || *event.NextTransitionMs <= 0 {
		return ""
	}
	return strconv.FormatInt(*event.NextTransitionMs, 10)
}
