package queue

import (
	"context"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/benvon/card-collection/internal/models"
)

func sampleEvent(nextMs *int64) *models.TransitionEvent {
	event := models.NewTransitionEvent("summit", time.Date(2024, 3, 26, 16, 0, 0, 0, time.UTC))
	event.LiveCardIDs = []string{"keynote"}
	event.UpcomingCardIDs = []string{"workshop"}
	event.NextTransitionMs = nextMs
	return event
}

func TestEncodeDecodeEvent(t *testing.T) {
	t.Parallel()

	ms := int64(5400000)
	event := sampleEvent(&ms)

	body, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	got, err := DecodeEvent(body)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if got.ID != event.ID {
		t.Errorf("Expected id %s, got %s", event.ID, got.ID)
	}
	if !slices.Equal(got.LiveCardIDs, []string{"keynote"}) {
		t.Errorf("Unexpected live ids %v", got.LiveCardIDs)
	}
	if got.NextTransitionMs == nil || *got.NextTransitionMs != ms {
		t.Errorf("Expected next transition %d, got %v", ms, got.NextTransitionMs)
	}
}

func TestDecodeEvent_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing collection", `{"id":"7f1d6a4e-2f5e-4b8a-9a57-0c1f7a3c8d11"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeEvent([]byte(tt.body)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := EncodeEvent(nil); err == nil {
		t.Error("Expected error encoding nil event")
	}
}

func TestExpiration(t *testing.T) {
	t.Parallel()

	ms := int64(1500)
	zero := int64(0)
	tests := []struct {
		name   string
		nextMs *int64
		want   string
	}{
		{"no next transition", nil, ""},
		{"zero", &zero, ""},
		{"positive", &ms, "1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := expiration(sampleEvent(tt.nextMs)); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMemoryPublisher(t *testing.T) {
	t.Parallel()

	p := NewMemoryPublisher()
	ctx := context.Background()

	if err := p.Publish(ctx, sampleEvent(nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	select {
	case <-p.Published():
	default:
		t.Error("Expected a publish notification")
	}
	if got := len(p.Events()); got != 1 {
		t.Errorf("Expected 1 event, got %d", got)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Publish(ctx, sampleEvent(nil)); err == nil {
		t.Error("Expected error publishing after close")
	}
}

func TestRabbitMQPublisher_RoundTrip(t *testing.T) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set - skipping RabbitMQ integration test")
	}

	p, err := NewRabbitMQPublisher(url)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = p.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	events, _, err := p.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	sent := sampleEvent(nil)
	if err := p.Publish(ctx, sent); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-events:
		if got == nil || got.ID != sent.ID {
			t.Errorf("Expected event %s, got %+v", sent.ID, got)
		}
	case <-ctx.Done():
		t.Fatal("Timed out waiting for event")
	}
}
