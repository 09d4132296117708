package workers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/benvon/card-collection/internal/collection"
	"github.com/benvon/card-collection/internal/eventtiming"
	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/queue"
)

func TestEventFromTiming(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 26, 16, 30, 0, 0, time.UTC)
	sessions := []*models.Card{
		{ID: "late", StartDate: "2024-03-26T19:00:00Z", EndDate: "2024-03-26T20:00:00Z"},
		{ID: "live", StartDate: "2024-03-26T16:00:00Z", EndDate: "2024-03-26T17:00:00Z"},
		{ID: "soon", StartDate: "2024-03-26T18:00:00Z", EndDate: "2024-03-26T19:00:00Z"},
	}
	timing := eventtiming.NewScheduler().ComputeAt(sessions, now)

	event := EventFromTiming("summit", timing)

	if event.CollectionID != "summit" {
		t.Errorf("Expected collection summit, got %s", event.CollectionID)
	}
	if !slices.Equal(event.LiveCardIDs, []string{"live"}) {
		t.Errorf("Expected live [live], got %v", event.LiveCardIDs)
	}
	if !slices.Equal(event.UpcomingCardIDs, []string{"soon", "late"}) {
		t.Errorf("Expected upcoming by start [soon late], got %v", event.UpcomingCardIDs)
	}
	if event.NextTransitionMs == nil || *event.NextTransitionMs != int64(30*time.Minute/time.Millisecond) {
		t.Errorf("Expected next transition in 30m, got %v", event.NextTransitionMs)
	}
	if event.NextTransitionAt == nil || !event.NextTransitionAt.Equal(now.Add(30*time.Minute)) {
		t.Errorf("Expected next transition at 17:00, got %v", event.NextTransitionAt)
	}
	if !event.OccurredAt.Equal(now) {
		t.Errorf("Expected occurred at %v, got %v", now, event.OccurredAt)
	}
}

func TestEventFromTiming_NothingScheduled(t *testing.T) {
	t.Parallel()

	timing := eventtiming.NewScheduler().ComputeAt(nil, time.Now())
	event := EventFromTiming("empty", timing)

	if event.NextTransitionMs != nil || event.NextTransitionAt != nil {
		t.Errorf("Expected no next transition, got %v / %v", event.NextTransitionMs, event.NextTransitionAt)
	}
	if event.LiveCardIDs == nil || event.UpcomingCardIDs == nil {
		t.Error("Expected empty, non-nil id lists")
	}
}

func TestTransitionWatcher_PublishesOnTransition(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	start := time.Now().Add(80 * time.Millisecond).UTC()
	doc := fmt.Sprintf("id: summit\ncards:\n  - id: talk\n    start_date: %q\n    end_date: %q\n  - id: article\n",
		start.Format(time.RFC3339Nano), start.Add(time.Hour).Format(time.RFC3339Nano))
	if err := os.WriteFile(filepath.Join(dir, "summit.yaml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("Failed to write collection: %v", err)
	}

	publisher := queue.NewMemoryPublisher()
	watcher := NewTransitionWatcher(collection.NewFileStore(dir), publisher, eventtiming.NewScheduler(), nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx, nil) }()

	deadline := time.After(2 * time.Second)
	for len(publisher.Events()) < 2 {
		select {
		case <-publisher.Published():
		case <-deadline:
			t.Fatalf("Timed out waiting for events, got %d", len(publisher.Events()))
		}
	}

	events := publisher.Events()
	if !slices.Equal(events[0].UpcomingCardIDs, []string{"talk"}) || len(events[0].LiveCardIDs) != 0 {
		t.Errorf("Expected talk upcoming first, got %+v", events[0])
	}
	if !slices.Equal(events[1].LiveCardIDs, []string{"talk"}) {
		t.Errorf("Expected talk live after its start, got %+v", events[1])
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watcher did not stop after cancel")
	}
}

func TestTransitionWatcher_NoCollections(t *testing.T) {
	t.Parallel()

	watcher := NewTransitionWatcher(collection.NewFileStore(t.TempDir()), queue.NewMemoryPublisher(), eventtiming.NewScheduler(), nil, 0)
	if err := watcher.Run(context.Background(), nil); err == nil {
		t.Error("Expected error when there is nothing to watch")
	}
}
