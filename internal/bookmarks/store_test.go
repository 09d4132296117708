package bookmarks

import (
	"context"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/benvon/card-collection/internal/models"
)

func exerciseStore(t *testing.T, store Store, visitor string) {
	t.Helper()
	ctx := context.Background()

	if err := store.Add(ctx, visitor, "b"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(ctx, visitor, "a"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(ctx, visitor, "a"); err != nil {
		t.Fatalf("Second Add failed: %v", err)
	}

	ids, err := store.List(ctx, visitor)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", ids)
	}

	if err := store.Remove(ctx, visitor, "b"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove(ctx, visitor, "missing"); err != nil {
		t.Fatalf("Remove of missing bookmark failed: %v", err)
	}
	ids, err = store.List(ctx, visitor)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !slices.Equal(ids, []string{"a"}) {
		t.Errorf("Expected [a], got %v", ids)
	}

	if err := store.Add(ctx, "", "a"); !models.IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError for empty visitor, got %v", err)
	}
	if err := store.Add(ctx, visitor, ""); !models.IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError for empty card, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	exerciseStore(t, store, "visitor-1")

	ids, err := store.List(context.Background(), "someone-else")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no bookmarks for another visitor, got %v", ids)
	}
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			_ = store.Add(ctx, "v", id)
			_, _ = store.List(ctx, "v")
		}(i)
	}
	wg.Wait()

	ids, _ := store.List(ctx, "v")
	if len(ids) != 20 {
		t.Errorf("Expected 20 bookmarks, got %d", len(ids))
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set - skipping Redis integration test")
	}

	client, err := NewRedisClient(url)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = client.Close() }()

	visitor := "test-" + t.Name()
	t.Cleanup(func() { client.Del(context.Background(), visitorKey(visitor)) })

	exerciseStore(t, NewRedisStore(client, DefaultTTL), visitor)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisClient("not-a-url"); err == nil {
		t.Error("Expected error for invalid URL")
	}
}
