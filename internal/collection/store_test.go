package collection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/benvon/card-collection/internal/models"
)

const summitYAML = `
id: summit
title: Summit 2024
featured_card_ids: [keynote]
filter_groups:
  - key: topic
    label: Topic
    tags: [topic/ai, topic/design]
cards:
  - id: keynote
    title: Opening Keynote
    tags: [topic/ai]
    start_date: "2024-03-26T16:00:00Z"
    end_date: "2024-03-26T17:30:00Z"
  - id: workshop
    title: Design Workshop
    description: Hands-on session
    tags: [topic/design]
    fields:
      detailText: Room 2
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	c, err := Decode([]byte(summitYAML))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	if c.ID != "summit" || len(c.Cards) != 2 {
		t.Fatalf("Unexpected collection %+v", c)
	}
	if c.FilterLogic != models.FilterTypeXor {
		t.Errorf("Expected default filter logic xor, got %s", c.FilterLogic)
	}
	if c.DefaultSort != models.SortDefault {
		t.Errorf("Expected default sort, got %s", c.DefaultSort)
	}
	if !slices.Equal(c.SearchFields, []string{"title", "description"}) {
		t.Errorf("Unexpected default search fields %v", c.SearchFields)
	}
	if c.Cards[1].Fields["detailText"] != "Room 2" {
		t.Errorf("Expected extra field to be decoded, got %v", c.Cards[1].Fields)
	}
	if c.Cards[0].EndDate != "2024-03-26T17:30:00Z" {
		t.Errorf("Unexpected end date %q", c.Cards[0].EndDate)
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "id: [unterminated"},
		{"missing id", "cards: []"},
		{"unknown sort", "id: a\ndefault_sort: shuffle"},
		{"unknown logic", "id: a\nfilter_logic: nand"},
		{"card without id", "id: a\ncards:\n  - title: nameless"},
		{"duplicate group", "id: a\nfilter_groups:\n  - key: topic\n  - key: topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode([]byte(tt.doc)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "summit.yaml", summitYAML)
	writeFile(t, dir, "webinars.json", `{"id": "webinars", "cards": [{"id": "w1", "title": "Intro"}]}`)
	writeFile(t, dir, "mismatch.yml", "id: other")
	writeFile(t, dir, "notes.txt", "ignored")

	store := NewFileStore(dir)
	ctx := context.Background()

	c, err := store.Get(ctx, "summit")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if c.Title != "Summit 2024" {
		t.Errorf("Unexpected title %q", c.Title)
	}

	w, err := store.Get(ctx, "webinars")
	if err != nil {
		t.Fatalf("Get json returned error: %v", err)
	}
	if len(w.Cards) != 1 || w.Cards[0].Title != "Intro" {
		t.Errorf("Unexpected cards %+v", w.Cards)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "mismatch"); !models.IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError for mismatched id, got %v", err)
	}
	if _, err := store.Get(ctx, "../etc/passwd"); !models.IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError for path traversal, got %v", err)
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if want := []string{"mismatch", "summit", "webinars"}; !slices.Equal(ids, want) {
		t.Errorf("Expected %v, got %v", want, ids)
	}
}
