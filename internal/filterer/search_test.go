package filterer

import (
	"slices"
	"testing"

	"github.com/benvon/card-collection/internal/models"
)

func searchCatalog() []*models.Card {
	return []*models.Card{
		{ID: "1", Title: "title name"},
		{ID: "2", Description: "description"},
		{ID: "3", Title: "some string"},
	}
}

func TestSearchCards_HighlightsMatch(t *testing.T) {
	t.Parallel()

	cards := searchCatalog()
	got, err := mustNew(t, cards).SearchCards("name", []string{"title"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result := got.FilteredCards()
	if len(result) != 1 || result[0].ID != "1" {
		t.Fatalf("Expected only card 1, got %v", models.CardIDs(result))
	}

	highlight, ok := result[0].Highlights["title"]
	if !ok {
		t.Fatal("Expected title highlight")
	}
	want := models.HighlightedText{{Text: "title "}, {Text: "name", Match: true}}
	if !slices.Equal(highlight, want) {
		t.Errorf("Expected %+v, got %+v", want, highlight)
	}
	if highlight.String() != "title name" {
		t.Errorf("Highlight must preserve text, got %q", highlight.String())
	}
	if cards[0].Highlights != nil {
		t.Error("Input card must not be annotated")
	}
}

func TestSearchCards_ShortQueryMatchesNothing(t *testing.T) {
	t.Parallel()

	for _, query := range []string{"12", "", "na", "  n  ", "é!"} {
		got, err := mustNew(t, searchCatalog()).SearchCards(query, []string{"title", "description"})
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", query, err)
		}
		if got.Len() != 0 {
			t.Errorf("Query %q: expected no cards, got %v", query, ids(got))
		}
	}
}

func TestSearchCards_CaseInsensitiveAcrossFields(t *testing.T) {
	t.Parallel()

	cards := []*models.Card{
		{ID: "1", Title: "Live Keynote", Description: "The keynote opens the day"},
		{ID: "2", Title: "Workshop", Description: "hands-on"},
		{ID: "3", Title: "Recap", Fields: map[string]string{"detailText": "KEYNOTE replay"}},
	}

	got, err := mustNew(t, cards).SearchCards("keyNote", []string{"title", "description", "detailText"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !slices.Equal(ids(got), []string{"1", "3"}) {
		t.Fatalf("Unexpected matches %v", ids(got))
	}

	first := got.FilteredCards()[0]
	if m := first.Highlights["title"].Matches(); !slices.Equal(m, []string{"Keynote"}) {
		t.Errorf("Expected original casing in title match, got %v", m)
	}
	if m := first.Highlights["description"].Matches(); !slices.Equal(m, []string{"keynote"}) {
		t.Errorf("Unexpected description match %v", m)
	}
	if _, ok := first.Highlights["detailText"]; ok {
		t.Error("Unmatched field must not be highlighted")
	}

	third := got.FilteredCards()[1]
	if m := third.Highlights["detailText"].Matches(); !slices.Equal(m, []string{"KEYNOTE"}) {
		t.Errorf("Unexpected detailText match %v", m)
	}
}

func TestSearchCards_MultipleOccurrences(t *testing.T) {
	t.Parallel()

	cards := []*models.Card{{ID: "1", Title: "data about data"}}
	got, err := mustNew(t, cards).SearchCards("data", []string{"title"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := models.HighlightedText{
		{Text: "data", Match: true},
		{Text: " about "},
		{Text: "data", Match: true},
	}
	if h := got.FilteredCards()[0].Highlights["title"]; !slices.Equal(h, want) {
		t.Errorf("Expected %+v, got %+v", want, h)
	}
}

func TestSearchCards_OnlyListedFields(t *testing.T) {
	t.Parallel()

	got, err := mustNew(t, searchCatalog()).SearchCards("description", []string{"title"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Expected no matches outside the listed fields, got %v", ids(got))
	}
}

func TestSearchCards_NoFields(t *testing.T) {
	t.Parallel()

	_, err := mustNew(t, searchCatalog()).SearchCards("name", []string{" ", ""})
	if !models.IsConfigurationError(err) {
		t.Errorf("Expected ConfigurationError, got %v", err)
	}
}

func TestSearchCards_MatchesCollationEquivalents(t *testing.T) {
	t.Parallel()

	cards := []*models.Card{
		{ID: "fullwidth", Title: "ＮＡＭＥ badge"},
		{ID: "other", Title: "nomination"},
	}
	got, err := mustNew(t, cards).SearchCards("name", []string{"title"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result := got.FilteredCards()
	if len(result) != 1 || result[0].ID != "fullwidth" {
		t.Fatalf("Expected only the fullwidth card, got %v", models.CardIDs(result))
	}
	want := models.HighlightedText{{Text: "ＮＡＭＥ", Match: true}, {Text: " badge"}}
	if highlight := result[0].Highlights["title"]; !slices.Equal(highlight, want) {
		t.Errorf("Expected %+v, got %+v", want, highlight)
	}
}
