// Package filterer implements the card filtering, sorting and search pipeline
// behind a card collection.
//
// A CardFilterer is immutable. Every operation returns a new CardFilterer holding
// the surviving cards, so calls made on the same value always start from the same
// baseline and callers chain operations in whatever order their UI needs. Input
// cards are never modified; annotated results (featured, search highlights) are
// shallow copies.
package filterer

import (
	"fmt"
	"slices"

	"github.com/benvon/card-collection/internal/dates"
	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/tagmatch"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// CardFilterer transforms an ordered card list
type CardFilterer struct {
	cards      []*models.Card
	featured   map[string]struct{}
	clock      dates.Clock
	logger     *zap.Logger
	matcher    *tagmatch.Matcher
	lang       language.Tag
	dataErrors []error
}

// Option configures a CardFilterer
type Option func(*CardFilterer)

// WithFeaturedIDs marks cards with these ids as featured
func WithFeaturedIDs(ids ...string) Option {
	return func(f *CardFilterer) {
		for _, id := range ids {
			f.featured[id] = struct{}{}
		}
	}
}

// WithClock sets the clock used for date-range and event logic
func WithClock(clock dates.Clock) Option {
	return func(f *CardFilterer) {
		f.clock = dates.OrSystem(clock)
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(f *CardFilterer) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithTagMatcher sets the matcher used to derive featured and gated cards from tags
func WithTagMatcher(m *tagmatch.Matcher) Option {
	return func(f *CardFilterer) {
		f.matcher = m
	}
}

// WithLanguage sets the language used for title collation and search case folding
func WithLanguage(tag language.Tag) Option {
	return func(f *CardFilterer) {
		f.lang = tag
	}
}

// New creates a CardFilterer over cards. A nil card is a configuration error.
func New(cards []*models.Card, opts ...Option) (*CardFilterer, error) {
	for i, c := range cards {
		if c == nil {
			return nil, models.NewConfigurationError("cards", "", fmt.Sprintf("card at index %d is nil", i))
		}
	}

	f := &CardFilterer{
		cards:    slices.Clone(cards),
		featured: make(map[string]struct{}),
		clock:    dates.SystemClock{},
		logger:   zap.NewNop(),
		lang:     language.English,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cards == nil {
		f.cards = []*models.Card{}
	}
	return f, nil
}

// FilteredCards returns the cards produced by the operations applied so far.
// The returned slice is a copy; the cards themselves are shared.
func (f *CardFilterer) FilteredCards() []*models.Card {
	return slices.Clone(f.cards)
}

// Len returns the number of cards
func (f *CardFilterer) Len() int {
	return len(f.cards)
}

// DataErrors returns the per-card date problems recorded along the chain
func (f *CardFilterer) DataErrors() []error {
	return slices.Clone(f.dataErrors)
}

// IsFeatured reports whether the card is featured by id or by tag
func (f *CardFilterer) IsFeatured(card *models.Card) bool {
	if _, ok := f.featured[card.ID]; ok {
		return true
	}
	return f.matcher.IsFeatured(card.Tags)
}

// derive returns a copy of f holding cards, with errs appended to the recorded data errors
func (f *CardFilterer) derive(cards []*models.Card, errs ...error) *CardFilterer {
	next := *f
	if cards == nil {
		cards = []*models.Card{}
	}
	next.cards = cards
	if len(errs) > 0 {
		next.dataErrors = append(slices.Clone(f.dataErrors), errs...)
	}
	return &next
}

// keep returns a new filterer with the cards satisfying pred, in order
func (f *CardFilterer) keep(pred func(*models.Card) bool) *CardFilterer {
	kept := make([]*models.Card, 0, len(f.cards))
	for _, c := range f.cards {
		if pred(c) {
			kept = append(kept, c)
		}
	}
	return f.derive(kept)
}

// recordDataError logs a per-card data problem and wraps it
func (f *CardFilterer) recordDataError(card *models.Card, field string, err error) error {
	dataErr := &models.DataError{CardID: card.ID, Field: field, Err: err}
	f.logger.Warn("card_date_invalid",
		zap.String("card_id", card.ID),
		zap.String("field", field),
		zap.Error(err),
	)
	return dataErr
}
