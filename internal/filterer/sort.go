package filterer

import (
	"slices"
	"time"

	"github.com/benvon/card-collection/internal/dates"
	"github.com/benvon/card-collection/internal/eventtiming"
	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
)

// SortCards orders the cards. Every ordering is stable.
//
// SortFeatured is a stable partition rather than a comparison sort: featured cards
// move to the front in their original relative order and are returned as copies
// with IsFeatured set; the rest follow in their original relative order.
// Date orderings put cards with a missing or unparseable date last.
func (f *CardFilterer) SortCards(option models.SortOption) (*CardFilterer, error) {
	if err := validation.ValidateSortOption(option); err != nil {
		return nil, err
	}

	var result *CardFilterer
	switch option {
	case models.SortDefault:
		result = f.derive(slices.Clone(f.cards))
	case models.SortFeatured:
		result = f.derive(f.partitionFeatured())
	case models.SortTitleAsc:
		result = f.derive(f.sortByTitle(false))
	case models.SortTitleDesc:
		result = f.derive(f.sortByTitle(true))
	case models.SortDateNewest:
		result = f.sortByDate("start_date", func(c *models.Card) string { return c.StartDate }, true)
	case models.SortDateOldest:
		result = f.sortByDate("start_date", func(c *models.Card) string { return c.StartDate }, false)
	case models.SortModifiedNewest:
		result = f.sortByDate("modified_date", func(c *models.Card) string { return c.ModifiedDate }, true)
	case models.SortModifiedOldest:
		result = f.sortByDate("modified_date", func(c *models.Card) string { return c.ModifiedDate }, false)
	case models.SortEvent:
		result = f.sortByEvent()
	}

	f.logger.Debug("cards_sorted",
		zap.String("sort", string(option)),
		zap.Int("cards", len(result.cards)),
	)
	return result, nil
}

func (f *CardFilterer) partitionFeatured() []*models.Card {
	featured := make([]*models.Card, 0, len(f.featured))
	rest := make([]*models.Card, 0, len(f.cards))
	for _, c := range f.cards {
		if f.IsFeatured(c) {
			clone := c.Clone()
			clone.IsFeatured = true
			featured = append(featured, clone)
			continue
		}
		rest = append(rest, c)
	}
	return append(featured, rest...)
}

func (f *CardFilterer) sortByTitle(descending bool) []*models.Card {
	// Collators keep internal buffers, so each sort gets its own
	col := collate.New(f.lang, collate.IgnoreCase)
	sorted := slices.Clone(f.cards)
	slices.SortStableFunc(sorted, func(a, b *models.Card) int {
		cmp := col.CompareString(a.Title, b.Title)
		if descending {
			return -cmp
		}
		return cmp
	})
	return sorted
}

func (f *CardFilterer) sortByDate(field string, value func(*models.Card) string, newestFirst bool) *CardFilterer {
	type dated struct {
		card *models.Card
		at   time.Time
	}

	withDate := make([]dated, 0, len(f.cards))
	var undated []*models.Card
	var errs []error
	for _, c := range f.cards {
		at, ok, err := dates.ParseOptional(value(c))
		if err != nil {
			errs = append(errs, f.recordDataError(c, field, err))
		}
		if !ok {
			undated = append(undated, c)
			continue
		}
		withDate = append(withDate, dated{card: c, at: at})
	}

	slices.SortStableFunc(withDate, func(a, b dated) int {
		if newestFirst {
			return b.at.Compare(a.at)
		}
		return a.at.Compare(b.at)
	})

	sorted := make([]*models.Card, 0, len(f.cards))
	for _, d := range withDate {
		sorted = append(sorted, d.card)
	}
	sorted = append(sorted, undated...)
	return f.derive(sorted, errs...)
}

// sortByEvent orders live sessions first, then upcoming by start, then past.
// Cards that are not sessions, or whose session dates are invalid, come last.
func (f *CardFilterer) sortByEvent() *CardFilterer {
	var sessions, others []*models.Card
	for _, c := range f.cards {
		if c.StartDate != "" && c.EndDate != "" {
			sessions = append(sessions, c)
			continue
		}
		others = append(others, c)
	}

	scheduler := eventtiming.NewScheduler(
		eventtiming.WithClock(f.clock),
		eventtiming.WithLogger(f.logger),
	)
	timing := scheduler.Compute(sessions)

	sorted := timing.EventOrder()
	classified := make(map[*models.Card]struct{}, len(sorted))
	for _, c := range sorted {
		classified[c] = struct{}{}
	}
	for _, c := range sessions {
		if _, ok := classified[c]; !ok {
			sorted = append(sorted, c)
		}
	}
	sorted = append(sorted, others...)
	return f.derive(sorted, timing.DataErrors...)
}
