package filterer

import (
	"slices"

	"github.com/benvon/card-collection/internal/dates"
	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/validation"
	"go.uber.org/zap"
)

// FilterCards keeps the cards that satisfy the active filters.
//
// Only groups with a selection take part, and when activePanels is non-empty only
// groups whose key is listed there. filterType picks the combination logic among
// the names in filterTypes:
//   - Xor: every participating group must share at least one tag with the card
//   - And: the card must carry every selected tag of every participating group
//   - Or: the card must carry at least one selected tag of any participating group
//
// With no participating group every card passes in its original order.
func (f *CardFilterer) FilterCards(activeFilters models.FilterDirective, activePanels []string, filterType models.FilterType, filterTypes models.FilterTypes) (*CardFilterer, error) {
	if err := validation.ValidateFilterDirective(activeFilters); err != nil {
		return nil, err
	}
	if err := validation.ValidateFilterType(filterType, filterTypes); err != nil {
		return nil, err
	}

	groups := participatingGroups(activeFilters, activePanels)
	if len(groups) == 0 {
		return f.derive(slices.Clone(f.cards)), nil
	}

	var pred func(*models.Card) bool
	switch filterType {
	case filterTypes.Xor:
		pred = func(c *models.Card) bool {
			for _, group := range groups {
				if !c.HasAnyTag(group) {
					return false
				}
			}
			return true
		}
	case filterTypes.And:
		all := unionOf(groups)
		pred = func(c *models.Card) bool { return c.HasAllTags(all) }
	case filterTypes.Or:
		all := unionOf(groups)
		pred = func(c *models.Card) bool { return c.HasAnyTag(all) }
	}

	result := f.keep(pred)
	f.logger.Debug("cards_filtered",
		zap.String("filter_type", string(filterType)),
		zap.Int("groups", len(groups)),
		zap.Int("before", len(f.cards)),
		zap.Int("after", len(result.cards)),
	)
	return result, nil
}

func participatingGroups(activeFilters models.FilterDirective, activePanels []string) []map[string]struct{} {
	var panels map[string]struct{}
	if len(activePanels) > 0 {
		panels = make(map[string]struct{}, len(activePanels))
		for _, p := range activePanels {
			panels[p] = struct{}{}
		}
	}

	// Sorted keys keep evaluation deterministic
	keys := make([]string, 0, len(activeFilters))
	for key := range activeFilters {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var groups []map[string]struct{}
	for _, key := range keys {
		selected := activeFilters[key]
		if len(selected) == 0 {
			continue
		}
		if panels != nil {
			if _, ok := panels[key]; !ok {
				continue
			}
		}
		group := make(map[string]struct{}, len(selected))
		for _, tag := range selected {
			group[tag] = struct{}{}
		}
		groups = append(groups, group)
	}
	return groups
}

func unionOf(groups []map[string]struct{}) map[string]struct{} {
	all := make(map[string]struct{})
	for _, group := range groups {
		for tag := range group {
			all[tag] = struct{}{}
		}
	}
	return all
}

// KeepBookmarkedCardsOnly keeps only bookmarked cards when bookmarking is enabled
// (showBookmarks) and the visitor asked for bookmarks only (onlyShowBookmarks).
// Otherwise every card passes.
func (f *CardFilterer) KeepBookmarkedCardsOnly(onlyShowBookmarks bool, bookmarkedCardIDs []string, showBookmarks bool) *CardFilterer {
	if !showBookmarks || !onlyShowBookmarks {
		return f.derive(slices.Clone(f.cards))
	}
	bookmarked := make(map[string]struct{}, len(bookmarkedCardIDs))
	for _, id := range bookmarkedCardIDs {
		bookmarked[id] = struct{}{}
	}
	return f.keep(func(c *models.Card) bool {
		_, ok := bookmarked[c.ID]
		return ok
	})
}

// KeepCardsWithinDateRange removes cards whose end date is strictly before now.
// Cards without an end date pass. Cards with an unparseable end date also pass,
// and the problem is recorded as a data error.
func (f *CardFilterer) KeepCardsWithinDateRange() *CardFilterer {
	now := f.clock.Now()
	kept := make([]*models.Card, 0, len(f.cards))
	var errs []error
	for _, c := range f.cards {
		end, ok, err := dates.ParseOptional(c.EndDate)
		if err != nil {
			errs = append(errs, f.recordDataError(c, "end_date", err))
			kept = append(kept, c)
			continue
		}
		if ok && end.Before(now) {
			continue
		}
		kept = append(kept, c)
	}
	return f.derive(kept, errs...)
}

// TruncateList keeps the first totalCardLimit cards. A limit of zero or less, or
// one at least as large as the list, keeps every card.
func (f *CardFilterer) TruncateList(totalCardLimit int) *CardFilterer {
	if totalCardLimit <= 0 || totalCardLimit >= len(f.cards) {
		return f.derive(slices.Clone(f.cards))
	}
	return f.derive(slices.Clone(f.cards[:totalCardLimit]))
}

// RemoveDuplicateCards keeps the first card for each id
func (f *CardFilterer) RemoveDuplicateCards() *CardFilterer {
	seen := make(map[string]struct{}, len(f.cards))
	return f.keep(func(c *models.Card) bool {
		if _, dup := seen[c.ID]; dup {
			return false
		}
		seen[c.ID] = struct{}{}
		return true
	})
}

// RemoveGatedCards drops gated cards for visitors who are not registered
func (f *CardFilterer) RemoveGatedCards(registered bool) *CardFilterer {
	if registered || f.matcher == nil {
		return f.derive(slices.Clone(f.cards))
	}
	return f.keep(func(c *models.Card) bool {
		return !f.matcher.IsGated(c.Tags)
	})
}
