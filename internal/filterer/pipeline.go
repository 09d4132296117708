package filterer

import (
	"github.com/benvon/card-collection/internal/models"
)

// Request holds a visitor's choices for one pass over a collection. Zero values
// fall back to the collection's authored settings.
type Request struct {
	Filters        models.FilterDirective
	Panels         []string
	Logic          models.FilterType
	Sort           models.SortOption
	Query          string
	Fields         []string
	Registered     bool
	BookmarkedOnly bool
	Bookmarks      []string
	Limit          int
}

// Apply runs a collection's cards through the full pipeline: duplicates,
// date range, gating (when the collection hides gated cards), bookmarks, filters,
// search (when a query is given), sort and truncation, in that order.
//
// The effective limit is the smaller of the collection's TotalCardLimit and
// req.Limit, ignoring whichever is unset.
func Apply(c *models.Collection, req Request, opts ...Option) (*CardFilterer, error) {
	opts = append([]Option{WithFeaturedIDs(c.FeaturedCardIDs...)}, opts...)
	f, err := New(c.Cards, opts...)
	if err != nil {
		return nil, err
	}

	f = f.RemoveDuplicateCards().KeepCardsWithinDateRange()
	if c.HideGated {
		f = f.RemoveGatedCards(req.Registered)
	}
	f = f.KeepBookmarkedCardsOnly(req.BookmarkedOnly, req.Bookmarks, c.ShowBookmarks)

	logic := req.Logic
	if logic == "" {
		logic = c.FilterLogic
	}
	if f, err = f.FilterCards(req.Filters, req.Panels, logic, models.DefaultFilterTypes); err != nil {
		return nil, err
	}

	if req.Query != "" {
		fields := req.Fields
		if len(fields) == 0 {
			fields = c.SearchFields
		}
		if f, err = f.SearchCards(req.Query, fields); err != nil {
			return nil, err
		}
	}

	sort := req.Sort
	if sort == "" {
		sort = c.DefaultSort
	}
	if f, err = f.SortCards(sort); err != nil {
		return nil, err
	}

	limit := c.TotalCardLimit
	if req.Limit > 0 && (limit <= 0 || req.Limit < limit) {
		limit = req.Limit
	}
	return f.TruncateList(limit), nil
}
