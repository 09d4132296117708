package models

import (
	"fmt"
	"slices"
)

// FilterGroup is an authored filter panel and the tags it offers
type FilterGroup struct {
	Key   string   `json:"key" yaml:"key"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Collection is an authored card collection and its display settings
type Collection struct {
	ID              string        `json:"id" yaml:"id"`
	Title           string        `json:"title,omitempty" yaml:"title,omitempty"`
	Cards           []*Card       `json:"cards" yaml:"cards"`
	FeaturedCardIDs []string      `json:"featured_card_ids,omitempty" yaml:"featured_card_ids,omitempty"`
	FilterGroups    []FilterGroup `json:"filter_groups,omitempty" yaml:"filter_groups,omitempty"`
	FilterLogic     FilterType    `json:"filter_logic,omitempty" yaml:"filter_logic,omitempty"`
	DefaultSort     SortOption    `json:"default_sort,omitempty" yaml:"default_sort,omitempty"`
	SearchFields    []string      `json:"search_fields,omitempty" yaml:"search_fields,omitempty"`
	TotalCardLimit  int           `json:"total_card_limit,omitempty" yaml:"total_card_limit,omitempty"`
	ShowBookmarks   bool          `json:"show_bookmarks,omitempty" yaml:"show_bookmarks,omitempty"`
	HideGated       bool          `json:"hide_gated,omitempty" yaml:"hide_gated,omitempty"`
}

// ApplyDefaults fills unset display settings
func (c *Collection) ApplyDefaults() {
	if c.FilterLogic == "" {
		c.FilterLogic = FilterTypeXor
	}
	if c.DefaultSort == "" {
		c.DefaultSort = SortDefault
	}
	if len(c.SearchFields) == 0 {
		c.SearchFields = []string{FieldTitle, FieldDescription}
	}
}

// Validate checks the authored settings
func (c *Collection) Validate() error {
	if c.ID == "" {
		return NewConfigurationError("collection id", "", "must not be empty")
	}
	switch c.FilterLogic {
	case FilterTypeAnd, FilterTypeOr, FilterTypeXor:
	default:
		return NewConfigurationError("filter_logic", string(c.FilterLogic), "must be 'and', 'or', or 'xor'")
	}
	if !slices.Contains(SortOptions, c.DefaultSort) {
		return NewConfigurationError("default_sort", string(c.DefaultSort), "unknown sort option")
	}
	if c.TotalCardLimit < 0 {
		return NewConfigurationError("total_card_limit", fmt.Sprint(c.TotalCardLimit), "must not be negative")
	}
	seen := make(map[string]struct{}, len(c.FilterGroups))
	for _, g := range c.FilterGroups {
		if g.Key == "" {
			return NewConfigurationError("filter group key", "", "must not be empty")
		}
		if _, dup := seen[g.Key]; dup {
			return NewConfigurationError("filter group key", g.Key, "duplicated")
		}
		seen[g.Key] = struct{}{}
	}
	for i, card := range c.Cards {
		if card == nil || card.ID == "" {
			return NewConfigurationError("card id", "", fmt.Sprintf("card %d has no id", i))
		}
	}
	return nil
}
