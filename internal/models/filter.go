package models

// FilterDirective maps a filter group key to the tag values selected in that group.
// A group with no selected values imposes no restriction.
type FilterDirective map[string][]string

// IsEmpty reports whether no group has a selection
func (d FilterDirective) IsEmpty() bool {
	for _, selected := range d {
		if len(selected) > 0 {
			return false
		}
	}
	return true
}

// FilterType names the logic used to combine selected filters
type FilterType string

// FilterTypes holds the caller's names for each combination logic
type FilterTypes struct {
	// And requires every selected tag across all participating groups
	And FilterType `json:"and" yaml:"and"`
	// Or requires at least one selected tag from any participating group
	Or FilterType `json:"or" yaml:"or"`
	// Xor requires, for every participating group, at least one of that group's selected tags
	// (OR within a group, AND across groups)
	Xor FilterType `json:"xor" yaml:"xor"`
}

const (
	FilterTypeAnd FilterType = "and"
	FilterTypeOr  FilterType = "or"
	FilterTypeXor FilterType = "xor"
)

// DefaultFilterTypes is the naming used by authored collections
var DefaultFilterTypes = FilterTypes{
	And: FilterTypeAnd,
	Or:  FilterTypeOr,
	Xor: FilterTypeXor,
}

// SortOption is a card ordering
type SortOption string

const (
	SortDefault        SortOption = "default"
	SortFeatured       SortOption = "featured"
	SortTitleAsc       SortOption = "title-asc"
	SortTitleDesc      SortOption = "title-desc"
	SortDateNewest     SortOption = "date-newest"
	SortDateOldest     SortOption = "date-oldest"
	SortModifiedNewest SortOption = "modified-newest"
	SortModifiedOldest SortOption = "modified-oldest"
	SortEvent          SortOption = "event"
)

// SortOptions lists every supported sort option
var SortOptions = []SortOption{
	SortDefault,
	SortFeatured,
	SortTitleAsc,
	SortTitleDesc,
	SortDateNewest,
	SortDateOldest,
	SortModifiedNewest,
	SortModifiedOldest,
	SortEvent,
}
