package models

// Card represents a single promotional content tile in a collection
type Card struct {
	ID           string            `json:"id" yaml:"id"`
	Tags         []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Title        string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate    string            `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate      string            `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	ModifiedDate string            `json:"modified_date,omitempty" yaml:"modified_date,omitempty"`
	Fields       map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"` // Extra searchable text, e.g. detailText

	// Rendering-only annotations. They are only ever set on shallow copies.
	IsFeatured bool                       `json:"is_featured,omitempty" yaml:"-"`
	Highlights map[string]HighlightedText `json:"highlights,omitempty" yaml:"-"`
}

// Well-known searchable field names
const (
	FieldTitle       = "title"
	FieldDescription = "description"
)

// FieldText returns the text of a searchable field by name.
// Unknown names fall back to Fields and return "" when absent.
func (c *Card) FieldText(name string) string {
	switch name {
	case FieldTitle:
		return c.Title
	case FieldDescription:
		return c.Description
	default:
		return c.Fields[name]
	}
}

// Clone returns a shallow copy of the card. Tags and Fields are shared with the original.
func (c *Card) Clone() *Card {
	clone := *c
	return &clone
}

// HasAnyTag reports whether the card carries at least one of the given tags
func (c *Card) HasAnyTag(tags map[string]struct{}) bool {
	for _, tag := range c.Tags {
		if _, ok := tags[tag]; ok {
			return true
		}
	}
	return false
}

// HasAllTags reports whether the card carries every one of the given tags
func (c *Card) HasAllTags(tags map[string]struct{}) bool {
	if len(tags) == 0 {
		return true
	}
	own := make(map[string]struct{}, len(c.Tags))
	for _, tag := range c.Tags {
		own[tag] = struct{}{}
	}
	for tag := range tags {
		if _, ok := own[tag]; !ok {
			return false
		}
	}
	return true
}

// TextSpan is a run of text that is either a search match or plain text
type TextSpan struct {
	Text  string `json:"text"`
	Match bool   `json:"match,omitempty"`
}

// HighlightedText is a field's text split into matched and unmatched spans.
// Concatenating every span's Text yields the original field value.
type HighlightedText []TextSpan

// String returns the original text
func (h HighlightedText) String() string {
	n := 0
	for _, span := range h {
		n += len(span.Text)
	}
	buf := make([]byte, 0, n)
	for _, span := range h {
		buf = append(buf, span.Text...)
	}
	return string(buf)
}

// Matches returns the matched fragments in order
func (h HighlightedText) Matches() []string {
	var out []string
	for _, span := range h {
		if span.Match {
			out = append(out, span.Text)
		}
	}
	return out
}

// CardIDs returns the ids of the cards in order
func CardIDs(cards []*Card) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}
