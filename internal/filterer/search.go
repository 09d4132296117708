package filterer

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/benvon/card-collection/internal/models"
	"go.uber.org/zap"
	"golang.org/x/text/search"
)

// MinQueryLength is the shortest query, in characters, that can match anything.
// Shorter queries return no cards at all rather than every card.
const MinQueryLength = 3

// SearchCards keeps the cards where any of searchFields contains query, ignoring
// case. Matching cards are returned as copies whose Highlights hold, per matched
// field, the field text split around every occurrence of the query. Fields that
// did not match are left without highlights.
func (f *CardFilterer) SearchCards(query string, searchFields []string) (*CardFilterer, error) {
	fields := compactFields(searchFields)
	if len(fields) == 0 {
		return nil, models.NewConfigurationError("search fields", "", "at least one field is required")
	}

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		f.logger.Debug("search_query_too_short",
			zap.Int("length", utf8.RuneCountInString(query)),
		)
		return f.derive([]*models.Card{}), nil
	}

	// Matchers are not safe for concurrent use, so each search compiles its own
	pattern := search.New(f.lang, search.IgnoreCase).CompileString(query)

	matched := make([]*models.Card, 0, len(f.cards))
	for _, c := range f.cards {
		var highlights map[string]models.HighlightedText
		for _, field := range fields {
			spans, ok := highlight(pattern, c.FieldText(field))
			if !ok {
				continue
			}
			if highlights == nil {
				highlights = make(map[string]models.HighlightedText, len(fields))
			}
			highlights[field] = spans
		}
		if highlights == nil {
			continue
		}
		clone := c.Clone()
		clone.Highlights = highlights
		matched = append(matched, clone)
	}

	f.logger.Debug("cards_searched",
		zap.Strings("fields", fields),
		zap.Int("before", len(f.cards)),
		zap.Int("after", len(matched)),
	)
	return f.derive(matched), nil
}

// highlight splits text around every non-overlapping occurrence of pattern
func highlight(pattern *search.Pattern, text string) (models.HighlightedText, bool) {
	var spans models.HighlightedText
	offset := 0
	for offset < len(text) {
		start, end := pattern.IndexString(text[offset:])
		if start < 0 || end <= start {
			break
		}
		start += offset
		end += offset
		if start > offset {
			spans = append(spans, models.TextSpan{Text: text[offset:start]})
		}
		spans = append(spans, models.TextSpan{Text: text[start:end], Match: true})
		offset = end
	}
	if spans == nil {
		return nil, false
	}
	if offset < len(text) {
		spans = append(spans, models.TextSpan{Text: text[offset:]})
	}
	return spans, true
}

func compactFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" || slices.Contains(out, field) {
			continue
		}
		out = append(out, field)
	}
	return out
}
