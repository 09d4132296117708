// Package tagmatch decides tag-derived card properties (featured, gated) from
// configured patterns instead of hard-coded tag naming conventions.
package tagmatch

import (
	"fmt"
	"regexp"
)

// Config holds the patterns for each tag-derived property. Patterns are regular
// expressions matched against individual tags.
type Config struct {
	Featured []string `json:"featured,omitempty" yaml:"featured,omitempty" mapstructure:"featured"`
	Gated    []string `json:"gated,omitempty" yaml:"gated,omitempty" mapstructure:"gated"`
}

// Predicate reports whether a tag list satisfies a condition
type Predicate func(tags []string) bool

// Matcher evaluates tag-derived properties. A nil *Matcher matches nothing.
type Matcher struct {
	featured Predicate
	gated    Predicate
}

// New compiles the configured patterns
func New(cfg Config) (*Matcher, error) {
	featured, err := AnyTag(cfg.Featured...)
	if err != nil {
		return nil, fmt.Errorf("featured patterns: %w", err)
	}
	gated, err := AnyTag(cfg.Gated...)
	if err != nil {
		return nil, fmt.Errorf("gated patterns: %w", err)
	}
	return &Matcher{featured: featured, gated: gated}, nil
}

// IsFeatured reports whether the tags mark a card as featured
func (m *Matcher) IsFeatured(tags []string) bool {
	if m == nil {
		return false
	}
	return m.featured(tags)
}

// IsGated reports whether the tags mark a card as gated behind registration
func (m *Matcher) IsGated(tags []string) bool {
	if m == nil {
		return false
	}
	return m.gated(tags)
}

// AnyTag returns a predicate that holds when any tag matches any of the patterns.
// With no patterns the predicate never holds.
func AnyTag(patterns ...string) (Predicate, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid tag pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return func(tags []string) bool {
		for _, tag := range tags {
			for _, re := range compiled {
				if re.MatchString(tag) {
					return true
				}
			}
		}
		return false
	}, nil
}
