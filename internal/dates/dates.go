// Package dates parses the ISO-8601 date strings carried by cards and provides
// an injectable clock for date-dependent logic.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissing is returned by Parse for an empty date string
var ErrMissing = errors.New("date is missing")

// ParseError reports a date string that matches none of the accepted layouts
type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable date %q", e.Value)
}

// Layouts are tried in order. Values without a zone are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Parse parses an ISO-8601 date or date-time string
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissing
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Value: s}
}

// ParseOptional parses s, reporting ok=false without an error when s is empty
func ParseOptional(s string) (t time.Time, ok bool, err error) {
	t, err = Parse(s)
	if errors.Is(err, ErrMissing) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Clock provides the current moment
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same moment
type FixedClock time.Time

// Now returns the fixed moment
func (c FixedClock) Now() time.Time { return time.Time(c) }

// OrSystem returns c, or SystemClock when c is nil
func OrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}
