package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "/api/v1/collections/summit/cards", "/api/v1/collections/summit/cards"},
		{"control characters", "/api/\x00v1\x1b", "/api/v1"},
		{"invalid utf8", "/api/\xffcards", "/api/cards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizePath(tt.input); got != tt.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	long := "/" + strings.Repeat("a", MaxPathLength+10)
	if got := SanitizePath(long); len(got) != MaxPathLength+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected truncated path, got length %d", len(got))
	}
}

func TestSanitizeQuery(t *testing.T) {
	t.Parallel()

	if got := SanitizeQuery("keynote\nlive"); got != "keynote\nlive" {
		t.Errorf("Newlines must be kept, got %q", got)
	}
	if got := SanitizeQuery(strings.Repeat("q", MaxQueryLength+1)); len(got) != MaxQueryLength+3 {
		t.Errorf("Expected truncated query, got length %d", len(got))
	}
}

func TestSanitizeIDAndError(t *testing.T) {
	t.Parallel()

	if got := SanitizeID("visitor\x07-1"); got != "visitor-1" {
		t.Errorf("SanitizeID = %q", got)
	}
	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q", got)
	}
	if got := SanitizeError(errors.New("boom")); got != "boom" {
		t.Errorf("SanitizeError = %q", got)
	}
}
