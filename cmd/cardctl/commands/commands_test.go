package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/benvon/card-collection/internal/models"
)

const festival = `
id: festival
cards:
  - id: opening
    title: Opening Night
    tags: [stage/main, topic/music]
    start_date: "2024-03-26T16:00:00Z"
    end_date: "2024-03-26T18:00:00Z"
  - id: matinee
    title: Afternoon Matinee
    tags: [stage/side, topic/film]
    start_date: "2024-03-26T12:00:00Z"
    end_date: "2024-03-26T14:00:00Z"
  - id: closing
    title: Closing Party
    tags: [stage/main, topic/music, backstage/crew]
    start_date: "2024-03-26T20:00:00Z"
    end_date: "2024-03-26T23:00:00Z"
  - id: guide
    title: Festival Guide
    tags: [topic/film]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCardsCmd(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "festival.yaml", festival)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults drop ended cards",
			args: nil,
			want: []string{"opening", "closing", "guide"},
		},
		{
			name: "filter and title sort",
			args: []string{"--filter", "stage=stage/main", "--sort", "title-asc"},
			want: []string{"closing", "opening"},
		},
		{
			name: "featured tag pattern",
			args: []string{"--featured-tag", "^topic/film$", "--sort", "featured"},
			want: []string{"guide", "opening", "closing"},
		},
		{
			name: "gated tags pass when the collection does not hide them",
			args: []string{"--gated-tag", "^backstage/"},
			want: []string{"opening", "closing", "guide"},
		},
		{
			name: "search",
			args: []string{"-q", "guide"},
			want: []string{"guide"},
		},
		{
			name: "event sort and limit",
			args: []string{"--sort", "event", "--limit", "2"},
			want: []string{"opening", "closing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"cards", path, "--now", "2024-03-26T17:00:00Z"}, tt.args...)
			out, err := run(t, args...)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			var got cardsOutput
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("Failed to decode output %q: %v", out, err)
			}
			if ids := models.CardIDs(got.Cards); !slices.Equal(ids, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, ids)
			}
		})
	}
}

func TestCardsCmd_HideGatedFromConfigFile(t *testing.T) {
	t.Parallel()

	// hide_gated must be set on the collection for gating to apply
	path := writeFile(t, "festival.yaml", strings.Replace(festival, "id: festival\n", "id: festival\nhide_gated: true\n", 1))
	cfgPath := writeFile(t, "cardctl.yaml", "tags:\n  gated: [\"^backstage/\"]\nnow: \"2024-03-26T17:00:00Z\"\n")

	out, err := run(t, "--config", cfgPath, "cards", path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var got cardsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if ids := models.CardIDs(got.Cards); !slices.Equal(ids, []string{"opening", "guide"}) {
		t.Errorf("Expected gated card to be hidden, got %v", ids)
	}
}

func TestCardsCmd_Errors(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "festival.yaml", festival)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"cards", filepath.Join(t.TempDir(), "missing.yaml")}},
		{"bad filter", []string{"cards", path, "--filter", "stage/main"}},
		{"bad sort", []string{"cards", path, "--sort", "shuffle"}},
		{"bad now", []string{"cards", path, "--now", "tomorrow"}},
		{"bad pattern", []string{"cards", path, "--featured-tag", "("}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := run(t, tt.args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestSessionsCmd(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "festival.yaml", festival)

	out, err := run(t, "sessions", path, "--now", "2024-03-26T17:00:00Z")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var got sessionsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if !slices.Equal(got.Visible, []string{"opening"}) {
		t.Errorf("Expected opening visible, got %v", got.Visible)
	}
	if !slices.Equal(got.Upcoming, []string{"closing"}) || !slices.Equal(got.Past, []string{"matinee"}) {
		t.Errorf("Unexpected upcoming %v / past %v", got.Upcoming, got.Past)
	}
	if got.NextTransitionMs == nil || *got.NextTransitionMs != 3600000 {
		t.Errorf("Expected next transition in one hour, got %v", got.NextTransitionMs)
	}

	out, err = run(t, "sessions", path, "--now", "2024-03-26T19:00:00Z", "--fallback", "nearest")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got = sessionsOutput{}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if !got.Fallback || !slices.Equal(got.Visible, []string{"closing"}) {
		t.Errorf("Expected closing as fallback, got %v (fallback=%v)", got.Visible, got.Fallback)
	}

	if _, err := run(t, "sessions", path, "--fallback", "random"); err == nil {
		t.Error("Expected an error for an unknown fallback")
	}
}

func TestValidateCmd(t *testing.T) {
	t.Parallel()

	good := writeFile(t, "festival.yaml", festival)
	bad := writeFile(t, "bad.yaml", "id: bad\ndefault_sort: shuffle\ncards: []\n")

	out, err := run(t, "validate", good)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(out, "ok   "+good) {
		t.Errorf("Expected ok line, got %q", out)
	}

	out, err = run(t, "validate", good, bad)
	if err == nil {
		t.Fatal("Expected an error for an invalid collection")
	}
	if !strings.Contains(out, "FAIL "+bad) {
		t.Errorf("Expected FAIL line, got %q", out)
	}
}

func TestParseFilters(t *testing.T) {
	t.Parallel()

	got, err := parseFilters([]string{"stage=stage/main, stage/side", "topic=topic/film", "stage=stage/pop"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !slices.Equal(got["stage"], []string{"stage/main", "stage/side", "stage/pop"}) {
		t.Errorf("Unexpected stage selection %v", got["stage"])
	}
	if !slices.Equal(got["topic"], []string{"topic/film"}) {
		t.Errorf("Unexpected topic selection %v", got["topic"])
	}

	if _, err := parseFilters([]string{"=topic/film"}); err == nil {
		t.Error("Expected an error for an empty group")
	}
}
