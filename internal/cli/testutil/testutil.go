// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/store"
)

// sampleRows seeds every analytics database created by SetupAnalyticsDB.
var sampleRows = []string{
	`INSERT INTO players (player_id, name, country, playing_role) VALUES
		(1, 'Virat Kohli', 'India', 'Batsman'),
		(2, 'Joe Root', 'England', 'Batsman'),
		(3, 'Jasprit Bumrah', 'India', 'Bowler')`,
	`INSERT INTO teams (team_id, team_name, country) VALUES (1, 'India', 'India'), (2, 'England', 'England')`,
	`INSERT INTO venues (venue_id, venue_name, city, country, capacity) VALUES
		(1, 'Eden Gardens', 'Kolkata', 'India', 68000),
		(2, 'Lord''s', 'London', 'England', 31100)`,
}

// SetupAnalyticsDB creates a migrated analytics database holding a few
// players, teams and venues and returns its path.
func SetupAnalyticsDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cricket_info.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("failed to open analytics db: %v", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(); err != nil {
		t.Fatalf("failed to migrate analytics db: %v", err)
	}
	for _, q := range sampleRows {
		if err := st.Exec(context.Background(), q); err != nil {
			t.Fatalf("failed to seed analytics db: %v", err)
		}
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the result output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the status output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if n := strings.Count(md, "```"); n%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", n)
	}
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
