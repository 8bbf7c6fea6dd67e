package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/internal/testutil"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, seed bool) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cricket_info.db"), store.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())

	if seed {
		data, err := os.ReadFile(filepath.Join("testdata", "seed.sql"))
		require.NoError(t, err)
		for _, stmt := range strings.Split(string(data), ";\n") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			require.NoError(t, s.Exec(context.Background(), stmt))
		}
	}
	return s
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate())
}

func TestList(t *testing.T) {
	list := List()
	require.Len(t, list, 25)
	assert.Equal(t, 25, Len())

	for i, tmpl := range list {
		assert.Equal(t, fmt.Sprintf("q%02d", i+1), tmpl.ID)
		assert.True(t, strings.HasPrefix(tmpl.Label, fmt.Sprintf("Q%d. ", i+1)), tmpl.Label)
		assert.Equal(t, i+1, Number(tmpl.ID))
	}

	list[0].SQL = "DROP TABLE players"
	first, ok := At(0)
	require.True(t, ok)
	assert.NotEqual(t, "DROP TABLE players", first.SQL, "List must return a copy")
}

func TestAt(t *testing.T) {
	_, ok := At(-1)
	assert.False(t, ok)
	_, ok = At(25)
	assert.False(t, ok)

	last, ok := At(24)
	require.True(t, ok)
	assert.Equal(t, "q25", last.ID)
}

func TestByID(t *testing.T) {
	tmpl, ok := ByID("Q07")
	require.True(t, ok)
	assert.Equal(t, "q07", tmpl.ID)

	_, ok = ByID("q99")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		ref    string
		wantID string
	}{
		{"3", "q03"},
		{"q03", "q03"},
		{"Q3", "q03"},
		{" 25 ", "q25"},
		{"0", ""},
		{"26", ""},
		{"players", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			tmpl, err := Lookup(tt.ref)
			if tt.wantID == "" {
				var ve *core.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "query", ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, tmpl.ID)
		})
	}
}

func TestTemplates_WindowPolicies(t *testing.T) {
	want := map[string]core.WindowPolicy{
		"q02": core.WindowExecutionTime,
		"q16": core.WindowFixedDate,
		"q19": core.WindowFixedDate,
		"q22": core.WindowExecutionTime,
		"q23": core.WindowLatestRecord,
	}
	for _, tmpl := range List() {
		assert.Equal(t, want[tmpl.ID], tmpl.Window, tmpl.ID)
	}
}

func TestRequirements_MatchMigratedSchema(t *testing.T) {
	s := newStore(t, false)

	report, err := s.CheckContract(context.Background(), Requirements())
	require.NoError(t, err)
	assert.True(t, report.OK(), "missing tables %v, columns %v", report.MissingTables, report.MissingColumns)
}

func TestRunner_EveryTemplateRunsOnEmptySchema(t *testing.T) {
	s := newStore(t, false)
	r := NewRunner(s, testutil.NewTestLogger(t))

	for _, tmpl := range List() {
		t.Run(tmpl.ID, func(t *testing.T) {
			result, err := r.Run(context.Background(), tmpl)
			require.NoError(t, err)
			assert.NotEmpty(t, result.Columns)
			assert.Equal(t, 0, result.Len())
		})
	}
}

func TestRunner_Deterministic(t *testing.T) {
	s := newStore(t, true)
	r := NewRunner(s, nil)

	for _, tmpl := range List() {
		t.Run(tmpl.ID, func(t *testing.T) {
			first, err := r.Run(context.Background(), tmpl)
			require.NoError(t, err)
			second, err := r.Run(context.Background(), tmpl)
			require.NoError(t, err)
			assert.Equal(t, first.Columns, second.Columns)
			assert.Equal(t, first.Rows, second.Rows)
		})
	}
}

func TestRunner_Seeded(t *testing.T) {
	s := newStore(t, true)
	r := NewRunner(s, nil)
	ctx := context.Background()

	t.Run("players from India", func(t *testing.T) {
		_, result, err := r.RunRef(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"full_name", "playing_role", "batting_style", "bowling_style"}, result.Columns)
		assert.Equal(t, 3, result.Len())
	})

	t.Run("wins parsed from status", func(t *testing.T) {
		_, result, err := r.RunRef(ctx, "q05")
		require.NoError(t, err)
		require.Equal(t, 2, result.Len())
		assert.Equal(t, "India", result.Value(0, "Team_Name"))
		assert.Equal(t, int64(2), result.Value(0, "Total_Wins"))
		assert.Equal(t, "England", result.Value(1, "Team_Name"))
	})

	t.Run("highest score per format", func(t *testing.T) {
		_, result, err := r.RunRef(ctx, "7")
		require.NoError(t, err)
		got := map[any]any{}
		for i := range result.Rows {
			got[result.Value(i, "format")] = result.Value(i, "highest_score")
		}
		assert.Equal(t, map[any]any{"ODI": int64(40), "Test": int64(100)}, got)
	})

	t.Run("consistency stdev", func(t *testing.T) {
		_, result, err := r.RunRef(ctx, "Q19")
		require.NoError(t, err)
		require.Equal(t, 2, result.Len())

		// identical scores sort first
		assert.Equal(t, "Rohit Sharma", result.Value(0, "name"))
		assert.Equal(t, 0.0, result.Value(0, "stdev_runs"))

		assert.Equal(t, "Virat Kohli", result.Value(1, "name"))
		assert.Equal(t, 20.0, result.Value(1, "avg_runs"))
		assert.InDelta(t, 8.16, result.Value(1, "stdev_runs"), 1e-9)
		assert.Equal(t, int64(3), result.Value(1, "innings_count"))
	})

	t.Run("venues over 50k", func(t *testing.T) {
		_, result, err := r.RunRef(ctx, "4")
		require.NoError(t, err)
		require.Equal(t, 1, result.Len())
		assert.Equal(t, "Narendra Modi Stadium", result.Value(0, "venue_name"))
	})
}

func TestRunner_SchemaMismatch(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	tmpl, _ := ByID("q01")
	_, err = NewRunner(s, nil).Run(context.Background(), tmpl)

	var sm *core.SchemaMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, tmpl.SQL, sm.SQL)
	assert.Contains(t, err.Error(), "no such table")
}

func TestRunner_ExecutionError(t *testing.T) {
	s := newStore(t, false)
	tmpl := core.QueryTemplate{ID: "bad", SQL: "SELECT abs(1, 2)"}

	_, err := NewRunner(s, nil).Run(context.Background(), tmpl)

	var ee *core.EngineExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "SELECT abs(1, 2)", ee.SQL)
}

type failingSelecter struct{ err error }

func (f failingSelecter) Select(context.Context, string) (core.ResultTable, error) {
	return core.ResultTable{}, f.err
}

func TestRunner_WrapsUnclassifiedErrors(t *testing.T) {
	tmpl, _ := ByID("q02")
	_, err := NewRunner(failingSelecter{err: fmt.Errorf("disk I/O error")}, nil).Run(context.Background(), tmpl)

	var ee *core.EngineExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, tmpl.SQL, ee.SQL)
}
