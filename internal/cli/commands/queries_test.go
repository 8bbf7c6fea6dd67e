package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/internal/catalog"
	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	clitestutil "github.com/leapstack-labs/cricdash/internal/cli/testutil"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

func TestQueriesList(t *testing.T) {
	cc, tr := newTestContext(t, output.ModeJSON, nil)
	require.NoError(t, runQueriesList(cc))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	require.Len(t, got, catalog.Len())
	assert.Equal(t, "q01", got[0]["id"])
	assert.Equal(t, "execution-time", got[1]["window"])

	cc, tr = newTestContext(t, output.ModeMarkdown, nil)
	require.NoError(t, runQueriesList(cc))
	assert.Contains(t, tr.Output(), "| q25 |")
}

func TestQueriesShow(t *testing.T) {
	cc, tr := newTestContext(t, output.ModeMarkdown, nil)
	require.NoError(t, runQueriesShow(cc, "4"))

	out := tr.Output()
	clitestutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Q4. Venues with capacity > 50,000")
	assert.Contains(t, out, "- **reads:** venues(venue_name, city, country, capacity)")
	assert.Contains(t, out, "```sql")

	err := runQueriesShow(cc, "q26")
	assert.ErrorAs(t, err, new(*core.ValidationError))
}

func TestQueriesRun(t *testing.T) {
	ctx := context.Background()

	t.Run("single query as json", func(t *testing.T) {
		cc, tr := newTestContext(t, output.ModeJSON, withAnalyticsDB(t))
		require.NoError(t, runQueries(ctx, cc, []string{"1"}, &QueryRunOptions{ShowSQL: true}))

		var res QueryResult
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &res))
		assert.Equal(t, "q01", res.ID)
		assert.Contains(t, res.SQL, "FROM players")
		require.Len(t, res.Rows, 2)
		assert.Equal(t, "Virat Kohli", res.Rows[0]["full_name"])
	})

	t.Run("markdown sections", func(t *testing.T) {
		cc, tr := newTestContext(t, output.ModeMarkdown, withAnalyticsDB(t))
		require.NoError(t, runQueries(ctx, cc, []string{"q01", "q04"}, &QueryRunOptions{}))

		out := tr.Output()
		clitestutil.AssertNoANSI(t, out)
		assert.Contains(t, out, "## Q1. Players from India")
		assert.Contains(t, out, "## Q4. Venues with capacity")
		assert.Contains(t, out, "Eden Gardens")
		assert.NotContains(t, out, "Lord's")
	})

	t.Run("all", func(t *testing.T) {
		cc, tr := newTestContext(t, output.ModeJSON, withAnalyticsDB(t))
		require.NoError(t, runQueries(ctx, cc, nil, &QueryRunOptions{All: true}))

		var results []QueryResult
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &results))
		require.Len(t, results, catalog.Len())
		assert.Equal(t, "q25", results[len(results)-1].ID)
		assert.Empty(t, results[0].SQL)
	})

	t.Run("unknown query", func(t *testing.T) {
		cc, _ := newTestContext(t, output.ModeJSON, withAnalyticsDB(t))
		err := runQueries(ctx, cc, []string{"nope"}, &QueryRunOptions{})
		assert.ErrorAs(t, err, new(*core.ValidationError))
	})

	t.Run("missing database", func(t *testing.T) {
		cc, _ := newTestContext(t, output.ModeJSON, func(cfg *config.Config) {
			cfg.AnalyticsDB = filepath.Join(t.TempDir(), "missing.db")
		})
		err := runQueries(ctx, cc, []string{"1"}, &QueryRunOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run 'cricdash migrate' first")
	})
}

func playgroundCmd() *cobra.Command {
	cmd := NewPlaygroundCommand()
	cmd.SetContext(context.Background())
	return cmd
}

func TestPlayground(t *testing.T) {
	t.Run("sql argument", func(t *testing.T) {
		cc, tr := newTestContext(t, output.ModeCSV, withAnalyticsDB(t))
		err := runPlayground(playgroundCmd(), cc, []string{"SELECT name FROM players", "ORDER BY name"}, &PlaygroundOptions{})
		require.NoError(t, err)
		out := tr.Output()
		assert.True(t, strings.HasPrefix(out, "name\n"), out)
		assert.Less(t, strings.Index(out, "Jasprit Bumrah"), strings.Index(out, "Virat Kohli"))
	})

	t.Run("sql file", func(t *testing.T) {
		cc, tr := newTestContext(t, output.ModeJSON, withAnalyticsDB(t))
		path := filepath.Join(t.TempDir(), "report.sql")
		require.NoError(t, os.WriteFile(path, []byte("SELECT COUNT(*) AS n FROM venues;\n"), 0o600))

		require.NoError(t, runPlayground(playgroundCmd(), cc, nil, &PlaygroundOptions{Input: path}))
		var rt struct {
			Rows []map[string]any `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &rt))
		assert.InDelta(t, 2, rt.Rows[0]["n"], 0)
	})

	t.Run("rejects writes", func(t *testing.T) {
		cc, _ := newTestContext(t, output.ModeJSON, withAnalyticsDB(t))
		err := runPlayground(playgroundCmd(), cc, []string{"DELETE FROM players"}, &PlaygroundOptions{})
		assert.ErrorAs(t, err, new(*core.ValidationError))
	})
}

func TestPlayground_TablesAndSchema(t *testing.T) {
	ctx := context.Background()
	cc, tr := newTestContext(t, output.ModeJSON, withAnalyticsDB(t))
	st, err := cc.OpenStore(true)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	require.NoError(t, listTables(ctx, cc.Renderer, st))
	var tables []string
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &tables))
	assert.Contains(t, tables, "players")
	assert.NotContains(t, tables, "goose_db_version")

	tr.Reset()
	require.NoError(t, showSchema(ctx, cc.Renderer, st, "teams"))
	assert.Contains(t, tr.Output(), `"name": "team_name"`)

	err = showSchema(ctx, cc.Renderer, st, "umpires")
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "table", ve.Field)
}

func TestHandleDotCommand(t *testing.T) {
	ctx := context.Background()
	cc, tr := newTestContext(t, output.ModeMarkdown, withAnalyticsDB(t))
	st, err := cc.OpenStore(true)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	assert.True(t, handleDotCommand(ctx, cc.Renderer, st, ".quit"))
	assert.True(t, handleDotCommand(ctx, cc.Renderer, st, ".EXIT"))

	assert.False(t, handleDotCommand(ctx, cc.Renderer, st, ".suggest players"))
	assert.Contains(t, tr.Output(), "SELECT * FROM players LIMIT 10;")

	tr.Reset()
	assert.False(t, handleDotCommand(ctx, cc.Renderer, st, ".schema"))
	assert.Contains(t, tr.ErrorOutput(), "Usage: .schema <table>")

	tr.Reset()
	assert.False(t, handleDotCommand(ctx, cc.Renderer, st, ".bogus"))
	assert.Contains(t, tr.ErrorOutput(), "Unknown command: .bogus")
}
