package analytics

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/internal/ui/features"
)

// =============================================================================
// Test Setup Helpers
// =============================================================================

func setupRouter(t *testing.T) (chi.Router, *features.TestFixture) {
	t.Helper()

	fixture := features.SetupTestFixture(t)
	router := features.Router(t, func(r chi.Router) error {
		return SetupRoutes(r, fixture.Deps)
	})
	return router, fixture
}

// =============================================================================
// Catalog queries
// =============================================================================

func TestRunQuerySSE(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name     string
		signals  string
		wantBody []string
		notBody  []string
	}{
		{
			name:    "by id",
			signals: `{"query":"q01"}`,
			wantBody: []string{
				"datastar-patch-elements",
				resultsID,
				"Players from India",
				"Virat Kohli",
				"Jasprit Bumrah",
				"2 rows",
			},
			notBody: []string{"Joe Root"},
		},
		{
			name:     "by number",
			signals:  `{"query":"1"}`,
			wantBody: []string{"Virat Kohli"},
		},
		{
			name:     "unknown query",
			signals:  `{"query":"q99"}`,
			wantBody: []string{`class="error"`, "unknown query"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := features.Post(router, "/api/analytics/run", tt.signals)
			assert.Equal(t, http.StatusOK, rec.Code)

			body := features.Body(t, rec)
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			for _, not := range tt.notBody {
				assert.NotContains(t, body, not)
			}
		})
	}
}

func TestRunQuerySSE_EmptyTables(t *testing.T) {
	router, _ := setupRouter(t)

	// q03 reads odi_scorers, which the fixture leaves empty
	rec := features.Post(router, "/api/analytics/run", `{"query":"q03"}`)
	body := features.Body(t, rec)
	assert.Contains(t, body, resultsID)
	assert.Contains(t, body, "No rows.")
}

// =============================================================================
// Playground
// =============================================================================

func TestPlaygroundSSE(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name     string
		signals  string
		wantBody []string
	}{
		{
			name:     "select",
			signals:  `{"sql":"SELECT name, country FROM players ORDER BY player_id"}`,
			wantBody: []string{playgroundResultsID, "<th>name</th>", "Joe Root", "3 rows"},
		},
		{
			name:     "empty",
			signals:  `{"sql":"   "}`,
			wantBody: []string{"Query cannot be empty"},
		},
		{
			name:     "write rejected",
			signals:  `{"sql":"DROP TABLE players"}`,
			wantBody: []string{`class="error"`, "only SELECT, WITH and PRAGMA table_info"},
		},
		{
			name:     "unknown table",
			signals:  `{"sql":"SELECT * FROM umpires"}`,
			wantBody: []string{`class="error"`, "umpires"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := features.Body(t, features.Post(router, "/api/analytics/playground", tt.signals))
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestPlaygroundSSE_RefusesHiddenWrite(t *testing.T) {
	router, fixture := setupRouter(t)

	signals := `{"sql":"WITH x AS (SELECT 1) DELETE FROM players"}`
	body := features.Body(t, features.Post(router, "/api/analytics/playground", signals))
	assert.Contains(t, body, `class="error"`)

	rt, err := fixture.Store.Select(t.Context(), "SELECT COUNT(*) AS n FROM players")
	require.NoError(t, err)
	assert.EqualValues(t, 3, rt.Value(0, "n"))
}

func TestTablesSSE(t *testing.T) {
	router, _ := setupRouter(t)

	body := features.Body(t, features.Get(router, "/api/analytics/tables", ""))
	assert.Contains(t, body, tablesID)
	assert.Contains(t, body, "players")
	assert.Contains(t, body, "venues")
	assert.NotContains(t, body, "goose_db_version")
}

func TestSchemaSSE(t *testing.T) {
	router, _ := setupRouter(t)

	body := features.Body(t, features.Get(router, "/api/analytics/schema/players", ""))
	assert.Contains(t, body, schemaID)
	assert.Contains(t, body, "player_id")
	assert.Contains(t, body, "batting_style")

	body = features.Body(t, features.Get(router, "/api/analytics/schema/umpires", ""))
	assert.Contains(t, body, "table not found: umpires")
}

func TestSuggestSSE(t *testing.T) {
	router, _ := setupRouter(t)

	body := features.Body(t, features.Post(router, "/api/analytics/suggest", `{"tables":["players"]}`))
	assert.Contains(t, body, "datastar-patch-signals")
	assert.Contains(t, body, "players")
}
