package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestFailurePanel(t *testing.T) {
	t.Run("shows the attempted statement", func(t *testing.T) {
		err := fmt.Errorf("run: %w", &core.EngineExecutionError{
			SQL: "SELECT * FROM teams WHERE name = '<x>';",
			Err: errors.New("syntax error"),
		})
		out := render(t, FailurePanel("results", "Query failed", err))
		assert.Equal(t,
			`<div id="results" class="error">Query failed<pre class="sql">SELECT * FROM teams WHERE name = &#39;&lt;x&gt;&#39;;</pre></div>`,
			out)
	})

	t.Run("matches ErrorPanel without a statement", func(t *testing.T) {
		err := &core.ValidationError{Field: "table", Reason: "required"}
		assert.Equal(t,
			render(t, ErrorPanel("results", err.Error())),
			render(t, FailurePanel("results", err.Error(), err)))
	})
}

func TestOptions(t *testing.T) {
	out := render(t, Options([]string{"batting", "bowling"}, "bowling"))
	assert.Equal(t, `<option value="batting">batting</option><option value="bowling" selected>bowling</option>`, out)
}

func TestResultTable(t *testing.T) {
	t.Run("rows", func(t *testing.T) {
		v := TableView{
			SQL:      "SELECT name FROM players;",
			Columns:  []string{"name"},
			Rows:     [][]string{{"Joe Root"}},
			RowCount: 1,
		}
		out := render(t, ResultTable("r", v))
		assert.Contains(t, out, `<div id="r" class="results"><pre class="sql">SELECT name FROM players;</pre>`)
		assert.Contains(t, out, `<thead><tr><th>name</th></tr></thead><tbody><tr><td>Joe Root</td></tr></tbody>`)
		assert.Contains(t, out, `<p class="muted">1 row</p></div>`)
	})

	t.Run("empty", func(t *testing.T) {
		out := render(t, ResultTable("r", TableView{Columns: []string{"name"}}))
		assert.Equal(t, `<div id="r" class="results"><p class="muted">No rows.</p></div>`, out)
	})
}
