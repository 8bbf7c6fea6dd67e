// Package analytics serves the query catalog and the SQL playground.
package analytics

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/cricdash/internal/catalog"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// Signals are the datastar signals sent by the analytics panels.
type Signals struct {
	Query  string   `json:"query"`
	SQL    string   `json:"sql"`
	Tables []string `json:"tables"`
}

// Handlers provides HTTP handlers for the analytics feature.
type Handlers struct {
	deps   common.Deps
	runner *catalog.Runner
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{
		deps:   deps,
		runner: catalog.NewRunner(deps.Store, deps.Logger),
	}
}

// RunQuerySSE runs the selected catalog query.
func (h *Handlers) RunQuerySSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(common.ErrorPanel(resultsID, "Failed to read signals: "+err.Error()))
		return
	}
	sse := datastar.NewSSE(w, r)

	tmpl, err := catalog.Lookup(signals.Query)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(resultsID, err.Error()))
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	start := time.Now()
	rt, err := h.runner.Run(ctx, tmpl)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(resultsID, describeError(err), err))
		return
	}

	view := common.NewTableView(rt, time.Since(start))
	view.SQL = strings.TrimSpace(tmpl.SQL)
	if err := sse.PatchElementTempl(QueryResults(tmpl.Label, view)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// PlaygroundSSE runs read-only SQL typed into the playground.
func (h *Handlers) PlaygroundSSE(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(common.ErrorPanel(playgroundResultsID, "Failed to read signals: "+err.Error()))
		return
	}
	sse := datastar.NewSSE(w, r)

	query := strings.TrimSpace(signals.SQL)
	if query == "" {
		_ = sse.PatchElementTempl(common.ErrorPanel(playgroundResultsID, "Query cannot be empty"))
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	start := time.Now()
	rt, err := h.deps.Store.Query(ctx, query)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(playgroundResultsID, describeError(err), err))
		return
	}

	if err := sse.PatchElementTempl(common.ResultTable(playgroundResultsID, common.NewTableView(rt, time.Since(start)))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// TablesSSE lists the analytics tables.
func (h *Handlers) TablesSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	tables, err := h.deps.Store.ListTables(r.Context())
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(tablesID, err.Error()))
		return
	}
	if err := sse.PatchElementTempl(TableList(tables)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SchemaSSE shows PRAGMA table_info for one table.
func (h *Handlers) SchemaSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	name := chi.URLParam(r, "name")

	cols, err := h.deps.Store.TableSchema(r.Context(), name)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(schemaID, err.Error()))
		return
	}
	if len(cols) == 0 {
		_ = sse.PatchElementTempl(common.ErrorPanel(schemaID, fmt.Sprintf("table not found: %s", name)))
		return
	}
	if err := sse.PatchElementTempl(SchemaPanel(name, cols)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SuggestSSE fills the playground editor with a starter query for the
// selected tables.
func (h *Handlers) SuggestSSE(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}
	sse := datastar.NewSSE(w, r)

	if err := sse.MarshalAndPatchSignals(map[string]any{"sql": store.DefaultQuery(signals.Tables)}); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// describeError turns the error taxonomy into a message for the page.
func describeError(err error) string {
	var (
		ve *core.ValidationError
		sm *core.SchemaMismatchError
		ce *core.ConnectionError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &sm):
		return "The analytics database does not have the tables this query needs (" + sm.Err.Error() + "). Run 'cricdash migrate' and load data."
	case errors.As(err, &ce):
		return "Could not open the analytics database: " + ce.Err.Error()
	default:
		return err.Error()
	}
}
