// Package crud serves the CRUD panel for the configured relational target.
package crud

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/leapstack-labs/cricdash/internal/crud"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
	"github.com/leapstack-labs/cricdash/internal/ui/notifier"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

const sessionDatabaseKey = "database"

// Signals are the datastar signals sent by the CRUD panel.
type Signals struct {
	Database string            `json:"database"`
	Table    string            `json:"table"`
	Limit    int               `json:"limit"`
	SQL      string            `json:"crudSql"`
	Values   map[string]string `json:"values"`
	Set      string            `json:"set"`
	Where    string            `json:"where"`
}

// Handlers provides HTTP handlers for the CRUD feature.
type Handlers struct {
	deps common.Deps
	svc  *crud.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps, svc: deps.CRUD}
}

// database returns the session's selected database, or the configured default.
func (h *Handlers) database(r *http.Request) string {
	if h.deps.Sessions == nil {
		return h.deps.DefaultDatabase
	}
	session, err := h.deps.Sessions.Get(r, common.SessionName)
	if err != nil {
		return h.deps.DefaultDatabase
	}
	if db, ok := session.Values[sessionDatabaseKey].(string); ok && db != "" {
		return db
	}
	return h.deps.DefaultDatabase
}

// readSignals decodes the request signals and starts the SSE stream.
// It returns nil when the stream already carries an error.
func (h *Handlers) readSignals(w http.ResponseWriter, r *http.Request, targetID string) (*datastar.ServerSentEventGenerator, *Signals) {
	var signals Signals
	err := datastar.ReadSignals(r, &signals)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(targetID, "Failed to read signals: "+err.Error()))
		return sse, nil
	}
	if h.svc == nil {
		_ = sse.PatchElementTempl(common.Notice(targetID, disabledMessage))
		return sse, nil
	}
	return sse, &signals
}

// DatabasesSSE renders the database picker.
func (h *Handlers) DatabasesSSE(w http.ResponseWriter, r *http.Request) {
	selected := h.database(r)
	sse := datastar.NewSSE(w, r)
	if h.svc == nil {
		_ = sse.PatchElementTempl(common.Notice(databasesID, disabledMessage))
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	dbs, err := h.svc.ListDatabases(ctx)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(databasesID, describeError(err), err))
		return
	}
	if err := sse.PatchElementTempl(DatabasePicker(dbs, selected)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// RefreshSSE drops the cached schema, discovers again and re-renders both
// pickers.
func (h *Handlers) RefreshSSE(w http.ResponseWriter, r *http.Request) {
	selected := h.database(r)
	sse := datastar.NewSSE(w, r)
	if h.svc == nil {
		_ = sse.PatchElementTempl(common.Notice(databasesID, disabledMessage))
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	sd, err := h.svc.RefreshSchema(ctx)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(databasesID, describeError(err), err))
		return
	}
	if err := sse.PatchElementTempl(DatabasePicker(sd.DatabaseNames(), selected)); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	h.patchTables(sse, r, selected)
}

// UseDatabaseSSE stores the chosen database in the session and renders
// its tables.
func (h *Handlers) UseDatabaseSSE(w http.ResponseWriter, r *http.Request) {
	var signals Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.PatchElementTempl(common.ErrorPanel(tablesID, "Failed to read signals: "+err.Error()))
		return
	}

	// the session cookie must be written before the stream starts
	if h.deps.Sessions != nil && signals.Database != "" {
		if session, err := h.deps.Sessions.Get(r, common.SessionName); err == nil {
			session.Values[sessionDatabaseKey] = signals.Database
			_ = session.Save(r, w)
		}
	}

	sse := datastar.NewSSE(w, r)
	h.patchTables(sse, r, signals.Database)
}

// TablesSSE renders the tables of the session's database.
func (h *Handlers) TablesSSE(w http.ResponseWriter, r *http.Request) {
	db := h.database(r)
	sse := datastar.NewSSE(w, r)
	h.patchTables(sse, r, db)
}

func (h *Handlers) patchTables(sse *datastar.ServerSentEventGenerator, r *http.Request, database string) {
	if h.svc == nil {
		_ = sse.PatchElementTempl(common.Notice(tablesID, disabledMessage))
		return
	}
	if database == "" {
		database = h.deps.DefaultDatabase
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	tables, err := h.svc.ListTables(ctx, database)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(tablesID, describeError(err), err))
		return
	}
	if err := sse.PatchElementTempl(TablePicker(database, tables)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ColumnsSSE renders the insert form for the selected table.
func (h *Handlers) ColumnsSSE(w http.ResponseWriter, r *http.Request) {
	db := h.database(r)
	sse, signals := h.readSignals(w, r, formID)
	if signals == nil {
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	table := strings.TrimSpace(signals.Table)
	cols, err := h.svc.InsertableColumns(ctx, db, table)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(formID, describeError(err), err))
		return
	}
	if len(cols) == 0 {
		_ = sse.PatchElementTempl(common.Notice(formID, "No insertable columns for "+db+"."+table))
		return
	}
	if err := sse.PatchElementTempl(InsertForm(table, cols)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// FetchSSE shows the first rows of the selected table.
func (h *Handlers) FetchSSE(w http.ResponseWriter, r *http.Request) {
	db := h.database(r)
	sse, signals := h.readSignals(w, r, resultsID)
	if signals == nil {
		return
	}

	limit := signals.Limit
	if limit <= 0 {
		limit = h.deps.DefaultLimit
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	start := time.Now()
	rt, sqlText, err := h.svc.FetchTable(ctx, db, signals.Table, limit)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(resultsID, describeError(err), err))
		return
	}
	view := common.NewTableView(rt, time.Since(start))
	view.SQL = sqlText
	if err := sse.PatchElementTempl(common.ResultTable(resultsID, view)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SelectSSE runs operator SELECT statements against the session's database.
func (h *Handlers) SelectSSE(w http.ResponseWriter, r *http.Request) {
	db := h.database(r)
	sse, signals := h.readSignals(w, r, resultsID)
	if signals == nil {
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	start := time.Now()
	rt, err := h.svc.RunSelect(ctx, db, signals.SQL)
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(resultsID, describeError(err), err))
		return
	}
	view := common.NewTableView(rt, time.Since(start))
	view.SQL = strings.TrimSpace(signals.SQL)
	if err := sse.PatchElementTempl(common.ResultTable(resultsID, view)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// InsertSSE inserts one row built from the form values. Columns keep the
// table's ordinal order, as in the form.
func (h *Handlers) InsertSSE(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, db string, s *Signals) core.MutationRequest {
		req := core.InsertRequest{Table: s.Table, Values: crud.CompactValues(s.Values)}
		if cols, err := h.svc.InsertableColumns(ctx, db, s.Table); err == nil {
			for _, c := range cols {
				req.Columns = append(req.Columns, c.Name)
			}
		}
		return req
	})
}

// DeleteSSE deletes the rows matched by the WHERE fragment.
func (h *Handlers) DeleteSSE(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(_ context.Context, _ string, s *Signals) core.MutationRequest {
		return core.DeleteRequest{Table: s.Table, Where: s.Where}
	})
}

// UpdateSSE applies the SET fragment to the rows matched by WHERE.
func (h *Handlers) UpdateSSE(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(_ context.Context, _ string, s *Signals) core.MutationRequest {
		return core.UpdateRequest{Table: s.Table, Set: s.Set, Where: s.Where}
	})
}

type requestBuilder func(ctx context.Context, database string, s *Signals) core.MutationRequest

func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, build requestBuilder) {
	db := h.database(r)
	sse, signals := h.readSignals(w, r, mutationID)
	if signals == nil {
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	res, err := h.svc.Apply(ctx, db, build(ctx, db, signals))
	if err != nil {
		_ = sse.PatchElementTempl(common.FailurePanel(mutationID, describeError(err), err))
		return
	}
	if h.deps.Notifier != nil {
		h.deps.Notifier.Broadcast(notifier.SourceCRUD, res.SQL)
	}
	if err := sse.PatchElementTempl(MutationResult(res)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

const disabledMessage = "CRUD is not configured. Set crud.type and connection settings in cricdash.yaml."

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
		return sm.Error()
	case errors.As(err, &ce):
		return "Could not connect to the CRUD target: " + ce.Error()
	default:
		return err.Error()
	}
}
