package crud

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/cricdash/internal/crud/statement"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// FetchTable returns up to limit rows of table. limit is clamped to
// [1, 10000]. The SQL text is returned alongside the rows.
func (s *Service) FetchTable(ctx context.Context, database, table string, limit int) (core.ResultTable, string, error) {
	if core.IsBlank(table) {
		return core.ResultTable{}, "", &core.ValidationError{Field: "table", Reason: "table name is required"}
	}
	stmt := s.builder().Select(table, limit)
	result, err := s.query(ctx, "fetch_table", database, stmt.Exec, stmt.Text)
	return result, stmt.Text, err
}

// RunSelect runs operator SQL that must start with SELECT. Anything else
// is rejected before a connection is opened.
func (s *Service) RunSelect(ctx context.Context, database, sql string) (core.ResultTable, error) {
	if !statement.IsSelect(sql) {
		return core.ResultTable{}, &core.ValidationError{Field: "sql", Reason: "only SELECT queries are allowed here"}
	}
	return s.query(ctx, "run_select", database, sql, sql)
}

func (s *Service) query(ctx context.Context, op, database, execSQL, text string) (core.ResultTable, error) {
	log := s.opLogger(op)
	start := time.Now()

	conn, err := s.open(ctx, "connect", database)
	if err != nil {
		return core.ResultTable{}, err
	}
	defer closeQuietly(log, conn)

	result, err := conn.Query(ctx, execSQL)
	if err != nil {
		return core.ResultTable{}, adapter.Classify(err, text, conn.ClassifyError)
	}
	log.Debug("query complete", slog.String("database", database), slog.Int("rows", result.Len()), elapsed(start))
	return result, nil
}

// InsertRow inserts one row. Values are bound as parameters; the reported
// SQL uses the dialect's display markers.
func (s *Service) InsertRow(ctx context.Context, database, table string, values map[string]any) (core.MutationResult, error) {
	return s.Apply(ctx, database, core.InsertRequest{Table: table, Values: values})
}

// DeleteRows deletes the rows matched by where. A blank where is refused.
func (s *Service) DeleteRows(ctx context.Context, database, table, where string) (core.MutationResult, error) {
	return s.Apply(ctx, database, core.DeleteRequest{Table: table, Where: where})
}

// ExecuteUpdate applies set to the rows matched by where. Blank clauses are refused.
func (s *Service) ExecuteUpdate(ctx context.Context, database, table, set, where string) (core.MutationResult, error) {
	return s.Apply(ctx, database, core.UpdateRequest{Table: table, Set: set, Where: where})
}

// Apply validates, renders and executes a single mutation in autocommit mode.
func (s *Service) Apply(ctx context.Context, database string, req core.MutationRequest) (core.MutationResult, error) {
	stmt, err := s.builder().Mutation(req)
	if err != nil {
		return core.MutationResult{}, err
	}

	log := s.opLogger("mutation")
	start := time.Now()

	conn, err := s.open(ctx, "connect", database)
	if err != nil {
		return core.MutationResult{}, err
	}
	defer closeQuietly(log, conn)

	n, err := conn.Exec(ctx, stmt.Exec, stmt.Args...)
	if err != nil {
		return core.MutationResult{}, adapter.Classify(err, stmt.Text, conn.ClassifyError)
	}

	log.Info("mutation applied",
		slog.String("request", describe(req)),
		slog.String("database", database),
		slog.Int64("affected", n),
		elapsed(start))
	return core.MutationResult{Affected: n, SQL: stmt.Text}, nil
}

// CompactValues turns form input into insert values, dropping blank entries.
func CompactValues(form map[string]string) map[string]any {
	out := make(map[string]any, len(form))
	for k, v := range form {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out[k] = v
	}
	return out
}
