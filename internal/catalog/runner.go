package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// Selecter runs trusted read statements. *store.Store implements it.
type Selecter interface {
	Select(ctx context.Context, sql string) (core.ResultTable, error)
}

// Runner executes catalog templates.
type Runner struct {
	db     Selecter
	logger *slog.Logger
}

// NewRunner creates a runner over db. A nil logger discards output.
func NewRunner(db Selecter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{db: db, logger: logger}
}

// Run executes tmpl. Missing tables or columns surface as
// *core.SchemaMismatchError, other failures as *core.EngineExecutionError.
func (r *Runner) Run(ctx context.Context, tmpl core.QueryTemplate) (core.ResultTable, error) {
	start := time.Now()
	result, err := r.db.Select(ctx, tmpl.SQL)
	if err != nil {
		err = adapter.Classify(err, tmpl.SQL, adapter.ClassifyMessage)
		r.logger.Warn("template failed", slog.String("id", tmpl.ID), slog.String("error", err.Error()))
		return core.ResultTable{}, err
	}

	r.logger.Debug("template executed",
		slog.String("id", tmpl.ID),
		slog.Int("rows", result.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// RunRef resolves ref with Lookup and runs the template.
func (r *Runner) RunRef(ctx context.Context, ref string) (core.QueryTemplate, core.ResultTable, error) {
	tmpl, err := Lookup(ref)
	if err != nil {
		return core.QueryTemplate{}, core.ResultTable{}, err
	}
	result, err := r.Run(ctx, tmpl)
	return tmpl, result, err
}
