// Package store provides the SQLite analytics store that the query catalog
// and the SQL playground read from.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DefaultPath is the analytics database file used when none is configured.
const DefaultPath = "cricket_info.db"

// Store is an open analytics database.
type Store struct {
	db       *sql.DB
	path     string
	readOnly bool
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ReadOnly opens the database file in read-only mode. Migrate fails on a
// read-only store.
func ReadOnly() Option {
	return func(s *Store) { s.readOnly = true }
}

// Open opens the analytics database at path. Use ":memory:" for a
// private in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	registerFunctions()

	s := &Store{path: path, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &core.ConnectionError{Op: "open", Target: path, Err: err}
	}

	s.db = db
	s.logger.Debug("analytics store opened", slog.String("path", path), slog.Bool("read_only", s.readOnly))
	return s, nil
}

func (s *Store) dsn() string {
	if s.path == ":memory:" {
		return ":memory:"
	}
	params := []string{"_pragma=busy_timeout(5000)"}
	if s.readOnly {
		params = append(params, "mode=ro")
	}
	return "file:" + s.path + "?" + strings.Join(params, "&")
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exec runs a statement without the read-only guard. It is used by
// loaders and tests that prepare data.
func (s *Store) Exec(ctx context.Context, sqlStr string, args ...any) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return adapter.Classify(err, sqlStr, adapter.ClassifyMessage)
	}
	return nil
}

// Select runs a statement and scans every row. There is no read-only
// guard; callers pass trusted SQL such as catalog templates.
func (s *Store) Select(ctx context.Context, sqlStr string) (core.ResultTable, error) {
	if s.db == nil {
		return core.ResultTable{}, fmt.Errorf("database not opened")
	}
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return core.ResultTable{}, adapter.Classify(err, sqlStr, adapter.ClassifyMessage)
	}
	defer func() { _ = rows.Close() }()

	result, err := adapter.ScanRows(rows)
	if err != nil {
		return core.ResultTable{}, adapter.Classify(err, sqlStr, adapter.ClassifyMessage)
	}
	return result, nil
}
