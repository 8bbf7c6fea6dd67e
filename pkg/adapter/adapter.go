// Package adapter provides the relational adapter contract used by the
// cricdash CRUD layer.
//
// This package contains the public contract that all CRUD targets must implement.
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves from init().
package adapter

import (
	"context"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// TableKind selects base tables or views in a table listing.
type TableKind int

// Table kinds.
const (
	BaseTable TableKind = iota
	View
)

func (k TableKind) String() string {
	if k == View {
		return "VIEW"
	}
	return "BASE TABLE"
}

// Adapter defines the interface that all CRUD target adapters must implement.
// An adapter wraps exactly one connection; callers open one per operation
// and close it before returning.
type Adapter interface {
	// Connect establishes a connection. An empty cfg.Database connects to
	// the server without selecting a database.
	Connect(ctx context.Context, cfg core.AdapterConfig) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows and reports the
	// affected row count.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (core.ResultTable, error)

	// ListDatabases returns every database visible to the credentials,
	// system databases included.
	ListDatabases(ctx context.Context) ([]string, error)

	// ListTables returns the tables of the connected database of the given kind.
	ListTables(ctx context.Context, kind TableKind) ([]string, error)

	// TableColumns returns column metadata ordered by ordinal position.
	TableColumns(ctx context.Context, database, table string) ([]core.Column, error)

	// ClassifyError maps a driver error to an error class.
	ClassifyError(err error) ErrorClass

	// Dialect returns the quoting and placeholder rules of the engine.
	Dialect() *Dialect
}
