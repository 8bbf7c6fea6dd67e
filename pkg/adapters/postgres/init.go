// Package postgres provides a PostgreSQL CRUD adapter for cricdash.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/cricdash/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
