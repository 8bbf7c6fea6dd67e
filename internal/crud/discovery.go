package crud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// DiscoverSchema returns every non-system database with its base tables,
// their columns, and its view names. With a cache the result is reused.
func (s *Service) DiscoverSchema(ctx context.Context) (core.SchemaDescriptor, error) {
	if s.cache != nil {
		return s.cache.Get(ctx, s.CacheKey(), s.discover)
	}
	return s.discover(ctx)
}

// RefreshSchema drops any cached schema and discovers again.
func (s *Service) RefreshSchema(ctx context.Context) (core.SchemaDescriptor, error) {
	if s.cache != nil {
		return s.cache.Refresh(ctx, s.CacheKey(), s.discover)
	}
	return s.discover(ctx)
}

func (s *Service) discover(ctx context.Context) (core.SchemaDescriptor, error) {
	log := s.opLogger("discover_schema")
	start := time.Now()

	server, err := s.open(ctx, "connect", "")
	if err != nil {
		return nil, err
	}
	names, err := server.ListDatabases(ctx)
	closeQuietly(log, server)
	if err != nil {
		return nil, &core.ConnectionError{Op: "list databases", Target: s.target(""), Err: err}
	}

	sd := make(core.SchemaDescriptor)
	for _, name := range names {
		if s.dialect.IsSystemDatabase(name) {
			continue
		}
		db, err := s.describeDatabase(ctx, log, name)
		if err != nil {
			log.Warn("skipping database", slog.String("database", name), slog.String("error", err.Error()))
			continue
		}
		if db == nil {
			continue
		}
		sd[name] = db
	}

	log.Debug("schema discovered", slog.Int("databases", len(sd)), elapsed(start))
	return sd, nil
}

// describeDatabase returns nil when the database has no usable base tables.
func (s *Service) describeDatabase(ctx context.Context, log *slog.Logger, name string) (*core.DatabaseSchema, error) {
	conn, err := s.open(ctx, "connect", name)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(log, conn)

	tables, err := conn.ListTables(ctx, adapter.BaseTable)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if len(tables) == 0 {
		return nil, nil
	}

	db := &core.DatabaseSchema{Tables: make(map[string][]core.Column, len(tables))}
	for _, table := range tables {
		cols, err := conn.TableColumns(ctx, name, table)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", table, err)
		}
		if len(cols) == 0 {
			log.Debug("dropping table without columns", slog.String("database", name), slog.String("table", table))
			continue
		}
		db.Tables[table] = cols
	}
	if len(db.Tables) == 0 {
		return nil, nil
	}

	views, err := conn.ListTables(ctx, adapter.View)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	db.Views = views
	if db.Views == nil {
		db.Views = []string{}
	}
	return db, nil
}

// ListDatabases returns the discovered database names, sorted.
func (s *Service) ListDatabases(ctx context.Context) ([]string, error) {
	sd, err := s.DiscoverSchema(ctx)
	if err != nil {
		return nil, err
	}
	return sd.DatabaseNames(), nil
}

// ListTables returns the base tables of database, sorted. An unknown
// database yields an empty list.
func (s *Service) ListTables(ctx context.Context, database string) ([]string, error) {
	sd, err := s.DiscoverSchema(ctx)
	if err != nil {
		return nil, err
	}
	return sd.TableNames(database), nil
}

// TableColumns returns the columns of database.table in ordinal order.
func (s *Service) TableColumns(ctx context.Context, database, table string) ([]core.Column, error) {
	sd, err := s.DiscoverSchema(ctx)
	if err != nil {
		return nil, err
	}
	cols, _ := sd.Columns(database, table)
	return cols, nil
}

// InsertableColumns returns the columns an insert form should offer:
// everything except auto-increment columns.
func (s *Service) InsertableColumns(ctx context.Context, database, table string) ([]core.Column, error) {
	cols, err := s.TableColumns(ctx, database, table)
	if err != nil {
		return nil, err
	}
	return Insertable(cols), nil
}

// Insertable drops auto-increment columns.
func Insertable(cols []core.Column) []core.Column {
	out := make([]core.Column, 0, len(cols))
	for _, c := range cols {
		if !c.AutoIncrement() {
			out = append(out, c)
		}
	}
	return out
}
