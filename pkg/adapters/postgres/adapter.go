// Package postgres provides a PostgreSQL CRUD adapter for cricdash.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// Dialect is the PostgreSQL dialect: double-quoted identifiers and $N markers.
var Dialect = &adapter.Dialect{
	Name:            "postgres",
	QuoteChar:       '"',
	DefaultPort:     5432,
	SystemDatabases: []string{"postgres", "template0", "template1"},
	Placeholder:     adapter.DollarPlaceholder,
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the PostgreSQL dialect.
func (a *Adapter) Dialect() *adapter.Dialect {
	return Dialect
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	dsn := buildPostgresDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
// Without a database it connects to the maintenance database "postgres".
func buildPostgresDSN(cfg core.AdapterConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	database := cfg.Database
	if database == "" {
		database = "postgres"
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", host, port, database, sslmode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", quoteDSNValue(cfg.Password))
	}

	var extra []string
	for k, v := range cfg.Options {
		if k == "sslmode" {
			continue
		}
		extra = append(extra, fmt.Sprintf("%s=%s", k, quoteDSNValue(v)))
	}
	sort.Strings(extra)
	if len(extra) > 0 {
		dsn += " " + strings.Join(extra, " ")
	}

	return dsn
}

// quoteDSNValue single-quotes values containing spaces or quotes.
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// ListDatabases lists databases that accept connections.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SELECT datname FROM pg_database WHERE datallowconn ORDER BY datname")
}

// ListTables lists tables of the current schema by table type.
func (a *Adapter) ListTables(ctx context.Context, kind adapter.TableKind) ([]string, error) {
	return a.QueryStrings(ctx, `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = $1
ORDER BY table_name`, kind.String())
}

// columnsQuery reports key roles in COLUMN_KEY spelling and identity or
// serial columns as auto_increment.
const columnsQuery = `SELECT c.column_name,
	c.data_type,
	c.is_nullable,
	COALESCE((
		SELECT CASE tc.constraint_type
			WHEN 'PRIMARY KEY' THEN 'PRI'
			WHEN 'UNIQUE' THEN 'UNI'
			WHEN 'FOREIGN KEY' THEN 'MUL'
		END
		FROM information_schema.key_column_usage k
		JOIN information_schema.table_constraints tc
			ON tc.constraint_name = k.constraint_name AND tc.table_schema = k.table_schema
		WHERE k.table_schema = c.table_schema AND k.table_name = c.table_name AND k.column_name = c.column_name
		ORDER BY CASE tc.constraint_type WHEN 'PRIMARY KEY' THEN 0 WHEN 'UNIQUE' THEN 1 ELSE 2 END
		LIMIT 1
	), '') AS column_key,
	c.column_default,
	CASE WHEN c.is_identity = 'YES' OR c.column_default LIKE 'nextval(%' THEN 'auto_increment' ELSE '' END AS extra
FROM information_schema.columns c
WHERE c.table_catalog = $1 AND c.table_schema = current_schema() AND c.table_name = $2
ORDER BY c.ordinal_position`

// TableColumns reads information_schema.columns in ordinal order.
func (a *Adapter) TableColumns(ctx context.Context, database, table string) ([]core.Column, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := a.DB.QueryContext(ctx, columnsQuery, database, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return adapter.ScanColumns(rows)
}

// ClassifyError maps SQLSTATE codes to error classes.
func (a *Adapter) ClassifyError(err error) adapter.ErrorClass {
	return classify(err)
}

func classify(err error) adapter.ErrorClass {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return adapter.ClassConnection
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return adapter.ClassExecution
	}
	switch {
	case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "28"):
		return adapter.ClassConnection
	case pgErr.Code == "42P01", pgErr.Code == "42703", pgErr.Code == "3D000":
		return adapter.ClassSchema
	default:
		return adapter.ClassExecution
	}
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
