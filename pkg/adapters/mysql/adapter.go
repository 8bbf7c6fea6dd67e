// Package mysql provides the MySQL CRUD adapter for cricdash.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

const defaultPort = 3306

// Dialect is the MySQL dialect: backtick identifiers, ? bind markers
// executed and %s markers reported.
var Dialect = &adapter.Dialect{
	Name:               "mysql",
	QuoteChar:          '`',
	DefaultPort:        defaultPort,
	SystemDatabases:    []string{"information_schema", "performance_schema", "mysql", "sys"},
	Placeholder:        adapter.QuestionPlaceholder,
	DisplayPlaceholder: adapter.PercentPlaceholder,
}

// Adapter implements the adapter.Adapter interface for MySQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new MySQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// Dialect returns the MySQL dialect.
func (a *Adapter) Dialect() *adapter.Dialect {
	return Dialect
}

// Connect opens a single-connection pool to MySQL. Statements autocommit.
func (a *Adapter) Connect(ctx context.Context, cfg core.AdapterConfig) error {
	dsn := buildMySQLDSN(cfg)

	a.Logger.Debug("connecting to mysql", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildMySQLDSN constructs a go-sql-driver DSN such as
// user:pass@tcp(host:3306)/db?timeout=10s.
func buildMySQLDSN(cfg core.AdapterConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.Timeout = 10 * time.Second

	for k, v := range cfg.Options {
		switch k {
		case "tls":
			mc.TLSConfig = v
		default:
			if mc.Params == nil {
				mc.Params = map[string]string{}
			}
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN()
}

// ListDatabases runs SHOW DATABASES.
func (a *Adapter) ListDatabases(ctx context.Context) ([]string, error) {
	return a.QueryStrings(ctx, "SHOW DATABASES")
}

// ListTables runs SHOW FULL TABLES filtered by table type.
func (a *Adapter) ListTables(ctx context.Context, kind adapter.TableKind) ([]string, error) {
	return a.QueryStrings(ctx, "SHOW FULL TABLES WHERE Table_type = '"+kind.String()+"'")
}

const columnsQuery = `SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY, COLUMN_DEFAULT, EXTRA
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`

// TableColumns reads INFORMATION_SCHEMA.COLUMNS in ordinal order.
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

// ClassifyError maps MySQL server error numbers to error classes.
func (a *Adapter) ClassifyError(err error) adapter.ErrorClass {
	return classify(err)
}

func classify(err error) adapter.ErrorClass {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1044, 1045, 2002, 2003, 2005:
			return adapter.ClassConnection
		case 1049, 1054, 1146:
			return adapter.ClassSchema
		}
		return adapter.ClassExecution
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return adapter.ClassConnection
	}
	return adapter.ClassExecution
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
