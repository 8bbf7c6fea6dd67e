package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec, and Query implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    core.AdapterConfig
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection", slog.String("database", b.Cfg.Database))
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) (int64, error) {
	if b.DB == nil {
		return 0, fmt.Errorf("database connection not established")
	}
	res, err := b.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute SQL: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// Query executes a SQL statement and scans every row into a ResultTable.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (core.ResultTable, error) {
	if b.DB == nil {
		return core.ResultTable{}, fmt.Errorf("database connection not established")
	}
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return core.ResultTable{}, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return ScanRows(rows)
}

// QueryStrings runs a query and collects the first column of every row.
func (b *BaseSQLAdapter) QueryStrings(ctx context.Context, sqlStr string, args ...any) ([]string, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	rows, err := b.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var out []string
	for rows.Next() {
		dest := make([]any, len(cols))
		var first sql.NullString
		dest[0] = &first
		for i := 1; i < len(cols); i++ {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, first.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}
