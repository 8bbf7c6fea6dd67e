package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/pressly/goose/v3"
)

// ColumnInfo is one row of PRAGMA table_info.
type ColumnInfo struct {
	CID     int     `json:"cid" yaml:"cid"`
	Name    string  `json:"name" yaml:"name"`
	Type    string  `json:"type" yaml:"type"`
	NotNull bool    `json:"notnull" yaml:"notnull"`
	Default *string `json:"default" yaml:"default"`
	PK      int     `json:"pk" yaml:"pk"`
}

// ListTables returns user tables in name order, excluding SQLite and
// migration bookkeeping tables.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != ? ORDER BY name`,
		goose.TableName())
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableSchema returns the columns of table via PRAGMA table_info. An
// unknown table yields an empty slice.
func (s *Store) TableSchema(ctx context.Context, table string) ([]ColumnInfo, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	q := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, adapter.Classify(err, q, adapter.ClassifyMessage)
	}
	defer func() { _ = rows.Close() }()

	cols := []ColumnInfo{}
	for rows.Next() {
		var (
			c       ColumnInfo
			notNull int
			def     sql.NullString
		)
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &notNull, &def, &c.PK); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		c.NotNull = notNull != 0
		if def.Valid {
			d := def.String
			c.Default = &d
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// DefaultQuery suggests a playground query for the selected tables.
func DefaultQuery(tables []string) string {
	switch len(tables) {
	case 0:
		return "SELECT name FROM sqlite_master WHERE type='table';"
	case 1:
		return fmt.Sprintf("SELECT * FROM %s LIMIT 10;", tables[0])
	default:
		return strings.Join([]string{
			"SELECT *",
			"FROM " + tables[0] + " a",
			"JOIN " + tables[1] + " b",
			"  ON a.id = b.id",
			"LIMIT 10;",
		}, "\n")
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
