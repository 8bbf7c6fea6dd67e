package adapter

import (
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// ScanRows drains rows into a ResultTable. []byte values are converted to
// string. The caller closes rows.
func ScanRows(rows *sql.Rows) (core.ResultTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return core.ResultTable{}, fmt.Errorf("failed to get columns: %w", err)
	}

	result := core.ResultTable{Columns: cols, Rows: []core.Row{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return core.ResultTable{}, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(core.Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.ResultTable{}, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// ScanColumns reads column metadata rows shaped as
// (name, type, nullable, key, default, extra).
func ScanColumns(rows *sql.Rows) ([]core.Column, error) {
	var columns []core.Column
	for rows.Next() {
		var (
			col      core.Column
			nullable string
			key      sql.NullString
			def      sql.NullString
			extra    sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &key, &def, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		col.Key = core.ParseKeyRole(key.String)
		if def.Valid {
			d := def.String
			col.Default = &d
		}
		col.Extra = extra.String
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	return columns, nil
}
