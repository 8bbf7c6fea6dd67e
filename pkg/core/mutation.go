package core

import (
	"sort"
	"strings"
)

// MutationRequest is a single-statement change against a CRUD target table.
// It is implemented only by InsertRequest, DeleteRequest and UpdateRequest.
type MutationRequest interface {
	Validate() error
	TableName() string
	mutation()
}

// InsertRequest inserts one row. Values maps column name to value.
// Columns, when set, is the order the columns appear in the statement,
// usually the table's ordinal order.
type InsertRequest struct {
	Table   string
	Values  map[string]any
	Columns []string
}

// DeleteRequest deletes the rows matched by a trusted WHERE fragment.
type DeleteRequest struct {
	Table string
	Where string
}

// UpdateRequest updates the rows matched by a trusted WHERE fragment.
type UpdateRequest struct {
	Table string
	Set   string
	Where string
}

// MutationResult reports the affected row count and the SQL text that ran.
type MutationResult struct {
	Affected int64  `json:"affected" yaml:"affected"`
	SQL      string `json:"sql" yaml:"sql"`
}

func (InsertRequest) mutation() {}
func (DeleteRequest) mutation() {}
func (UpdateRequest) mutation() {}

// TableName returns the target table.
func (r InsertRequest) TableName() string { return r.Table }

// TableName returns the target table.
func (r DeleteRequest) TableName() string { return r.Table }

// TableName returns the target table.
func (r UpdateRequest) TableName() string { return r.Table }

// Validate checks the request has a table and at least one value.
func (r InsertRequest) Validate() error {
	if err := validateTable(r.Table); err != nil {
		return err
	}
	if len(r.Values) == 0 {
		return &ValidationError{Field: "values", Reason: "at least one column value is required"}
	}
	for col := range r.Values {
		if strings.TrimSpace(col) == "" {
			return &ValidationError{Field: "values", Reason: "column names cannot be empty"}
		}
	}
	return nil
}

// Validate refuses a delete without a WHERE clause.
func (r DeleteRequest) Validate() error {
	if err := validateTable(r.Table); err != nil {
		return err
	}
	if IsBlank(r.Where) {
		return &ValidationError{Field: "where", Reason: "refusing to delete without a WHERE clause"}
	}
	return nil
}

// Validate refuses an update without SET or WHERE clauses.
func (r UpdateRequest) Validate() error {
	if err := validateTable(r.Table); err != nil {
		return err
	}
	if IsBlank(r.Set) {
		return &ValidationError{Field: "set", Reason: "SET clause cannot be empty"}
	}
	if IsBlank(r.Where) {
		return &ValidationError{Field: "where", Reason: "refusing to update without a WHERE clause"}
	}
	return nil
}

// OrderedColumns returns the columns of Values in statement order: those
// named by Columns first, in that order, then the rest sorted by name.
func (r InsertRequest) OrderedColumns() []string {
	cols := make([]string, 0, len(r.Values))
	seen := make(map[string]bool, len(r.Values))
	for _, col := range r.Columns {
		if _, ok := r.Values[col]; ok && !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	rest := make([]string, 0, len(r.Values)-len(cols))
	for col := range r.Values {
		if !seen[col] {
			rest = append(rest, col)
		}
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateTable(table string) error {
	if IsBlank(table) {
		return &ValidationError{Field: "table", Reason: "table name is required"}
	}
	return nil
}
