package core

import (
	"sort"
	"strings"
)

// KeyRole is the key participation of a column.
type KeyRole int

// Key roles reported by discovery.
const (
	KeyNone KeyRole = iota
	KeyPrimary
	KeyUnique
	KeyForeign
)

// ParseKeyRole maps MySQL COLUMN_KEY values to a KeyRole.
// MUL marks a non-unique index and is reported as KeyForeign.
func ParseKeyRole(s string) KeyRole {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRI":
		return KeyPrimary
	case "UNI":
		return KeyUnique
	case "MUL":
		return KeyForeign
	default:
		return KeyNone
	}
}

// String returns the COLUMN_KEY spelling of the role.
func (k KeyRole) String() string {
	switch k {
	case KeyPrimary:
		return "PRI"
	case KeyUnique:
		return "UNI"
	case KeyForeign:
		return "MUL"
	default:
		return ""
	}
}

// MarshalText renders the role for JSON and YAML output.
func (k KeyRole) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Column describes one column of a base table.
type Column struct {
	Name     string  `json:"name" yaml:"name"`
	Type     string  `json:"type" yaml:"type"`
	Nullable bool    `json:"nullable" yaml:"nullable"`
	Key      KeyRole `json:"key" yaml:"key"`
	Default  *string `json:"default" yaml:"default"`
	Extra    string  `json:"extra" yaml:"extra"`
}

// AutoIncrement reports whether the engine assigns the column's value.
func (c Column) AutoIncrement() bool {
	return strings.Contains(strings.ToLower(c.Extra), "auto_increment")
}

// DatabaseSchema is the discovered content of one database.
type DatabaseSchema struct {
	Tables map[string][]Column `json:"tables" yaml:"tables"`
	Views  []string            `json:"views" yaml:"views"`
}

// SchemaDescriptor maps database name to its discovered schema.
type SchemaDescriptor map[string]*DatabaseSchema

// DatabaseNames returns the database names in sorted order.
func (s SchemaDescriptor) DatabaseNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableNames returns the base table names of db in sorted order.
// An unknown database yields nil.
func (s SchemaDescriptor) TableNames(db string) []string {
	d, ok := s[db]
	if !ok || d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Tables))
	for name := range d.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Columns returns the columns of db.table in ordinal order.
func (s SchemaDescriptor) Columns(db, table string) ([]Column, bool) {
	d, ok := s[db]
	if !ok || d == nil {
		return nil, false
	}
	cols, ok := d.Tables[table]
	return cols, ok
}
