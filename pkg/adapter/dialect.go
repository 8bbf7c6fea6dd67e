package adapter

import (
	"strconv"
	"strings"
)

// Dialect describes how SQL text is spelled for one engine.
type Dialect struct {
	Name        string
	QuoteChar   byte
	DefaultPort int

	// SystemDatabases are excluded from discovery (compared case-insensitively).
	SystemDatabases []string

	// Placeholder renders the n-th (1-based) bind marker in executed SQL.
	Placeholder func(n int) string

	// DisplayPlaceholder renders the n-th bind marker in the SQL text
	// reported back to callers. Nil means Placeholder.
	DisplayPlaceholder func(n int) string
}

// QuoteIdentifier wraps name in the dialect's quote character, doubling
// any embedded quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	q := string(d.QuoteChar)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// IsSystemDatabase reports whether name is one of the dialect's system databases.
func (d *Dialect) IsSystemDatabase(name string) bool {
	for _, sys := range d.SystemDatabases {
		if strings.EqualFold(sys, name) {
			return true
		}
	}
	return false
}

// ExecMarker returns the bind marker used in executed SQL.
func (d *Dialect) ExecMarker(n int) string {
	if d.Placeholder == nil {
		return "?"
	}
	return d.Placeholder(n)
}

// DisplayMarker returns the bind marker used in reported SQL.
func (d *Dialect) DisplayMarker(n int) string {
	if d.DisplayPlaceholder == nil {
		return d.ExecMarker(n)
	}
	return d.DisplayPlaceholder(n)
}

// QuestionPlaceholder renders ? markers.
func QuestionPlaceholder(int) string { return "?" }

// PercentPlaceholder renders %s markers.
func PercentPlaceholder(int) string { return "%s" }

// DollarPlaceholder renders $1, $2, ... markers.
func DollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }
