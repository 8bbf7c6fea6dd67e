package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// Query runs playground SQL. Only SELECT, WITH and PRAGMA table_info
// statements are accepted, and they run on a connection with
// PRAGMA query_only set so writes hidden behind WITH are refused by SQLite.
func (s *Store) Query(ctx context.Context, sqlStr string) (core.ResultTable, error) {
	if s.db == nil {
		return core.ResultTable{}, fmt.Errorf("database not opened")
	}
	if !IsReadOnlyStatement(sqlStr) {
		return core.ResultTable{}, &core.ValidationError{
			Field:  "sql",
			Reason: "only SELECT, WITH and PRAGMA table_info statements are allowed in the playground",
		}
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return core.ResultTable{}, &core.ConnectionError{Op: "query", Target: s.path, Err: err}
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return core.ResultTable{}, fmt.Errorf("failed to enable query_only: %w", err)
	}
	defer func() { _, _ = conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA query_only = OFF") }()

	rows, err := conn.QueryContext(ctx, sqlStr)
	if err != nil {
		return core.ResultTable{}, adapter.Classify(err, sqlStr, adapter.ClassifyMessage)
	}
	defer func() { _ = rows.Close() }()

	result, err := adapter.ScanRows(rows)
	if err != nil {
		return core.ResultTable{}, adapter.Classify(err, sqlStr, adapter.ClassifyMessage)
	}
	return result, nil
}

// IsReadOnlyStatement reports whether sql starts with SELECT, WITH or
// PRAGMA table_info once leading comments and whitespace are removed.
func IsReadOnlyStatement(sql string) bool {
	body := strings.ToLower(StripLeadingComments(sql))
	switch LeadingKeyword(body) {
	case "select", "with":
		return true
	case "pragma":
		rest := strings.TrimSpace(body[len("pragma"):])
		return strings.HasPrefix(rest, "table_info")
	default:
		return false
	}
}

// LeadingKeyword returns the first word of sql after leading comments,
// lower-cased.
func LeadingKeyword(sql string) string {
	body := StripLeadingComments(sql)
	end := strings.IndexFunc(body, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '_')
	})
	if end < 0 {
		end = len(body)
	}
	return strings.ToLower(body[:end])
}

// StripLeadingComments removes leading whitespace, -- line comments and
// /* block */ comments.
func StripLeadingComments(sql string) string {
	s := sql
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			nl := strings.IndexByte(s, '\n')
			if nl < 0 {
				return ""
			}
			s = s[nl+1:]
		case strings.HasPrefix(s, "/*"):
			end := strings.Index(s, "*/")
			if end < 0 {
				return ""
			}
			s = s[end+2:]
		default:
			return s
		}
	}
}
