// Package statement assembles CRUD SQL text. Table and column names are
// quoted by the dialect; WHERE and SET fragments are trusted operator input
// and pass through Fragment, the single point where they are accepted.
package statement

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
)

// Row limits for table fetches.
const (
	MinLimit     = 1
	MaxLimit     = 10000
	DefaultLimit = 200
)

// ClauseKind names the clause a fragment is used in.
type ClauseKind string

// Clause kinds.
const (
	ClauseWhere ClauseKind = "where"
	ClauseSet   ClauseKind = "set"
)

// ClauseValidator inspects a non-blank fragment and may reject it.
type ClauseValidator func(kind ClauseKind, fragment string) error

// Statement is SQL ready to run. Text is what callers are shown; Exec is
// what the driver receives. They differ only in bind markers.
type Statement struct {
	Text string
	Exec string
	Args []any
}

// Builder renders statements for one dialect.
type Builder struct {
	Dialect   *adapter.Dialect
	Validator ClauseValidator
}

// New returns a Builder for d with an optional validator.
func New(d *adapter.Dialect, v ClauseValidator) Builder {
	return Builder{Dialect: d, Validator: v}
}

// Fragment accepts a clause fragment verbatim. Blank fragments are rejected
// with reason; the validator, when set, sees every other fragment.
func (b Builder) Fragment(kind ClauseKind, fragment, reason string) (string, error) {
	if core.IsBlank(fragment) {
		return "", &core.ValidationError{Field: string(kind), Reason: reason}
	}
	if b.Validator != nil {
		if err := b.Validator(kind, fragment); err != nil {
			return "", &core.ValidationError{Field: string(kind), Reason: err.Error()}
		}
	}
	return fragment, nil
}

// ClampLimit bounds n to [MinLimit, MaxLimit].
func ClampLimit(n int) int {
	switch {
	case n < MinLimit:
		return MinLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}

// Select renders SELECT * FROM <table> LIMIT <n>; with n clamped.
func (b Builder) Select(table string, limit int) Statement {
	text := fmt.Sprintf("SELECT * FROM %s LIMIT %d;", b.Dialect.QuoteIdentifier(table), ClampLimit(limit))
	return Statement{Text: text, Exec: text}
}

// Insert renders a single-row INSERT with one bind marker per value.
// Columns follow req.OrderedColumns.
func (b Builder) Insert(req core.InsertRequest) (Statement, error) {
	if err := req.Validate(); err != nil {
		return Statement{}, err
	}

	cols := req.OrderedColumns()
	quoted := make([]string, len(cols))
	display := make([]string, len(cols))
	exec := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = b.Dialect.QuoteIdentifier(col)
		display[i] = b.Dialect.DisplayMarker(i + 1)
		exec[i] = b.Dialect.ExecMarker(i + 1)
		args[i] = req.Values[col]
	}

	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", b.Dialect.QuoteIdentifier(req.Table), strings.Join(quoted, ", "))
	return Statement{
		Text: head + "(" + strings.Join(display, ", ") + ");",
		Exec: head + "(" + strings.Join(exec, ", ") + ");",
		Args: args,
	}, nil
}

// Delete renders DELETE FROM <table> WHERE <where>;.
func (b Builder) Delete(req core.DeleteRequest) (Statement, error) {
	if err := req.Validate(); err != nil {
		return Statement{}, err
	}
	where, err := b.Fragment(ClauseWhere, req.Where, "refusing to delete without a WHERE clause")
	if err != nil {
		return Statement{}, err
	}
	text := fmt.Sprintf("DELETE FROM %s WHERE %s;", b.Dialect.QuoteIdentifier(req.Table), where)
	return Statement{Text: text, Exec: text}, nil
}

// Update renders UPDATE <table> SET <set> WHERE <where>;.
func (b Builder) Update(req core.UpdateRequest) (Statement, error) {
	if err := req.Validate(); err != nil {
		return Statement{}, err
	}
	set, err := b.Fragment(ClauseSet, req.Set, "SET clause cannot be empty")
	if err != nil {
		return Statement{}, err
	}
	where, err := b.Fragment(ClauseWhere, req.Where, "refusing to update without a WHERE clause")
	if err != nil {
		return Statement{}, err
	}
	text := fmt.Sprintf("UPDATE %s SET %s WHERE %s;", b.Dialect.QuoteIdentifier(req.Table), set, where)
	return Statement{Text: text, Exec: text}, nil
}

// Mutation renders any MutationRequest.
func (b Builder) Mutation(req core.MutationRequest) (Statement, error) {
	switch r := req.(type) {
	case core.InsertRequest:
		return b.Insert(r)
	case core.DeleteRequest:
		return b.Delete(r)
	case core.UpdateRequest:
		return b.Update(r)
	default:
		return Statement{}, fmt.Errorf("unsupported mutation %T", req)
	}
}

// IsSelect reports whether sql begins with SELECT after trimming and
// lower-casing. It is a prefix check only.
func IsSelect(sql string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(sql)), "select")
}
