package adapter

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// ErrorClass is the taxonomy bucket of a driver error.
type ErrorClass int

// Error classes.
const (
	ClassExecution ErrorClass = iota
	ClassConnection
	ClassSchema
)

// Classify wraps err in the core error type selected by classify.
// Network errors and driver.ErrBadConn are connection errors whatever the
// classifier says. Errors that are already classified pass through.
func Classify(err error, sqlText string, classify func(error) ErrorClass) error {
	if err == nil {
		return nil
	}
	if IsClassified(err) {
		return err
	}

	class := ClassExecution
	if classify != nil {
		class = classify(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) {
		class = ClassConnection
	}

	switch class {
	case ClassConnection:
		return &core.ConnectionError{Op: "execute", Err: err}
	case ClassSchema:
		return &core.SchemaMismatchError{SQL: sqlText, Err: err}
	default:
		return &core.EngineExecutionError{SQL: sqlText, Err: err}
	}
}

// IsClassified reports whether err already carries a core error type.
func IsClassified(err error) bool {
	var (
		ce *core.ConnectionError
		ve *core.ValidationError
		se *core.SchemaMismatchError
		ee *core.EngineExecutionError
	)
	return errors.As(err, &ce) || errors.As(err, &ve) || errors.As(err, &se) || errors.As(err, &ee)
}

// ClassifyMessage applies the SQLite wording rules: "no such table" and
// "no such column" are schema mismatches. It is also the fallback for
// drivers that report errors only as text.
func ClassifyMessage(err error) ErrorClass {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"):
		return ClassSchema
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "unable to open database"):
		return ClassConnection
	default:
		return ClassExecution
	}
}
