package core

import (
	"errors"
	"fmt"
)

// ConnectionError reports that a relational engine could not be reached
// or refused the credentials.
type ConnectionError struct {
	Op     string
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: connection failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: connection failed: %v", e.Op, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ValidationError reports input rejected before any statement is executed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns nil; validation errors have no cause.
func (e *ValidationError) Unwrap() error { return nil }

// SchemaMismatchError reports that a statement referenced a table, column
// or database the engine does not have.
type SchemaMismatchError struct {
	SQL string
	Err error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %v", e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// EngineExecutionError reports any other failure raised while executing SQL.
type EngineExecutionError struct {
	SQL string
	Err error
}

func (e *EngineExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *EngineExecutionError) Unwrap() error { return e.Err }

// AttemptedSQL returns the statement carried by a SchemaMismatchError or
// EngineExecutionError in err's chain, or "".
func AttemptedSQL(err error) string {
	var (
		sm *SchemaMismatchError
		ee *EngineExecutionError
	)
	switch {
	case errors.As(err, &sm):
		return sm.SQL
	case errors.As(err, &ee):
		return ee.SQL
	}
	return ""
}
