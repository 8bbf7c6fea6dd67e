package store

import (
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/leapstack-labs/cricdash/internal/stats"
	"modernc.org/sqlite"
)

var registerOnce sync.Once

// registerFunctions installs cricdash's SQL functions on the sqlite driver.
// clamped_sqrt(x) returns sqrt(max(x, 0)) and NULL for NULL; templates use
// it to turn E[x^2] - E[x]^2 into a standard deviation.
func registerFunctions() {
	registerOnce.Do(func() {
		sqlite.MustRegisterDeterministicScalarFunction("clamped_sqrt", 1, clampedSqrt)
	})
}

func clampedSqrt(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case int64:
		return stats.ClampedSqrt(float64(v)), nil
	case float64:
		return stats.ClampedSqrt(v), nil
	default:
		return nil, fmt.Errorf("clamped_sqrt: unsupported argument type %T", v)
	}
}
