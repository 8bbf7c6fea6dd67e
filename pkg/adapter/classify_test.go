package adapter

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	schemaErr := errors.New("no such table: players")
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	tests := []struct {
		name   string
		err    error
		fn     func(error) ErrorClass
		assert func(t *testing.T, got error)
	}{
		{
			name: "nil passes",
			err:  nil,
			assert: func(t *testing.T, got error) {
				assert.NoError(t, got)
			},
		},
		{
			name: "schema by message",
			err:  schemaErr,
			fn:   ClassifyMessage,
			assert: func(t *testing.T, got error) {
				var se *core.SchemaMismatchError
				require.ErrorAs(t, got, &se)
				assert.Equal(t, "SELECT * FROM players", se.SQL)
				assert.ErrorIs(t, got, schemaErr)
			},
		},
		{
			name: "network error is connection",
			err:  fmt.Errorf("failed to execute query: %w", opErr),
			fn:   func(error) ErrorClass { return ClassExecution },
			assert: func(t *testing.T, got error) {
				var ce *core.ConnectionError
				require.ErrorAs(t, got, &ce)
			},
		},
		{
			name: "bad conn is connection",
			err:  driver.ErrBadConn,
			assert: func(t *testing.T, got error) {
				var ce *core.ConnectionError
				require.ErrorAs(t, got, &ce)
			},
		},
		{
			name: "default is engine execution",
			err:  errors.New("syntax error near FROM"),
			fn:   ClassifyMessage,
			assert: func(t *testing.T, got error) {
				var ee *core.EngineExecutionError
				require.ErrorAs(t, got, &ee)
				assert.Equal(t, "SELECT * FROM players", ee.SQL)
			},
		},
		{
			name: "already classified passes through",
			err:  &core.ValidationError{Field: "sql", Reason: "nope"},
			fn:   func(error) ErrorClass { return ClassSchema },
			assert: func(t *testing.T, got error) {
				var ve *core.ValidationError
				require.ErrorAs(t, got, &ve)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assert(t, Classify(tt.err, "SELECT * FROM players", tt.fn))
		})
	}
}

func TestClassifyMessage(t *testing.T) {
	assert.Equal(t, ClassSchema, ClassifyMessage(errors.New("SQL logic error: no such column: foo (1)")))
	assert.Equal(t, ClassConnection, ClassifyMessage(errors.New("unable to open database file")))
	assert.Equal(t, ClassExecution, ClassifyMessage(errors.New("near \"SELEC\": syntax error")))
}
