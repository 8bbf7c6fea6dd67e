package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestPrintError(t *testing.T) {
	t.Run("statement failure shows the SQL", func(t *testing.T) {
		var buf bytes.Buffer
		err := fmt.Errorf("crud update: %w", &core.SchemaMismatchError{
			SQL: "UPDATE `players` SET `nmae` = ? WHERE `player_id` = ?;",
			Err: errors.New("Unknown column 'nmae'"),
		})
		PrintError(&buf, err)

		out := buf.String()
		assert.Contains(t, out, "Error: crud update:")
		assert.Contains(t, out, "SQL: UPDATE `players` SET `nmae` = ? WHERE `player_id` = ?;\n")
	})

	t.Run("other errors print one line", func(t *testing.T) {
		var buf bytes.Buffer
		PrintError(&buf, &core.ValidationError{Field: "table", Reason: "required"})
		assert.Equal(t, "Error: invalid table: required\n", buf.String())
	})
}
