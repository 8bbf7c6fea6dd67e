package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyRole(t *testing.T) {
	tests := []struct {
		input    string
		expected KeyRole
	}{
		{"", KeyNone},
		{"PRI", KeyPrimary},
		{"pri", KeyPrimary},
		{"UNI", KeyUnique},
		{"MUL", KeyForeign},
		{" MUL ", KeyForeign},
		{"whatever", KeyNone},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseKeyRole(tt.input))
		})
	}
}

func TestColumn_AutoIncrement(t *testing.T) {
	assert.True(t, Column{Extra: "auto_increment"}.AutoIncrement())
	assert.True(t, Column{Extra: "AUTO_INCREMENT"}.AutoIncrement())
	assert.True(t, Column{Extra: "DEFAULT_GENERATED auto_increment"}.AutoIncrement())
	assert.False(t, Column{Extra: ""}.AutoIncrement())
	assert.False(t, Column{Extra: "on update CURRENT_TIMESTAMP"}.AutoIncrement())
}

func TestSchemaDescriptor_Helpers(t *testing.T) {
	sd := SchemaDescriptor{
		"zeta": {Tables: map[string][]Column{"b": {{Name: "id"}}, "a": {{Name: "id"}}}},
		"alpha": {
			Tables: map[string][]Column{"players": {{Name: "player_id"}, {Name: "name"}}},
			Views:  []string{"v_players"},
		},
	}

	assert.Equal(t, []string{"alpha", "zeta"}, sd.DatabaseNames())
	assert.Equal(t, []string{"a", "b"}, sd.TableNames("zeta"))
	assert.Nil(t, sd.TableNames("missing"))

	cols, ok := sd.Columns("alpha", "players")
	require.True(t, ok)
	assert.Equal(t, "name", cols[1].Name)

	_, ok = sd.Columns("alpha", "nope")
	assert.False(t, ok)
	_, ok = sd.Columns("missing", "players")
	assert.False(t, ok)
}

func TestResultTable(t *testing.T) {
	rt := ResultTable{
		Columns: []string{"name", "runs"},
		Rows: []Row{
			{"name": "Kohli", "runs": int64(82)},
			{"name": "Rohit", "runs": int64(40)},
		},
	}

	assert.Equal(t, 2, rt.Len())
	assert.Equal(t, "Rohit", rt.Value(1, "name"))
	assert.Nil(t, rt.Value(5, "name"))
	assert.Equal(t, [][]any{{"Kohli", int64(82)}, {"Rohit", int64(40)}}, rt.Records())
}

func TestMutationRequests_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       MutationRequest
		wantField string
	}{
		{"insert ok", InsertRequest{Table: "players", Values: map[string]any{"name": "x"}}, ""},
		{"insert no values", InsertRequest{Table: "players"}, "values"},
		{"insert no table", InsertRequest{Values: map[string]any{"name": "x"}}, "table"},
		{"delete ok", DeleteRequest{Table: "players", Where: "id = 1"}, ""},
		{"delete blank where", DeleteRequest{Table: "players", Where: "   "}, "where"},
		{"update ok", UpdateRequest{Table: "players", Set: "name = 'x'", Where: "id = 1"}, ""},
		{"update blank set", UpdateRequest{Table: "players", Set: "", Where: "id = 1"}, "set"},
		{"update blank where", UpdateRequest{Table: "players", Set: "a = 1", Where: "\t\n"}, "where"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestInsertRequest_OrderedColumns(t *testing.T) {
	values := map[string]any{"team": "India", "name": "Test Player", "matches": "3"}

	assert.Equal(t, []string{"matches", "name", "team"}, InsertRequest{Values: values}.OrderedColumns())

	req := InsertRequest{Values: values, Columns: []string{"player_id", "name", "team", "name"}}
	assert.Equal(t, []string{"name", "team", "matches"}, req.OrderedColumns())
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("boom")

	conn := fmt.Errorf("discover: %w", &ConnectionError{Op: "connect", Target: "mysql://root@localhost:3306", Err: cause})
	var ce *ConnectionError
	require.ErrorAs(t, conn, &ce)
	assert.ErrorIs(t, conn, cause)
	assert.Contains(t, conn.Error(), "mysql://root@localhost:3306")

	sm := &SchemaMismatchError{SQL: "SELECT * FROM nope", Err: cause}
	assert.ErrorIs(t, sm, cause)
	assert.Equal(t, "schema mismatch: boom", sm.Error())

	ee := &EngineExecutionError{SQL: "SELECT 1", Err: cause}
	assert.ErrorIs(t, ee, cause)

	assert.Equal(t, "SELECT * FROM nope", AttemptedSQL(fmt.Errorf("run: %w", sm)))
	assert.Equal(t, "SELECT 1", AttemptedSQL(ee))
	assert.Empty(t, AttemptedSQL(conn))

	ve := &ValidationError{Field: "sql", Reason: "only SELECT queries are allowed"}
	assert.Equal(t, "invalid sql: only SELECT queries are allowed", ve.Error())
}

func TestCredentials_String(t *testing.T) {
	c := Credentials{Type: "mysql", Host: "db", Port: 3306, User: "root", Password: "secret"}
	assert.Equal(t, "mysql://root@db:3306", c.Target())
	assert.NotContains(t, c.String(), "secret")

	c.Options = map[string]string{"tls": "true", "charset": "utf8mb4"}
	assert.Equal(t, "mysql://root@db:3306?charset=utf8mb4&tls=true", c.String())

	assert.Equal(t, "postgres://app@localhost", Credentials{Type: "postgres", User: "app"}.Target())
}
