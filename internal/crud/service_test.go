package crud

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/cricdash/internal/crud/statement"
	"github.com/leapstack-labs/cricdash/internal/schemacache"
	"github.com/leapstack-labs/cricdash/internal/testutil"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	mysqladapter "github.com/leapstack-labs/cricdash/pkg/adapters/mysql"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	baseTablesSQL = "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'"
	viewsSQL      = "SHOW FULL TABLES WHERE Table_type = 'VIEW'"
	columnsSQL    = "FROM INFORMATION_SCHEMA.COLUMNS"
)

var columnHeaders = []string{"COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE", "COLUMN_KEY", "COLUMN_DEFAULT", "EXTRA"}

// keepOpen ignores Close so one sqlmock connection can serve several operations.
type keepOpen struct {
	*mysqladapter.Adapter
}

func (keepOpen) Close() error { return nil }

// fakeTarget hands out sqlmock-backed MySQL adapters per database name.
type fakeTarget struct {
	t        *testing.T
	dbs      map[string]*sql.DB
	mocks    map[string]sqlmock.Sqlmock
	fail     map[string]error
	connects []string
}

func newFakeTarget(t *testing.T, databases ...string) *fakeTarget {
	t.Helper()
	f := &fakeTarget{
		t:     t,
		dbs:   map[string]*sql.DB{},
		mocks: map[string]sqlmock.Sqlmock{},
		fail:  map[string]error{},
	}
	for _, name := range append([]string{""}, databases...) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		f.dbs[name] = db
		f.mocks[name] = mock
	}
	return f
}

func (f *fakeTarget) connect(_ context.Context, database string) (adapter.Adapter, error) {
	f.connects = append(f.connects, database)
	if err := f.fail[database]; err != nil {
		return nil, err
	}
	db, ok := f.dbs[database]
	if !ok {
		return nil, errors.New("unexpected connection to " + database)
	}
	a := mysqladapter.New(nil)
	a.DB = db
	return keepOpen{a}, nil
}

func (f *fakeTarget) mock(database string) sqlmock.Sqlmock {
	return f.mocks[database]
}

func (f *fakeTarget) assertMet() {
	f.t.Helper()
	for name, m := range f.mocks {
		assert.NoError(f.t, m.ExpectationsWereMet(), "database %q", name)
	}
}

func newService(t *testing.T, f *fakeTarget, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithConnector(f.connect), WithLogger(testutil.NewTestLogger(t))}, opts...)
	svc, err := New(core.Credentials{Type: "mysql", Host: "localhost", Port: 3306, User: "root"}, opts...)
	require.NoError(t, err)
	return svc
}

func expectDatabases(m sqlmock.Sqlmock, names ...string) {
	rows := sqlmock.NewRows([]string{"Database"})
	for _, n := range names {
		rows.AddRow(n)
	}
	m.ExpectQuery("SHOW DATABASES").WillReturnRows(rows)
}

func expectTables(m sqlmock.Sqlmock, query string, names ...string) {
	rows := sqlmock.NewRows([]string{"Tables_in_db", "Table_type"})
	for _, n := range names {
		rows.AddRow(n, "BASE TABLE")
	}
	m.ExpectQuery(regexp.QuoteMeta(query)).WillReturnRows(rows)
}

func expectColumns(m sqlmock.Sqlmock, database, table string, cols ...[]any) {
	rows := sqlmock.NewRows(columnHeaders)
	for _, c := range cols {
		vals := make([]driver.Value, len(c))
		for i := range c {
			vals[i] = c[i]
		}
		rows.AddRow(vals...)
	}
	m.ExpectQuery(regexp.QuoteMeta(columnsSQL)).WithArgs(database, table).WillReturnRows(rows)
}

func TestNew_UnknownAdapter(t *testing.T) {
	_, err := New(core.Credentials{Type: "oracle"})
	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Available, "mysql")
}

func TestDiscoverSchema(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz", "empty_db", "broken")
	logger, logs := testutil.NewCaptureLogger(t)
	svc := newService(t, f, WithLogger(logger))

	expectDatabases(f.mock(""), "information_schema", "cricbuzz", "mysql", "empty_db", "broken", "performance_schema", "sys")

	cb := f.mock("cricbuzz")
	expectTables(cb, baseTablesSQL, "players", "ghost")
	expectColumns(cb, "cricbuzz", "players",
		[]any{"player_id", "int", "NO", "PRI", nil, "auto_increment"},
		[]any{"name", "varchar", "NO", "", nil, ""},
	)
	expectColumns(cb, "cricbuzz", "ghost")
	expectTables(cb, viewsSQL, "v_top_scorers")

	expectTables(f.mock("empty_db"), baseTablesSQL)

	f.mock("broken").ExpectQuery(regexp.QuoteMeta(baseTablesSQL)).WillReturnError(errors.New("permission denied"))

	sd, err := svc.DiscoverSchema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"cricbuzz"}, sd.DatabaseNames())
	assert.Equal(t, []string{"players"}, sd.TableNames("cricbuzz"))
	assert.Equal(t, []string{"v_top_scorers"}, sd["cricbuzz"].Views)
	for _, db := range sd {
		for table, cols := range db.Tables {
			assert.NotEmpty(t, cols, "table %s", table)
		}
	}

	assert.Equal(t, []string{"", "cricbuzz", "empty_db", "broken"}, f.connects)
	assert.Contains(t, logs.String(), "skipping database")
	assert.Contains(t, logs.String(), "broken")
	assert.Contains(t, logs.String(), "op_id=")
	f.assertMet()
}

func TestDiscoverSchema_ConnectionFailure(t *testing.T) {
	f := newFakeTarget(t)
	f.fail[""] = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	svc := newService(t, f)

	_, err := svc.DiscoverSchema(context.Background())
	var ce *core.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "mysql://root@localhost:3306", ce.Target)
}

func TestDiscoverSchema_ListDatabasesFailure(t *testing.T) {
	f := newFakeTarget(t)
	f.mock("").ExpectQuery("SHOW DATABASES").WillReturnError(&mysql.MySQLError{Number: 1227, Message: "Access denied"})
	svc := newService(t, f)

	_, err := svc.DiscoverSchema(context.Background())
	var ce *core.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "list databases", ce.Op)
}

func TestDiscoverSchema_Cache(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f, WithCache(schemacache.New()))

	prime := func() {
		expectDatabases(f.mock(""), "cricbuzz")
		cb := f.mock("cricbuzz")
		expectTables(cb, baseTablesSQL, "players")
		expectColumns(cb, "cricbuzz", "players", []any{"name", "varchar", "YES", "", nil, ""})
		expectTables(cb, viewsSQL)
	}
	prime()

	ctx := context.Background()
	_, err := svc.DiscoverSchema(ctx)
	require.NoError(t, err)
	tables, err := svc.ListTables(ctx, "cricbuzz")
	require.NoError(t, err)
	assert.Equal(t, []string{"players"}, tables)
	assert.Len(t, f.connects, 2, "second call should be served from cache")

	prime()
	_, err = svc.RefreshSchema(ctx)
	require.NoError(t, err)
	assert.Len(t, f.connects, 4)
	f.assertMet()
}

func TestInsertableColumns(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f)

	expectDatabases(f.mock(""), "cricbuzz")
	cb := f.mock("cricbuzz")
	expectTables(cb, baseTablesSQL, "players")
	expectColumns(cb, "cricbuzz", "players",
		[]any{"player_id", "int", "NO", "PRI", nil, "auto_increment"},
		[]any{"name", "varchar", "NO", "", nil, ""},
		[]any{"team", "varchar", "YES", "", nil, ""},
	)
	expectTables(cb, viewsSQL)

	cols, err := svc.InsertableColumns(context.Background(), "cricbuzz", "players")
	require.NoError(t, err)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"name", "team"}, names)
}

func TestFetchTable(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f)

	rows := sqlmock.NewRows([]string{"player_id", "name"})
	for i := 1; i <= 5; i++ {
		rows.AddRow(int64(i), []byte("player"))
	}
	f.mock("cricbuzz").ExpectQuery(regexp.QuoteMeta("SELECT * FROM `players` LIMIT 5;")).WillReturnRows(rows)

	result, sqlText, err := svc.FetchTable(context.Background(), "cricbuzz", "players", 5)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `players` LIMIT 5;", sqlText)
	assert.LessOrEqual(t, result.Len(), 5)
	assert.Equal(t, []string{"player_id", "name"}, result.Columns)
	assert.Equal(t, "player", result.Value(0, "name"))
	f.assertMet()
}

func TestFetchTable_ClampsLimit(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f)

	f.mock("cricbuzz").ExpectQuery(regexp.QuoteMeta("SELECT * FROM `players` LIMIT 10000;")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, sqlText, err := svc.FetchTable(context.Background(), "cricbuzz", "players", 50000)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `players` LIMIT 10000;", sqlText)
}

func TestFetchTable_UnknownTable(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f)

	f.mock("cricbuzz").ExpectQuery("SELECT").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'cricbuzz.nope' doesn't exist"})

	_, _, err := svc.FetchTable(context.Background(), "cricbuzz", "nope", 10)
	var se *core.SchemaMismatchError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "SELECT * FROM `nope` LIMIT 10;", se.SQL)
}

func TestRunSelect(t *testing.T) {
	t.Run("rejects non-select without connecting", func(t *testing.T) {
		f := newFakeTarget(t, "cricbuzz")
		svc := newService(t, f)

		for _, q := range []string{"DROP TABLE players;", "  delete from players", "WITH x AS (SELECT 1) SELECT * FROM x"} {
			_, err := svc.RunSelect(context.Background(), "cricbuzz", q)
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve, q)
			assert.Equal(t, "sql", ve.Field)
		}
		assert.Empty(t, f.connects)
	})

	t.Run("accepts lowercase select", func(t *testing.T) {
		f := newFakeTarget(t, "cricbuzz")
		svc := newService(t, f)

		f.mock("cricbuzz").ExpectQuery(regexp.QuoteMeta("select * from players;")).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Kohli"))

		result, err := svc.RunSelect(context.Background(), "cricbuzz", "select * from players;")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Len())
		assert.Equal(t, []string{"cricbuzz"}, f.connects)
	})

	t.Run("engine error is classified", func(t *testing.T) {
		f := newFakeTarget(t, "cricbuzz")
		svc := newService(t, f)

		f.mock("cricbuzz").ExpectQuery("select").WillReturnError(&mysql.MySQLError{Number: 1064, Message: "syntax"})

		_, err := svc.RunSelect(context.Background(), "cricbuzz", "select from")
		var ee *core.EngineExecutionError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "select from", ee.SQL)
	})
}

func TestInsertRow(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f)

	f.mock("cricbuzz").ExpectExec(regexp.QuoteMeta("INSERT INTO `table` (`name`, `team`) VALUES (?, ?);")).
		WithArgs("Test Player", "India").
		WillReturnResult(sqlmock.NewResult(1, 1))

	res, err := svc.InsertRow(context.Background(), "cricbuzz", "table", map[string]any{"name": "Test Player", "team": "India"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Affected)
	assert.Equal(t, "INSERT INTO `table` (`name`, `team`) VALUES (%s, %s);", res.SQL)
	f.assertMet()
}

func TestInsertRow_Empty(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f)

	_, err := svc.InsertRow(context.Background(), "cricbuzz", "players", map[string]any{})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, f.connects)
}

func TestDeleteRows(t *testing.T) {
	t.Run("blank where executes nothing", func(t *testing.T) {
		f := newFakeTarget(t, "cricbuzz")
		svc := newService(t, f)

		for _, where := range []string{"", "  ", "\t"} {
			_, err := svc.DeleteRows(context.Background(), "cricbuzz", "players", where)
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "where", ve.Field)
		}
		assert.Empty(t, f.connects)
		f.assertMet()
	})

	t.Run("deletes matched rows", func(t *testing.T) {
		f := newFakeTarget(t, "cricbuzz")
		svc := newService(t, f)

		f.mock("cricbuzz").ExpectExec(regexp.QuoteMeta("DELETE FROM `players` WHERE team = 'Nepal';")).
			WillReturnResult(sqlmock.NewResult(0, 4))

		res, err := svc.DeleteRows(context.Background(), "cricbuzz", "players", "team = 'Nepal'")
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.Affected)
		assert.Equal(t, "DELETE FROM `players` WHERE team = 'Nepal';", res.SQL)
	})
}

func TestExecuteUpdate(t *testing.T) {
	tests := []struct {
		name      string
		set       string
		where     string
		wantField string
	}{
		{"blank set", "", "id = 1", "set"},
		{"blank where", "team = 'India'", "   ", "where"},
		{"both blank", " ", " ", "set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeTarget(t, "cricbuzz")
			svc := newService(t, f)

			_, err := svc.ExecuteUpdate(context.Background(), "cricbuzz", "players", tt.set, tt.where)
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Empty(t, f.connects)
		})
	}

	t.Run("updates matched rows", func(t *testing.T) {
		f := newFakeTarget(t, "cricbuzz")
		svc := newService(t, f)

		f.mock("cricbuzz").ExpectExec(regexp.QuoteMeta("UPDATE `players` SET team = 'India' WHERE player_id = 7;")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		res, err := svc.ExecuteUpdate(context.Background(), "cricbuzz", "players", "team = 'India'", "player_id = 7")
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Affected)
	})
}

func TestApply_ClauseValidator(t *testing.T) {
	f := newFakeTarget(t, "cricbuzz")
	svc := newService(t, f, WithClauseValidator(func(_ statement.ClauseKind, fragment string) error {
		if regexp.MustCompile(`(?i)\bdrop\b`).MatchString(fragment) {
			return errors.New("DROP is not allowed in clauses")
		}
		return nil
	}))

	_, err := svc.DeleteRows(context.Background(), "cricbuzz", "players", "1=1; DROP TABLE players")
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, f.connects)
}

func TestCompactValues(t *testing.T) {
	got := CompactValues(map[string]string{"name": "Test Player", "team": "  ", "role": ""})
	assert.Equal(t, map[string]any{"name": "Test Player"}, got)
}
