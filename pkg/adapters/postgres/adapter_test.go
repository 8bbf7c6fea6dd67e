package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   core.AdapterConfig
		expected string
	}{
		{
			name: "basic connection",
			config: core.AdapterConfig{
				Credentials: core.Credentials{Host: "localhost", Port: 5432, User: "user", Password: "pass"},
				Database:    "testdb",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: core.AdapterConfig{
				Credentials: core.Credentials{
					Host:    "prod.example.com",
					Port:    5432,
					User:    "admin",
					Options: map[string]string{"sslmode": "require"},
				},
				Database: "proddb",
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name:     "defaults connect to maintenance database",
			config:   core.AdapterConfig{},
			expected: "host=localhost port=5432 dbname=postgres sslmode=disable",
		},
		{
			name: "password with space and extra options",
			config: core.AdapterConfig{
				Credentials: core.Credentials{
					Host:     "db.example.com",
					Port:     5433,
					User:     "analyst",
					Password: "it's secret",
					Options:  map[string]string{"connect_timeout": "10", "application_name": "cricdash"},
				},
				Database: "analytics",
			},
			expected: `host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst password='it\'s secret' application_name=cricdash connect_timeout=10`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := New(nil)
	a.DB = db
	return a, mock
}

func TestAdapter_ListTables(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WithArgs("BASE TABLE").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("matches").AddRow("players"))

	tables, err := a.ListTables(context.Background(), adapter.BaseTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"matches", "players"}, tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_TableColumns(t *testing.T) {
	a, mock := newMockAdapter(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns c")).
		WithArgs("cricbuzz", "players").
		WillReturnRows(
			sqlmock.NewRows([]string{"column_name", "data_type", "is_nullable", "column_key", "column_default", "extra"}).
				AddRow("player_id", "integer", "NO", "PRI", "nextval('players_player_id_seq'::regclass)", "auto_increment").
				AddRow("name", "text", "YES", "", nil, ""),
		)

	cols, err := a.TableColumns(context.Background(), "cricbuzz", "players")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.True(t, cols[0].AutoIncrement())
	assert.Equal(t, core.KeyPrimary, cols[0].Key)
	assert.Nil(t, cols[1].Default)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected adapter.ErrorClass
	}{
		{"auth failure", &pgconn.PgError{Code: "28P01"}, adapter.ClassConnection},
		{"connection exception", &pgconn.PgError{Code: "08006"}, adapter.ClassConnection},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, adapter.ClassSchema},
		{"undefined column", fmt.Errorf("failed to execute query: %w", &pgconn.PgError{Code: "42703"}), adapter.ClassSchema},
		{"invalid catalog", &pgconn.PgError{Code: "3D000"}, adapter.ClassSchema},
		{"syntax", &pgconn.PgError{Code: "42601"}, adapter.ClassExecution},
		{"plain", errors.New("boom"), adapter.ClassExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(nil).ClassifyError(tt.err))
		})
	}
}

func TestDialect(t *testing.T) {
	assert.Equal(t, `"Player Name"`, Dialect.QuoteIdentifier("Player Name"))
	assert.Equal(t, "$2", Dialect.DisplayMarker(2))
	assert.True(t, Dialect.IsSystemDatabase("template1"))
	assert.True(t, adapter.IsRegistered("postgres"))
}
