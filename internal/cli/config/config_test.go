package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/pkg/adapter"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/cricdash/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/cricdash/pkg/adapters/postgres"
)

func isolate(t *testing.T) string {
	t.Helper()
	ResetConfig()
	t.Setenv("RAPIDAPI_KEY", "")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "cricdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func rootFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("cricdash", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("analytics-db", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.Duration("query-timeout", 0, "")
	fs.String("crud-type", "", "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.AnalyticsDB))
	assert.Equal(t, DefaultAnalyticsDB, filepath.Base(cfg.AnalyticsDB))
	assert.Equal(t, "table", cfg.OutputFormat)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.Equal(t, "mysql", cfg.CRUD.Type)
	assert.Equal(t, "localhost", cfg.CRUD.Host)
	assert.Equal(t, 3306, cfg.CRUD.Port)
	assert.Equal(t, "cricbuzz", cfg.CRUD.DefaultDatabase)
	assert.Equal(t, 200, cfg.CRUD.DefaultLimit)
	assert.True(t, cfg.CRUD.CacheSchema)
	assert.Equal(t, DefaultCricbuzzHost, cfg.Cricbuzz.Host)
	assert.Equal(t, 10*time.Second, cfg.Cricbuzz.Timeout)
	assert.Equal(t, 8765, cfg.UI.Port)
	assert.True(t, cfg.UI.Watch)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TEST_PG_PASSWORD", "s3cret")
	t.Setenv("TEST_RAPID_KEY", "rapid-123")

	writeConfig(t, dir, `
analytics_db: data/cricket.db
query_timeout: 45s
crud:
  type: Postgres
  host: pg.local
  user: app
  password: ${TEST_PG_PASSWORD}
  default_database: stats
  cache_ttl: 5m
  options:
    sslmode: require
cricbuzz:
  api_key: ${TEST_RAPID_KEY}
  timeout: 3s
ui:
  port: 9000
  watch: false
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.ConfigDir, "data", "cricket.db"), cfg.AnalyticsDB)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
	assert.Equal(t, "postgres", cfg.CRUD.Type)
	assert.Equal(t, 5432, cfg.CRUD.Port)
	assert.Equal(t, "s3cret", cfg.CRUD.Password)
	assert.Equal(t, 5*time.Minute, cfg.CRUD.CacheTTL)
	assert.Equal(t, map[string]string{"sslmode": "require"}, cfg.CRUD.Options)
	assert.Equal(t, "rapid-123", cfg.Cricbuzz.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Cricbuzz.Timeout)
	assert.Equal(t, 9000, cfg.UI.Port)
	assert.False(t, cfg.UI.Watch)
	assert.Contains(t, GetConfigFileUsed(), "cricdash.yaml")

	creds := cfg.CRUD.Credentials()
	assert.Equal(t, "postgres://app@pg.local:5432", creds.Target())
}

func TestLoadConfig_SearchesParentDirectories(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "crud:\n  host: parent.local\n")

	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "parent.local", cfg.CRUD.Host)
	assert.Equal(t, filepath.Join(cfg.ConfigDir, DefaultAnalyticsDB), cfg.AnalyticsDB)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	isolate(t)
	other := t.TempDir()
	path := writeConfig(t, other, "analytics_db: other.db\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "other.db", filepath.Base(cfg.AnalyticsDB))
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_UnresolvedSecretIsCleared(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "crud:\n  password: ${CRICDASH_TEST_UNSET_PASSWORD}\n")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.CRUD.Password)
}

func TestLoadConfig_RapidAPIKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("RAPIDAPI_KEY", "from-env")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Cricbuzz.APIKey)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "output: md\ncrud:\n  host: file.local\n")
	t.Setenv("CRICDASH_OUTPUT", "json")
	t.Setenv("CRICDASH_CRUD__HOST", "env.local")
	t.Setenv("CRICDASH_CRUD__PORT", "3307")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat, "env overrides file")
	assert.Equal(t, "env.local", cfg.CRUD.Host)
	assert.Equal(t, 3307, cfg.CRUD.Port)

	ResetConfig()
	flags := rootFlags()
	require.NoError(t, flags.Parse([]string{"-o", "csv", "-v", "--query-timeout", "2m", "--analytics-db", "flag.db", "--crud-type", "postgres"}))

	cfg, err = LoadConfig("", flags)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.OutputFormat, "flags override env")
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 2*time.Minute, cfg.QueryTimeout)
	assert.Equal(t, "postgres", cfg.CRUD.Type)
	assert.Equal(t, "flag.db", filepath.Base(cfg.AnalyticsDB))
	assert.True(t, filepath.IsAbs(cfg.AnalyticsDB))
}

func TestLoadConfig_UnknownAdapter(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "crud:\n  type: oracle\n")

	_, err := LoadConfig("", nil)
	var unknown *adapter.UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)
	assert.Contains(t, unknown.Available, "mysql")
	assert.Contains(t, unknown.Available, "postgres")
	assert.Contains(t, err.Error(), "cricdash.yaml")
}

func TestLoadConfig_BadFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "crud: [unclosed\n")

	_, err := LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{AnalyticsDB: "x.db", OutputFormat: "table", CRUD: CRUDConfig{Type: "mysql"}, UI: UIConfig{Port: 8765}}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.OutputFormat = "xml"
	assert.ErrorContains(t, c.Validate(), "unknown output format")

	c = base()
	c.CRUD.Type = ""
	assert.ErrorContains(t, c.Validate(), "crud.type is required")

	c = base()
	c.UI.Port = 70000
	assert.ErrorContains(t, c.Validate(), "out of range")

	c = base()
	c.AnalyticsDB = ""
	assert.ErrorContains(t, c.Validate(), "analytics_db is required")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single variable", "${TEST_VAR_ONE}", "value_one"},
		{"multiple variables", "${TEST_VAR_ONE}/${TEST_VAR_TWO}", "value_one/value_two"},
		{"unset variable stays as-is", "${UNSET_VARIABLE}", "${UNSET_VARIABLE}"},
		{"no variables", "plain string", "plain string"},
		{"empty string", "", ""},
		{"mixed set and unset", "${TEST_VAR_ONE}:${UNSET_VAR}", "value_one:${UNSET_VAR}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := NewLogger(os.Stderr, true)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.True(t, logger.Enabled(ctx, -4))
	assert.False(t, NewLogger(os.Stderr, false).Enabled(ctx, 0))
}

func TestDefault(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", "")
	cfg := Default()
	assert.Equal(t, DefaultAnalyticsDB, cfg.AnalyticsDB)
	assert.Equal(t, 3306, cfg.CRUD.Port)
	assert.Equal(t, DefaultLimit, cfg.CRUD.DefaultLimit)
	assert.Equal(t, DefaultQueryTimeout, cfg.QueryTimeout)
	require.NoError(t, cfg.Validate())
}
