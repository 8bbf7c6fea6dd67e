package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
)

func TestSessionSecret(t *testing.T) {
	assert.Equal(t, "configured", sessionSecret("  configured "))

	a, b := sessionSecret(""), sessionSecret("")
	assert.Len(t, a, 64)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}

func TestServerConfig(t *testing.T) {
	cc, _ := newTestContext(t, output.ModeText, withAnalyticsDB(t))
	cc.Cfg.UI.SessionSecret = "s3cret"

	cfg, cleanup, err := serverConfig(cc, &UIOptions{Port: 9000, Watch: false}, true)
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, cfg.Store)
	assert.NotNil(t, cfg.CRUD, "CRUD service is built without connecting")
	assert.Nil(t, cfg.API, "no API key configured")
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.Watch)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.Equal(t, config.DefaultCRUDDatabase, cfg.DefaultDatabase)
	assert.Equal(t, config.DefaultLimit, cfg.DefaultLimit)
}

func TestServerConfig_FlagsUnset(t *testing.T) {
	cc, _ := newTestContext(t, output.ModeText, withAnalyticsDB(t))
	cc.Cfg.Cricbuzz.APIKey = "k"

	cfg, cleanup, err := serverConfig(cc, &UIOptions{Watch: false}, false)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, config.DefaultUIPort, cfg.Port)
	assert.True(t, cfg.Watch, "config value kept when --watch is not set")
	assert.NotNil(t, cfg.API)
}

func TestServerConfig_MissingDatabase(t *testing.T) {
	cc, _ := newTestContext(t, output.ModeText, func(c *config.Config) {
		c.AnalyticsDB = filepath.Join(t.TempDir(), "missing.db")
	})
	_, _, err := serverConfig(cc, &UIOptions{}, false)
	assert.ErrorContains(t, err, "analytics database not found")
}
