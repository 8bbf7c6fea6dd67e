package commands

import (
	"testing"

	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	clitestutil "github.com/leapstack-labs/cricdash/internal/cli/testutil"
	"github.com/leapstack-labs/cricdash/internal/testutil"
)

// newTestContext builds a CommandContext over the default configuration
// with captured output. configure may adjust the configuration.
func newTestContext(t *testing.T, mode output.OutputMode, configure func(*config.Config)) (*CommandContext, *clitestutil.TestRenderer) {
	t.Helper()

	cfg := config.Default()
	cfg.Cricbuzz.APIKey = ""
	if configure != nil {
		configure(cfg)
	}
	tr := clitestutil.NewTestRenderer(mode, false)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   testutil.NewTestLogger(t),
		Renderer: tr.Renderer,
	}, tr
}

// withAnalyticsDB points the configuration at a seeded analytics database.
func withAnalyticsDB(t *testing.T) func(*config.Config) {
	t.Helper()
	path := clitestutil.SetupAnalyticsDB(t)
	return func(cfg *config.Config) { cfg.AnalyticsDB = path }
}
