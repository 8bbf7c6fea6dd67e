package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/leapstack-labs/cricdash/internal/crud"
	"github.com/leapstack-labs/cricdash/internal/schemacache"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer

	crudOpts []crud.Option
	apiOpts  func(*cricbuzz.Config)
}

// NewCommandContext builds a CommandContext from the loaded configuration
// and the command's writers.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenStore opens the analytics database. A read-only store requires the
// file to exist.
func (c *CommandContext) OpenStore(readOnly bool) (*store.Store, error) {
	path := c.Cfg.AnalyticsDB
	opts := []store.Option{store.WithLogger(c.Logger)}
	if readOnly {
		if path != ":memory:" {
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("analytics database not found at %s (run 'cricdash migrate' first)", path)
			}
		}
		opts = append(opts, store.ReadOnly())
	}
	return store.Open(path, opts...)
}

// CRUD creates a service for the configured CRUD target.
func (c *CommandContext) CRUD() (*crud.Service, error) {
	opts := []crud.Option{crud.WithLogger(c.Logger)}
	if c.Cfg.CRUD.CacheSchema {
		opts = append(opts, crud.WithCache(schemacache.New(schemacache.WithTTL(c.Cfg.CRUD.CacheTTL))))
	}
	opts = append(opts, c.crudOpts...)
	return crud.New(c.Cfg.CRUD.Credentials(), opts...)
}

// Cricbuzz creates an API client. A missing key is reported as a
// configuration error.
func (c *CommandContext) Cricbuzz() (*cricbuzz.Client, error) {
	cfg := cricbuzz.Config{
		APIKey:  c.Cfg.Cricbuzz.APIKey,
		Host:    c.Cfg.Cricbuzz.Host,
		Timeout: c.Cfg.Cricbuzz.Timeout,
		Logger:  c.Logger,
	}
	if c.apiOpts != nil {
		c.apiOpts(&cfg)
	}
	client, err := cricbuzz.New(cfg)
	if errors.Is(err, cricbuzz.ErrMissingAPIKey) {
		return nil, fmt.Errorf("%w: set cricbuzz.api_key in cricdash.yaml or RAPIDAPI_KEY", err)
	}
	return client, err
}

// getConfig returns the current configuration, or one built from defaults
// when no config has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
