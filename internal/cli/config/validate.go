package config

import (
	"fmt"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.CRUD.Type == "" {
		return fmt.Errorf("crud.type is required")
	}
	if !adapter.IsRegistered(c.CRUD.Type) {
		return &adapter.UnknownAdapterError{Type: c.CRUD.Type, Available: adapter.ListAdapters()}
	}
	if c.OutputFormat != "" && c.OutputFormat != "auto" && output.Mode(c.OutputFormat) == output.ModeAuto {
		return fmt.Errorf("unknown output format %q (expected one of %v)", c.OutputFormat, output.Names())
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("ui.port %d is out of range", c.UI.Port)
	}
	if c.AnalyticsDB == "" {
		return fmt.Errorf("analytics_db is required")
	}
	return nil
}
