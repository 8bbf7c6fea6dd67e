package commands

import (
	"fmt"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/spf13/cobra"
)

// MigrateOutput is the JSON output for the migrate command.
type MigrateOutput struct {
	Path    string   `json:"path" yaml:"path"`
	Before  int64    `json:"before" yaml:"before"`
	Version int64    `json:"version" yaml:"version"`
	Tables  []string `json:"tables" yaml:"tables"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the analytics database schema",
		Long: `Apply the embedded migrations to the analytics database.

Tables are created only when missing, so an existing cricket_info.db is
adopted in place and its data is kept.`,
		Example: `  cricdash migrate
  cricdash migrate --analytics-db ./data/cricket_info.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, NewCommandContext(cmd))
		},
	}
}

func runMigrate(cmd *cobra.Command, cc *CommandContext) error {
	st, err := cc.OpenStore(false)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	before, err := st.SchemaVersion()
	if err != nil {
		return err
	}
	if err := st.Migrate(); err != nil {
		return err
	}
	after, err := st.SchemaVersion()
	if err != nil {
		return err
	}
	tables, err := st.ListTables(cmd.Context())
	if err != nil {
		return err
	}

	out := MigrateOutput{Path: st.Path(), Before: before, Version: after, Tables: tables}
	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(out)
	}

	if before == after {
		r.Success(fmt.Sprintf("analytics schema is up to date (version %d)", after))
	} else {
		r.Success(fmt.Sprintf("migrated analytics schema from version %d to %d", before, after))
	}
	r.Muted(fmt.Sprintf("%s: %s tables", out.Path, output.FormatCount(len(tables))))
	return nil
}
