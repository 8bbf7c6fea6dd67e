package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Force   bool
	Example bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a cricdash.yaml and seeds directory",
		Long: `Initialize a cricdash workspace with a cricdash.yaml configuration
file and a seeds/ directory.

Use --example to also write sample players, teams, venues and series
seed files that 'cricdash seed' loads into the analytics database.`,
		Example: `  cricdash init
  cricdash init my-dashboard --example
  cricdash init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(NewCommandContext(cmd), dir, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing cricdash.yaml")
	cmd.Flags().BoolVar(&opts.Example, "example", false, "Include sample seed data")
	return cmd
}

func runInit(cc *CommandContext, dir string, opts *InitOptions) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "cricdash.yaml")
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	name := "minimal"
	if opts.Example {
		name = "example"
	}
	written, err := copyTemplate(name, dir, opts.Force)
	if err != nil {
		return fmt.Errorf("failed to initialize %s: %w", dir, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, config.DefaultSeedsDir), 0o750); err != nil {
		return fmt.Errorf("failed to create seeds directory: %w", err)
	}

	r := cc.Renderer
	for _, f := range written {
		r.StatusLine("+", f)
	}
	r.Success("cricdash workspace initialized in " + dir)
	r.Println("")
	r.Println("Next steps:")
	r.Println("  cricdash migrate        Create the analytics database")
	if opts.Example {
		r.Println("  cricdash seed           Load the sample seed files")
	} else {
		r.Println("  cricdash seed           Load CSV or SQL files from seeds/")
	}
	r.Println("  cricdash queries run 1  Run the first catalog query")
	r.Println("  cricdash ui             Open the dashboard")
	return nil
}
