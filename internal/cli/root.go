// Package cli provides the command-line interface for cricdash.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/cli/commands"
	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/pkg/adapter"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cricdash",
		Short: "cricdash - cricket analytics and CRUD dashboard",
		Long: `cricdash runs a fixed catalog of cricket analytics queries over a local
SQLite database, offers a read-only SQL playground, edits tables on a
MySQL or PostgreSQL target, and shows live matches and player stats from
the Cricbuzz API. Every feature is available from the command line and
from the web dashboard started by 'cricdash ui'.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and SQLite
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: nearest cricdash.yaml)")
	flags.String("analytics-db", "", "Path to the analytics SQLite database (default: "+config.DefaultAnalyticsDB+")")
	flags.String("crud-type", "", "CRUD target engine ("+strings.Join(adapter.ListAdapters(), "|")+")")
	flags.Duration("query-timeout", 0, "Timeout for dashboard queries (default: 30s)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.StringP("output", "o", "", "Output format (auto|table|md|json|csv|yaml)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("crud-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return adapter.ListAdapters(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewQueriesCommand())
	rootCmd.AddCommand(commands.NewPlaygroundCommand())
	rootCmd.AddCommand(commands.NewCRUDCommand())
	rootCmd.AddCommand(commands.NewLiveCommand())
	rootCmd.AddCommand(commands.NewPlayersCommand())
	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		PrintError(os.Stderr, err)
		return err
	}
	return nil
}

// PrintError writes err to w, followed by the statement that was attempted
// when err came from running SQL.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if sqlText := core.AttemptedSQL(err); sqlText != "" {
		fmt.Fprintf(w, "SQL: %s\n", sqlText)
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cricdash.

To load completions:

Bash:
  $ source <(cricdash completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ cricdash completion bash > /etc/bash_completion.d/cricdash
  # macOS:
  $ cricdash completion bash > $(brew --prefix)/etc/bash_completion.d/cricdash

Zsh:
  $ cricdash completion zsh > "${fpath[1]}/_cricdash"

Fish:
  $ cricdash completion fish | source

PowerShell:
  PS> cricdash completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
