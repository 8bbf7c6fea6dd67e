package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// PlaygroundOptions holds options for the playground command.
type PlaygroundOptions struct {
	Input string
}

// NewPlaygroundCommand creates the playground command.
func NewPlaygroundCommand() *cobra.Command {
	opts := &PlaygroundOptions{}

	cmd := &cobra.Command{
		Use:   "playground [SQL]",
		Short: "Run read-only SQL against the analytics database",
		Long: `Run your own SQL against the analytics database.

Only SELECT, WITH and PRAGMA table_info statements are accepted, and the
connection refuses writes. When invoked without SQL on a terminal, an
interactive REPL starts.`,
		Example: `  # Execute SQL directly
  cricdash playground "SELECT name, country FROM players LIMIT 5"

  # List tables and inspect one
  cricdash playground tables
  cricdash playground schema players

  # Read SQL from a file or a pipe
  cricdash playground -i report.sql
  echo "SELECT COUNT(*) FROM matches" | cricdash playground

  # Interactive mode
  cricdash playground`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlayground(cmd, NewCommandContext(cmd), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	cmd.AddCommand(newPlaygroundTablesCommand())
	cmd.AddCommand(newPlaygroundSchemaCommand())
	cmd.AddCommand(newPlaygroundRunCommand())

	return cmd
}

func runPlayground(cmd *cobra.Command, cc *CommandContext, args []string, opts *PlaygroundOptions) error {
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		return runPlaygroundREPL(cmd, cc)
	}

	st, err := cc.OpenStore(true)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	return executePlayground(cmd.Context(), cc.Renderer, st, sqlQuery)
}

func executePlayground(ctx context.Context, r *output.Renderer, st *store.Store, sqlQuery string) error {
	result, err := st.Query(ctx, strings.TrimSpace(sqlQuery))
	if err != nil {
		return err
	}
	return r.Table(result)
}

func newPlaygroundTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the analytics database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			st, err := cc.OpenStore(true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			return listTables(cmd.Context(), cc.Renderer, st)
		},
	}
}

func newPlaygroundSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show the columns of a table (PRAGMA table_info)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			st, err := cc.OpenStore(true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			return showSchema(cmd.Context(), cc.Renderer, st, args[0])
		},
	}
}

func newPlaygroundRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <SQL>",
		Short: "Run one read-only statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			st, err := cc.OpenStore(true)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			return executePlayground(cmd.Context(), cc.Renderer, st, strings.Join(args, " "))
		},
	}
}

func listTables(ctx context.Context, r *output.Renderer, st *store.Store) error {
	tables, err := st.ListTables(ctx)
	if err != nil {
		return err
	}
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		if tables == nil {
			tables = []string{}
		}
		return r.Value(tables)
	}
	return r.Table(stringsTable("table", tables))
}

func showSchema(ctx context.Context, r *output.Renderer, st *store.Store, table string) error {
	cols, err := st.TableSchema(ctx, table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return &core.ValidationError{Field: "table", Reason: fmt.Sprintf("no such table: %s", table)}
	}
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(cols)
	}

	rt := core.ResultTable{Columns: []string{"cid", "name", "type", "notnull", "dflt_value", "pk"}}
	for _, c := range cols {
		var def any
		if c.Default != nil {
			def = *c.Default
		}
		rt.Rows = append(rt.Rows, core.Row{
			"cid": c.CID, "name": c.Name, "type": c.Type,
			"notnull": c.NotNull, "dflt_value": def, "pk": c.PK,
		})
	}
	return r.Table(rt)
}

// stringsTable renders a list of names as a one-column table.
func stringsTable(column string, values []string) core.ResultTable {
	rt := core.ResultTable{Columns: []string{column}, Rows: make([]core.Row, 0, len(values))}
	for _, v := range values {
		rt.Rows = append(rt.Rows, core.Row{column: v})
	}
	return rt
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
