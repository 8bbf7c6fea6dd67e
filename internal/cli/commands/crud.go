package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/crud"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/spf13/cobra"
)

// CRUDOptions holds the flags shared by crud subcommands.
type CRUDOptions struct {
	Database   string
	Limit      int
	Refresh    bool
	Insertable bool
	Values     []string
	Set        string
	Where      string
}

// NewCRUDCommand creates the crud command group.
func NewCRUDCommand() *cobra.Command {
	opts := &CRUDOptions{}
	cmd := &cobra.Command{
		Use:   "crud",
		Short: "Discover and edit tables on the CRUD target",
		Long: `Work with the relational CRUD target configured under crud: in
cricdash.yaml. Every command opens its own connection and closes it
before returning.`,
		Example: `  cricdash crud discover
  cricdash crud tables --database cricbuzz
  cricdash crud fetch players --limit 5
  cricdash crud insert players --value "name=Test Player" --value team=India
  cricdash crud update players --set "team = 'England'" --where "id = 7"
  cricdash crud delete players --where "id = 7"`,
	}

	cmd.PersistentFlags().StringVarP(&opts.Database, "database", "d", "", "Database to use (default: crud.default_database)")

	cmd.AddCommand(newCRUDDiscoverCommand(opts))
	cmd.AddCommand(newCRUDDatabasesCommand())
	cmd.AddCommand(newCRUDTablesCommand(opts))
	cmd.AddCommand(newCRUDColumnsCommand(opts))
	cmd.AddCommand(newCRUDFetchCommand(opts))
	cmd.AddCommand(newCRUDSelectCommand(opts))
	cmd.AddCommand(newCRUDInsertCommand(opts))
	cmd.AddCommand(newCRUDDeleteCommand(opts))
	cmd.AddCommand(newCRUDUpdateCommand(opts))

	return cmd
}

// crudRunE wraps a crud subcommand body with service construction.
func crudRunE(fn func(ctx context.Context, cc *CommandContext, svc *crud.Service, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cc := NewCommandContext(cmd)
		svc, err := cc.CRUD()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), cc, svc, args)
	}
}

func (o *CRUDOptions) database(cc *CommandContext) string {
	if o.Database != "" {
		return o.Database
	}
	return cc.Cfg.CRUD.DefaultDatabase
}

func newCRUDDiscoverCommand(opts *CRUDOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover every non-system database, table and column",
		Args:  cobra.NoArgs,
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, _ []string) error {
			return runCRUDDiscover(ctx, cc, svc, opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "Ignore any cached schema")
	return cmd
}

func runCRUDDiscover(ctx context.Context, cc *CommandContext, svc *crud.Service, opts *CRUDOptions) error {
	discover := svc.DiscoverSchema
	if opts.Refresh {
		discover = svc.RefreshSchema
	}
	sd, err := discover(ctx)
	if err != nil {
		return err
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(sd)
	}

	rt := core.ResultTable{Columns: []string{"database", "table", "columns"}}
	for _, db := range sd.DatabaseNames() {
		for _, table := range sd.TableNames(db) {
			cols, _ := sd.Columns(db, table)
			names := make([]string, len(cols))
			for i, c := range cols {
				names[i] = c.Name
			}
			rt.Rows = append(rt.Rows, core.Row{"database": db, "table": table, "columns": strings.Join(names, ", ")})
		}
	}
	if err := r.Table(rt); err != nil {
		return err
	}
	r.Muted(fmt.Sprintf("%s databases discovered on %s", output.FormatCount(len(sd)), cc.Cfg.CRUD.Credentials().Target()))
	return nil
}

func newCRUDDatabasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List non-system databases",
		Args:  cobra.NoArgs,
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, _ []string) error {
			names, err := svc.ListDatabases(ctx)
			if err != nil {
				return err
			}
			return renderNames(cc.Renderer, "database", names)
		}),
	}
}

func newCRUDTablesCommand(opts *CRUDOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the base tables of a database",
		Args:  cobra.NoArgs,
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, _ []string) error {
			names, err := svc.ListTables(ctx, opts.database(cc))
			if err != nil {
				return err
			}
			return renderNames(cc.Renderer, "table", names)
		}),
	}
}

func renderNames(r *output.Renderer, column string, names []string) error {
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		if names == nil {
			names = []string{}
		}
		return r.Value(names)
	}
	return r.Table(stringsTable(column, names))
}

func newCRUDColumnsCommand(opts *CRUDOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns <table>",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, args []string) error {
			return runCRUDColumns(ctx, cc, svc, opts, args[0])
		}),
	}
	cmd.Flags().BoolVar(&opts.Insertable, "insertable", false, "Omit auto-increment columns")
	return cmd
}

func runCRUDColumns(ctx context.Context, cc *CommandContext, svc *crud.Service, opts *CRUDOptions, table string) error {
	db := opts.database(cc)
	cols, err := svc.TableColumns(ctx, db, table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return &core.ValidationError{Field: "table", Reason: fmt.Sprintf("%s.%s was not found", db, table)}
	}
	if opts.Insertable {
		cols = crud.Insertable(cols)
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(cols)
	}
	return r.Table(columnsTable(cols))
}

func columnsTable(cols []core.Column) core.ResultTable {
	rt := core.ResultTable{Columns: []string{"name", "type", "nullable", "key", "default", "extra"}}
	for _, c := range cols {
		var def any
		if c.Default != nil {
			def = *c.Default
		}
		nullable := "NO"
		if c.Nullable {
			nullable = "YES"
		}
		rt.Rows = append(rt.Rows, core.Row{
			"name": c.Name, "type": c.Type, "nullable": nullable,
			"key": c.Key.String(), "default": def, "extra": c.Extra,
		})
	}
	return rt
}

func newCRUDFetchCommand(opts *CRUDOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <table>",
		Short: "Fetch rows from a table",
		Args:  cobra.ExactArgs(1),
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, args []string) error {
			return runCRUDFetch(ctx, cc, svc, opts, args[0])
		}),
	}
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Maximum rows to fetch, 1-10000 (default: crud.default_limit)")
	return cmd
}

func runCRUDFetch(ctx context.Context, cc *CommandContext, svc *crud.Service, opts *CRUDOptions, table string) error {
	limit := opts.Limit
	if limit == 0 {
		limit = cc.Cfg.CRUD.DefaultLimit
	}
	rt, sqlText, err := svc.FetchTable(ctx, opts.database(cc), table, limit)
	if err != nil {
		return err
	}
	return renderSelect(cc.Renderer, sqlText, rt)
}

func newCRUDSelectCommand(opts *CRUDOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <SQL>",
		Short: "Run a SELECT statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, args []string) error {
			return runCRUDSelect(ctx, cc, svc, opts, strings.Join(args, " "))
		}),
	}
}

func runCRUDSelect(ctx context.Context, cc *CommandContext, svc *crud.Service, opts *CRUDOptions, sqlText string) error {
	rt, err := svc.RunSelect(ctx, opts.database(cc), sqlText)
	if err != nil {
		return err
	}
	return renderSelect(cc.Renderer, sqlText, rt)
}

func renderSelect(r *output.Renderer, sqlText string, rt core.ResultTable) error {
	switch r.EffectiveMode() {
	case output.ModeText, output.ModeMarkdown:
		r.Muted(sqlText)
	}
	return r.Table(rt)
}

func newCRUDInsertCommand(opts *CRUDOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <table>",
		Short: "Insert one row",
		Long: `Insert one row. Each --value is column=value; blank values are
dropped so the column takes its default. Columns appear in the statement
in the order they are given.`,
		Args: cobra.ExactArgs(1),
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, args []string) error {
			form, order, err := parseAssignments(opts.Values)
			if err != nil {
				return err
			}
			req := core.InsertRequest{Table: args[0], Values: crud.CompactValues(form), Columns: order}
			return runCRUDMutation(ctx, cc, svc, opts, req)
		}),
	}
	cmd.Flags().StringArrayVar(&opts.Values, "value", nil, "column=value (repeatable)")
	return cmd
}

// parseAssignments splits column=value pairs. It also returns the columns
// in the order they were first given.
func parseAssignments(pairs []string) (map[string]string, []string, error) {
	form := make(map[string]string, len(pairs))
	order := make([]string, 0, len(pairs))
	for _, p := range pairs {
		col, val, ok := strings.Cut(p, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, nil, &core.ValidationError{Field: "value", Reason: fmt.Sprintf("expected column=value, got %q", p)}
		}
		if _, dup := form[col]; !dup {
			order = append(order, col)
		}
		form[col] = val
	}
	return form, order, nil
}

func newCRUDDeleteCommand(opts *CRUDOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete the rows matched by a WHERE clause",
		Args:  cobra.ExactArgs(1),
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, args []string) error {
			return runCRUDMutation(ctx, cc, svc, opts, core.DeleteRequest{Table: args[0], Where: opts.Where})
		}),
	}
	cmd.Flags().StringVar(&opts.Where, "where", "", "WHERE clause without the keyword (required)")
	return cmd
}

func newCRUDUpdateCommand(opts *CRUDOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <table>",
		Short: "Update the rows matched by a WHERE clause",
		Args:  cobra.ExactArgs(1),
		RunE: crudRunE(func(ctx context.Context, cc *CommandContext, svc *crud.Service, args []string) error {
			return runCRUDMutation(ctx, cc, svc, opts, core.UpdateRequest{Table: args[0], Set: opts.Set, Where: opts.Where})
		}),
	}
	cmd.Flags().StringVar(&opts.Set, "set", "", "SET clause without the keyword (required)")
	cmd.Flags().StringVar(&opts.Where, "where", "", "WHERE clause without the keyword (required)")
	return cmd
}

func runCRUDMutation(ctx context.Context, cc *CommandContext, svc *crud.Service, opts *CRUDOptions, req core.MutationRequest) error {
	res, err := svc.Apply(ctx, opts.database(cc), req)
	if err != nil {
		return err
	}
	return renderMutation(cc.Renderer, res)
}

func renderMutation(r *output.Renderer, res core.MutationResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(res)
	}
	noun := "rows"
	if res.Affected == 1 {
		noun = "row"
	}
	r.Success(fmt.Sprintf("%s %s affected", output.FormatCount(int(res.Affected)), noun))
	r.Muted(res.SQL)
	return nil
}
