package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/catalog"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/spf13/cobra"
)

// QueryRunOptions holds options for the queries run command.
type QueryRunOptions struct {
	All     bool
	ShowSQL bool
}

// NewQueriesCommand creates the queries command group.
func NewQueriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queries",
		Aliases: []string{"q"},
		Short:   "Browse and run the cricket analytics query catalog",
		Long: `The catalog holds 25 fixed analytics queries over the analytics
database. Queries are addressed by number (1-25) or id (q01-q25).`,
		Example: `  cricdash queries list
  cricdash queries show 7
  cricdash queries run q19 -o json`,
	}

	cmd.AddCommand(newQueriesListCommand())
	cmd.AddCommand(newQueriesShowCommand())
	cmd.AddCommand(newQueriesRunCommand())

	return cmd
}

func newQueriesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQueriesList(NewCommandContext(cmd))
		},
	}
}

func newQueriesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <query>",
		Short: "Show the SQL and requirements of a catalog query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueriesShow(NewCommandContext(cmd), args[0])
		},
	}
}

func newQueriesRunCommand() *cobra.Command {
	opts := &QueryRunOptions{}
	cmd := &cobra.Command{
		Use:   "run [query...]",
		Short: "Run catalog queries against the analytics database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.All && len(args) == 0 {
				return fmt.Errorf("specify at least one query or use --all")
			}
			return runQueries(cmd.Context(), NewCommandContext(cmd), args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.All, "all", false, "Run every catalog query")
	cmd.Flags().BoolVar(&opts.ShowSQL, "show-sql", false, "Print each query's SQL before its results")
	return cmd
}

func catalogTable() core.ResultTable {
	rt := core.ResultTable{Columns: []string{"#", "id", "query", "window"}}
	for i, tmpl := range catalog.List() {
		rt.Rows = append(rt.Rows, core.Row{
			"#":      strconv.Itoa(i + 1),
			"id":     tmpl.ID,
			"query":  tmpl.Label,
			"window": tmpl.Window.String(),
		})
	}
	return rt
}

func runQueriesList(cc *CommandContext) error {
	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(catalog.List())
	default:
		return r.Table(catalogTable())
	}
}

func runQueriesShow(cc *CommandContext, ref string) error {
	tmpl, err := catalog.Lookup(ref)
	if err != nil {
		return err
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(tmpl)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, tmpl.Label))
		r.Println("")
		r.Println(output.FormatKeyValue("id", tmpl.ID))
		r.Println(output.FormatKeyValue("window", tmpl.Window.String()))
		r.Println(output.FormatKeyValue("reads", requiresSummary(tmpl.Requires)))
		r.Println("")
		r.Println(output.FormatCodeBlock("sql", tmpl.SQL))
	default:
		styles := r.Styles()
		r.Println(styles.Header1.Render(tmpl.Label))
		r.Printf("%s %s\n", styles.Key.Render("id:"), tmpl.ID)
		r.Printf("%s %s\n", styles.Key.Render("window:"), tmpl.Window)
		r.Printf("%s %s\n", styles.Key.Render("reads:"), requiresSummary(tmpl.Requires))
		r.Println("")
		r.Println(strings.TrimSpace(tmpl.SQL))
	}
	return nil
}

func requiresSummary(reqs []core.TableRequirement) string {
	parts := make([]string, 0, len(reqs))
	for _, req := range reqs {
		parts = append(parts, fmt.Sprintf("%s(%s)", req.Table, strings.Join(req.Columns, ", ")))
	}
	return strings.Join(parts, "; ")
}

// QueryResult is one template result in JSON or YAML output.
type QueryResult struct {
	ID      string     `json:"id" yaml:"id"`
	Label   string     `json:"label" yaml:"label"`
	SQL     string     `json:"sql,omitempty" yaml:"sql,omitempty"`
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    []core.Row `json:"rows" yaml:"rows"`
}

func runQueries(ctx context.Context, cc *CommandContext, refs []string, opts *QueryRunOptions) error {
	templates := make([]core.QueryTemplate, 0, len(refs))
	if opts.All {
		templates = catalog.List()
	} else {
		for _, ref := range refs {
			tmpl, err := catalog.Lookup(ref)
			if err != nil {
				return err
			}
			templates = append(templates, tmpl)
		}
	}

	st, err := cc.OpenStore(true)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	runner := catalog.NewRunner(st, cc.Logger)
	r := cc.Renderer
	structured := r.EffectiveMode() == output.ModeJSON || r.EffectiveMode() == output.ModeYAML

	results := make([]QueryResult, 0, len(templates))
	for i, tmpl := range templates {
		rt, err := runner.Run(ctx, tmpl)
		if err != nil {
			return fmt.Errorf("%s: %w", tmpl.ID, err)
		}

		if structured {
			res := QueryResult{ID: tmpl.ID, Label: tmpl.Label, Columns: rt.Columns, Rows: rt.Rows}
			if opts.ShowSQL {
				res.SQL = tmpl.SQL
			}
			results = append(results, res)
			continue
		}

		if i > 0 {
			r.Println("")
		}
		renderQueryHeading(r, tmpl, opts.ShowSQL)
		if err := r.Table(rt); err != nil {
			return err
		}
	}

	if !structured {
		return nil
	}
	if len(results) == 1 {
		return r.Value(results[0])
	}
	return r.Value(results)
}

func renderQueryHeading(r *output.Renderer, tmpl core.QueryTemplate, showSQL bool) {
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(2, tmpl.Label))
		r.Println("")
		if showSQL {
			r.Println(output.FormatCodeBlock("sql", tmpl.SQL))
			r.Println("")
		}
		return
	}
	if r.EffectiveMode() == output.ModeCSV {
		return
	}
	r.Println(r.Styles().Header2.Render(tmpl.Label))
	if showSQL {
		r.Println(r.Styles().Muted.Render(strings.TrimSpace(tmpl.SQL)))
	}
}
