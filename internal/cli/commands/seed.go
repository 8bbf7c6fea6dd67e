package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/spf13/cobra"
)

// SeedOptions holds options for the seed command.
type SeedOptions struct {
	Dir     string
	Replace bool
}

// SeedOutput is the JSON output for the seed command.
type SeedOutput struct {
	Dir   string             `json:"dir" yaml:"dir"`
	Seeds []store.SeedResult `json:"seeds" yaml:"seeds"`
	Rows  int64              `json:"rows" yaml:"rows"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	opts := &SeedOptions{}
	cmd := &cobra.Command{
		Use:   "seed [file...]",
		Short: "Load CSV and SQL seed files into the analytics database",
		Long: `Load seed data into the analytics database.

A CSV file is loaded into the table named by its base name (players.csv
into players). Its header row names the columns and empty fields are
stored as NULL. A SQL file is executed as a script. Each file is loaded
in its own transaction.

Without arguments every .csv and .sql file of the seeds directory is
loaded in name order.`,
		Example: `  cricdash seed
  cricdash seed --dir ./data/seeds --replace
  cricdash seed seeds/players.csv -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), NewCommandContext(cmd), args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Seeds directory (default: seeds_dir from config)")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "Delete existing rows before loading each CSV file")
	return cmd
}

func runSeed(ctx context.Context, cc *CommandContext, args []string, opts *SeedOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = cc.Cfg.SeedsDir
	}

	files := args
	if len(files) == 0 {
		var err error
		if files, err = store.SeedFiles(dir); err != nil {
			return fmt.Errorf("failed to list seeds in %s: %w", dir, err)
		}
	}

	r := cc.Renderer
	out := SeedOutput{Dir: dir, Seeds: []store.SeedResult{}}
	if len(files) == 0 {
		if r.EffectiveMode() == output.ModeJSON || r.EffectiveMode() == output.ModeYAML {
			return r.Value(out)
		}
		r.Muted("No seed files found in " + dir)
		return nil
	}

	st, err := cc.OpenStore(false)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	for _, file := range files {
		res, err := st.LoadFile(ctx, file, opts.Replace)
		if err != nil {
			return err
		}
		cc.Logger.Debug("seed loaded", "file", file, "rows", res.Rows)
		out.Seeds = append(out.Seeds, res)
		out.Rows += res.Rows
	}

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(out)
	case output.ModeText:
		for _, res := range out.Seeds {
			r.Success(fmt.Sprintf("%s: %s", filepath.Base(res.File), output.FormatRows(int(res.Rows))))
		}
		r.Muted(fmt.Sprintf("%s files loaded into %s", output.FormatCount(len(out.Seeds)), st.Path()))
		return nil
	default:
		return r.Table(seedTable(out.Seeds))
	}
}

func seedTable(seeds []store.SeedResult) core.ResultTable {
	rt := core.ResultTable{Columns: []string{"file", "table", "rows"}}
	for _, s := range seeds {
		rt.Rows = append(rt.Rows, core.Row{
			"file":  filepath.Base(s.File),
			"table": s.Table,
			"rows":  strconv.FormatInt(s.Rows, 10),
		})
	}
	return rt
}
