package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/spf13/cobra"
)

// NewLiveCommand creates the live command group.
func NewLiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Live matches and scorecards from Cricbuzz",
		Long: `Query the Cricbuzz API for matches in progress.

Requires cricbuzz.api_key in cricdash.yaml or the RAPIDAPI_KEY environment
variable.`,
		Example: `  cricdash live matches
  cricdash live matches --series "ICC"
  cricdash live scorecard 112395`,
	}

	cmd.AddCommand(newLiveMatchesCommand())
	cmd.AddCommand(newLiveScorecardCommand())

	return cmd
}

// apiRunE wraps a Cricbuzz subcommand body with client construction.
func apiRunE(fn func(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cc := NewCommandContext(cmd)
		client, err := cc.Cricbuzz()
		if err != nil {
			return err
		}
		return fn(cmd.Context(), cc, client, args)
	}
}

func newLiveMatchesCommand() *cobra.Command {
	var series string
	cmd := &cobra.Command{
		Use:   "matches",
		Short: "List live matches grouped by series",
		Args:  cobra.NoArgs,
		RunE: apiRunE(func(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, _ []string) error {
			return runLiveMatches(ctx, cc, client, series)
		}),
	}
	cmd.Flags().StringVar(&series, "series", "", "Only show series whose name contains this text")
	return cmd
}

func runLiveMatches(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, series string) error {
	live, err := client.LiveMatches(ctx)
	if err != nil {
		return err
	}

	rt := filterRows(live.ToTable(), "series", series)
	r := cc.Renderer
	if rt.Len() == 0 && r.EffectiveMode() != output.ModeJSON && r.EffectiveMode() != output.ModeYAML {
		r.Warning("No live matches right now")
		return nil
	}
	return r.Table(rt)
}

// filterRows keeps rows whose column contains needle, case-insensitively.
func filterRows(rt core.ResultTable, column, needle string) core.ResultTable {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return rt
	}
	out := core.ResultTable{Columns: rt.Columns, Rows: []core.Row{}}
	for _, row := range rt.Rows {
		if strings.Contains(strings.ToLower(fmt.Sprint(row[column])), needle) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func newLiveScorecardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scorecard <match_id>",
		Short: "Show the full scorecard of a match",
		Args:  cobra.ExactArgs(1),
		RunE: apiRunE(func(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, args []string) error {
			return runLiveScorecard(ctx, cc, client, args[0])
		}),
	}
}

func runLiveScorecard(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, matchID string) error {
	card, err := client.Scorecard(ctx, matchID)
	if err != nil {
		return err
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(card)
	case output.ModeCSV:
		return r.Table(card.ToTable())
	}

	if card.Status != "" {
		r.Println(r.Styles().Bold.Render(card.Status))
		r.Println("")
	}
	if len(card.Innings) == 0 {
		r.Warning("Scorecard not available yet")
		return nil
	}
	if err := r.Table(card.ToTable()); err != nil {
		return err
	}
	for i, in := range card.Innings {
		heading := fmt.Sprintf("Innings %d: %s %s/%s (%s ov)", i+1, in.BatTeamName, in.Score.Or("0"), in.Wickets.Or("0"), in.Overs.Or("0"))
		r.Println("")
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatHeader(2, heading))
			r.Println("")
			r.Println(output.FormatHeader(3, "Batting"))
		} else {
			r.Println(r.Styles().Header2.Render(heading))
			r.Println(r.Styles().Bold.Render("Batting"))
		}
		if err := r.Table(in.BattingTable()); err != nil {
			return err
		}
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatHeader(3, "Bowling"))
		} else {
			r.Println(r.Styles().Bold.Render("Bowling"))
		}
		if err := r.Table(in.BowlingTable()); err != nil {
			return err
		}
	}
	return nil
}
