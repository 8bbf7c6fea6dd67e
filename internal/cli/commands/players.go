package commands

import (
	"context"
	"strings"

	"github.com/leapstack-labs/cricdash/internal/cli/output"
	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/spf13/cobra"
)

// NewPlayersCommand creates the players command group.
func NewPlayersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Search players and show their Cricbuzz profiles and stats",
		Example: `  cricdash players search "Virat Kohli"
  cricdash players info 1413
  cricdash players stats 1413 --kind bowling
  cricdash players stats 1413 --kind career`,
	}

	cmd.AddCommand(newPlayersSearchCommand())
	cmd.AddCommand(newPlayersInfoCommand())
	cmd.AddCommand(newPlayersStatsCommand())

	return cmd
}

func newPlayersSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Search players by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: apiRunE(func(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, args []string) error {
			return runPlayersSearch(ctx, cc, client, strings.Join(args, " "))
		}),
	}
}

func runPlayersSearch(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, name string) error {
	res, err := client.SearchPlayers(ctx, name)
	if err != nil {
		return err
	}
	if len(res.Players) == 0 {
		cc.Renderer.Warning("No players found")
		return nil
	}
	return cc.Renderer.Table(res.ToTable())
}

func newPlayersInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <player_id>",
		Short: "Show a player's profile",
		Args:  cobra.ExactArgs(1),
		RunE: apiRunE(func(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, args []string) error {
			return runPlayersInfo(ctx, cc, client, args[0])
		}),
	}
}

func runPlayersInfo(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, playerID string) error {
	profile, err := client.PlayerInfo(ctx, playerID)
	if err != nil {
		return err
	}
	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Value(profile)
	}
	return r.Table(profile.ToTable())
}

func newPlayersStatsCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "stats <player_id>",
		Short: "Show a player's batting, bowling or career statistics",
		Args:  cobra.ExactArgs(1),
		RunE: apiRunE(func(ctx context.Context, cc *CommandContext, client *cricbuzz.Client, args []string) error {
			rt, err := client.StatsTable(ctx, args[0], kind)
			if err != nil {
				return err
			}
			return cc.Renderer.Table(rt)
		}),
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "batting", "Statistics to show: batting, bowling or career")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"batting", "bowling", "career"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
