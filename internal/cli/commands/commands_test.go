package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subcommandNames(cmd *cobra.Command) []string {
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	return names
}

func TestNewQueriesCommand(t *testing.T) {
	cmd := NewQueriesCommand()

	assert.Equal(t, "queries", cmd.Use)
	assert.Equal(t, []string{"q"}, cmd.Aliases)
	assert.ElementsMatch(t, []string{"list", "show", "run"}, subcommandNames(cmd))

	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	for _, flag := range []string{"all", "show-sql"} {
		assert.NotNil(t, run.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewPlaygroundCommand(t *testing.T) {
	cmd := NewPlaygroundCommand()

	assert.Equal(t, "playground [SQL]", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().ShorthandLookup("i"))
	assert.ElementsMatch(t, []string{"tables", "schema", "run"}, subcommandNames(cmd))
}

func TestNewCRUDCommand(t *testing.T) {
	cmd := NewCRUDCommand()

	assert.Equal(t, "crud", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("database"))
	assert.ElementsMatch(t,
		[]string{"discover", "databases", "tables", "columns", "fetch", "select", "insert", "delete", "update"},
		subcommandNames(cmd))

	tests := map[string][]string{
		"discover": {"refresh"},
		"columns":  {"insertable"},
		"fetch":    {"limit"},
		"insert":   {"value"},
		"delete":   {"where"},
		"update":   {"set", "where"},
	}
	for name, flags := range tests {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		for _, flag := range flags {
			assert.NotNil(t, sub.Flags().Lookup(flag), "%s: flag %q should exist", name, flag)
		}
	}
}

func TestNewLiveAndPlayersCommands(t *testing.T) {
	live := NewLiveCommand()
	assert.Equal(t, "live", live.Use)
	assert.ElementsMatch(t, []string{"matches", "scorecard"}, subcommandNames(live))

	players := NewPlayersCommand()
	assert.Equal(t, "players", players.Use)
	assert.ElementsMatch(t, []string{"search", "info", "stats"}, subcommandNames(players))

	stats, _, err := players.Find([]string{"stats"})
	require.NoError(t, err)
	kind := stats.Flags().Lookup("kind")
	require.NotNil(t, kind)
	assert.Equal(t, "batting", kind.DefValue)
}

func TestNewSeedCommand(t *testing.T) {
	cmd := NewSeedCommand()

	assert.Equal(t, "seed [file...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("dir"))
	assert.NotNil(t, cmd.Flags().Lookup("replace"))
}

func TestNewMigrateAndDoctorCommands(t *testing.T) {
	assert.Equal(t, "migrate", NewMigrateCommand().Use)

	doctor := NewDoctorCommand()
	assert.Equal(t, "doctor", doctor.Use)
	assert.NotNil(t, doctor.Flags().Lookup("skip-crud"))
}

func TestNewUICommand(t *testing.T) {
	cmd := NewUICommand()

	assert.Equal(t, "ui", cmd.Use)
	for _, flag := range []string{"host", "port", "no-browser", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}
