package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/internal/catalog"
	"github.com/leapstack-labs/cricdash/internal/cli/config"
	"github.com/leapstack-labs/cricdash/internal/cli/output"
	clitestutil "github.com/leapstack-labs/cricdash/internal/cli/testutil"
	"github.com/leapstack-labs/cricdash/internal/store"
)

func checksByName(out DoctorOutput) map[string]HealthCheck {
	m := make(map[string]HealthCheck, len(out.Checks))
	for _, c := range out.Checks {
		m[c.Name] = c
	}
	return m
}

func TestRunDoctor_Healthy(t *testing.T) {
	cc, tr := newTestContext(t, output.ModeJSON, withAnalyticsDB(t))
	withMockCRUD(t, cc)

	require.NoError(t, runDoctor(context.Background(), cc, &DoctorOptions{}))

	var out DoctorOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &out))
	assert.Equal(t, 0, out.Errors)
	assert.Equal(t, 1, out.Warnings)

	checks := checksByName(out)
	assert.Equal(t, statusPass, checks["Query catalog"].Status)
	assert.Equal(t, statusPass, checks["Analytics database"].Status)
	assert.Equal(t, statusPass, checks["CRUD target"].Status)
	assert.Contains(t, checks["CRUD target"].Message, "(2 databases)")
	assert.Equal(t, statusWarn, checks["Cricbuzz API key"].Status)

	require.Len(t, out.Templates, catalog.Len())
	for _, tmpl := range out.Templates {
		assert.True(t, tmpl.Ready, tmpl.ID)
	}
}

func TestRunDoctor_MissingDatabase(t *testing.T) {
	cc, tr := newTestContext(t, output.ModeMarkdown, func(cfg *config.Config) {
		cfg.AnalyticsDB = filepath.Join(t.TempDir(), "missing.db")
	})

	err := runDoctor(context.Background(), cc, &DoctorOptions{SkipCRUD: true})
	require.Error(t, err)
	assert.Equal(t, "doctor found 1 problem(s)", err.Error())

	md := tr.Output()
	clitestutil.AssertValidMarkdown(t, md)
	assert.Contains(t, md, "**[ERROR]** Analytics database")
	assert.NotContains(t, md, "CRUD target")
}

func TestRunDoctor_Unmigrated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Exec(context.Background(), "CREATE TABLE scratch (id INTEGER)"))
	require.NoError(t, st.Close())

	cc, tr := newTestContext(t, output.ModeJSON, func(cfg *config.Config) { cfg.AnalyticsDB = path })
	require.Error(t, runDoctor(context.Background(), cc, &DoctorOptions{SkipCRUD: true}))

	var out DoctorOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &out))
	check := checksByName(out)["Analytics database"]
	assert.Equal(t, statusError, check.Status)
	assert.Contains(t, check.Message, "run 'cricdash migrate'")
	assert.Contains(t, check.Details, "missing table players")
}

func TestCheckCricbuzz(t *testing.T) {
	cfg := config.Default()
	cfg.Cricbuzz.APIKey = "k"
	check := checkCricbuzz(cfg)
	assert.Equal(t, statusPass, check.Status)
	assert.Equal(t, "configured for "+config.DefaultCricbuzzHost, check.Message)
}

func TestContractDetails(t *testing.T) {
	report := store.ContractReport{
		MissingTables:  []string{"odi_scorers"},
		MissingColumns: map[string][]string{"venues": {"capacity"}, "players": {"country", "playing_role"}},
	}
	assert.Equal(t, []string{
		"missing table odi_scorers",
		"players is missing columns: country, playing_role",
		"venues is missing columns: capacity",
	}, contractDetails(report))
}
