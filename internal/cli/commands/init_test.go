package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/internal/store"
)

func executeInit(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	cmd := NewInitCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			wantFiles: []string{"cricdash.yaml", ".gitignore", "seeds"},
		},
		{
			name: "init existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "cricdash.yaml"), []byte("existing"), 0o600))
			},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "cricdash.yaml"), []byte("existing"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"cricdash.yaml"},
		},
		{
			name:      "init with example seeds",
			args:      []string{"--example"},
			wantFiles: []string{"cricdash.yaml", "seeds/players.csv", "seeds/teams.csv", "seeds/venues.csv", "seeds/series.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "dashboard")
			require.NoError(t, os.MkdirAll(dir, 0o750))
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}

			_, err := executeInit(t, append([]string{dir}, tt.args...)...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "use --force")
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(dir, f))
				assert.NoError(t, err, "expected %q to exist", f)
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("example"), "--example flag should exist")
}

func TestInitCreatesValidConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := executeInit(t, dir)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "cricdash migrate")

	content, err := os.ReadFile(filepath.Join(dir, "cricdash.yaml"))
	require.NoError(t, err)
	for _, expected := range []string{
		"analytics_db: cricket_info.db",
		"seeds_dir: seeds",
		"type: mysql",
		"api_key: ${RAPIDAPI_KEY}",
	} {
		assert.Contains(t, string(content), expected, "config should contain %q", expected)
	}
}

func TestInitExampleSeedsLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := executeInit(t, dir, "--example")
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(dir, "cricket_info.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	require.NoError(t, st.Migrate())

	files, err := store.SeedFiles(filepath.Join(dir, "seeds"))
	require.NoError(t, err)
	require.Len(t, files, 4)

	ctx := context.Background()
	rows := map[string]int64{}
	for _, f := range files {
		res, err := st.LoadFile(ctx, f, false)
		require.NoError(t, err, f)
		rows[res.Table] = res.Rows
	}
	assert.Equal(t, map[string]int64{"players": 10, "series": 3, "teams": 5, "venues": 5}, rows)
}

func TestCopyTemplate_KeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	ignore := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(ignore, []byte("custom\n"), 0o600))

	written, err := copyTemplate("minimal", dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"cricdash.yaml"}, written)

	content, err := os.ReadFile(ignore)
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(content))

	written, err = copyTemplate("minimal", dir, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cricdash.yaml", ".gitignore"}, written)
}
