package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/internal/testutil"
	"github.com/leapstack-labs/cricdash/internal/ui/notifier"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Store == nil {
		st, err := store.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		require.NoError(t, st.Migrate())
		cfg.Store = st
	}
	cfg.Logger = testutil.NewTestLogger(t)
	cfg.SessionSecret = "test-secret-key-32-bytes-long!!"
	return NewServer(cfg)
}

func TestServer_Handler(t *testing.T) {
	s := newTestServer(t, Config{Port: 8080})
	handler, err := s.Handler()
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tests := []struct {
		path        string
		wantStatus  int
		wantContain string
	}{
		{"/", http.StatusOK, "Cricket Analytics Dashboard"},
		{"/healthz", http.StatusOK, "OK"},
		{"/static/cricdash.css", http.StatusOK, "body"},
		{"/static/missing.css", http.StatusNotFound, ""},
		{"/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.wantContain)
		})
	}
}

func TestServer_URL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080", newTestServer(t, Config{Port: 8080}).URL())
	assert.Equal(t, "http://127.0.0.1:9000", newTestServer(t, Config{Host: "127.0.0.1", Port: 9000}).URL())
	assert.Equal(t, "127.0.0.1:9000", newTestServer(t, Config{Host: "127.0.0.1", Port: 9000}).Addr())
}

func TestIsDatabaseFile(t *testing.T) {
	assert.True(t, isDatabaseFile("cricket_info.db", "cricket_info.db"))
	assert.True(t, isDatabaseFile("cricket_info.db-wal", "cricket_info.db"))
	assert.True(t, isDatabaseFile("cricket_info.db-journal", "cricket_info.db"))
	assert.False(t, isDatabaseFile("other.db", "cricket_info.db"))
	assert.False(t, isDatabaseFile("cricket_info.db.bak", "cricket_info.db"))
}

func TestWatchDatabase_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cricket_info.db")
	require.NoError(t, os.WriteFile(dbPath, nil, 0o644))

	changes := make(chan string, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchDatabase(ctx, dbPath, testutil.NewTestLogger(t), func(name string) { changes <- name })
	}()

	// let the watcher register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	for range 3 {
		require.NoError(t, os.WriteFile(dbPath, []byte("data"), 0o644))
	}

	select {
	case name := <-changes:
		assert.Equal(t, dbPath, name)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case extra := <-changes:
		t.Fatalf("writes were not debounced, extra change %q", extra)
	case <-time.After(2 * debounce):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestServer_WatchAnalyticsBroadcasts(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cricket_info.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := newTestServer(t, Config{Store: st, Watch: true})
	updates := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.watchAnalytics(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, st.Migrate())

	select {
	case ev := <-updates:
		assert.Equal(t, notifier.SourceAnalytics, ev.Source)
		assert.Equal(t, "cricket_info.db", ev.Detail)
	case <-time.After(3 * time.Second):
		t.Fatal("no analytics change broadcast")
	}
}

func TestServer_WatchAnalyticsJournalNamesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cricket_info.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := newTestServer(t, Config{Store: st, Watch: true})
	updates := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.watchAnalytics(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(dbPath+"-journal", []byte("x"), 0o600))

	select {
	case ev := <-updates:
		assert.Equal(t, "cricket_info.db", ev.Detail)
	case <-time.After(3 * time.Second):
		t.Fatal("no analytics change broadcast")
	}
}

func TestServer_WatchAnalyticsInMemory(t *testing.T) {
	s := newTestServer(t, Config{Watch: true})
	assert.NoError(t, s.watchAnalytics(context.Background()))
}
