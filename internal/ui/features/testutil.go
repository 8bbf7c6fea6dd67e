// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/cricdash/internal/store"
	"github.com/leapstack-labs/cricdash/internal/testutil"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
	"github.com/leapstack-labs/cricdash/internal/ui/notifier"
)

// seedPlayers is loaded into every fixture store.
const seedPlayers = `INSERT INTO players (player_id, name, country, playing_role, batting_style, bowling_style) VALUES
    (1, 'Virat Kohli', 'India', 'Batsman', 'Right-hand bat', 'Right-arm medium'),
    (2, 'Joe Root', 'England', 'Batsman', 'Right-hand bat', 'Right-arm offbreak'),
    (3, 'Jasprit Bumrah', 'India', 'Bowler', 'Right-hand bat', 'Right-arm fast')`

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        *store.Store
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Deps         common.Deps
}

// SetupTestFixture creates a migrated in-memory analytics store with a few
// players and the shared handler dependencies.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	st, err := store.Open(":memory:", store.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Migrate())
	require.NoError(t, st.Exec(context.Background(), seedPlayers))

	n := notifier.New()
	ss := NewTestSessionStore()
	return &TestFixture{
		Store:        st,
		Notifier:     n,
		SessionStore: ss,
		Deps: common.Deps{
			Store:           st,
			Sessions:        ss,
			Notifier:        n,
			Logger:          logger,
			QueryTimeout:    5 * time.Second,
			DefaultDatabase: "cricbuzz",
			DefaultLimit:    200,
		},
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// Router builds a chi router with setup's routes registered.
func Router(t *testing.T, setup func(chi.Router) error) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	require.NoError(t, setup(r))
	return r
}

// Post sends signals as a JSON body and returns the recorded response.
func Post(h http.Handler, path, signals string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(signals))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Get sends signals in the datastar query parameter, as the client does
// for GET requests. Empty signals send none.
func Get(h http.Handler, path, signals string) *httptest.ResponseRecorder {
	target := path
	if signals != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + "datastar=" + url.QueryEscape(signals)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// WithCookies copies the response cookies of prev onto req.
func WithCookies(req *http.Request, prev *httptest.ResponseRecorder) *http.Request {
	for _, c := range prev.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// Body reads the whole response body.
func Body(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(b)
}
