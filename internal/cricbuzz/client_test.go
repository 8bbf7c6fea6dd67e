package cricbuzz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/cricdash/internal/testutil"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return c
}

func serveFile(t *testing.T, name string) http.HandlerFunc {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{APIKey: "  "})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	c, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "https://"+DefaultHost, c.baseURL)
	assert.Equal(t, 10*time.Second, c.httpClient.Timeout)
	assert.Equal(t, DefaultHost, c.headers.Get("x-rapidapi-host"))
}

func TestClient_SendsRapidAPIHeaders(t *testing.T) {
	var got http.Header
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.RequestURI()
		_, _ = w.Write([]byte(`{"player": []}`))
	})

	_, err := c.SearchPlayers(context.Background(), "Virat Kohli")
	require.NoError(t, err)
	assert.Equal(t, "test-key", got.Get("x-rapidapi-key"))
	assert.Equal(t, DefaultHost, got.Get("x-rapidapi-host"))
	assert.Equal(t, "/stats/v1/player/search?plrN=Virat+Kohli", path)
}

func TestClient_LiveMatches(t *testing.T) {
	c := newTestClient(t, serveFile(t, "live.json"))

	live, err := c.LiveMatches(context.Background())
	require.NoError(t, err)

	series := live.Series()
	require.Len(t, series, 2)
	assert.Equal(t, "England tour of India 2025 (International)", series[0].Key)
	assert.Equal(t, "Ranji Trophy (Domestic)", series[1].Key)

	table := live.ToTable()
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "112395", table.Value(0, "match_id"))
	assert.Equal(t, "India vs England", table.Value(0, "match"))
	assert.Equal(t, "IND: 251/6 in 38.4 overs", table.Value(0, "team1_score"))
	assert.Equal(t, "ENG: 248/10 in 47.4 overs", table.Value(0, "team2_score"))
	assert.Equal(t, "Vidarbha Cricket Association Stadium, Nagpur", table.Value(0, "venue"))
	assert.Equal(t, "06 Feb 2025, 09:00 AM", table.Value(0, "start"))

	assert.Equal(t, "7", table.Value(1, "match_id"))
	assert.Equal(t, "", table.Value(1, "team1_score"))
	assert.Equal(t, "N/A", table.Value(1, "start"))
	assert.Equal(t, "Wankhede", table.Value(1, "venue"))
}

func TestClient_Scorecard(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mcenter/v1/112395/scard", r.URL.Path)
		_, _ = w.Write([]byte(`{"scorecard": [{"inningsid": 1, "batteamname": "England", "score": 248, "wickets": 10, "overs": 47.4,
			"batsman": [{"name": "Phil Salt", "runs": 43, "balls": 26, "fours": 5, "sixes": 3, "strkrate": "165.38", "outdec": "run out (Jaiswal)"}],
			"bowler": [{"name": "Harshit Rana", "overs": 7, "maidens": 1, "runs": 53, "wickets": 3, "economy": 7.57}]}]}`))
	})

	sc, err := c.Scorecard(context.Background(), "112395")
	require.NoError(t, err)
	require.Len(t, sc.Innings, 1)

	bat := sc.Innings[0].BattingTable()
	assert.Equal(t, []string{"Name", "Runs", "Balls", "4s", "6s", "SR", "Out"}, bat.Columns)
	assert.Equal(t, "165.38", bat.Value(0, "SR"))
	assert.Equal(t, "43", bat.Value(0, "Runs"))

	bowl := sc.Innings[0].BowlingTable()
	assert.Equal(t, "7.57", bowl.Value(0, "Economy"))

	summary := sc.ToTable()
	assert.Equal(t, "248/10", summary.Value(0, "score"))
}

func TestClient_PlayerInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": "1413", "name": "Virat Kohli", "role": "Batsman", "bat": "Right Handed Bat",
			"bowl": "Right-arm medium", "teams": "India, RCB", "rankings": {"bat": {"odiRank": "4", "testRank": 20}}}`))
	})

	p, err := c.PlayerInfo(context.Background(), "1413")
	require.NoError(t, err)
	table := p.ToTable()
	assert.Equal(t, []string{"field", "value"}, table.Columns)

	fields := map[any]any{}
	for i := range table.Rows {
		fields[table.Value(i, "field")] = table.Value(i, "value")
	}
	assert.Equal(t, "Batsman", fields["Role"])
	assert.Equal(t, "N/A", fields["Birth Place"])
	assert.Equal(t, "4", fields["Batting ranking odiRank"])
	assert.Equal(t, "20", fields["Batting ranking testRank"])
}

func TestClient_PlayerStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/v1/player/1413/bowling", r.URL.Path)
		_, _ = w.Write([]byte(`{"headers": ["ROWHEADER", "Test", "ODI", "T20", "IPL"],
			"values": [{"values": ["Matches", "123", "302", "125", "252"]}, {"values": ["Wickets", "0"]}]}`))
	})

	stats, err := c.PlayerStats(context.Background(), "1413", "Bowling")
	require.NoError(t, err)

	table := stats.ToTable()
	assert.Equal(t, []string{"ROWHEADER", "Test", "ODI", "T20", "IPL"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "302", table.Value(0, "ODI"))
	assert.Equal(t, "", table.Value(1, "IPL"))
}

func TestClient_PlayerStats_InvalidKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.PlayerStats(context.Background(), "1413", "fielding")
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "kind", ve.Field)
}

func TestClient_StatsTable(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/career") {
			_, _ = w.Write([]byte(`{"values": [{"values": ["test", "2011-06-20", "2025-01-03"]}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"headers": ["ROWHEADER", "Test"], "values": [{"values": ["Runs", "9230"]}]}`))
	})
	ctx := context.Background()

	career, err := c.StatsTable(ctx, "1413", " Career ")
	require.NoError(t, err)
	assert.Equal(t, "2011-06-20", career.Value(0, "Debut"))

	batting, err := c.StatsTable(ctx, "1413", "batting")
	require.NoError(t, err)
	assert.Equal(t, "9230", batting.Value(0, "Test"))

	_, err = c.StatsTable(ctx, "1413", "fielding")
	assert.ErrorAs(t, err, new(*core.ValidationError))

	assert.Equal(t, []string{"/stats/v1/player/1413/career", "/stats/v1/player/1413/batting"}, paths)
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"You are not subscribed to this API."}`, http.StatusForbidden)
	})

	_, err := c.LiveMatches(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "/matches/v1/live", apiErr.Endpoint)
}

func TestClient_EmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	stats, err := c.PlayerCareer(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, stats.CareerTable().Rows)
	assert.Empty(t, stats.ToTable().Columns)
}

func TestClient_BlankArguments(t *testing.T) {
	c, err := New(Config{APIKey: "k", BaseURL: "http://127.0.0.1:0"})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Scorecard(ctx, "")
	assert.ErrorAs(t, err, new(*core.ValidationError))
	_, err = c.SearchPlayers(ctx, " ")
	assert.ErrorAs(t, err, new(*core.ValidationError))
	_, err = c.PlayerInfo(ctx, "")
	assert.ErrorAs(t, err, new(*core.ValidationError))
}

func TestStatsTable_DuplicateHeaders(t *testing.T) {
	s := &StatsTable{Headers: []string{"Format", "Runs", "Runs", ""}, Values: []StatsRow{{Values: []Flex{"ODI", "1", "2", "x"}}}}
	table := s.ToTable()
	assert.Equal(t, []string{"Format", "Runs", "Runs_2", "col4"}, table.Columns)
	assert.Equal(t, "2", table.Value(0, "Runs_2"))
}

func TestFormatEpochMillis(t *testing.T) {
	assert.Equal(t, "01 Jan 2024, 12:00 AM", FormatEpochMillis("1704067200000"))
	assert.Equal(t, "N/A", FormatEpochMillis(""))
	assert.Equal(t, "N/A", FormatEpochMillis("soon"))
}
