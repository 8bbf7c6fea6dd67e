// Package cricbuzz is a small client for the Cricbuzz RapidAPI endpoints
// used by the live match and player pages.
package cricbuzz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// DefaultHost is the RapidAPI host for Cricbuzz.
const DefaultHost = "cricbuzz-cricket.p.rapidapi.com"

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("cricbuzz: API key is not configured (set cricbuzz.api_key or RAPIDAPI_KEY)")

// APIError reports a non-200 response.
type APIError struct {
	Status   int
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cricbuzz: %s returned status %d", e.Endpoint, e.Status)
}

// Config configures the client. Zero values get defaults: Host DefaultHost,
// Timeout 10s, BaseURL https://<Host>.
type Config struct {
	APIKey  string
	Host    string
	BaseURL string
	Timeout time.Duration

	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client calls the Cricbuzz API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	logger     *slog.Logger
}

// New creates a client. It fails with ErrMissingAPIKey when cfg.APIKey is
// blank.
func New(cfg Config) (*Client, error) {
	if core.IsBlank(cfg.APIKey) {
		return nil, ErrMissingAPIKey
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	hdr := http.Header{}
	hdr.Set("x-rapidapi-key", cfg.APIKey)
	hdr.Set("x-rapidapi-host", cfg.Host)
	hdr.Set("Accept", "application/json")

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		headers:    hdr,
		logger:     cfg.Logger,
	}, nil
}

// LiveMatches fetches the matches currently in progress.
func (c *Client) LiveMatches(ctx context.Context) (*LiveMatches, error) {
	var out LiveMatches
	if err := c.get(ctx, "/matches/v1/live", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Scorecard fetches the full scorecard of a match.
func (c *Client) Scorecard(ctx context.Context, matchID string) (*Scorecard, error) {
	if core.IsBlank(matchID) {
		return nil, &core.ValidationError{Field: "match_id", Reason: "match id is required"}
	}
	var out Scorecard
	if err := c.get(ctx, "/mcenter/v1/"+url.PathEscape(matchID)+"/scard", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchPlayers looks players up by name.
func (c *Client) SearchPlayers(ctx context.Context, name string) (*PlayerSearch, error) {
	if core.IsBlank(name) {
		return nil, &core.ValidationError{Field: "name", Reason: "player name is required"}
	}
	var out PlayerSearch
	if err := c.get(ctx, "/stats/v1/player/search?plrN="+url.QueryEscape(strings.TrimSpace(name)), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlayerInfo fetches a player's profile.
func (c *Client) PlayerInfo(ctx context.Context, playerID string) (*PlayerProfile, error) {
	if core.IsBlank(playerID) {
		return nil, &core.ValidationError{Field: "player_id", Reason: "player id is required"}
	}
	var out PlayerProfile
	if err := c.get(ctx, "/stats/v1/player/"+url.PathEscape(playerID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlayerCareer fetches debut and last-played dates per format.
func (c *Client) PlayerCareer(ctx context.Context, playerID string) (*StatsTable, error) {
	if core.IsBlank(playerID) {
		return nil, &core.ValidationError{Field: "player_id", Reason: "player id is required"}
	}
	var out StatsTable
	if err := c.get(ctx, "/stats/v1/player/"+url.PathEscape(playerID)+"/career", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatKind selects batting or bowling statistics.
type StatKind string

// Stat kinds.
const (
	Batting StatKind = "batting"
	Bowling StatKind = "bowling"
)

// ParseStatKind accepts "batting" or "bowling" in any case.
func ParseStatKind(s string) (StatKind, error) {
	switch StatKind(strings.ToLower(strings.TrimSpace(s))) {
	case Batting:
		return Batting, nil
	case Bowling:
		return Bowling, nil
	default:
		return "", &core.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown stats kind %q (expected batting or bowling)", s)}
	}
}

// PlayerStats fetches a player's batting or bowling table.
func (c *Client) PlayerStats(ctx context.Context, playerID string, kind StatKind) (*StatsTable, error) {
	if core.IsBlank(playerID) {
		return nil, &core.ValidationError{Field: "player_id", Reason: "player id is required"}
	}
	kind, err := ParseStatKind(string(kind))
	if err != nil {
		return nil, err
	}
	var out StatsTable
	if err := c.get(ctx, "/stats/v1/player/"+url.PathEscape(playerID)+"/"+string(kind), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("cricbuzz: build request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cricbuzz: GET %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("cricbuzz request",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{Status: resp.StatusCode, Endpoint: endpoint}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("cricbuzz: decode %s: %w", endpoint, err)
	}
	return nil
}

// StatsTable resolves kind to a player table: "career" reads the career
// summary, "batting" and "bowling" read the format tables.
func (c *Client) StatsTable(ctx context.Context, playerID, kind string) (core.ResultTable, error) {
	if strings.EqualFold(strings.TrimSpace(kind), "career") {
		career, err := c.PlayerCareer(ctx, playerID)
		if err != nil {
			return core.ResultTable{}, err
		}
		return career.CareerTable(), nil
	}
	k, err := ParseStatKind(kind)
	if err != nil {
		return core.ResultTable{}, err
	}
	stats, err := c.PlayerStats(ctx, playerID, k)
	if err != nil {
		return core.ResultTable{}, err
	}
	return stats.ToTable(), nil
}
