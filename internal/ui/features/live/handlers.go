// Package live serves live matches, scorecards and player lookups from
// the Cricbuzz API.
package live

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
	"github.com/leapstack-labs/cricdash/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// Signals are the datastar signals sent by the live panel.
type Signals struct {
	Series string `json:"series"`
	Player string `json:"player"`
	Kind   string `json:"kind"`
}

// Handlers provides HTTP handlers for the live feature.
type Handlers struct {
	deps common.Deps
	api  *cricbuzz.Client
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps common.Deps) *Handlers {
	return &Handlers{deps: deps, api: deps.API}
}

// start reads signals and opens the stream. It returns nil signals when
// the stream already carries an error or the API is not configured.
func (h *Handlers) start(w http.ResponseWriter, r *http.Request, targetID string) (*datastar.ServerSentEventGenerator, *Signals) {
	var signals Signals
	err := datastar.ReadSignals(r, &signals)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(targetID, "Failed to read signals: "+err.Error()))
		return sse, nil
	}
	if h.api == nil {
		_ = sse.PatchElementTempl(common.Notice(targetID, disabledMessage))
		return sse, nil
	}
	return sse, &signals
}

// MatchesSSE renders live matches, optionally restricted to one series.
func (h *Handlers) MatchesSSE(w http.ResponseWriter, r *http.Request) {
	sse, signals := h.start(w, r, matchesID)
	if signals == nil {
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	start := time.Now()
	live, err := h.api.LiveMatches(ctx)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(matchesID, describeError(err)))
		return
	}

	groups := live.Series()
	rt := filterSeries(live.ToTable(), signals.Series)
	if err := sse.PatchElementTempl(Matches(groups, signals.Series, common.NewTableView(rt, time.Since(start)))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ScorecardSSE renders the scorecard of one match.
func (h *Handlers) ScorecardSSE(w http.ResponseWriter, r *http.Request) {
	sse, signals := h.start(w, r, scorecardID)
	if signals == nil {
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	card, err := h.api.Scorecard(ctx, chi.URLParam(r, "id"))
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(scorecardID, describeError(err)))
		return
	}
	if err := sse.PatchElementTempl(ScorecardView(card)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// SearchPlayersSSE looks players up by name.
func (h *Handlers) SearchPlayersSSE(w http.ResponseWriter, r *http.Request) {
	sse, signals := h.start(w, r, playersID)
	if signals == nil {
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	res, err := h.api.SearchPlayers(ctx, signals.Player)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(playersID, describeError(err)))
		return
	}
	if err := sse.PatchElementTempl(PlayerList(res.Players)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// PlayerSSE renders a player's profile and the selected statistics.
func (h *Handlers) PlayerSSE(w http.ResponseWriter, r *http.Request) {
	sse, signals := h.start(w, r, profileID)
	if signals == nil {
		return
	}

	ctx, cancel := h.deps.WithTimeout(r)
	defer cancel()

	id := chi.URLParam(r, "id")
	kind := strings.TrimSpace(signals.Kind)
	if kind == "" {
		kind = string(cricbuzz.Batting)
	}

	profile, err := h.api.PlayerInfo(ctx, id)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(profileID, describeError(err)))
		return
	}
	stats, err := h.api.StatsTable(ctx, id, kind)
	if err != nil {
		_ = sse.PatchElementTempl(common.ErrorPanel(profileID, describeError(err)))
		return
	}

	view := ProfileView{
		ID:      id,
		Name:    profile.Name,
		Image:   profile.ImageURL(),
		Profile: common.NewTableView(profile.ToTable(), 0),
		Kind:    kind,
		Stats:   common.NewTableView(stats, 0),
	}
	if err := sse.PatchElementTempl(Profile(view)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// filterSeries keeps the rows of one series key. An empty key keeps all.
func filterSeries(rt core.ResultTable, key string) core.ResultTable {
	if strings.TrimSpace(key) == "" {
		return rt
	}
	out := core.ResultTable{Columns: rt.Columns, Rows: []core.Row{}}
	for _, row := range rt.Rows {
		if row["series"] == key {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

const disabledMessage = "Live data is not configured. Set cricbuzz.api_key in cricdash.yaml or RAPIDAPI_KEY."

func describeError(err error) string {
	var (
		apiErr *cricbuzz.APIError
		ve     *core.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusForbidden || apiErr.Status == http.StatusUnauthorized {
			return "Cricbuzz rejected the API key (" + apiErr.Error() + ")"
		}
		if apiErr.Status == http.StatusTooManyRequests {
			return "Cricbuzz rate limit reached, try again shortly"
		}
		return apiErr.Error()
	default:
		return err.Error()
	}
}
