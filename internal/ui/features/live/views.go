package live

import (
	"fmt"
	"net/url"

	"github.com/leapstack-labs/cricdash/internal/cricbuzz"
	"github.com/leapstack-labs/cricdash/internal/ui/features/common"
)

const (
	matchesID   = "live-matches"
	scorecardID = "live-scorecard"
	playersID   = "live-players"
	profileID   = "live-profile"
)

// ProfileView is a player's profile with one statistics table.
type ProfileView struct {
	ID      string
	Name    string
	Image   string
	Profile common.TableView
	Kind    string
	Stats   common.TableView
}

var statKinds = []string{"batting", "bowling", "career"}

func seriesKeys(groups []cricbuzz.SeriesGroup) []string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	return keys
}

// selectedMatches returns the matches of the selected series, or of every
// series when none is selected.
func selectedMatches(groups []cricbuzz.SeriesGroup, selected string) []cricbuzz.Match {
	var out []cricbuzz.Match
	for _, g := range groups {
		if selected != "" && g.Key != selected {
			continue
		}
		out = append(out, g.Matches...)
	}
	return out
}

func scorecardAction(m cricbuzz.Match) string {
	return "@get('/api/live/scorecard/" + url.PathEscape(m.MatchInfo.MatchID.String()) + "')"
}

func profileAction(id string) string {
	return "@get('/api/live/players/" + url.PathEscape(id) + "')"
}

func inningsHeading(i int, in cricbuzz.Innings) string {
	return fmt.Sprintf("Innings %d: %s %s/%s (%s ov)",
		i+1, in.BatTeamName, in.Score.Or("0"), in.Wickets.Or("0"), in.Overs.Or("0"))
}
