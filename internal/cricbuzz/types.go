package cricbuzz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/cricdash/pkg/core"
)

// Flex holds a scalar the API sends either as a JSON string or a number.
type Flex string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Flex(s)
	default:
		*f = Flex(b)
	}
	return nil
}

func (f Flex) String() string { return string(f) }

// Int parses the value as an integer, returning 0 when it is not one.
func (f Flex) Int() int64 {
	n, _ := strconv.ParseInt(string(f), 10, 64)
	return n
}

// Or returns f, or def when f is empty.
func (f Flex) Or(def string) string {
	if f == "" {
		return def
	}
	return string(f)
}

// FormatEpochMillis renders an epoch-milliseconds timestamp as
// "02 Jan 2006, 03:04 PM" in UTC, or "N/A" when it cannot be parsed.
func FormatEpochMillis(ms Flex) string {
	n, err := strconv.ParseInt(string(ms), 10, 64)
	if err != nil || n <= 0 {
		return "N/A"
	}
	return time.UnixMilli(n).UTC().Format("02 Jan 2006, 03:04 PM")
}

// LiveMatches is the /matches/v1/live payload.
type LiveMatches struct {
	TypeMatches []TypeMatches `json:"typeMatches"`
}

// TypeMatches groups series by match type (International, League, ...).
type TypeMatches struct {
	MatchType     string        `json:"matchType"`
	SeriesMatches []SeriesMatch `json:"seriesMatches"`
}

// SeriesMatch wraps one series. Ad entries have a nil wrapper.
type SeriesMatch struct {
	SeriesAdWrapper *SeriesWrapper `json:"seriesAdWrapper"`
}

// SeriesWrapper is a series and its live matches.
type SeriesWrapper struct {
	SeriesID   Flex    `json:"seriesId"`
	SeriesName string  `json:"seriesName"`
	Matches    []Match `json:"matches"`
}

// Match is one live match.
type Match struct {
	MatchInfo  MatchInfo  `json:"matchInfo"`
	MatchScore MatchScore `json:"matchScore"`
}

// MatchInfo describes a match.
type MatchInfo struct {
	MatchID     Flex      `json:"matchId"`
	MatchDesc   string    `json:"matchDesc"`
	MatchFormat string    `json:"matchFormat"`
	Status      string    `json:"status"`
	State       string    `json:"state"`
	StateTitle  string    `json:"stateTitle"`
	StartDate   Flex      `json:"startDate"`
	EndDate     Flex      `json:"endDate"`
	Team1       TeamInfo  `json:"team1"`
	Team2       TeamInfo  `json:"team2"`
	VenueInfo   VenueInfo `json:"venueInfo"`
}

// TeamInfo names a team.
type TeamInfo struct {
	TeamID    Flex   `json:"teamId"`
	TeamName  string `json:"teamName"`
	TeamSName string `json:"teamSName"`
}

// VenueInfo locates a match.
type VenueInfo struct {
	Ground string `json:"ground"`
	City   string `json:"city"`
}

// MatchScore holds each side's innings scores when play has started.
type MatchScore struct {
	Team1Score *TeamScore `json:"team1Score"`
	Team2Score *TeamScore `json:"team2Score"`
}

// TeamScore is a side's first and second innings.
type TeamScore struct {
	Inngs1 *InningsScore `json:"inngs1"`
	Inngs2 *InningsScore `json:"inngs2"`
}

// InningsScore is runs/wickets in overs.
type InningsScore struct {
	Runs    Flex `json:"runs"`
	Wickets Flex `json:"wickets"`
	Overs   Flex `json:"overs"`
}

// Title returns "Team A vs Team B".
func (m MatchInfo) Title() string {
	return m.Team1.TeamName + " vs " + m.Team2.TeamName
}

// Venue returns "ground, city".
func (m MatchInfo) Venue() string {
	if m.VenueInfo.City == "" {
		return m.VenueInfo.Ground
	}
	return m.VenueInfo.Ground + ", " + m.VenueInfo.City
}

// Summary renders a first-innings score as "IND: 250/7 in 50 overs", or
// "" when the side has not batted.
func (s *TeamScore) Summary(short string) string {
	if s == nil || s.Inngs1 == nil {
		return ""
	}
	in := s.Inngs1
	return fmt.Sprintf("%s: %s/%s in %s overs", short, in.Runs.Or("0"), in.Wickets.Or("0"), in.Overs.Or("0"))
}

// SeriesGroup is a series with its match type, keyed for selection lists.
type SeriesGroup struct {
	Key     string
	Name    string
	Type    string
	Matches []Match
}

// Series flattens the payload into one entry per series, in payload order.
// Ad slots and series without matches are skipped.
func (l *LiveMatches) Series() []SeriesGroup {
	var out []SeriesGroup
	for _, tm := range l.TypeMatches {
		matchType := tm.MatchType
		if matchType == "" {
			matchType = "Unknown"
		}
		for _, sm := range tm.SeriesMatches {
			w := sm.SeriesAdWrapper
			if w == nil || len(w.Matches) == 0 {
				continue
			}
			name := w.SeriesName
			if name == "" {
				name = "Unknown Series"
			}
			out = append(out, SeriesGroup{
				Key:     fmt.Sprintf("%s (%s)", name, matchType),
				Name:    name,
				Type:    matchType,
				Matches: w.Matches,
			})
		}
	}
	return out
}

// ToTable lists every live match, one row per match.
func (l *LiveMatches) ToTable() core.ResultTable {
	t := core.ResultTable{
		Columns: []string{"series", "match_id", "match", "description", "format", "status", "state", "venue", "start", "team1_score", "team2_score"},
		Rows:    []core.Row{},
	}
	for _, g := range l.Series() {
		for _, m := range g.Matches {
			info := m.MatchInfo
			t.Rows = append(t.Rows, core.Row{
				"series":      g.Key,
				"match_id":    info.MatchID.String(),
				"match":       info.Title(),
				"description": info.MatchDesc,
				"format":      info.MatchFormat,
				"status":      info.Status,
				"state":       info.StateTitle,
				"venue":       info.Venue(),
				"start":       FormatEpochMillis(info.StartDate),
				"team1_score": m.MatchScore.Team1Score.Summary(info.Team1.TeamSName),
				"team2_score": m.MatchScore.Team2Score.Summary(info.Team2.TeamSName),
			})
		}
	}
	return t
}

// Scorecard is the /mcenter/v1/{id}/scard payload.
type Scorecard struct {
	Innings []Innings `json:"scorecard"`
	Status  string    `json:"status"`
}

// Innings is one innings of a scorecard.
type Innings struct {
	InningsID    Flex      `json:"inningsid"`
	BatTeamName  string    `json:"batteamname"`
	BatTeamSName string    `json:"batteamsname"`
	Score        Flex      `json:"score"`
	Wickets      Flex      `json:"wickets"`
	Overs        Flex      `json:"overs"`
	Batsmen      []Batsman `json:"batsman"`
	Bowlers      []Bowler  `json:"bowler"`
}

// Batsman is a batting scorecard line.
type Batsman struct {
	Name     string `json:"name"`
	Runs     Flex   `json:"runs"`
	Balls    Flex   `json:"balls"`
	Fours    Flex   `json:"fours"`
	Sixes    Flex   `json:"sixes"`
	StrkRate Flex   `json:"strkrate"`
	OutDec   string `json:"outdec"`
}

// Bowler is a bowling scorecard line.
type Bowler struct {
	Name    string `json:"name"`
	Overs   Flex   `json:"overs"`
	Maidens Flex   `json:"maidens"`
	Runs    Flex   `json:"runs"`
	Wickets Flex   `json:"wickets"`
	Economy Flex   `json:"economy"`
}

// BattingTable renders the batting lines.
func (in Innings) BattingTable() core.ResultTable {
	t := core.ResultTable{Columns: []string{"Name", "Runs", "Balls", "4s", "6s", "SR", "Out"}, Rows: []core.Row{}}
	for _, b := range in.Batsmen {
		t.Rows = append(t.Rows, core.Row{
			"Name":  b.Name,
			"Runs":  b.Runs.Or("0"),
			"Balls": b.Balls.Or("0"),
			"4s":    b.Fours.Or("0"),
			"6s":    b.Sixes.Or("0"),
			"SR":    b.StrkRate.Or("0"),
			"Out":   b.OutDec,
		})
	}
	return t
}

// BowlingTable renders the bowling lines.
func (in Innings) BowlingTable() core.ResultTable {
	t := core.ResultTable{Columns: []string{"Name", "Overs", "Maidens", "Runs", "Wickets", "Economy"}, Rows: []core.Row{}}
	for _, b := range in.Bowlers {
		t.Rows = append(t.Rows, core.Row{
			"Name":    b.Name,
			"Overs":   b.Overs.Or("0"),
			"Maidens": b.Maidens.Or("0"),
			"Runs":    b.Runs.Or("0"),
			"Wickets": b.Wickets.Or("0"),
			"Economy": b.Economy.Or("0"),
		})
	}
	return t
}

// ToTable summarises every innings, one row each.
func (s *Scorecard) ToTable() core.ResultTable {
	t := core.ResultTable{Columns: []string{"innings", "team", "score", "overs"}, Rows: []core.Row{}}
	for i, in := range s.Innings {
		t.Rows = append(t.Rows, core.Row{
			"innings": i + 1,
			"team":    in.BatTeamName,
			"score":   in.Score.Or("0") + "/" + in.Wickets.Or("0"),
			"overs":   in.Overs.Or("0"),
		})
	}
	return t
}

// PlayerSearch is the /stats/v1/player/search payload.
type PlayerSearch struct {
	Players []PlayerHit `json:"player"`
}

// PlayerHit is one search result.
type PlayerHit struct {
	ID          Flex   `json:"id"`
	Name        string `json:"name"`
	TeamName    string `json:"teamName"`
	DOB         string `json:"dob"`
	FaceImageID Flex   `json:"faceImageId"`
}

// ImageURL returns the player's face image, or "" when there is none.
func (p PlayerHit) ImageURL() string {
	return faceImage(p.FaceImageID)
}

func faceImage(id Flex) string {
	if id == "" {
		return ""
	}
	return "http://i.cricketcb.com/stats/img/faceImages/" + id.String() + ".jpg"
}

// ToTable lists the matches.
func (s *PlayerSearch) ToTable() core.ResultTable {
	t := core.ResultTable{Columns: []string{"id", "name", "team", "dob"}, Rows: []core.Row{}}
	for _, p := range s.Players {
		t.Rows = append(t.Rows, core.Row{
			"id":   p.ID.String(),
			"name": p.Name,
			"team": p.TeamName,
			"dob":  p.DOB,
		})
	}
	return t
}

// PlayerProfile is the /stats/v1/player/{id} payload.
type PlayerProfile struct {
	ID         Flex     `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Bat        string   `json:"bat"`
	Bowl       string   `json:"bowl"`
	Teams      string   `json:"teams"`
	BirthPlace string   `json:"birthPlace"`
	DOB        string   `json:"DoB"`
	IntlTeam   string   `json:"intlTeam"`
	WebURL     string   `json:"webURL"`
	Image      Flex     `json:"faceImageId"`
	Rankings   Rankings `json:"rankings"`
}

// ImageURL returns the player's face image, or "" when there is none.
func (p *PlayerProfile) ImageURL() string {
	return faceImage(p.Image)
}

// Rankings holds ICC rankings per discipline, keyed by format label.
type Rankings struct {
	Bat  map[string]Flex `json:"bat"`
	Bowl map[string]Flex `json:"bowl"`
	All  map[string]Flex `json:"all"`
}

// ToTable renders the profile as field/value rows. Rankings follow the
// profile fields, sorted by key within each discipline.
func (p *PlayerProfile) ToTable() core.ResultTable {
	t := core.ResultTable{Columns: []string{"field", "value"}, Rows: []core.Row{}}
	add := func(field, value string) {
		if value == "" {
			value = "N/A"
		}
		t.Rows = append(t.Rows, core.Row{"field": field, "value": value})
	}
	add("Name", p.Name)
	add("Role", p.Role)
	add("Batting Style", p.Bat)
	add("Bowling Style", p.Bowl)
	add("Teams", p.Teams)
	add("Birth Place", p.BirthPlace)

	for _, group := range []struct {
		label string
		m     map[string]Flex
	}{{"Batting", p.Rankings.Bat}, {"Bowling", p.Rankings.Bowl}, {"All-Rounder", p.Rankings.All}} {
		keys := make([]string, 0, len(group.m))
		for k := range group.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(group.label+" ranking "+k, group.m[k].String())
		}
	}
	return t
}

// StatsTable is the headers/values shape used by the stats endpoints.
type StatsTable struct {
	Headers []string   `json:"headers"`
	Values  []StatsRow `json:"values"`
}

// StatsRow is one row of a StatsTable.
type StatsRow struct {
	Values []Flex `json:"values"`
}

// ToTable converts the stats into a result table using the API's headers as
// column names. Short rows are padded with empty strings. A payload without
// headers becomes an empty table.
func (s *StatsTable) ToTable() core.ResultTable {
	t := core.ResultTable{Columns: []string{}, Rows: []core.Row{}}
	if s == nil || len(s.Headers) == 0 {
		return t
	}
	t.Columns = dedupe(s.Headers)
	for _, r := range s.Values {
		row := make(core.Row, len(t.Columns))
		for i, col := range t.Columns {
			v := ""
			if i < len(r.Values) {
				v = r.Values[i].String()
			}
			row[col] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// CareerTable renders PlayerCareer rows as Format, Debut and Last Played.
func (s *StatsTable) CareerTable() core.ResultTable {
	t := core.ResultTable{Columns: []string{"Format", "Debut", "Last Played"}, Rows: []core.Row{}}
	if s == nil {
		return t
	}
	for _, r := range s.Values {
		row := core.Row{}
		for i, col := range t.Columns {
			v := ""
			if i < len(r.Values) {
				v = r.Values[i].String()
			}
			row[col] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// dedupe suffixes repeated header names so every column key is unique.
func dedupe(headers []string) []string {
	seen := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("col%d", i+1)
		}
		if n := seen[h]; n > 0 {
			out[i] = fmt.Sprintf("%s_%d", h, n+1)
		} else {
			out[i] = h
		}
		seen[h]++
	}
	return out
}
