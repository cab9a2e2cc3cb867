// Package winner adapts the Israeli Winner League's JSON API to the
// canonical raw-record shape (spec.md §4.3).
package winner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"hoopsync/internal/adapter"
	"hoopsync/internal/cache"
	"hoopsync/internal/ratelimit"
)

const name = "winner"

// Client is the winner-league Adapter implementation.
type Client struct {
	transport *adapter.Transport
}

// New builds a winner-league adapter.
func New(baseURL, apiKey string, timeout time.Duration, maxRetries int, limiter ratelimit.Limiter, cacheStore cache.Store) *Client {
	t := adapter.NewTransport(name, baseURL, timeout, maxRetries, limiter, cacheStore)
	if apiKey != "" {
		t = t.WithHeader("Authorization", "Bearer "+apiKey)
	}
	return &Client{transport: t}
}

func (c *Client) SourceName() string { return name }

type wireSeason struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Current   bool   `json:"current"`
}

func (c *Client) GetSeasons(ctx context.Context) ([]adapter.RawSeason, error) {
	res, err := c.transport.Get(ctx, "/seasons", url.Values{}, cache.TTLSchedule, false)
	if err != nil {
		return nil, err
	}
	var wire []wireSeason
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("winner: decode seasons: %w", err)
	}
	out := make([]adapter.RawSeason, len(wire))
	for i, s := range wire {
		out[i] = adapter.RawSeason{ExternalID: s.ID, Name: s.Name, StartDate: s.StartDate, EndDate: s.EndDate, IsCurrent: s.Current}
	}
	return out, nil
}

type wirePlayer struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	BirthDate   string `json:"birth_date"`
	Nationality string `json:"nationality"`
	HeightCM    int    `json:"height_cm"`
	Position    string `json:"position"`
	Jersey      int    `json:"jersey_number"`
}

type wireTeam struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Short   string       `json:"short_name"`
	City    string       `json:"city"`
	Country string       `json:"country"`
	Roster  []wirePlayer `json:"roster"`
}

func (c *Client) GetTeams(ctx context.Context, seasonExternalID string) ([]adapter.RawTeam, error) {
	params := url.Values{"season_id": []string{seasonExternalID}}
	res, err := c.transport.Get(ctx, "/teams", params, cache.TTLRosterOrTeam, false)
	if err != nil {
		return nil, err
	}
	var wire []wireTeam
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("winner: decode teams: %w", err)
	}
	out := make([]adapter.RawTeam, len(wire))
	for i, t := range wire {
		roster := make([]adapter.RawPlayer, len(t.Roster))
		for j, p := range t.Roster {
			roster[j] = adapter.RawPlayer{
				ExternalID: p.ID, FirstName: p.FirstName, LastName: p.LastName,
				BirthDate: p.BirthDate, Nationality: p.Nationality, HeightCM: p.HeightCM,
				Position: p.Position, JerseyNumber: p.Jersey,
			}
		}
		out[i] = adapter.RawTeam{ExternalID: t.ID, Name: t.Name, ShortName: t.Short, City: t.City, Country: t.Country, Roster: roster}
	}
	return out, nil
}

type wireGame struct {
	ID         string `json:"id"`
	SeasonID   string `json:"season_id"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	HomeScore  *int   `json:"home_score"`
	AwayScore  *int   `json:"away_score"`
	Venue      string `json:"venue"`
	Attendance *int   `json:"attendance"`
}

func (c *Client) GetSchedule(ctx context.Context, seasonExternalID string) ([]adapter.RawGame, error) {
	params := url.Values{"season_id": []string{seasonExternalID}}
	res, err := c.transport.Get(ctx, "/games", params, cache.TTLSchedule, false)
	if err != nil {
		return nil, err
	}
	var wire []wireGame
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("winner: decode schedule: %w", err)
	}
	out := make([]adapter.RawGame, len(wire))
	for i, g := range wire {
		out[i] = adapter.RawGame{
			ExternalID: g.ID, SeasonExternal: g.SeasonID, HomeTeamExternal: g.HomeTeamID, AwayTeamExternal: g.AwayTeamID,
			GameDate: g.Date, Status: g.Status, HomeScore: g.HomeScore, AwayScore: g.AwayScore,
			Venue: g.Venue, Attendance: g.Attendance,
		}
	}
	return out, nil
}

type wirePlayerLine struct {
	PlayerID  string `json:"player_id"`
	TeamID    string `json:"team_id"`
	Starter   bool   `json:"starter"`
	Minutes   string `json:"minutes"`
	FGM       int    `json:"fgm"`
	FGA       int    `json:"fga"`
	TwoPM     int    `json:"two_pm"`
	TwoPA     int    `json:"two_pa"`
	ThreePM   int    `json:"three_pm"`
	ThreePA   int    `json:"three_pa"`
	FTM       int    `json:"ftm"`
	FTA       int    `json:"fta"`
	OReb      int    `json:"oreb"`
	DReb      int    `json:"dreb"`
	TReb      int    `json:"treb"`
	Ast       int    `json:"ast"`
	Stl       int    `json:"stl"`
	Blk       int    `json:"blk"`
	Tov       int    `json:"tov"`
	PF        int    `json:"pf"`
	Points    int    `json:"points"`
	PlusMinus int    `json:"plus_minus"`
}

type wireTeamLine struct {
	TeamID  string `json:"team_id"`
	FGM     int    `json:"fgm"`
	FGA     int    `json:"fga"`
	TwoPM   int    `json:"two_pm"`
	TwoPA   int    `json:"two_pa"`
	ThreePM int    `json:"three_pm"`
	ThreePA int    `json:"three_pa"`
	FTM     int    `json:"ftm"`
	FTA     int    `json:"fta"`
	OReb    int    `json:"oreb"`
	DReb    int    `json:"dreb"`
	TReb    int    `json:"treb"`
	Ast     int    `json:"ast"`
	Stl     int    `json:"stl"`
	Blk     int    `json:"blk"`
	Tov     int    `json:"tov"`
	PF      int    `json:"pf"`
	Points  int    `json:"points"`
	FastBreakPoints int `json:"fast_break_points"`
	PointsInPaint   int `json:"points_in_paint"`
	SecondChancePts int `json:"second_chance_points"`
	BenchPoints     int `json:"bench_points"`
	BiggestLead     int `json:"biggest_lead"`
}

type wireBoxScore struct {
	GameID  string           `json:"game_id"`
	Players []wirePlayerLine `json:"players"`
	Teams   []wireTeamLine   `json:"teams"`
}

func (c *Client) GetGameBoxScore(ctx context.Context, gameExternalID string) (adapter.RawBoxScore, error) {
	params := url.Values{"game_id": []string{gameExternalID}}
	res, err := c.transport.Get(ctx, "/boxscore", params, cache.TTLFinalGame, false)
	if err != nil {
		return adapter.RawBoxScore{}, err
	}
	var wire wireBoxScore
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return adapter.RawBoxScore{}, fmt.Errorf("winner: decode boxscore: %w", err)
	}

	players := make([]adapter.RawPlayerLine, len(wire.Players))
	for i, p := range wire.Players {
		players[i] = adapter.RawPlayerLine{
			PlayerExternal: p.PlayerID, TeamExternal: p.TeamID, IsStarter: p.Starter, Minutes: p.Minutes,
			FGM: p.FGM, FGA: p.FGA, TwoPM: p.TwoPM, TwoPA: p.TwoPA, ThreePM: p.ThreePM, ThreePA: p.ThreePA,
			FTM: p.FTM, FTA: p.FTA, OReb: p.OReb, DReb: p.DReb, TReb: p.TReb,
			Ast: p.Ast, Stl: p.Stl, Blk: p.Blk, Tov: p.Tov, PF: p.PF, Points: p.Points, PlusMinus: p.PlusMinus,
		}
	}
	teams := make([]adapter.RawTeamLine, len(wire.Teams))
	for i, t := range wire.Teams {
		teams[i] = adapter.RawTeamLine{
			TeamExternal: t.TeamID, FGM: t.FGM, FGA: t.FGA, TwoPM: t.TwoPM, TwoPA: t.TwoPA,
			ThreePM: t.ThreePM, ThreePA: t.ThreePA, FTM: t.FTM, FTA: t.FTA,
			OReb: t.OReb, DReb: t.DReb, TReb: t.TReb, Ast: t.Ast, Stl: t.Stl, Blk: t.Blk, Tov: t.Tov, PF: t.PF, Points: t.Points,
			FastBreakPoints: t.FastBreakPoints, PointsInPaint: t.PointsInPaint, SecondChancePts: t.SecondChancePts,
			BenchPoints: t.BenchPoints, BiggestLead: t.BiggestLead,
		}
	}
	return adapter.RawBoxScore{GameExternal: wire.GameID, Players: players, Teams: teams}, nil
}

type wirePBPEvent struct {
	EventNumber int     `json:"event_number"`
	Period      int     `json:"period"`
	Clock       string  `json:"clock"`
	Type        string  `json:"type"`
	Subtype     string  `json:"subtype"`
	PlayerID    string  `json:"player_id"`
	TeamID      string  `json:"team_id"`
	Success     *bool   `json:"success"`
	X           *float64 `json:"x"`
	Y           *float64 `json:"y"`
	Attributes  map[string]any `json:"attributes"`
}

func (c *Client) GetGamePBP(ctx context.Context, gameExternalID string) ([]adapter.RawPBPEvent, error) {
	params := url.Values{"game_id": []string{gameExternalID}}
	res, err := c.transport.Get(ctx, "/pbp", params, cache.TTLFinalGame, false)
	if err != nil {
		return nil, err
	}
	var wire []wirePBPEvent
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("winner: decode pbp: %w", err)
	}
	out := make([]adapter.RawPBPEvent, len(wire))
	for i, e := range wire {
		out[i] = adapter.RawPBPEvent{
			EventNumber: e.EventNumber, Period: e.Period, Clock: e.Clock, EventType: e.Type, EventSubtype: e.Subtype,
			PlayerExternal: e.PlayerID, TeamExternal: e.TeamID, Success: e.Success, CoordX: e.X, CoordY: e.Y, Attributes: e.Attributes,
		}
	}
	return out, nil
}

func (c *Client) IsGameFinal(g adapter.RawGame) bool {
	switch g.Status {
	case "final", "Final", "F", "F/OT", "completed", "Completed":
		return true
	default:
		return false
	}
}
