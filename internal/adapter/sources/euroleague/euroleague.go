// Package euroleague adapts the EuroLeague JSON feed, which wraps every
// payload in a "results" envelope distinct from winner's flat arrays —
// the adapter/mapper boundary is what normalizes this away (spec.md §9).
package euroleague

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

const name = "euroleague"

type Client struct {
	transport *adapter.Transport
}

func New(baseURL, apiKey string, timeout time.Duration, maxRetries int, limiter ratelimit.Limiter, cacheStore cache.Store) *Client {
	t := adapter.NewTransport(name, baseURL, timeout, maxRetries, limiter, cacheStore)
	if apiKey != "" {
		t = t.WithHeader("X-Api-Key", apiKey)
	}
	return &Client{transport: t}
}

func (c *Client) SourceName() string { return name }

type envelope[T any] struct {
	Results []T `json:"results"`
}

type wireSeason struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	From  string `json:"from"`
	To    string `json:"to"`
	IsActive bool `json:"isActive"`
}

func (c *Client) GetSeasons(ctx context.Context) ([]adapter.RawSeason, error) {
	res, err := c.transport.Get(ctx, "/competitions/seasons", url.Values{}, cache.TTLSchedule, false)
	if err != nil {
		return nil, err
	}
	var env envelope[wireSeason]
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return nil, fmt.Errorf("euroleague: decode seasons: %w", err)
	}
	out := make([]adapter.RawSeason, len(env.Results))
	for i, s := range env.Results {
		out[i] = adapter.RawSeason{ExternalID: s.Code, Name: s.Label, StartDate: s.From, EndDate: s.To, IsCurrent: s.IsActive}
	}
	return out, nil
}

type wireClub struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Abbr    string `json:"abbreviatedName"`
	City    string `json:"city"`
	Country string `json:"country"`
}

func (c *Client) GetTeams(ctx context.Context, seasonExternalID string) ([]adapter.RawTeam, error) {
	params := url.Values{"seasonCode": []string{seasonExternalID}}
	res, err := c.transport.Get(ctx, "/clubs", params, cache.TTLRosterOrTeam, false)
	if err != nil {
		return nil, err
	}
	var env envelope[wireClub]
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return nil, fmt.Errorf("euroleague: decode clubs: %w", err)
	}
	out := make([]adapter.RawTeam, len(env.Results))
	for i, t := range env.Results {
		out[i] = adapter.RawTeam{ExternalID: t.Code, Name: t.Name, ShortName: t.Abbr, City: t.City, Country: t.Country}
	}
	return out, nil
}

type wireGame struct {
	GameCode  string `json:"gameCode"`
	SeasonCode string `json:"seasonCode"`
	HomeCode  string `json:"homeClubCode"`
	AwayCode  string `json:"awayClubCode"`
	Date      string `json:"date"`
	Played    bool   `json:"played"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
	Arena     string `json:"arena"`
}

func (c *Client) GetSchedule(ctx context.Context, seasonExternalID string) ([]adapter.RawGame, error) {
	params := url.Values{"seasonCode": []string{seasonExternalID}}
	res, err := c.transport.Get(ctx, "/games", params, cache.TTLSchedule, false)
	if err != nil {
		return nil, err
	}
	var env envelope[wireGame]
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return nil, fmt.Errorf("euroleague: decode games: %w", err)
	}
	out := make([]adapter.RawGame, len(env.Results))
	for i, g := range env.Results {
		status := "scheduled"
		if g.Played {
			status = "final"
		}
		out[i] = adapter.RawGame{
			ExternalID: g.GameCode, SeasonExternal: g.SeasonCode, HomeTeamExternal: g.HomeCode, AwayTeamExternal: g.AwayCode,
			GameDate: g.Date, Status: status, HomeScore: g.HomeScore, AwayScore: g.AwayScore, Venue: g.Arena,
		}
	}
	return out, nil
}

type wireStatLine struct {
	PlayerCode string `json:"playerCode"`
	ClubCode   string `json:"clubCode"`
	IsPlayer   bool   `json:"isPlayer"`
	Starter    bool   `json:"startFive"`
	Minutes    string `json:"timePlayed"`
	FieldGoalsMade2   int `json:"fieldGoalsMade2"`
	FieldGoalsAttempted2 int `json:"fieldGoalsAttempted2"`
	FieldGoalsMade3   int `json:"fieldGoalsMade3"`
	FieldGoalsAttempted3 int `json:"fieldGoalsAttempted3"`
	FreeThrowsMade    int `json:"freeThrowsMade"`
	FreeThrowsAttempted int `json:"freeThrowsAttempted"`
	OffensiveRebounds int `json:"offensiveRebounds"`
	DefensiveRebounds int `json:"defensiveRebounds"`
	Assistances       int `json:"assistances"`
	Steals            int `json:"steals"`
	BlocksFavour      int `json:"blocksFavour"`
	Turnovers         int `json:"turnovers"`
	FoulsCommited     int `json:"foulsCommited"`
	Points            int `json:"points"`
	Valuation         int `json:"valuation"`
}

func (c *Client) GetGameBoxScore(ctx context.Context, gameExternalID string) (adapter.RawBoxScore, error) {
	params := url.Values{"gameCode": []string{gameExternalID}}
	res, err := c.transport.Get(ctx, "/boxscore/stats", params, cache.TTLFinalGame, false)
	if err != nil {
		return adapter.RawBoxScore{}, err
	}
	var env envelope[wireStatLine]
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return adapter.RawBoxScore{}, fmt.Errorf("euroleague: decode boxscore: %w", err)
	}

	var players []adapter.RawPlayerLine
	teamTotals := map[string]*adapter.RawTeamLine{}
	for _, s := range env.Results {
		if !s.IsPlayer {
			// Team total row, keyed by club.
			teamTotals[s.ClubCode] = &adapter.RawTeamLine{
				TeamExternal: s.ClubCode,
				TwoPM: s.FieldGoalsMade2, TwoPA: s.FieldGoalsAttempted2,
				ThreePM: s.FieldGoalsMade3, ThreePA: s.FieldGoalsAttempted3,
				FGM: s.FieldGoalsMade2 + s.FieldGoalsMade3, FGA: s.FieldGoalsAttempted2 + s.FieldGoalsAttempted3,
				FTM: s.FreeThrowsMade, FTA: s.FreeThrowsAttempted,
				OReb: s.OffensiveRebounds, DReb: s.DefensiveRebounds, TReb: s.OffensiveRebounds + s.DefensiveRebounds,
				Ast: s.Assistances, Stl: s.Steals, Blk: s.BlocksFavour, Tov: s.Turnovers, PF: s.FoulsCommited, Points: s.Points,
			}
			continue
		}
		players = append(players, adapter.RawPlayerLine{
			PlayerExternal: s.PlayerCode, TeamExternal: s.ClubCode, IsStarter: s.Starter, Minutes: s.Minutes,
			TwoPM: s.FieldGoalsMade2, TwoPA: s.FieldGoalsAttempted2,
			ThreePM: s.FieldGoalsMade3, ThreePA: s.FieldGoalsAttempted3,
			FGM: s.FieldGoalsMade2 + s.FieldGoalsMade3, FGA: s.FieldGoalsAttempted2 + s.FieldGoalsAttempted3,
			FTM: s.FreeThrowsMade, FTA: s.FreeThrowsAttempted,
			OReb: s.OffensiveRebounds, DReb: s.DefensiveRebounds, TReb: s.OffensiveRebounds + s.DefensiveRebounds,
			Ast: s.Assistances, Stl: s.Steals, Blk: s.BlocksFavour, Tov: s.Turnovers, PF: s.FoulsCommited, Points: s.Points,
			Extra: map[string]any{"valuation": s.Valuation},
		})
	}
	teams := make([]adapter.RawTeamLine, 0, len(teamTotals))
	for _, t := range teamTotals {
		teams = append(teams, *t)
	}
	return adapter.RawBoxScore{GameExternal: gameExternalID, Players: players, Teams: teams}, nil
}

type wirePlayByPlay struct {
	NumberOfPlay int    `json:"numberOfPlay"`
	Period       int    `json:"period"`
	Minute       string `json:"minute"`
	PlayType     string `json:"playType"`
	PlayerCode   string `json:"playerCode"`
	ClubCode     string `json:"clubCode"`
	PointsA      int    `json:"pointsA"`
	PointsB      int    `json:"pointsB"`
}

func (c *Client) GetGamePBP(ctx context.Context, gameExternalID string) ([]adapter.RawPBPEvent, error) {
	params := url.Values{"gameCode": []string{gameExternalID}}
	res, err := c.transport.Get(ctx, "/boxscore/playbyplay", params, cache.TTLFinalGame, false)
	if err != nil {
		return nil, err
	}
	var env envelope[wirePlayByPlay]
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return nil, fmt.Errorf("euroleague: decode pbp: %w", err)
	}
	out := make([]adapter.RawPBPEvent, len(env.Results))
	for i, e := range env.Results {
		out[i] = adapter.RawPBPEvent{
			EventNumber: e.NumberOfPlay, Period: e.Period, Clock: e.Minute, EventType: e.PlayType,
			PlayerExternal: e.PlayerCode, TeamExternal: e.ClubCode,
			Attributes: map[string]any{"points_a": e.PointsA, "points_b": e.PointsB},
		}
	}
	return out, nil
}

func (c *Client) IsGameFinal(g adapter.RawGame) bool {
	return g.Status == "final"
}
