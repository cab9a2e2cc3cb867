// Package nbastats adapts the NBA stats endpoints, which return tabular
// "resultSets" (headers + rowSet arrays) rather than keyed JSON objects —
// the third distinct raw shape in the pack, normalized at this boundary
// (spec.md §9). It is the only configured source implementing PlayerInfo.
package nbastats

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

const name = "nba"

type Client struct {
	transport *adapter.Transport
}

func New(baseURL, apiKey string, timeout time.Duration, maxRetries int, limiter ratelimit.Limiter, cacheStore cache.Store) *Client {
	t := adapter.NewTransport(name, baseURL, timeout, maxRetries, limiter, cacheStore)
	return &Client{transport: t}
}

func (c *Client) SourceName() string { return name }

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]json.RawMessage `json:"rowSet"`
}

type wireResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

// row converts one rowSet entry into a header-keyed map, the shape every
// mapper in this package operates on.
func row(headers []string, cells []json.RawMessage) map[string]json.RawMessage {
	m := make(map[string]json.RawMessage, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			m[h] = cells[i]
		}
	}
	return m
}

func asString(raw json.RawMessage) string {
	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}

func asInt(raw json.RawMessage) int {
	var n int
	_ = json.Unmarshal(raw, &n)
	return n
}

func (c *Client) GetSeasons(ctx context.Context) ([]adapter.RawSeason, error) {
	res, err := c.transport.Get(ctx, "/leaguegamelog", url.Values{"Season": []string{"ALL"}}, cache.TTLSchedule, false)
	if err != nil {
		return nil, err
	}
	var wire wireResponse
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("nbastats: decode seasons: %w", err)
	}
	if len(wire.ResultSets) == 0 {
		return nil, nil
	}
	seen := map[string]bool{}
	var out []adapter.RawSeason
	for _, cells := range wire.ResultSets[0].RowSet {
		r := row(wire.ResultSets[0].Headers, cells)
		id := asString(r["SEASON_ID"])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, adapter.RawSeason{ExternalID: id, Name: id})
	}
	return out, nil
}

func (c *Client) GetTeams(ctx context.Context, seasonExternalID string) ([]adapter.RawTeam, error) {
	params := url.Values{"Season": []string{seasonExternalID}}
	res, err := c.transport.Get(ctx, "/leaguedashteamstats", params, cache.TTLRosterOrTeam, false)
	if err != nil {
		return nil, err
	}
	var wire wireResponse
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("nbastats: decode teams: %w", err)
	}
	if len(wire.ResultSets) == 0 {
		return nil, nil
	}
	var out []adapter.RawTeam
	for _, cells := range wire.ResultSets[0].RowSet {
		r := row(wire.ResultSets[0].Headers, cells)
		out = append(out, adapter.RawTeam{
			ExternalID: asString(r["TEAM_ID"]),
			Name:       asString(r["TEAM_NAME"]),
			ShortName:  asString(r["TEAM_ABBREVIATION"]),
		})
	}
	return out, nil
}

func (c *Client) GetSchedule(ctx context.Context, seasonExternalID string) ([]adapter.RawGame, error) {
	params := url.Values{"Season": []string{seasonExternalID}}
	res, err := c.transport.Get(ctx, "/leaguegamelog", params, cache.TTLSchedule, false)
	if err != nil {
		return nil, err
	}
	var wire wireResponse
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("nbastats: decode schedule: %w", err)
	}
	if len(wire.ResultSets) == 0 {
		return nil, nil
	}
	var out []adapter.RawGame
	for _, cells := range wire.ResultSets[0].RowSet {
		r := row(wire.ResultSets[0].Headers, cells)
		out = append(out, adapter.RawGame{
			ExternalID:       asString(r["GAME_ID"]),
			SeasonExternal:   seasonExternalID,
			HomeTeamExternal: asString(r["TEAM_ID"]),
			GameDate:         asString(r["GAME_DATE"]),
			Status:           "final",
		})
	}
	return out, nil
}

func (c *Client) GetGameBoxScore(ctx context.Context, gameExternalID string) (adapter.RawBoxScore, error) {
	params := url.Values{"GameID": []string{gameExternalID}}
	res, err := c.transport.Get(ctx, "/boxscoretraditionalv2", params, cache.TTLFinalGame, false)
	if err != nil {
		return adapter.RawBoxScore{}, err
	}
	var wire wireResponse
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return adapter.RawBoxScore{}, fmt.Errorf("nbastats: decode boxscore: %w", err)
	}
	if len(wire.ResultSets) == 0 {
		return adapter.RawBoxScore{GameExternal: gameExternalID}, nil
	}
	rs := wire.ResultSets[0]
	var players []adapter.RawPlayerLine
	for _, cells := range rs.RowSet {
		r := row(rs.Headers, cells)
		players = append(players, adapter.RawPlayerLine{
			PlayerExternal: asString(r["PLAYER_ID"]), TeamExternal: asString(r["TEAM_ID"]),
			Minutes: asString(r["MIN"]),
			FGM: asInt(r["FGM"]), FGA: asInt(r["FGA"]),
			ThreePM: asInt(r["FG3M"]), ThreePA: asInt(r["FG3A"]),
			TwoPM: asInt(r["FGM"]) - asInt(r["FG3M"]), TwoPA: asInt(r["FGA"]) - asInt(r["FG3A"]),
			FTM: asInt(r["FTM"]), FTA: asInt(r["FTA"]),
			OReb: asInt(r["OREB"]), DReb: asInt(r["DREB"]), TReb: asInt(r["REB"]),
			Ast: asInt(r["AST"]), Stl: asInt(r["STL"]), Blk: asInt(r["BLK"]), Tov: asInt(r["TO"]), PF: asInt(r["PF"]),
			Points: asInt(r["PTS"]), PlusMinus: asInt(r["PLUS_MINUS"]),
		})
	}
	return adapter.RawBoxScore{GameExternal: gameExternalID, Players: players}, nil
}

func (c *Client) GetGamePBP(ctx context.Context, gameExternalID string) ([]adapter.RawPBPEvent, error) {
	params := url.Values{"GameID": []string{gameExternalID}}
	res, err := c.transport.Get(ctx, "/playbyplayv2", params, cache.TTLFinalGame, false)
	if err != nil {
		return nil, err
	}
	var wire wireResponse
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("nbastats: decode pbp: %w", err)
	}
	if len(wire.ResultSets) == 0 {
		return nil, nil
	}
	rs := wire.ResultSets[0]
	out := make([]adapter.RawPBPEvent, 0, len(rs.RowSet))
	for _, cells := range rs.RowSet {
		r := row(rs.Headers, cells)
		out = append(out, adapter.RawPBPEvent{
			EventNumber:    asInt(r["EVENTNUM"]),
			Period:         asInt(r["PERIOD"]),
			Clock:          asString(r["PCTIMESTRING"]),
			EventType:      asString(r["EVENTMSGTYPE"]),
			PlayerExternal: asString(r["PLAYER1_ID"]),
			TeamExternal:   asString(r["PLAYER1_TEAM_ID"]),
		})
	}
	return out, nil
}

func (c *Client) IsGameFinal(g adapter.RawGame) bool {
	return g.Status == "final" || g.Status == "Final"
}

// GetPlayer implements adapter.PlayerInfo.
func (c *Client) GetPlayer(ctx context.Context, externalID string) (adapter.RawPlayer, error) {
	params := url.Values{"PlayerID": []string{externalID}}
	res, err := c.transport.Get(ctx, "/commonplayerinfo", params, cache.TTLRosterOrTeam, false)
	if err != nil {
		return adapter.RawPlayer{}, err
	}
	var wire wireResponse
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return adapter.RawPlayer{}, fmt.Errorf("nbastats: decode player: %w", err)
	}
	if len(wire.ResultSets) == 0 || len(wire.ResultSets[0].RowSet) == 0 {
		return adapter.RawPlayer{}, fmt.Errorf("nbastats: player %s not found", externalID)
	}
	r := row(wire.ResultSets[0].Headers, wire.ResultSets[0].RowSet[0])
	return adapter.RawPlayer{
		ExternalID: externalID,
		FirstName:  asString(r["FIRST_NAME"]),
		LastName:   asString(r["LAST_NAME"]),
		BirthDate:  asString(r["BIRTHDATE"]),
		Position:   asString(r["POSITION"]),
	}, nil
}

// SearchPlayer implements adapter.PlayerInfo using the same resultSet
// decoding as GetPlayer.
func (c *Client) SearchPlayer(ctx context.Context, query string, teamExternalID string) ([]adapter.RawPlayer, error) {
	params := url.Values{"Search": []string{query}}
	if teamExternalID != "" {
		params.Set("TeamID", teamExternalID)
	}
	res, err := c.transport.Get(ctx, "/commonallplayers", params, cache.TTLRosterOrTeam, false)
	if err != nil {
		return nil, err
	}
	var wire wireResponse
	if err := json.Unmarshal(res.Body, &wire); err != nil {
		return nil, fmt.Errorf("nbastats: decode player search: %w", err)
	}
	if len(wire.ResultSets) == 0 {
		return nil, nil
	}
	rs := wire.ResultSets[0]
	out := make([]adapter.RawPlayer, 0, len(rs.RowSet))
	for _, cells := range rs.RowSet {
		r := row(rs.Headers, cells)
		out = append(out, adapter.RawPlayer{
			ExternalID: asString(r["PERSON_ID"]),
			FirstName:  asString(r["FIRST_NAME"]),
			LastName:   asString(r["LAST_NAME"]),
		})
	}
	return out, nil
}
