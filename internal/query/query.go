// Package query implements the read-side facade: leaderboards, filtered and
// paginated entity lists, and substring search. It never mutates state and
// is safe to call concurrently with an in-flight sync run.
package query

import (
	"context"
	"sort"
	"strings"

	"hoopsync/internal/models"
	"hoopsync/internal/repository"
)

// Facade wraps the repository layer with the read-oriented shaping (tie
// breaks, pagination envelopes, derived categories) the sync orchestrator
// has no need for.
type Facade struct {
	db *repository.DB
}

func New(db *repository.DB) *Facade {
	return &Facade{db: db}
}

// Page is the (items, total) pagination envelope spec.md §4.8 mandates for
// every list endpoint.
type Page[T any] struct {
	Items []T
	Total int
}

const (
	defaultLimit = 25
	maxLimit     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// LeaderRow is one entry on a leaderboard: a player and the value of the
// requested category.
type LeaderRow struct {
	PlayerID int64
	TeamID   int64
	Value    float64
}

// leaderCategories mirrors the enum spec.md §4.8 names; "efficiency" is
// handled separately since it has no backing column (internal/repository's
// leaderColumns map computes every stored category at the SQL layer).
var leaderCategories = map[string]bool{
	"points": true, "rebounds": true, "assists": true, "steals": true, "blocks": true,
	"fg_pct": true, "3pt_pct": true, "ft_pct": true, "minutes": true, "efficiency": true,
}

// Leaders returns the top `limit` players in `category` for a season, among
// players with at least `minGames` games played, tie-broken by player_id
// ascending (spec.md §8 invariant 7, scenario F).
func (f *Facade) Leaders(ctx context.Context, seasonID int64, category string, limit, minGames int) ([]LeaderRow, error) {
	if !leaderCategories[category] {
		return nil, models.NewValidationError("category", "unknown leaderboard category: "+category)
	}
	limit = clampLimit(limit)
	if minGames < 0 {
		minGames = 0
	}

	if category == "efficiency" {
		return f.efficiencyLeaders(ctx, seasonID, limit, minGames)
	}

	rows, err := f.db.PlayerSeasonStats.Leaders(ctx, seasonID, category, minGames, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderRow, len(rows))
	for i, r := range rows {
		out[i] = LeaderRow{PlayerID: r.PlayerID, TeamID: r.TeamID, Value: leaderValue(category, r)}
	}
	return out, nil
}

func leaderValue(category string, r *models.PlayerSeasonStats) float64 {
	switch category {
	case "points":
		return r.AvgPoints
	case "rebounds":
		return r.AvgReb
	case "assists":
		return r.AvgAst
	case "steals":
		return r.AvgStl
	case "blocks":
		return r.AvgBlk
	case "minutes":
		return r.AvgMinutes
	case "fg_pct":
		return derefOrZero(r.FGPct)
	case "3pt_pct":
		return derefOrZero(r.ThreePPct)
	case "ft_pct":
		return derefOrZero(r.FTPct)
	default:
		return 0
	}
}

func derefOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// efficiencyLeaders computes the "efficiency" category in-app: average
// per-game efficiency derived from season totals, since no stored column
// backs it. Same tie-break as the SQL-driven categories.
func (f *Facade) efficiencyLeaders(ctx context.Context, seasonID int64, limit, minGames int) ([]LeaderRow, error) {
	rows, err := f.db.PlayerSeasonStats.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		row   *models.PlayerSeasonStats
		value float64
	}
	var candidates []candidate
	for _, r := range rows {
		if r.GamesPlayed < minGames {
			continue
		}
		totalEff := (r.TotalPoints + r.TotalTReb + r.TotalAst + r.TotalStl + r.TotalBlk) -
			((r.TotalFGA - r.TotalFGM) + (r.TotalFTA - r.TotalFTM) + r.TotalTov)
		candidates = append(candidates, candidate{row: r, value: float64(totalEff) / float64(r.GamesPlayed)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].value != candidates[j].value {
			return candidates[i].value > candidates[j].value
		}
		return candidates[i].row.PlayerID < candidates[j].row.PlayerID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]LeaderRow, len(candidates))
	for i, c := range candidates {
		out[i] = LeaderRow{PlayerID: c.row.PlayerID, TeamID: c.row.TeamID, Value: c.value}
	}
	return out, nil
}

// SearchPlayers performs a case-insensitive substring match against a
// player's full name.
func (f *Facade) SearchPlayers(ctx context.Context, search string, limit, offset int) (Page[*models.Player], error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return Page[*models.Player]{}, models.NewValidationError("search", "search term must not be empty")
	}
	items, total, err := f.db.Players.Search(ctx, search, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return Page[*models.Player]{}, err
	}
	return Page[*models.Player]{Items: items, Total: total}, nil
}

// SearchTeams performs a case-insensitive substring match against a team's
// name, short name, or city.
func (f *Facade) SearchTeams(ctx context.Context, search string, limit, offset int) (Page[*models.Team], error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return Page[*models.Team]{}, models.NewValidationError("search", "search term must not be empty")
	}
	items, total, err := f.db.Teams.Search(ctx, search, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return Page[*models.Team]{}, err
	}
	return Page[*models.Team]{Items: items, Total: total}, nil
}

// ListGames returns a paginated, optionally filtered list of games.
func (f *Facade) ListGames(ctx context.Context, filter repository.GameFilter, limit, offset int) (Page[*models.Game], error) {
	items, total, err := f.db.Games.ListFiltered(ctx, filter, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return Page[*models.Game]{}, err
	}
	return Page[*models.Game]{Items: items, Total: total}, nil
}

// GetGame fetches a single game by canonical id, 404ing via NotFoundError
// if absent.
func (f *Facade) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	return f.db.Games.GetByID(ctx, id)
}

// GetPlayer fetches a single player by canonical id.
func (f *Facade) GetPlayer(ctx context.Context, id int64) (*models.Player, error) {
	return f.db.Players.GetByID(ctx, id)
}

// GetTeam fetches a single team by canonical id.
func (f *Facade) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	return f.db.Teams.GetByID(ctx, id)
}

// PlayerBoxScores returns a player's game-by-game stat lines for a season,
// eager-loading nothing beyond the row itself — callers needing team/game
// context join via GetGame/GetTeam.
func (f *Facade) PlayerBoxScores(ctx context.Context, playerID, teamID, seasonID int64) ([]*models.PlayerGameStats, error) {
	return f.db.PlayerGameStats.ListByPlayerTeamAndSeason(ctx, playerID, teamID, seasonID)
}

// PlayerSeasonTotals returns the single aggregated season-stat row for a
// player on a given team in a given season (a traded player has one row per
// team, per spec.md §8 invariant 4).
func (f *Facade) PlayerSeasonTotals(ctx context.Context, playerID, teamID, seasonID int64) (*models.PlayerSeasonStats, error) {
	return f.db.PlayerSeasonStats.Get(ctx, playerID, teamID, seasonID)
}
