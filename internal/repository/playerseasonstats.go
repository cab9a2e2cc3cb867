package repository

import (
	"context"
	"fmt"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerSeasonStatsRepository handles the aggregated season-stat rows
// recomputed by the aggregator (C6) after every game sync.
type PlayerSeasonStatsRepository struct {
	db *DB
}

const playerSeasonStatsColumns = `
	id, player_id, team_id, season_id, games_played, games_started,
	total_points, total_fgm, total_fga, total_two_pm, total_two_pa,
	total_three_pm, total_three_pa, total_ftm, total_fta,
	total_oreb, total_dreb, total_treb, total_ast, total_tov, total_stl, total_blk, total_pf,
	total_minutes_seconds, avg_points, avg_reb, avg_ast, avg_stl, avg_blk, avg_minutes,
	fg_pct, two_p_pct, three_p_pct, ft_pct, ts_pct, efg_pct, ast_to_ratio, last_calculated
`

func scanPlayerSeasonStats(row pgx.Row) (*models.PlayerSeasonStats, error) {
	var s models.PlayerSeasonStats
	err := row.Scan(
		&s.ID, &s.PlayerID, &s.TeamID, &s.SeasonID, &s.GamesPlayed, &s.GamesStarted,
		&s.TotalPoints, &s.TotalFGM, &s.TotalFGA, &s.TotalTwoPM, &s.TotalTwoPA,
		&s.TotalThreePM, &s.TotalThreePA, &s.TotalFTM, &s.TotalFTA,
		&s.TotalOReb, &s.TotalDReb, &s.TotalTReb, &s.TotalAst, &s.TotalTov, &s.TotalStl, &s.TotalBlk, &s.TotalPF,
		&s.TotalMinutesSeconds, &s.AvgPoints, &s.AvgReb, &s.AvgAst, &s.AvgStl, &s.AvgBlk, &s.AvgMinutes,
		&s.FGPct, &s.TwoPPct, &s.ThreePPct, &s.FTPct, &s.TSPct, &s.EFGPct, &s.ASTToRatio, &s.LastCalculated,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert replaces a player's season-stat row entirely — aggregation is
// always a full recompute, never an incremental patch (spec.md §4.6).
func (r *PlayerSeasonStatsRepository) Upsert(ctx context.Context, s *models.PlayerSeasonStats) error {
	query := `
		INSERT INTO player_season_stats (
			player_id, team_id, season_id, games_played, games_started,
			total_points, total_fgm, total_fga, total_two_pm, total_two_pa,
			total_three_pm, total_three_pa, total_ftm, total_fta,
			total_oreb, total_dreb, total_treb, total_ast, total_tov, total_stl, total_blk, total_pf,
			total_minutes_seconds, avg_points, avg_reb, avg_ast, avg_stl, avg_blk, avg_minutes,
			fg_pct, two_p_pct, three_p_pct, ft_pct, ts_pct, efg_pct, ast_to_ratio, last_calculated
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,
			$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35
		)
		ON CONFLICT (player_id, team_id, season_id) DO UPDATE SET
			games_played = EXCLUDED.games_played, games_started = EXCLUDED.games_started,
			total_points = EXCLUDED.total_points, total_fgm = EXCLUDED.total_fgm, total_fga = EXCLUDED.total_fga,
			total_two_pm = EXCLUDED.total_two_pm, total_two_pa = EXCLUDED.total_two_pa,
			total_three_pm = EXCLUDED.total_three_pm, total_three_pa = EXCLUDED.total_three_pa,
			total_ftm = EXCLUDED.total_ftm, total_fta = EXCLUDED.total_fta,
			total_oreb = EXCLUDED.total_oreb, total_dreb = EXCLUDED.total_dreb, total_treb = EXCLUDED.total_treb,
			total_ast = EXCLUDED.total_ast, total_tov = EXCLUDED.total_tov,
			total_stl = EXCLUDED.total_stl, total_blk = EXCLUDED.total_blk, total_pf = EXCLUDED.total_pf,
			total_minutes_seconds = EXCLUDED.total_minutes_seconds,
			avg_points = EXCLUDED.avg_points, avg_reb = EXCLUDED.avg_reb, avg_ast = EXCLUDED.avg_ast,
			avg_stl = EXCLUDED.avg_stl, avg_blk = EXCLUDED.avg_blk, avg_minutes = EXCLUDED.avg_minutes,
			fg_pct = EXCLUDED.fg_pct, two_p_pct = EXCLUDED.two_p_pct, three_p_pct = EXCLUDED.three_p_pct,
			ft_pct = EXCLUDED.ft_pct, ts_pct = EXCLUDED.ts_pct, efg_pct = EXCLUDED.efg_pct,
			ast_to_ratio = EXCLUDED.ast_to_ratio, last_calculated = EXCLUDED.last_calculated
	`
	_, err := r.db.Pool.Exec(ctx, query,
		s.PlayerID, s.TeamID, s.SeasonID, s.GamesPlayed, s.GamesStarted,
		s.TotalPoints, s.TotalFGM, s.TotalFGA, s.TotalTwoPM, s.TotalTwoPA,
		s.TotalThreePM, s.TotalThreePA, s.TotalFTM, s.TotalFTA,
		s.TotalOReb, s.TotalDReb, s.TotalTReb, s.TotalAst, s.TotalTov, s.TotalStl, s.TotalBlk, s.TotalPF,
		s.TotalMinutesSeconds, s.AvgPoints, s.AvgReb, s.AvgAst, s.AvgStl, s.AvgBlk, s.AvgMinutes,
		s.FGPct, s.TwoPPct, s.ThreePPct, s.FTPct, s.TSPct, s.EFGPct, s.ASTToRatio, s.LastCalculated,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert player season stats: %w", err)
	}
	return nil
}

func (r *PlayerSeasonStatsRepository) Get(ctx context.Context, playerID, teamID, seasonID int64) (*models.PlayerSeasonStats, error) {
	query := `SELECT ` + playerSeasonStatsColumns + ` FROM player_season_stats WHERE player_id = $1 AND team_id = $2 AND season_id = $3`
	s, err := scanPlayerSeasonStats(r.db.Pool.QueryRow(ctx, query, playerID, teamID, seasonID))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("player_season_stats", fmt.Sprintf("%d/%d/%d", playerID, teamID, seasonID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player season stats: %w", err)
	}
	return s, nil
}

// ListBySeason returns every player's season-stat row for a season.
func (r *PlayerSeasonStatsRepository) ListBySeason(ctx context.Context, seasonID int64) ([]*models.PlayerSeasonStats, error) {
	query := `SELECT ` + playerSeasonStatsColumns + ` FROM player_season_stats WHERE season_id = $1`
	rows, err := r.db.Pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player season stats: %w", err)
	}
	defer rows.Close()

	var out []*models.PlayerSeasonStats
	for rows.Next() {
		s, err := scanPlayerSeasonStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player season stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Leaders returns the top-N players for a season ordered by category
// descending, ties broken by player_id ascending (spec.md §8, invariant 7),
// restricted to players with at least minGames games played.
func (r *PlayerSeasonStatsRepository) Leaders(ctx context.Context, seasonID int64, category string, minGames, limit int) ([]*models.PlayerSeasonStats, error) {
	col, ok := leaderColumns[category]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}
	query := fmt.Sprintf(`
		SELECT %s FROM player_season_stats
		WHERE season_id = $1 AND games_played >= $2
		ORDER BY %s DESC NULLS LAST, player_id ASC
		LIMIT $3
	`, playerSeasonStatsColumns, col)
	rows, err := r.db.Pool.Query(ctx, query, seasonID, minGames, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaders: %w", err)
	}
	defer rows.Close()

	var out []*models.PlayerSeasonStats
	for rows.Next() {
		s, err := scanPlayerSeasonStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player season stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// leaderColumns maps every category in spec.md §4.8's leaderboard enum to
// its backing column. "efficiency" has no stored column — the query facade
// computes it from totals rather than a stored rate.
var leaderColumns = map[string]string{
	"points":   "avg_points",
	"rebounds": "avg_reb",
	"assists":  "avg_ast",
	"steals":   "avg_stl",
	"blocks":   "avg_blk",
	"fg_pct":   "fg_pct",
	"3pt_pct":  "three_p_pct",
	"ft_pct":   "ft_pct",
	"minutes":  "avg_minutes",
	"ts_pct":   "ts_pct",
	"efg_pct":  "efg_pct",
	"ast_to":   "ast_to_ratio",
}
