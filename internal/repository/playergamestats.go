package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerGameStatsRepository handles per-player box-score rows.
type PlayerGameStatsRepository struct {
	db *DB
}

const playerGameStatsColumns = `
	id, game_id, player_id, team_id, minutes_seconds, is_starter,
	fgm, fga, two_pm, two_pa, three_pm, three_pa, ftm, fta,
	oreb, dreb, treb, ast, stl, blk, tov, pf, points, plus_minus, extra
`

func scanPlayerGameStats(row pgx.Row) (*models.PlayerGameStats, error) {
	var s models.PlayerGameStats
	var extraRaw []byte
	err := row.Scan(
		&s.ID, &s.GameID, &s.PlayerID, &s.TeamID, &s.MinutesSeconds, &s.IsStarter,
		&s.FGM, &s.FGA, &s.TwoPM, &s.TwoPA, &s.ThreePM, &s.ThreePA, &s.FTM, &s.FTA,
		&s.OReb, &s.DReb, &s.TReb, &s.Ast, &s.Stl, &s.Blk, &s.Tov, &s.PF, &s.Points, &s.PlusMinus, &extraRaw,
	)
	if err != nil {
		return nil, err
	}
	if len(extraRaw) > 0 {
		if err := json.Unmarshal(extraRaw, &s.Extra); err != nil {
			return nil, fmt.Errorf("failed to decode extra: %w", err)
		}
	}
	return &s, nil
}

// BulkInsertForGame replaces every player box-score row for a game inside a
// single transaction: delete-then-insert keeps a re-sync idempotent without
// requiring a natural (game_id, player_id) upsert key negotiation per source.
func (r *PlayerGameStatsRepository) BulkInsertForGame(ctx context.Context, gameID int64, stats []*models.PlayerGameStats) error {
	for _, s := range stats {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("player %d: %w", s.PlayerID, err)
		}
	}
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM player_game_stats WHERE game_id = $1`, gameID); err != nil {
			return fmt.Errorf("failed to clear existing player game stats: %w", err)
		}
		for _, s := range stats {
			extra, err := json.Marshal(s.Extra)
			if err != nil {
				return fmt.Errorf("failed to encode extra: %w", err)
			}
			query := `
				INSERT INTO player_game_stats (
					game_id, player_id, team_id, minutes_seconds, is_starter,
					fgm, fga, two_pm, two_pa, three_pm, three_pa, ftm, fta,
					oreb, dreb, treb, ast, stl, blk, tov, pf, points, plus_minus, extra
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
			`
			_, err = tx.Exec(ctx, query,
				gameID, s.PlayerID, s.TeamID, s.MinutesSeconds, s.IsStarter,
				s.FGM, s.FGA, s.TwoPM, s.TwoPA, s.ThreePM, s.ThreePA, s.FTM, s.FTA,
				s.OReb, s.DReb, s.TReb, s.Ast, s.Stl, s.Blk, s.Tov, s.PF, s.Points, s.PlusMinus, extra,
			)
			if err != nil {
				return fmt.Errorf("failed to insert player game stats: %w", err)
			}
		}
		return nil
	})
}

// PlayerTeamSeasonTuple identifies one aggregator row key.
type PlayerTeamSeasonTuple struct {
	PlayerID int64
	TeamID   int64
	SeasonID int64
}

// DistinctTuplesBySeason lists every (player, team) pair with at least one
// box score in the season, the full recompute set for recalculate_for_season.
func (r *PlayerGameStatsRepository) DistinctTuplesBySeason(ctx context.Context, seasonID int64) ([]PlayerTeamSeasonTuple, error) {
	query := `
		SELECT DISTINCT pgs.player_id, pgs.team_id, g.season_id
		FROM player_game_stats pgs
		JOIN games g ON g.id = pgs.game_id
		WHERE g.season_id = $1
	`
	rows, err := r.db.Pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list season tuples: %w", err)
	}
	defer rows.Close()

	var out []PlayerTeamSeasonTuple
	for rows.Next() {
		var t PlayerTeamSeasonTuple
		if err := rows.Scan(&t.PlayerID, &t.TeamID, &t.SeasonID); err != nil {
			return nil, fmt.Errorf("failed to scan season tuple: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PlayerGameStatsRepository) ListByGame(ctx context.Context, gameID int64) ([]*models.PlayerGameStats, error) {
	query := `SELECT ` + playerGameStatsColumns + ` FROM player_game_stats WHERE game_id = $1 ORDER BY team_id, points DESC`
	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player game stats: %w", err)
	}
	defer rows.Close()

	var out []*models.PlayerGameStats
	for rows.Next() {
		s, err := scanPlayerGameStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player game stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByPlayerAndSeason returns a player's box scores for every game in a
// season, ordered chronologically — the raw feed for season aggregation.
func (r *PlayerGameStatsRepository) ListByPlayerAndSeason(ctx context.Context, playerID, seasonID int64) ([]*models.PlayerGameStats, error) {
	query := `
		SELECT ` + playerGameStatsColumns + `
		FROM player_game_stats pgs
		JOIN games g ON g.id = pgs.game_id
		WHERE pgs.player_id = $1 AND g.season_id = $2
		ORDER BY g.game_date
	`
	rows, err := r.db.Pool.Query(ctx, query, playerID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player season stats: %w", err)
	}
	defer rows.Close()

	var out []*models.PlayerGameStats
	for rows.Next() {
		s, err := scanPlayerGameStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player game stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByPlayerTeamAndSeason is the aggregator's feed: a traded player has a
// distinct row set per team within the same season.
func (r *PlayerGameStatsRepository) ListByPlayerTeamAndSeason(ctx context.Context, playerID, teamID, seasonID int64) ([]*models.PlayerGameStats, error) {
	query := `
		SELECT ` + playerGameStatsColumns + `
		FROM player_game_stats pgs
		JOIN games g ON g.id = pgs.game_id
		WHERE pgs.player_id = $1 AND pgs.team_id = $2 AND g.season_id = $3
		ORDER BY g.game_date
	`
	rows, err := r.db.Pool.Query(ctx, query, playerID, teamID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player team season stats: %w", err)
	}
	defer rows.Close()

	var out []*models.PlayerGameStats
	for rows.Next() {
		s, err := scanPlayerGameStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player game stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
