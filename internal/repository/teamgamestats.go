package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// TeamGameStatsRepository handles team-level box-score rows.
type TeamGameStatsRepository struct {
	db *DB
}

const teamGameStatsColumns = `
	id, game_id, team_id,
	fgm, fga, two_pm, two_pa, three_pm, three_pa, ftm, fta,
	oreb, dreb, treb, ast, stl, blk, tov, pf, points,
	fast_break_points, points_in_paint, second_chance_pts, bench_points,
	biggest_lead, time_leading_sec, extra
`

func scanTeamGameStats(row pgx.Row) (*models.TeamGameStats, error) {
	var s models.TeamGameStats
	var extraRaw []byte
	err := row.Scan(
		&s.ID, &s.GameID, &s.TeamID,
		&s.FGM, &s.FGA, &s.TwoPM, &s.TwoPA, &s.ThreePM, &s.ThreePA, &s.FTM, &s.FTA,
		&s.OReb, &s.DReb, &s.TReb, &s.Ast, &s.Stl, &s.Blk, &s.Tov, &s.PF, &s.Points,
		&s.FastBreakPoints, &s.PointsInPaint, &s.SecondChancePts, &s.BenchPoints,
		&s.BiggestLead, &s.TimeLeadingSec, &extraRaw,
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

// BulkInsertForGame replaces both teams' box-score rows for a game.
func (r *TeamGameStatsRepository) BulkInsertForGame(ctx context.Context, gameID int64, stats []*models.TeamGameStats) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM team_game_stats WHERE game_id = $1`, gameID); err != nil {
			return fmt.Errorf("failed to clear existing team game stats: %w", err)
		}
		for _, s := range stats {
			extra, err := json.Marshal(s.Extra)
			if err != nil {
				return fmt.Errorf("failed to encode extra: %w", err)
			}
			query := `
				INSERT INTO team_game_stats (
					game_id, team_id,
					fgm, fga, two_pm, two_pa, three_pm, three_pa, ftm, fta,
					oreb, dreb, treb, ast, stl, blk, tov, pf, points,
					fast_break_points, points_in_paint, second_chance_pts, bench_points,
					biggest_lead, time_leading_sec, extra
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
			`
			_, err = tx.Exec(ctx, query,
				gameID, s.TeamID,
				s.FGM, s.FGA, s.TwoPM, s.TwoPA, s.ThreePM, s.ThreePA, s.FTM, s.FTA,
				s.OReb, s.DReb, s.TReb, s.Ast, s.Stl, s.Blk, s.Tov, s.PF, s.Points,
				s.FastBreakPoints, s.PointsInPaint, s.SecondChancePts, s.BenchPoints,
				s.BiggestLead, s.TimeLeadingSec, extra,
			)
			if err != nil {
				return fmt.Errorf("failed to insert team game stats: %w", err)
			}
		}
		return nil
	})
}

func (r *TeamGameStatsRepository) ListByGame(ctx context.Context, gameID int64) ([]*models.TeamGameStats, error) {
	query := `SELECT ` + teamGameStatsColumns + ` FROM team_game_stats WHERE game_id = $1`
	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team game stats: %w", err)
	}
	defer rows.Close()

	var out []*models.TeamGameStats
	for rows.Next() {
		s, err := scanTeamGameStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team game stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
