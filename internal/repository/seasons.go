package repository

import (
	"context"
	"fmt"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// SeasonRepository handles season persistence, including the per-league
// exclusive "current season" transition (Open Question #2, SPEC_FULL §12).
type SeasonRepository struct {
	db *DB
}

func (r *SeasonRepository) Create(ctx context.Context, s *models.Season) error {
	if err := s.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO seasons (league_id, name, start_date, end_date, is_current)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query, s.LeagueID, s.Name, s.StartDate, s.EndDate, s.IsCurrent).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (*models.Season, error) {
	query := `SELECT id, league_id, name, start_date, end_date, is_current FROM seasons WHERE id = $1`
	var s models.Season
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.LeagueID, &s.Name, &s.StartDate, &s.EndDate, &s.IsCurrent)
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("season", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return &s, nil
}

func (r *SeasonRepository) GetByLeagueAndName(ctx context.Context, leagueID int64, name string) (*models.Season, error) {
	query := `SELECT id, league_id, name, start_date, end_date, is_current FROM seasons WHERE league_id = $1 AND name = $2`
	var s models.Season
	err := r.db.Pool.QueryRow(ctx, query, leagueID, name).Scan(&s.ID, &s.LeagueID, &s.Name, &s.StartDate, &s.EndDate, &s.IsCurrent)
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("season", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return &s, nil
}

func (r *SeasonRepository) GetCurrent(ctx context.Context, leagueID int64) (*models.Season, error) {
	query := `SELECT id, league_id, name, start_date, end_date, is_current FROM seasons WHERE league_id = $1 AND is_current = true`
	var s models.Season
	err := r.db.Pool.QueryRow(ctx, query, leagueID).Scan(&s.ID, &s.LeagueID, &s.Name, &s.StartDate, &s.EndDate, &s.IsCurrent)
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("current season", fmt.Sprintf("league=%d", leagueID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current season: %w", err)
	}
	return &s, nil
}

func (r *SeasonRepository) ListByLeague(ctx context.Context, leagueID int64) ([]*models.Season, error) {
	query := `
		SELECT id, league_id, name, start_date, end_date, is_current
		FROM seasons WHERE league_id = $1 ORDER BY start_date DESC
	`
	rows, err := r.db.Pool.Query(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var out []*models.Season
	for rows.Next() {
		var s models.Season
		if err := rows.Scan(&s.ID, &s.LeagueID, &s.Name, &s.StartDate, &s.EndDate, &s.IsCurrent); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// SetCurrent marks seasonID as the sole current season for its league,
// clearing is_current on every other season in the SAME league inside one
// transaction. Seasons belonging to other leagues are untouched — the
// uniqueness is per-league, never global.
func (r *SeasonRepository) SetCurrent(ctx context.Context, leagueID, seasonID int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE seasons SET is_current = false WHERE league_id = $1`, leagueID); err != nil {
			return fmt.Errorf("failed to clear current season: %w", err)
		}
		tag, err := tx.Exec(ctx, `UPDATE seasons SET is_current = true WHERE id = $1 AND league_id = $2`, seasonID, leagueID)
		if err != nil {
			return fmt.Errorf("failed to set current season: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return models.NewNotFoundError("season", fmt.Sprintf("%d", seasonID))
		}
		return nil
	})
}
