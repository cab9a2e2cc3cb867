package repository

import (
	"context"
	"fmt"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// LeagueRepository handles league persistence.
type LeagueRepository struct {
	db *DB
}

func (r *LeagueRepository) Create(ctx context.Context, l *models.League) error {
	query := `
		INSERT INTO leagues (name, code, country)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query, l.Name, l.Code, l.Country).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, id int64) (*models.League, error) {
	query := `SELECT id, name, code, country FROM leagues WHERE id = $1`
	var l models.League
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.Code, &l.Country)
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("league", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return &l, nil
}

func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (*models.League, error) {
	query := `SELECT id, name, code, country FROM leagues WHERE code = $1`
	var l models.League
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(&l.ID, &l.Name, &l.Code, &l.Country)
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("league", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return &l, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `SELECT id, name, code, country FROM leagues ORDER BY name`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	var out []*models.League
	for rows.Next() {
		var l models.League
		if err := rows.Scan(&l.ID, &l.Name, &l.Code, &l.Country); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
