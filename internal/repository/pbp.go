package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// PBPRepository handles play-by-play event persistence, the ordered
// ground truth the analytics layer (C7) scans.
type PBPRepository struct {
	db *DB
}

const pbpColumns = `
	id, game_id, event_number, period, clock, event_type, event_subtype,
	player_id, team_id, success, coord_x, coord_y, attributes
`

func scanPBPEvent(row pgx.Row) (*models.PBPEvent, error) {
	var e models.PBPEvent
	var attrRaw []byte
	err := row.Scan(
		&e.ID, &e.GameID, &e.EventNumber, &e.Period, &e.Clock, &e.EventType, &e.EventSubtype,
		&e.PlayerID, &e.TeamID, &e.Success, &e.CoordX, &e.CoordY, &attrRaw,
	)
	if err != nil {
		return nil, err
	}
	if len(attrRaw) > 0 {
		if err := json.Unmarshal(attrRaw, &e.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode attributes: %w", err)
		}
	}
	return &e, nil
}

// BulkInsertForGame replaces every PBP event for a game, preserving source
// event_number ordering — the sole ordering guarantee the analytics scans
// depend on.
func (r *PBPRepository) BulkInsertForGame(ctx context.Context, gameID int64, events []*models.PBPEvent) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM pbp_events WHERE game_id = $1`, gameID); err != nil {
			return fmt.Errorf("failed to clear existing pbp events: %w", err)
		}
		for _, e := range events {
			attrs, err := json.Marshal(e.Attributes)
			if err != nil {
				return fmt.Errorf("failed to encode attributes: %w", err)
			}
			query := `
				INSERT INTO pbp_events (
					game_id, event_number, period, clock, event_type, event_subtype,
					player_id, team_id, success, coord_x, coord_y, attributes
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			`
			_, err = tx.Exec(ctx, query,
				gameID, e.EventNumber, e.Period, e.Clock, e.EventType, e.EventSubtype,
				e.PlayerID, e.TeamID, e.Success, e.CoordX, e.CoordY, attrs,
			)
			if err != nil {
				return fmt.Errorf("failed to insert pbp event: %w", err)
			}
		}
		return nil
	})
}

// ListByGame returns a game's full PBP stream in event_number order — the
// canonical scan order for every analytics computation.
func (r *PBPRepository) ListByGame(ctx context.Context, gameID int64) ([]*models.PBPEvent, error) {
	query := `SELECT ` + pbpColumns + ` FROM pbp_events WHERE game_id = $1 ORDER BY period, event_number`
	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pbp events: %w", err)
	}
	defer rows.Close()

	var out []*models.PBPEvent
	for rows.Next() {
		e, err := scanPBPEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pbp event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListByGameAndPeriod narrows the scan to one period, backing quarter-split
// analytics without loading the full game stream.
func (r *PBPRepository) ListByGameAndPeriod(ctx context.Context, gameID int64, period int) ([]*models.PBPEvent, error) {
	query := `SELECT ` + pbpColumns + ` FROM pbp_events WHERE game_id = $1 AND period = $2 ORDER BY event_number`
	rows, err := r.db.Pool.Query(ctx, query, gameID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list pbp events by period: %w", err)
	}
	defer rows.Close()

	var out []*models.PBPEvent
	for rows.Next() {
		e, err := scanPBPEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pbp event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
