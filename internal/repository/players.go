package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository handles player persistence and the lookups backing the
// four-tier player resolver (spec.md §4.4).
type PlayerRepository struct {
	db *DB
}

const playerColumns = `id, first_name, last_name, birth_date, nationality, height_cm, positions, external_ids`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	var birthDate *time.Time
	var positionsRaw []byte
	var extRaw []byte
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &birthDate, &p.Nationality, &p.HeightCM, &positionsRaw, &extRaw)
	if err != nil {
		return nil, err
	}
	p.BirthDate = birthDate
	if len(positionsRaw) > 0 {
		var raw []string
		if err := json.Unmarshal(positionsRaw, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode positions: %w", err)
		}
		for _, s := range raw {
			p.Positions = append(p.Positions, models.Position(s))
		}
	}
	p.ExternalIDs, err = decodeExternalIDs(extRaw)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func encodePositions(positions []models.Position) ([]byte, error) {
	raw := make([]string, len(positions))
	for i, p := range positions {
		raw[i] = string(p)
	}
	return json.Marshal(raw)
}

func (r *PlayerRepository) Create(ctx context.Context, p *models.Player) error {
	positions, err := encodePositions(p.Positions)
	if err != nil {
		return err
	}
	ext, err := encodeExternalIDs(p.ExternalIDs)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO players (first_name, last_name, birth_date, nationality, height_cm, positions, external_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = r.db.Pool.QueryRow(ctx, query, p.FirstName, p.LastName, p.BirthDate, p.Nationality, p.HeightCM, positions, ext).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, p *models.Player) error {
	positions, err := encodePositions(p.Positions)
	if err != nil {
		return err
	}
	ext, err := encodeExternalIDs(p.ExternalIDs)
	if err != nil {
		return err
	}
	query := `
		UPDATE players SET first_name = $1, last_name = $2, birth_date = $3,
			nationality = $4, height_cm = $5, positions = $6, external_ids = $7
		WHERE id = $8
	`
	tag, err := r.db.Pool.Exec(ctx, query, p.FirstName, p.LastName, p.BirthDate, p.Nationality, p.HeightCM, positions, ext, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("player", fmt.Sprintf("%d", p.ID))
	}
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	p, err := scanPlayer(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("player", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

// GetByExternalID is tier 1 of the player resolver: exact external id match.
func (r *PlayerRepository) GetByExternalID(ctx context.Context, source, externalID string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE external_ids ->> $1 = $2`
	p, err := scanPlayer(r.db.Pool.QueryRow(ctx, query, source, externalID))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("player", externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by external id: %w", err)
	}
	return p, nil
}

// FindByNormalizedName matches players across the whole store by name,
// comparing lower() of the stored first/last names with the arguments.
// Names are stored as the source reported them, without accent folding, so
// a stored name carrying accents never equals an accent-folded argument.
func (r *PlayerRepository) FindByNormalizedName(ctx context.Context, normalizedFirst, normalizedLast string) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE lower(first_name) = $1 AND lower(last_name) = $2
	`
	rows, err := r.db.Pool.Query(ctx, query, normalizedFirst, normalizedLast)
	if err != nil {
		return nil, fmt.Errorf("failed to find player by name: %w", err)
	}
	defer rows.Close()

	var out []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindByTeamRoster is tier 2 of the player resolver: among players who have
// ever appeared on teamID's roster (any season), match by normalized name.
func (r *PlayerRepository) FindByTeamRoster(ctx context.Context, teamID int64, normalizedFirst, normalizedLast string) ([]*models.Player, error) {
	query := `
		SELECT DISTINCT ` + prefixColumns("p", playerColumns) + `
		FROM players p
		JOIN player_team_history pth ON pth.player_id = p.id
		WHERE pth.team_id = $1 AND lower(p.first_name) = $2 AND lower(p.last_name) = $3
	`
	rows, err := r.db.Pool.Query(ctx, query, teamID, normalizedFirst, normalizedLast)
	if err != nil {
		return nil, fmt.Errorf("failed to find player by team roster: %w", err)
	}
	defer rows.Close()

	var out []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindByBiographical is tier 3: name plus birth date, the strongest
// fallback signal before giving up and creating a new player.
func (r *PlayerRepository) FindByBiographical(ctx context.Context, normalizedFirst, normalizedLast string, birthDate time.Time) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE lower(first_name) = $1 AND lower(last_name) = $2 AND birth_date = $3
	`
	rows, err := r.db.Pool.Query(ctx, query, normalizedFirst, normalizedLast, birthDate)
	if err != nil {
		return nil, fmt.Errorf("failed to find player by biographical match: %w", err)
	}
	defer rows.Close()

	var out []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Search performs a case-insensitive substring match against a player's
// full name and returns a page of results alongside the total match count,
// for the query facade's pagination contract (spec.md §4.8).
func (r *PlayerRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Player, int, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var total int
	countQuery := `SELECT count(*) FROM players WHERE lower(first_name || ' ' || last_name) LIKE $1`
	if err := r.db.Pool.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count player search matches: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	listQuery := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE lower(first_name || ' ' || last_name) LIKE $1
		ORDER BY last_name, first_name, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Pool.Query(ctx, listQuery, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search players: %w", err)
	}
	defer rows.Close()

	var out []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// UpsertByExternalID creates or refreshes a player keyed by (source, externalID).
func (r *PlayerRepository) UpsertByExternalID(ctx context.Context, source, externalID string, p *models.Player) error {
	existing, err := r.GetByExternalID(ctx, source, externalID)
	if err != nil && !models.IsNotFound(err) {
		return err
	}
	if existing != nil {
		p.ID = existing.ID
		if p.ExternalIDs == nil {
			p.ExternalIDs = map[string]string{}
		}
		for k, v := range existing.ExternalIDs {
			if _, ok := p.ExternalIDs[k]; !ok {
				p.ExternalIDs[k] = v
			}
		}
		p.ExternalIDs[source] = externalID
		return r.Update(ctx, p)
	}
	if p.ExternalIDs == nil {
		p.ExternalIDs = map[string]string{}
	}
	p.ExternalIDs[source] = externalID
	return r.Create(ctx, p)
}

// UpsertTeamHistory records a player's team/season membership, including
// jersey number and position where known.
func (r *PlayerRepository) UpsertTeamHistory(ctx context.Context, h *models.PlayerTeamHistory) error {
	var position *string
	if h.Position != nil {
		s := string(*h.Position)
		position = &s
	}
	query := `
		INSERT INTO player_team_history (player_id, team_id, season_id, jersey_number, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id, team_id, season_id) DO UPDATE SET
			jersey_number = EXCLUDED.jersey_number, position = EXCLUDED.position
	`
	_, err := r.db.Pool.Exec(ctx, query, h.PlayerID, h.TeamID, h.SeasonID, h.JerseyNumber, position)
	if err != nil {
		return fmt.Errorf("failed to upsert player team history: %w", err)
	}
	return nil
}

// Merge folds loser into winner, unioning external_ids and retargeting every
// foreign key referencing loser. Surfaces an IdentityConflictError if the two
// players carry conflicting ids for the same source.
func (r *PlayerRepository) Merge(ctx context.Context, winnerID, loserID int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var winnerExtRaw, loserExtRaw []byte
		if err := tx.QueryRow(ctx, `SELECT external_ids FROM players WHERE id = $1`, winnerID).Scan(&winnerExtRaw); err != nil {
			return fmt.Errorf("failed to load winner player: %w", err)
		}
		if err := tx.QueryRow(ctx, `SELECT external_ids FROM players WHERE id = $1`, loserID).Scan(&loserExtRaw); err != nil {
			return fmt.Errorf("failed to load loser player: %w", err)
		}
		winnerExt, err := decodeExternalIDs(winnerExtRaw)
		if err != nil {
			return err
		}
		loserExt, err := decodeExternalIDs(loserExtRaw)
		if err != nil {
			return err
		}
		for source, id := range loserExt {
			if existing, ok := winnerExt[source]; ok && existing != id {
				return models.NewIdentityConflictError("player", source, existing, id)
			}
			winnerExt[source] = id
		}
		mergedExt, err := encodeExternalIDs(winnerExt)
		if err != nil {
			return err
		}

		tables := []string{"player_team_history", "player_game_stats", "pbp_events"}
		for _, table := range tables {
			query := fmt.Sprintf(`UPDATE %s SET player_id = $1 WHERE player_id = $2`, table)
			if _, err := tx.Exec(ctx, query, winnerID, loserID); err != nil {
				return fmt.Errorf("failed to retarget %s.player_id: %w", table, err)
			}
		}

		if _, err := tx.Exec(ctx, `UPDATE players SET external_ids = $1 WHERE id = $2`, mergedExt, winnerID); err != nil {
			return fmt.Errorf("failed to update merged external_ids: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM players WHERE id = $1`, loserID); err != nil {
			return fmt.Errorf("failed to delete merged player: %w", err)
		}
		return nil
	})
}
