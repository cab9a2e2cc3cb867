package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// TeamRepository handles team persistence, including external-id-keyed
// upsert and cross-source merge (spec.md §4.2, §4.4).
type TeamRepository struct {
	db *DB
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	var extRaw []byte
	err := row.Scan(&t.ID, &t.Name, &t.ShortName, &t.City, &t.Country, &extRaw)
	if err != nil {
		return nil, err
	}
	t.ExternalIDs, err = decodeExternalIDs(extRaw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeExternalIDs(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode external_ids: %w", err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

func encodeExternalIDs(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

const teamColumns = `id, name, short_name, city, country, external_ids`

func (r *TeamRepository) Create(ctx context.Context, t *models.Team) error {
	ext, err := encodeExternalIDs(t.ExternalIDs)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO teams (name, short_name, city, country, external_ids)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = r.db.Pool.QueryRow(ctx, query, t.Name, t.ShortName, t.City, t.Country, ext).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("team", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

// GetByExternalID looks a team up via its external_ids map, keyed by source.
// Postgres' jsonb `->>` operator extracts the id for that source as text.
func (r *TeamRepository) GetByExternalID(ctx context.Context, source, externalID string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE external_ids ->> $1 = $2`
	t, err := scanTeam(r.db.Pool.QueryRow(ctx, query, source, externalID))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("team", externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by external id: %w", err)
	}
	return t, nil
}

// FindByNormalizedName finds teams whose normalized name matches, for the
// second-tier resolver fallback.
func (r *TeamRepository) FindByNormalizedName(ctx context.Context, normalizedName string) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE lower(name) = $1 OR lower(short_name) = $1`
	rows, err := r.db.Pool.Query(ctx, query, normalizedName)
	if err != nil {
		return nil, fmt.Errorf("failed to find team by name: %w", err)
	}
	defer rows.Close()

	var out []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TeamRepository) ListBySeason(ctx context.Context, seasonID int64) ([]*models.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams t
		JOIN team_seasons ts ON ts.team_id = t.id
		WHERE ts.season_id = $1
		ORDER BY t.name
	`
	rows, err := r.db.Pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by season: %w", err)
	}
	defer rows.Close()

	var out []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Search performs a case-insensitive substring match against name, short
// name and city, returning a page of results plus the total match count
// for the query facade's pagination contract (spec.md §4.8).
func (r *TeamRepository) Search(ctx context.Context, query string, limit, offset int) ([]*models.Team, int, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var total int
	countQuery := `
		SELECT count(*) FROM teams
		WHERE lower(name) LIKE $1 OR lower(short_name) LIKE $1 OR lower(city) LIKE $1
	`
	if err := r.db.Pool.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count team search matches: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	listQuery := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE lower(name) LIKE $1 OR lower(short_name) LIKE $1 OR lower(city) LIKE $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Pool.Query(ctx, listQuery, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search teams: %w", err)
	}
	defer rows.Close()

	var out []*models.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

// Update replaces a team's mutable fields.
func (r *TeamRepository) Update(ctx context.Context, t *models.Team) error {
	ext, err := encodeExternalIDs(t.ExternalIDs)
	if err != nil {
		return err
	}
	query := `
		UPDATE teams SET name = $1, short_name = $2, city = $3, country = $4, external_ids = $5
		WHERE id = $6
	`
	tag, err := r.db.Pool.Exec(ctx, query, t.Name, t.ShortName, t.City, t.Country, ext, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("team", fmt.Sprintf("%d", t.ID))
	}
	return nil
}

// UpsertByExternalID creates or updates a team keyed by (source, externalID):
// if a team with that external id already exists its mutable fields are
// refreshed, otherwise a new row is inserted with the id recorded.
func (r *TeamRepository) UpsertByExternalID(ctx context.Context, source, externalID string, t *models.Team) error {
	existing, err := r.GetByExternalID(ctx, source, externalID)
	if err != nil && !models.IsNotFound(err) {
		return err
	}
	if existing != nil {
		t.ID = existing.ID
		if t.ExternalIDs == nil {
			t.ExternalIDs = map[string]string{}
		}
		for k, v := range existing.ExternalIDs {
			if _, ok := t.ExternalIDs[k]; !ok {
				t.ExternalIDs[k] = v
			}
		}
		t.ExternalIDs[source] = externalID
		return r.Update(ctx, t)
	}
	if t.ExternalIDs == nil {
		t.ExternalIDs = map[string]string{}
	}
	t.ExternalIDs[source] = externalID
	return r.Create(ctx, t)
}

// Merge folds loser into winner: retargets every foreign key referencing
// loser to winner, unions external_ids (a source id that differs between the
// two rows aborts the merge with an IdentityConflictError), and deletes the
// loser row. Runs in a single transaction.
func (r *TeamRepository) Merge(ctx context.Context, winnerID, loserID int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var winnerExtRaw, loserExtRaw []byte
		if err := tx.QueryRow(ctx, `SELECT external_ids FROM teams WHERE id = $1`, winnerID).Scan(&winnerExtRaw); err != nil {
			return fmt.Errorf("failed to load winner team: %w", err)
		}
		if err := tx.QueryRow(ctx, `SELECT external_ids FROM teams WHERE id = $1`, loserID).Scan(&loserExtRaw); err != nil {
			return fmt.Errorf("failed to load loser team: %w", err)
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
				return models.NewIdentityConflictError("team", source, existing, id)
			}
			winnerExt[source] = id
		}
		mergedExt, err := encodeExternalIDs(winnerExt)
		if err != nil {
			return err
		}

		tables := []string{"team_seasons", "games", "player_team_history", "player_game_stats", "team_game_stats", "pbp_events"}
		for _, table := range tables {
			cols := foreignKeyColumnsForTeam(table)
			for _, col := range cols {
				query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`, table, col, col)
				if _, err := tx.Exec(ctx, query, winnerID, loserID); err != nil {
					return fmt.Errorf("failed to retarget %s.%s: %w", table, col, err)
				}
			}
		}

		if _, err := tx.Exec(ctx, `UPDATE teams SET external_ids = $1 WHERE id = $2`, mergedExt, winnerID); err != nil {
			return fmt.Errorf("failed to update merged external_ids: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, loserID); err != nil {
			return fmt.Errorf("failed to delete merged team: %w", err)
		}
		return nil
	})
}

// UpsertSeason records a team's participation in a season, the row the
// sync_teams workflow creates (spec.md §4.5).
func (r *TeamRepository) UpsertSeason(ctx context.Context, ts *models.TeamSeason) error {
	query := `
		INSERT INTO team_seasons (team_id, season_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id, season_id) DO NOTHING
	`
	_, err := r.db.Pool.Exec(ctx, query, ts.TeamID, ts.SeasonID)
	if err != nil {
		return fmt.Errorf("failed to upsert team season: %w", err)
	}
	return nil
}

func foreignKeyColumnsForTeam(table string) []string {
	switch table {
	case "games":
		return []string{"home_team_id", "away_team_id"}
	case "player_game_stats", "team_game_stats", "pbp_events":
		return []string{"team_id"}
	default:
		return []string{"team_id"}
	}
}
