package repository

import (
	"context"
	"fmt"
	"time"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// GameRepository handles game persistence.
type GameRepository struct {
	db *DB
}

const gameColumns = `id, season_id, home_team_id, away_team_id, game_date, status, home_score, away_score, venue, attendance, external_ids`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	var extRaw []byte
	err := row.Scan(&g.ID, &g.SeasonID, &g.HomeTeamID, &g.AwayTeamID, &g.GameDate, &g.Status,
		&g.HomeScore, &g.AwayScore, &g.Venue, &g.Attendance, &extRaw)
	if err != nil {
		return nil, err
	}
	g.ExternalIDs, err = decodeExternalIDs(extRaw)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GameRepository) Create(ctx context.Context, g *models.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	ext, err := encodeExternalIDs(g.ExternalIDs)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO games (season_id, home_team_id, away_team_id, game_date, status,
			home_score, away_score, venue, attendance, external_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = r.db.Pool.QueryRow(ctx, query, g.SeasonID, g.HomeTeamID, g.AwayTeamID, g.GameDate, g.Status,
		g.HomeScore, g.AwayScore, g.Venue, g.Attendance, ext).Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *GameRepository) Update(ctx context.Context, g *models.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	ext, err := encodeExternalIDs(g.ExternalIDs)
	if err != nil {
		return err
	}
	query := `
		UPDATE games SET season_id = $1, home_team_id = $2, away_team_id = $3, game_date = $4,
			status = $5, home_score = $6, away_score = $7, venue = $8, attendance = $9, external_ids = $10
		WHERE id = $11
	`
	tag, err := r.db.Pool.Exec(ctx, query, g.SeasonID, g.HomeTeamID, g.AwayTeamID, g.GameDate,
		g.Status, g.HomeScore, g.AwayScore, g.Venue, g.Attendance, ext, g.ID)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("game", fmt.Sprintf("%d", g.ID))
	}
	return nil
}

func (r *GameRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := scanGame(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("game", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

func (r *GameRepository) GetByExternalID(ctx context.Context, source, externalID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE external_ids ->> $1 = $2`
	g, err := scanGame(r.db.Pool.QueryRow(ctx, query, source, externalID))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("game", externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by external id: %w", err)
	}
	return g, nil
}

// UpsertByExternalID creates or refreshes a game keyed by (source, externalID).
func (r *GameRepository) UpsertByExternalID(ctx context.Context, source, externalID string, g *models.Game) error {
	existing, err := r.GetByExternalID(ctx, source, externalID)
	if err != nil && !models.IsNotFound(err) {
		return err
	}
	if existing != nil {
		if existing.Status.IsTerminal() && g.Status != existing.Status {
			return models.NewConstraintError("game_status_terminal",
				fmt.Sprintf("game %d is %s and cannot change to %s", existing.ID, existing.Status, g.Status))
		}
		g.ID = existing.ID
		if g.ExternalIDs == nil {
			g.ExternalIDs = map[string]string{}
		}
		for k, v := range existing.ExternalIDs {
			if _, ok := g.ExternalIDs[k]; !ok {
				g.ExternalIDs[k] = v
			}
		}
		g.ExternalIDs[source] = externalID
		return r.Update(ctx, g)
	}
	if g.ExternalIDs == nil {
		g.ExternalIDs = map[string]string{}
	}
	g.ExternalIDs[source] = externalID
	return r.Create(ctx, g)
}

// ListBySeason returns every game in a season, ordered chronologically.
func (r *GameRepository) ListBySeason(ctx context.Context, seasonID int64) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE season_id = $1 ORDER BY game_date`
	rows, err := r.db.Pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListNonTerminal returns games whose status has not reached a terminal
// state, the working set the active-game poller scans every tick.
func (r *GameRepository) ListNonTerminal(ctx context.Context, seasonID int64) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE season_id = $1 AND status NOT IN ($2, $3, $4)
		ORDER BY game_date
	`
	rows, err := r.db.Pool.Query(ctx, query, seasonID, models.GameFinal, models.GamePostponed, models.GameCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list non-terminal games: %w", err)
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GameFilter narrows ListFiltered to a season and/or team and/or status;
// a nil field means "any".
type GameFilter struct {
	SeasonID *int64
	TeamID   *int64
	Status   *models.GameStatus
}

// ListFiltered returns a page of games matching filter plus the total match
// count, for the query facade's pagination contract (spec.md §4.8).
func (r *GameRepository) ListFiltered(ctx context.Context, filter GameFilter, limit, offset int) ([]*models.Game, int, error) {
	where := "WHERE true"
	args := []any{}
	if filter.SeasonID != nil {
		args = append(args, *filter.SeasonID)
		where += fmt.Sprintf(" AND season_id = $%d", len(args))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		where += fmt.Sprintf(" AND (home_team_id = $%d OR away_team_id = $%d)", len(args), len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	countQuery := `SELECT count(*) FROM games ` + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered games: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT %s FROM games %s
		ORDER BY game_date, id
		LIMIT $%d OFFSET $%d
	`, gameColumns, where, len(args)-1, len(args))
	rows, err := r.db.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list filtered games: %w", err)
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

// ListByTeamAndDateRange supports opponent/time-window analytics filters.
func (r *GameRepository) ListByTeamAndDateRange(ctx context.Context, teamID int64, from, to time.Time) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE (home_team_id = $1 OR away_team_id = $1) AND game_date BETWEEN $2 AND $3
		ORDER BY game_date
	`
	rows, err := r.db.Pool.Query(ctx, query, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by team and range: %w", err)
	}
	defer rows.Close()

	var out []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
