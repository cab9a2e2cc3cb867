package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"hoopsync/internal/models"

	"github.com/jackc/pgx/v5"
)

// SyncLogRepository handles the sync audit trail (spec.md §4.5). Rows are
// created STARTED and updated exactly once to a terminal status.
type SyncLogRepository struct {
	db *DB
}

const syncLogColumns = `
	id, source, entity_type, status, season_id, game_id,
	records_processed, records_created, records_updated, records_skipped,
	error_message, error_details, started_at, completed_at
`

func scanSyncLog(row pgx.Row) (*models.SyncLog, error) {
	var l models.SyncLog
	var detailsRaw []byte
	err := row.Scan(
		&l.ID, &l.Source, &l.EntityType, &l.Status, &l.SeasonID, &l.GameID,
		&l.RecordsProcessed, &l.RecordsCreated, &l.RecordsUpdated, &l.RecordsSkipped,
		&l.ErrorMessage, &detailsRaw, &l.StartedAt, &l.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(detailsRaw) > 0 {
		if err := json.Unmarshal(detailsRaw, &l.ErrorDetails); err != nil {
			return nil, fmt.Errorf("failed to decode error_details: %w", err)
		}
	}
	return &l, nil
}

// Start inserts a new STARTED sync log row.
func (r *SyncLogRepository) Start(ctx context.Context, l *models.SyncLog) error {
	l.Status = models.SyncStarted
	query := `
		INSERT INTO sync_logs (source, entity_type, status, season_id, game_id, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, started_at
	`
	err := r.db.Pool.QueryRow(ctx, query, l.Source, l.EntityType, l.Status, l.SeasonID, l.GameID, l.StartedAt).
		Scan(&l.ID, &l.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to start sync log: %w", err)
	}
	return nil
}

// Complete transitions a sync log to a terminal status exactly once;
// attempting to transition an already-terminal row is rejected.
func (r *SyncLogRepository) Complete(ctx context.Context, l *models.SyncLog) error {
	if err := l.Validate(); err != nil {
		return err
	}
	var details []byte
	var err error
	if l.ErrorDetails != nil {
		details, err = json.Marshal(l.ErrorDetails)
		if err != nil {
			return fmt.Errorf("failed to encode error_details: %w", err)
		}
	}
	query := `
		UPDATE sync_logs SET
			status = $1, records_processed = $2, records_created = $3, records_updated = $4,
			records_skipped = $5, error_message = $6, error_details = $7, completed_at = $8
		WHERE id = $9 AND status = $10
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		l.Status, l.RecordsProcessed, l.RecordsCreated, l.RecordsUpdated, l.RecordsSkipped,
		l.ErrorMessage, details, l.CompletedAt, l.ID, models.SyncStarted,
	)
	if err != nil {
		return fmt.Errorf("failed to complete sync log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewConstraintError("synclog_terminal", fmt.Sprintf("sync log %d is already terminal", l.ID))
	}
	return nil
}

func (r *SyncLogRepository) GetByID(ctx context.Context, id int64) (*models.SyncLog, error) {
	query := `SELECT ` + syncLogColumns + ` FROM sync_logs WHERE id = $1`
	l, err := scanSyncLog(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.NewNotFoundError("sync_log", fmt.Sprintf("%d", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync log: %w", err)
	}
	return l, nil
}

// ListRecent returns the most recent sync logs, optionally filtered by
// source. The HTTP sync routes do not call it (they use ListFiltered,
// CountRunning and LatestByEntityType).
func (r *SyncLogRepository) ListRecent(ctx context.Context, source string, limit int) ([]*models.SyncLog, error) {
	var rows pgx.Rows
	var err error
	if source == "" {
		rows, err = r.db.Pool.Query(ctx, `SELECT `+syncLogColumns+` FROM sync_logs ORDER BY started_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.db.Pool.Query(ctx, `SELECT `+syncLogColumns+` FROM sync_logs WHERE source = $1 ORDER BY started_at DESC LIMIT $2`, source, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	var out []*models.SyncLog
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListFiltered returns a page of sync logs optionally filtered by source
// and/or status, plus the total match count, for the paginated `GET
// /sync/logs` surface (spec.md §6).
func (r *SyncLogRepository) ListFiltered(ctx context.Context, source string, status *models.SyncStatus, limit, offset int) ([]*models.SyncLog, int, error) {
	where := "WHERE true"
	args := []any{}
	if source != "" {
		args = append(args, source)
		where += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if status != nil {
		args = append(args, *status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM sync_logs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered sync logs: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(`
		SELECT %s FROM sync_logs %s
		ORDER BY started_at DESC
		LIMIT $%d OFFSET $%d
	`, syncLogColumns, where, len(args)-1, len(args))
	rows, err := r.db.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list filtered sync logs: %w", err)
	}
	defer rows.Close()

	var out []*models.SyncLog
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan sync log: %w", err)
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

// CountRunning returns the number of sync logs for source still in STARTED
// status, the `running_syncs` field of the `/sync/status` snapshot.
func (r *SyncLogRepository) CountRunning(ctx context.Context, source string) (int, error) {
	var n int
	query := `SELECT count(*) FROM sync_logs WHERE source = $1 AND status = $2`
	if err := r.db.Pool.QueryRow(ctx, query, source, models.SyncStarted).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count running sync logs: %w", err)
	}
	return n, nil
}

// LatestByEntityType returns the most recent sync log for (source,
// entityType), or nil if none exists yet.
func (r *SyncLogRepository) LatestByEntityType(ctx context.Context, source, entityType string) (*models.SyncLog, error) {
	query := `
		SELECT ` + syncLogColumns + `
		FROM sync_logs
		WHERE source = $1 AND entity_type = $2
		ORDER BY started_at DESC
		LIMIT 1
	`
	l, err := scanSyncLog(r.db.Pool.QueryRow(ctx, query, source, entityType))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync log: %w", err)
	}
	return l, nil
}

// LatestBySource returns the most recent sync log per source. The status
// endpoint builds its snapshot from LatestByEntityType instead.
func (r *SyncLogRepository) LatestBySource(ctx context.Context) ([]*models.SyncLog, error) {
	query := `
		SELECT ` + syncLogColumns + `
		FROM sync_logs sl
		WHERE sl.started_at = (
			SELECT MAX(started_at) FROM sync_logs WHERE source = sl.source
		)
		ORDER BY sl.source
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest sync logs: %w", err)
	}
	defer rows.Close()

	var out []*models.SyncLog
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
