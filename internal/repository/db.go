// Package repository implements transactional persistence for the canonical
// model (spec.md §4.2, component C2) over PostgreSQL via pgx.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// prefixColumns qualifies each comma-separated column in cols with alias,
// for queries joining a table against itself or another table sharing
// column names.
func prefixColumns(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// DB holds the database connection pool and every entity repository.
type DB struct {
	Pool *pgxpool.Pool

	Leagues           *LeagueRepository
	Seasons           *SeasonRepository
	Teams             *TeamRepository
	Players           *PlayerRepository
	Games             *GameRepository
	PlayerGameStats   *PlayerGameStatsRepository
	TeamGameStats     *TeamGameStatsRepository
	PBP               *PBPRepository
	PlayerSeasonStats *PlayerSeasonStatsRepository
	SyncLogs          *SyncLogRepository
}

// Config holds the pool's connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// New creates a connection pool sized for the worker's concurrency model
// (spec.md §5) and wires every repository against it.
func New(ctx context.Context, cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")

	db := &DB{Pool: pool}
	db.Leagues = &LeagueRepository{db: db}
	db.Seasons = &SeasonRepository{db: db}
	db.Teams = &TeamRepository{db: db}
	db.Players = &PlayerRepository{db: db}
	db.Games = &GameRepository{db: db}
	db.PlayerGameStats = &PlayerGameStatsRepository{db: db}
	db.TeamGameStats = &TeamGameStatsRepository{db: db}
	db.PBP = &PBPRepository{db: db}
	db.PlayerSeasonStats = &PlayerSeasonStatsRepository{db: db}
	db.SyncLogs = &SyncLogRepository{db: db}

	return db, nil
}

// Close closes the pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("database connection pool closed")
	}
}

// Health pings the database with a short timeout.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// PoolStats exposes pgxpool counters for the metrics and status surfaces.
func (db *DB) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic. Used by every multi-statement write path:
// merges, bulk box-score inserts, and season-current transitions.
func (db *DB) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(tx)
	return err
}
