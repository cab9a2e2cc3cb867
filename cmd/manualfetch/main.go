// Command manualfetch triggers one sync workflow from the command line,
// without going through the HTTP surface — useful for backfills and
// one-off operator-triggered syncs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"hoopsync/internal/adapter"
	"hoopsync/internal/adapter/sources/euroleague"
	"hoopsync/internal/adapter/sources/nbastats"
	"hoopsync/internal/adapter/sources/winner"
	"hoopsync/internal/aggregator"
	"hoopsync/internal/cache"
	"hoopsync/internal/config"
	"hoopsync/internal/models"
	"hoopsync/internal/ratelimit"
	"hoopsync/internal/repository"
	"hoopsync/internal/sync"

	"github.com/rs/zerolog/log"
)

var leagueSeeds = map[string]models.League{
	"winner":     {Name: "Israeli Winner League", Code: "WINNER", Country: "Israel"},
	"euroleague": {Name: "EuroLeague", Code: "EUROLEAGUE", Country: "Europe"},
	"nba":        {Name: "National Basketball Association", Code: "NBA", Country: "USA"},
}

func main() {
	source := flag.String("source", "", "source name (winner, euroleague, nba)")
	mode := flag.String("mode", "", "sync mode: teams, season, game")
	externalID := flag.String("external-id", "", "season or game external id, per mode")
	includePBP := flag.Bool("include-pbp", false, "fetch play-by-play (season/game mode only)")
	flag.Parse()

	if *source == "" || *mode == "" || *externalID == "" {
		fmt.Fprintln(os.Stderr, "usage: manualfetch -source=<name> -mode=teams|season|game -external-id=<id> [-include-pbp]")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	sc, ok := cfg.Sources[*source]
	if !ok {
		log.Fatal().Str("source", *source).Msg("unknown source")
	}
	if !sc.Enabled {
		log.Fatal().Str("source", *source).Msg("source not enabled")
	}

	db, err := repository.New(ctx, repository.Config{
		Host: cfg.DatabaseHost, Port: cfg.DatabasePort, User: cfg.DatabaseUser,
		Password: cfg.DatabasePassword, Database: cfg.DatabaseName, SSLMode: cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := ensureLeague(ctx, db, *source); err != nil {
		log.Fatal().Err(err).Msg("failed to seed league")
	}
	leagueID, err := leagueIDFor(ctx, db, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve league id")
	}

	registry := adapter.NewRegistry()
	cacheStore := cache.NewMemStore()
	limiter := ratelimit.NewLocal(sc.APIRequestsPerSecond)
	switch *source {
	case "winner":
		registry.Register(winner.New(sc.BaseURL, sc.APIKey, sc.RequestTimeout(), sc.MaxRetries, limiter, cacheStore))
	case "euroleague":
		registry.Register(euroleague.New(sc.BaseURL, sc.APIKey, sc.RequestTimeout(), sc.MaxRetries, limiter, cacheStore))
	case "nba":
		registry.Register(nbastats.New(sc.BaseURL, sc.APIKey, sc.RequestTimeout(), sc.MaxRetries, limiter, cacheStore))
	default:
		log.Fatal().Str("source", *source).Msg("no adapter implementation for source")
	}

	agg := aggregator.New(db)
	orchestrator := sync.New(db, registry, agg, map[string]int64{*source: leagueID}, 4)

	var entry *models.SyncLog
	switch *mode {
	case "teams":
		entry, err = orchestrator.SyncTeams(ctx, *source, *externalID)
	case "season":
		entry, err = orchestrator.SyncSeason(ctx, *source, *externalID, *includePBP)
	case "game":
		entry, err = orchestrator.SyncGame(ctx, *source, *externalID, *includePBP)
	default:
		fmt.Fprintln(os.Stderr, "mode must be one of: teams, season, game")
		os.Exit(2)
	}

	if err != nil {
		log.Error().Err(err).Str("source", *source).Str("mode", *mode).Msg("sync failed")
		os.Exit(1)
	}

	log.Info().
		Str("source", *source).
		Str("mode", *mode).
		Int("processed", entry.RecordsProcessed).
		Int("created", entry.RecordsCreated).
		Int("updated", entry.RecordsUpdated).
		Int("skipped", entry.RecordsSkipped).
		Str("status", string(entry.Status)).
		Msg("sync complete")
}

func ensureLeague(ctx context.Context, db *repository.DB, source string) error {
	seed, ok := leagueSeeds[source]
	if !ok {
		return fmt.Errorf("no league seed for source %s", source)
	}
	if _, err := db.Leagues.GetByCode(ctx, seed.Code); err == nil {
		return nil
	} else if !models.IsNotFound(err) {
		return err
	}
	l := seed
	return db.Leagues.Create(ctx, &l)
}

func leagueIDFor(ctx context.Context, db *repository.DB, source string) (int64, error) {
	seed, ok := leagueSeeds[source]
	if !ok {
		return 0, fmt.Errorf("no league seed for source %s", source)
	}
	l, err := db.Leagues.GetByCode(ctx, seed.Code)
	if err != nil {
		return 0, err
	}
	return l.ID, nil
}
