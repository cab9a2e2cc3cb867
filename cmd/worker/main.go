package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hoopsync/internal/adapter"
	"hoopsync/internal/adapter/sources/euroleague"
	"hoopsync/internal/adapter/sources/nbastats"
	"hoopsync/internal/adapter/sources/winner"
	"hoopsync/internal/aggregator"
	"hoopsync/internal/cache"
	"hoopsync/internal/config"
	"hoopsync/internal/httpapi"
	"hoopsync/internal/metrics"
	"hoopsync/internal/models"
	"hoopsync/internal/ratelimit"
	"hoopsync/internal/repository"
	"hoopsync/internal/scheduler"
	"hoopsync/internal/sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// leagueSeeds maps each configured source to the league its seasons belong
// to, created on first boot if not already present.
var leagueSeeds = map[string]models.League{
	"winner":     {Name: "Israeli Winner League", Code: "WINNER", Country: "Israel"},
	"euroleague": {Name: "EuroLeague", Code: "EUROLEAGUE", Country: "Europe"},
	"nba":        {Name: "National Basketball Association", Code: "NBA", Country: "USA"},
}

func main() {
	setupLogger()
	log.Info().Msg("starting hoopsync worker")

	cfg := config.MustLoad()
	log.Info().Str("env", cfg.AppEnv).Str("log_level", cfg.LogLevel).Msg("configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal, shutting down gracefully")
		cancel()
	}()

	db, err := repository.New(ctx, repository.Config{
		Host: cfg.DatabaseHost, Port: cfg.DatabasePort, User: cfg.DatabaseUser,
		Password: cfg.DatabasePassword, Database: cfg.DatabaseName, SSLMode: cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("database connection established")

	var cacheStore cache.Store
	if cfg.RedisEnabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr(), Password: cfg.RedisPassword, DB: cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to connect to redis, falling back to in-process cache")
			cacheStore = cache.NewMemStore()
		} else {
			cacheStore = cache.NewRedisStore(redisClient)
			log.Info().Msg("redis cache connected")
		}
	} else {
		cacheStore = cache.NewMemStore()
	}

	if err := ensureLeagues(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed leagues")
	}
	leagueIDBySource, err := loadLeagueIDs(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load league ids")
	}

	registry := adapter.NewRegistry()
	for name, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}
		limiter := ratelimit.NewLocal(sc.APIRequestsPerSecond)
		switch name {
		case "winner":
			registry.Register(winner.New(sc.BaseURL, sc.APIKey, sc.RequestTimeout(), sc.MaxRetries, limiter, cacheStore))
		case "euroleague":
			registry.Register(euroleague.New(sc.BaseURL, sc.APIKey, sc.RequestTimeout(), sc.MaxRetries, limiter, cacheStore))
		case "nba":
			registry.Register(nbastats.New(sc.BaseURL, sc.APIKey, sc.RequestTimeout(), sc.MaxRetries, limiter, cacheStore))
		default:
			log.Warn().Str("source", name).Msg("no adapter implementation registered for configured source")
		}
	}

	agg := aggregator.New(db)
	orchestrator := sync.New(db, registry, agg, leagueIDBySource, 4)

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	startTime := time.Now()
	go reportUptime(ctx, startTime)

	sched := scheduler.New(cfg, registry, orchestrator)
	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start scheduler")
		}
	}

	router := httpapi.NewRouter(orchestrator, db, cfg)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("starting HTTP API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if cfg.EnableScheduler {
		log.Info().Msg("stopping scheduler...")
		sched.Stop()
	}

	log.Info().Msg("worker shutdown complete")
}

func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

func reportUptime(ctx context.Context, startTime time.Time) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.SystemUptime.Set(time.Since(startTime).Seconds())
		case <-ctx.Done():
			return
		}
	}
}

func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("starting metrics server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server failed")
	}
}

// ensureLeagues creates any seed league not already present, keyed by code.
func ensureLeagues(ctx context.Context, db *repository.DB) error {
	for _, seed := range leagueSeeds {
		if _, err := db.Leagues.GetByCode(ctx, seed.Code); err == nil {
			continue
		} else if !models.IsNotFound(err) {
			return err
		}
		l := seed
		if err := db.Leagues.Create(ctx, &l); err != nil {
			return fmt.Errorf("failed to create league %s: %w", seed.Code, err)
		}
	}
	return nil
}

// loadLeagueIDs resolves each source's league id for the sync orchestrator.
func loadLeagueIDs(ctx context.Context, db *repository.DB) (map[string]int64, error) {
	out := map[string]int64{}
	for source, seed := range leagueSeeds {
		l, err := db.Leagues.GetByCode(ctx, seed.Code)
		if err != nil {
			return nil, err
		}
		out[source] = l.ID
	}
	return out, nil
}
