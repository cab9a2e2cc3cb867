// Package scheduler runs the auto-sync cron jobs spec.md §6 describes: one
// per enabled source, firing at that source's configured interval and
// driving the season workflow for whichever season the adapter currently
// reports as current.
package scheduler

import (
	"context"
	"fmt"

	"hoopsync/internal/adapter"
	"hoopsync/internal/config"
	"hoopsync/internal/metrics"
	"hoopsync/internal/sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler owns one cron entry per auto-sync-enabled source.
type Scheduler struct {
	cfg          *config.Config
	adapters     *adapter.Registry
	orchestrator *sync.Orchestrator
	cron         *cron.Cron
}

func New(cfg *config.Config, adapters *adapter.Registry, orchestrator *sync.Orchestrator) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		adapters:     adapters,
		orchestrator: orchestrator,
		cron:         cron.New(),
	}
}

// Start schedules every auto-sync-enabled source at its configured interval
// and starts the cron loop. A misconfigured interval for one source does
// not stop the rest from scheduling.
func (s *Scheduler) Start(ctx context.Context) error {
	for name, sc := range s.cfg.Sources {
		if !sc.Enabled || !sc.AutoSyncEnabled {
			continue
		}
		source := name
		spec := cronSpec(sc.SyncIntervalMinutes)
		if _, err := s.cron.AddFunc(spec, func() { s.runAutoSync(ctx, source) }); err != nil {
			return fmt.Errorf("failed to schedule source %s: %w", source, err)
		}
		log.Info().Str("source", source).Str("schedule", spec).Msg("auto-sync scheduled")
	}
	s.cron.Start()
	return nil
}

// cronSpec builds the robfig/cron "@every" expression for an interval in
// minutes, guarding against a zero or negative configured interval which
// cron.AddFunc would otherwise reject.
func cronSpec(intervalMinutes int) string {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	return fmt.Sprintf("@every %dm", intervalMinutes)
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// runAutoSync resolves the adapter's current season and fans the season
// workflow out through the orchestrator, logging (never panicking) on
// failure — a transient provider outage must not bring down the scheduler.
func (s *Scheduler) runAutoSync(ctx context.Context, source string) {
	log.Info().Str("source", source).Msg("auto-sync starting")

	a, err := s.adapters.Get(source)
	if err != nil {
		log.Error().Err(err).Str("source", source).Msg("auto-sync: adapter not found")
		metrics.RecordError("scheduler", "adapter_lookup")
		return
	}

	seasons, err := a.GetSeasons(ctx)
	if err != nil {
		log.Error().Err(err).Str("source", source).Msg("auto-sync: failed to fetch seasons")
		metrics.RecordError("scheduler", "get_seasons")
		return
	}

	var current *adapter.RawSeason
	for i := range seasons {
		if seasons[i].IsCurrent {
			current = &seasons[i]
			break
		}
	}
	if current == nil {
		log.Warn().Str("source", source).Msg("auto-sync: no current season reported, skipping")
		return
	}

	entry, err := s.orchestrator.SyncSeason(ctx, source, current.ExternalID, false)
	if err != nil {
		log.Error().Err(err).Str("source", source).Str("season_external_id", current.ExternalID).
			Msg("auto-sync: season sync failed")
		return
	}
	log.Info().Str("source", source).
		Int("processed", entry.RecordsProcessed).
		Int("created", entry.RecordsCreated).
		Int("updated", entry.RecordsUpdated).
		Int("skipped", entry.RecordsSkipped).
		Msg("auto-sync complete")
}
