// Package sync implements the Sync Orchestrator (spec.md §4.5): the three
// workflows that pull a source's raw payloads through the mapper, the
// entity resolver, and into the store, producing an auditable SyncLog.
package sync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hoopsync/internal/adapter"
	"hoopsync/internal/aggregator"
	"hoopsync/internal/models"
	"hoopsync/internal/repository"
	"hoopsync/internal/resolver"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// teamStore, playerStore, ... narrow the full repository.DB surface down to
// what the orchestrator itself calls directly (resolution and the resolver
// package's own stores are separate — see resolver.TeamStore/PlayerStore).
// Declaring them here, rather than depending on *repository.DB's concrete
// fields, lets orchestrator_test.go drive every workflow against in-memory
// fakes instead of a live database.
type teamStore interface {
	GetByExternalID(ctx context.Context, source, externalID string) (*models.Team, error)
	UpsertSeason(ctx context.Context, ts *models.TeamSeason) error
}

type playerStore interface {
	GetByExternalID(ctx context.Context, source, externalID string) (*models.Player, error)
	UpsertTeamHistory(ctx context.Context, h *models.PlayerTeamHistory) error
}

type gameStore interface {
	GetByExternalID(ctx context.Context, source, externalID string) (*models.Game, error)
	UpsertByExternalID(ctx context.Context, source, externalID string, g *models.Game) error
}

type playerGameStatsStore interface {
	BulkInsertForGame(ctx context.Context, gameID int64, stats []*models.PlayerGameStats) error
}

type teamGameStatsStore interface {
	BulkInsertForGame(ctx context.Context, gameID int64, stats []*models.TeamGameStats) error
}

type pbpStore interface {
	BulkInsertForGame(ctx context.Context, gameID int64, events []*models.PBPEvent) error
}

type seasonStore interface {
	GetByLeagueAndName(ctx context.Context, leagueID int64, name string) (*models.Season, error)
	Create(ctx context.Context, s *models.Season) error
	SetCurrent(ctx context.Context, leagueID, seasonID int64) error
}

type syncLogStore interface {
	Start(ctx context.Context, l *models.SyncLog) error
	Complete(ctx context.Context, l *models.SyncLog) error
}

// recalculator is the one aggregator method the orchestrator calls after
// persisting a game's box score.
type recalculator interface {
	RecalculateForPlayer(ctx context.Context, playerID, teamID, seasonID int64) error
}

// Orchestrator runs sync workflows for every configured source against one
// store. leagueIDBySource maps a source name to the League its seasons
// belong to — seasons themselves are not resolver-managed (spec.md §4.4
// scopes resolution to Team and Player), so the orchestrator looks them up
// or creates them directly by (league, name).
type Orchestrator struct {
	teamsRepo           teamStore
	playersRepo         playerStore
	gamesRepo           gameStore
	playerGameStatsRepo playerGameStatsStore
	teamGameStatsRepo   teamGameStatsStore
	pbpRepo             pbpStore
	seasonsRepo         seasonStore
	syncLogsRepo        syncLogStore

	adapters         *adapter.Registry
	teams            *resolver.TeamResolver
	players          *resolver.PlayerResolver
	aggregator       recalculator
	leagueIDBySource map[string]int64
	gameWorkers      int
}

func New(db *repository.DB, adapters *adapter.Registry, agg *aggregator.Aggregator, leagueIDBySource map[string]int64, gameWorkers int) *Orchestrator {
	if gameWorkers <= 0 {
		gameWorkers = 4
	}
	return &Orchestrator{
		teamsRepo:           db.Teams,
		playersRepo:         db.Players,
		gamesRepo:           db.Games,
		playerGameStatsRepo: db.PlayerGameStats,
		teamGameStatsRepo:   db.TeamGameStats,
		pbpRepo:             db.PBP,
		seasonsRepo:         db.Seasons,
		syncLogsRepo:        db.SyncLogs,
		adapters:            adapters,
		teams:               resolver.NewTeamResolver(db.Teams),
		players:             resolver.NewPlayerResolver(db.Players),
		aggregator:          agg,
		leagueIDBySource:    leagueIDBySource,
		gameWorkers:         gameWorkers,
	}
}

// gameOutcome is one game's result within a sync_season fan-out.
type gameOutcome struct {
	created, updated, skipped int
	skipDetail                map[string]any
}

// SyncTeams implements sync_teams(source, season_external_id): resolves
// every team in the season (and, where the adapter includes a roster,
// every player on it) and records TeamSeason membership.
func (o *Orchestrator) SyncTeams(ctx context.Context, source, seasonExternalID string) (*models.SyncLog, error) {
	entry := o.startLog(ctx, source, "teams", nil, nil)

	a, err := o.adapters.Get(source)
	if err != nil {
		return o.fail(ctx, entry, err)
	}

	season, err := o.resolveSeason(ctx, a, source, seasonExternalID)
	if err != nil {
		return o.fail(ctx, entry, err)
	}
	entry.SeasonID = &season.ID

	rawTeams, err := a.GetTeams(ctx, seasonExternalID)
	if err != nil {
		return o.fail(ctx, entry, err)
	}

	skips := []map[string]any{}
	processed, created, updated, skipped := 0, 0, 0, 0
	for _, raw := range rawTeams {
		processed++
		team, existedBefore, err := o.resolveTeam(ctx, source, raw)
		if err != nil {
			skipped++
			skips = append(skips, map[string]any{"external_id": raw.ExternalID, "error": err.Error()})
			continue
		}
		if existedBefore {
			updated++
		} else {
			created++
		}
		if err := o.teamsRepo.UpsertSeason(ctx, &models.TeamSeason{TeamID: team.ID, SeasonID: season.ID}); err != nil {
			skipped++
			skips = append(skips, map[string]any{"external_id": raw.ExternalID, "error": err.Error()})
			continue
		}
		for _, rp := range raw.Roster {
			if err := o.syncRosterPlayer(ctx, source, team.ID, season.ID, rp); err != nil {
				skips = append(skips, map[string]any{"external_id": rp.ExternalID, "error": err.Error()})
			}
		}
	}

	return o.complete(ctx, entry, processed, created, updated, skipped, skips, false)
}

func (o *Orchestrator) syncRosterPlayer(ctx context.Context, source string, teamID, seasonID int64, raw adapter.RawPlayer) error {
	incoming, err := mapPlayer(source, raw)
	if err != nil {
		return err
	}
	result, err := o.players.Resolve(ctx, source, raw.ExternalID, teamID, incoming)
	if err != nil {
		return err
	}
	if result.Ambiguous {
		log.Warn().Str("source", source).Str("external_id", raw.ExternalID).
			Msg("ambiguous player match, created new row")
	}
	var position *models.Position
	if len(result.Player.Positions) > 0 {
		p := result.Player.Positions[0]
		position = &p
	}
	var jersey *int
	if raw.JerseyNumber > 0 {
		j := raw.JerseyNumber
		jersey = &j
	}
	return o.playersRepo.UpsertTeamHistory(ctx, &models.PlayerTeamHistory{
		PlayerID: result.Player.ID, TeamID: teamID, SeasonID: seasonID,
		JerseyNumber: jersey, Position: position,
	})
}

// SyncSeason implements sync_season(source, season_external_id,
// include_pbp): fetches the schedule, filters to finished games, drops
// already-synced ids, then fans out the game workflow across a bounded
// worker pool.
func (o *Orchestrator) SyncSeason(ctx context.Context, source, seasonExternalID string, includePBP bool) (*models.SyncLog, error) {
	entry := o.startLog(ctx, source, "season", nil, nil)

	a, err := o.adapters.Get(source)
	if err != nil {
		return o.fail(ctx, entry, err)
	}

	season, err := o.resolveSeason(ctx, a, source, seasonExternalID)
	if err != nil {
		return o.fail(ctx, entry, err)
	}
	entry.SeasonID = &season.ID

	schedule, err := a.GetSchedule(ctx, seasonExternalID)
	if err != nil {
		return o.fail(ctx, entry, err)
	}

	var finalGames []adapter.RawGame
	for _, g := range schedule {
		if a.IsGameFinal(g) {
			finalGames = append(finalGames, g)
		}
	}

	var pending []adapter.RawGame
	for _, g := range finalGames {
		if _, err := o.gamesRepo.GetByExternalID(ctx, source, g.ExternalID); err == nil {
			continue // already synced — sync tracker is just this query
		} else if !models.IsNotFound(err) {
			return o.fail(ctx, entry, err)
		}
		pending = append(pending, g)
	}

	pool, err := ants.NewPool(o.gameWorkers)
	if err != nil {
		return o.fail(ctx, entry, fmt.Errorf("failed to create game worker pool: %w", err))
	}
	defer pool.Release()

	var processed, created, updated, skipped int64
	var mu sync.Mutex
	skips := []map[string]any{}
	cancelled := false

	var wg sync.WaitGroup
	for _, g := range pending {
		g := g
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&processed, 1)
			outcome := o.runGameWithinSeason(ctx, a, source, season.ID, g, includePBP)
			atomic.AddInt64(&created, int64(outcome.created))
			atomic.AddInt64(&updated, int64(outcome.updated))
			if outcome.skipDetail != nil {
				atomic.AddInt64(&skipped, 1)
				mu.Lock()
				skips = append(skips, outcome.skipDetail)
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			return o.fail(ctx, entry, fmt.Errorf("failed to submit game task: %w", submitErr))
		}
	}
	wg.Wait()

	if cancelled {
		if entry.ErrorDetails == nil {
			entry.ErrorDetails = map[string]any{}
		}
		entry.ErrorDetails["cancelled"] = true
	}

	return o.complete(ctx, entry, int(processed), int(created), int(updated), int(skipped), skips, cancelled)
}

// runGameWithinSeason runs the per-game workflow in isolation: a failure
// here must never abort the rest of the season's fan-out (spec.md §4.5,
// "per-record isolation"). A panics.Catcher scopes that isolation down to
// panics too — one game's goroutine panicking (a malformed payload tripping
// a nil dereference, say) is recorded as a skip rather than taking down the
// whole worker pool mid-season.
func (o *Orchestrator) runGameWithinSeason(ctx context.Context, a adapter.Adapter, source string, seasonID int64, scheduleGame adapter.RawGame, includePBP bool) (outcome gameOutcome) {
	gameExternalID := scheduleGame.ExternalID

	var catcher panics.Catcher
	catcher.Try(func() {
		gameID, created, err := o.syncGameTransaction(ctx, a, source, seasonID, gameExternalID, &scheduleGame, includePBP)
		if err != nil {
			log.Error().Err(err).Str("source", source).Str("game_external_id", gameExternalID).Msg("game sync failed, skipping")
			outcome = gameOutcome{skipDetail: map[string]any{"external_id": gameExternalID, "error": err.Error()}}
			return
		}
		if created {
			outcome = gameOutcome{created: 1}
			return
		}
		_ = gameID
		outcome = gameOutcome{updated: 1}
	})

	if recovered := catcher.Recovered(); recovered != nil {
		log.Error().Str("source", source).Str("game_external_id", gameExternalID).
			Err(recovered.AsError()).Msg("game sync panicked, skipping")
		return gameOutcome{skipDetail: map[string]any{"external_id": gameExternalID, "error": recovered.AsError().Error()}}
	}
	return outcome
}

// SyncGame implements sync_game(source, game_external_id, include_pbp) as a
// standalone, auditable run (distinct from the season fan-out's internal
// per-game call).
func (o *Orchestrator) SyncGame(ctx context.Context, source, gameExternalID string, includePBP bool) (*models.SyncLog, error) {
	entry := o.startLog(ctx, source, "game", nil, nil)

	a, err := o.adapters.Get(source)
	if err != nil {
		return o.fail(ctx, entry, err)
	}

	existing, err := o.gamesRepo.GetByExternalID(ctx, source, gameExternalID)
	var seasonID int64
	if err == nil {
		seasonID = existing.SeasonID
	} else if !models.IsNotFound(err) {
		return o.fail(ctx, entry, err)
	}

	gameID, createdGame, err := o.syncGameTransaction(ctx, a, source, seasonID, gameExternalID, nil, includePBP)
	if err != nil {
		skips := []map[string]any{{"external_id": gameExternalID, "error": err.Error()}}
		return o.complete(ctx, entry, 1, 0, 0, 1, skips, false)
	}
	entry.GameID = &gameID
	created, updated := 0, 1
	if createdGame {
		created, updated = 1, 0
	}
	return o.complete(ctx, entry, 1, created, updated, 0, nil, false)
}

// syncGameTransaction fetches a box score (and PBP, if requested), resolves
// every team/player it references, persists everything for one game, and
// enqueues the affected (player, team, season) tuples for aggregation. The
// box-score/PBP writes are each their own short transaction (see
// PlayerGameStatsRepository.BulkInsertForGame etc.); this function is the
// unit that a season fan-out isolates per game.
func (o *Orchestrator) syncGameTransaction(ctx context.Context, a adapter.Adapter, source string, seasonID int64, gameExternalID string, scheduleGame *adapter.RawGame, includePBP bool) (gameID int64, created bool, err error) {
	box, err := a.GetGameBoxScore(ctx, gameExternalID)
	if err != nil {
		return 0, false, err
	}

	teamIDByExternal := map[string]int64{}
	resolveTeamID := func(externalID string) (int64, error) {
		if id, ok := teamIDByExternal[externalID]; ok {
			return id, nil
		}
		team, err := o.teamsRepo.GetByExternalID(ctx, source, externalID)
		if err != nil {
			return 0, fmt.Errorf("team %s not resolved (run sync_teams first): %w", externalID, err)
		}
		teamIDByExternal[externalID] = team.ID
		return team.ID, nil
	}

	var homeExternal, awayExternal string
	if len(box.Teams) >= 2 {
		homeExternal, awayExternal = box.Teams[0].TeamExternal, box.Teams[1].TeamExternal
	}
	homeTeamID, err := resolveTeamID(homeExternal)
	if err != nil {
		return 0, false, err
	}
	awayTeamID, err := resolveTeamID(awayExternal)
	if err != nil {
		return 0, false, err
	}

	existing, err := o.gamesRepo.GetByExternalID(ctx, source, gameExternalID)
	gameCreated := models.IsNotFound(err)
	if err != nil && !gameCreated {
		return 0, false, err
	}
	if seasonID == 0 && existing != nil {
		seasonID = existing.SeasonID
	}
	if seasonID == 0 {
		return 0, false, fmt.Errorf("game %s: no season known and none resolved", gameExternalID)
	}

	game := &models.Game{SeasonID: seasonID, HomeTeamID: homeTeamID, AwayTeamID: awayTeamID, Status: models.GameFinal}
	if existing != nil {
		game = existing
		game.Status = models.GameFinal
	} else if scheduleGame != nil {
		date, dateErr := models.ParseDate(scheduleGame.GameDate, source, "game_date")
		if dateErr != nil {
			return 0, false, dateErr
		}
		game.GameDate = date
		if scheduleGame.Venue != "" {
			v := scheduleGame.Venue
			game.Venue = &v
		}
		game.Attendance = scheduleGame.Attendance
	} else {
		game.GameDate = time.Now()
	}
	for _, tl := range box.Teams {
		if tl.TeamExternal == homeExternal {
			hs := tl.Points
			game.HomeScore = &hs
		} else if tl.TeamExternal == awayExternal {
			as := tl.Points
			game.AwayScore = &as
		}
	}

	if err := o.gamesRepo.UpsertByExternalID(ctx, source, gameExternalID, game); err != nil {
		return 0, false, err
	}

	playerIDByExternal := map[string]int64{}
	resolvePlayerID := func(externalID string, teamID int64) (int64, error) {
		if id, ok := playerIDByExternal[externalID]; ok {
			return id, nil
		}
		player, err := o.resolvePlayer(ctx, source, a, externalID, teamID)
		if err != nil {
			return 0, err
		}
		playerIDByExternal[externalID] = player.ID
		return player.ID, nil
	}

	var playerStats []*models.PlayerGameStats
	touchedTuples := map[repository.PlayerTeamSeasonTuple]struct{}{}
	for _, pl := range box.Players {
		teamID, err := resolveTeamID(pl.TeamExternal)
		if err != nil {
			return 0, false, err
		}
		playerID, err := resolvePlayerID(pl.PlayerExternal, teamID)
		if err != nil {
			return 0, false, err
		}
		stat, err := mapPlayerLine(game.ID, playerID, teamID, pl)
		if err != nil {
			return 0, false, err
		}
		playerStats = append(playerStats, stat)
		touchedTuples[repository.PlayerTeamSeasonTuple{PlayerID: playerID, TeamID: teamID, SeasonID: seasonID}] = struct{}{}
	}
	if err := o.playerGameStatsRepo.BulkInsertForGame(ctx, game.ID, playerStats); err != nil {
		return 0, false, err
	}

	var teamStats []*models.TeamGameStats
	for _, tl := range box.Teams {
		teamID, err := resolveTeamID(tl.TeamExternal)
		if err != nil {
			return 0, false, err
		}
		teamStats = append(teamStats, mapTeamLine(game.ID, teamID, tl))
	}
	if err := o.teamGameStatsRepo.BulkInsertForGame(ctx, game.ID, teamStats); err != nil {
		return 0, false, err
	}

	if includePBP {
		rawPBP, err := a.GetGamePBP(ctx, gameExternalID)
		if err != nil {
			return 0, false, err
		}
		events := make([]*models.PBPEvent, 0, len(rawPBP))
		for _, rp := range rawPBP {
			teamID, err := resolveTeamID(rp.TeamExternal)
			if err != nil {
				return 0, false, err
			}
			var playerID *int64
			if rp.PlayerExternal != "" {
				id, err := resolvePlayerID(rp.PlayerExternal, teamID)
				if err != nil {
					return 0, false, err
				}
				playerID = &id
			}
			ev, err := mapPBPEvent(source, game.ID, rp, playerID, teamID)
			if err != nil {
				return 0, false, err
			}
			if ev.EventType == models.EventSubstitution {
				if err := o.resolveSubstitutionAttributes(ctx, source, a, teamID, ev); err != nil {
					return 0, false, err
				}
			}
			events = append(events, ev)
		}
		if err := o.pbpRepo.BulkInsertForGame(ctx, game.ID, events); err != nil {
			return 0, false, err
		}
	}

	for tuple := range touchedTuples {
		if err := o.aggregator.RecalculateForPlayer(ctx, tuple.PlayerID, tuple.TeamID, tuple.SeasonID); err != nil {
			log.Error().Err(err).Int64("player_id", tuple.PlayerID).Msg("aggregate recompute failed after game sync")
		}
	}

	return game.ID, gameCreated, nil
}

// resolveSubstitutionAttributes rewrites the player_in_id/player_out_id
// values a SUBSTITUTION event's attributes carry from the source's raw
// external id into the canonical player id, so the analytics engine's
// on-court reconstruction (spec.md §4.7) never has to resolve identities
// itself. Either key may be absent — the source may report only one half
// of a substitution — and is left untouched when so.
func (o *Orchestrator) resolveSubstitutionAttributes(ctx context.Context, source string, a adapter.Adapter, teamID int64, ev *models.PBPEvent) error {
	for _, key := range []string{"player_in_id", "player_out_id"} {
		raw, ok := ev.Attributes[key]
		if !ok {
			continue
		}
		externalID, ok := raw.(string)
		if !ok {
			continue
		}
		player, err := o.resolvePlayer(ctx, source, a, externalID, teamID)
		if err != nil {
			return fmt.Errorf("substitution %s: %w", key, err)
		}
		ev.Attributes[key] = player.ID
	}
	return nil
}

func (o *Orchestrator) resolveTeam(ctx context.Context, source string, raw adapter.RawTeam) (team *models.Team, existedBefore bool, err error) {
	_, err = o.teamsRepo.GetByExternalID(ctx, source, raw.ExternalID)
	existedBefore = err == nil
	if err != nil && !models.IsNotFound(err) {
		return nil, false, err
	}
	incoming := mapTeam(raw)
	resolved, err := o.teams.Resolve(ctx, source, raw.ExternalID, incoming)
	if err != nil {
		return nil, false, err
	}
	return resolved, existedBefore, nil
}

func (o *Orchestrator) resolvePlayer(ctx context.Context, source string, a adapter.Adapter, externalID string, teamID int64) (*models.Player, error) {
	if existing, err := o.playersRepo.GetByExternalID(ctx, source, externalID); err == nil {
		return existing, nil
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	info, ok := a.(adapter.PlayerInfo)
	if !ok {
		return nil, fmt.Errorf("player %s not resolved and source %s has no player lookup", externalID, source)
	}
	rawPlayer, err := info.GetPlayer(ctx, externalID)
	if err != nil {
		return nil, err
	}
	incoming, err := mapPlayer(source, rawPlayer)
	if err != nil {
		return nil, err
	}
	result, err := o.players.Resolve(ctx, source, externalID, teamID, incoming)
	if err != nil {
		return nil, err
	}
	return result.Player, nil
}

// resolveSeason looks up seasonExternalID among the source's reported
// seasons and finds or creates the matching canonical row under the
// source's configured league.
func (o *Orchestrator) resolveSeason(ctx context.Context, a adapter.Adapter, source, seasonExternalID string) (*models.Season, error) {
	leagueID, ok := o.leagueIDBySource[source]
	if !ok {
		return nil, fmt.Errorf("no league configured for source %s", source)
	}

	seasons, err := a.GetSeasons(ctx)
	if err != nil {
		return nil, err
	}
	var raw *adapter.RawSeason
	for i := range seasons {
		if seasons[i].ExternalID == seasonExternalID {
			raw = &seasons[i]
			break
		}
	}
	if raw == nil {
		return nil, fmt.Errorf("season %s not reported by source %s", seasonExternalID, source)
	}

	if existing, err := o.seasonsRepo.GetByLeagueAndName(ctx, leagueID, raw.Name); err == nil {
		return existing, nil
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	startDate, err := models.ParseDate(raw.StartDate, source, "season_start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := models.ParseDate(raw.EndDate, source, "season_end_date")
	if err != nil {
		return nil, err
	}
	season := &models.Season{LeagueID: leagueID, Name: raw.Name, StartDate: startDate, EndDate: endDate, IsCurrent: raw.IsCurrent}
	if err := o.seasonsRepo.Create(ctx, season); err != nil {
		return nil, err
	}
	if raw.IsCurrent {
		if err := o.seasonsRepo.SetCurrent(ctx, leagueID, season.ID); err != nil {
			return nil, err
		}
	}
	return season, nil
}

func (o *Orchestrator) startLog(ctx context.Context, source, entityType string, seasonID, gameID *int64) *models.SyncLog {
	entry := &models.SyncLog{Source: source, EntityType: entityType, SeasonID: seasonID, GameID: gameID, StartedAt: time.Now()}
	if err := o.syncLogsRepo.Start(ctx, entry); err != nil {
		log.Error().Err(err).Str("source", source).Msg("failed to start sync log")
	}
	return entry
}

func (o *Orchestrator) fail(ctx context.Context, entry *models.SyncLog, cause error) (*models.SyncLog, error) {
	msg := cause.Error()
	entry.Status = models.SyncFailed
	entry.ErrorMessage = &msg
	now := time.Now()
	entry.CompletedAt = &now
	if err := o.syncLogsRepo.Complete(ctx, entry); err != nil {
		log.Error().Err(err).Msg("failed to complete failed sync log")
	}
	return entry, cause
}

func (o *Orchestrator) complete(ctx context.Context, entry *models.SyncLog, processed, created, updated, skipped int, skipRecords []map[string]any, cancelled bool) (*models.SyncLog, error) {
	entry.RecordsProcessed = processed
	entry.RecordsCreated = created
	entry.RecordsUpdated = updated
	entry.RecordsSkipped = skipped
	if len(skipRecords) > 0 || cancelled {
		details := map[string]any{}
		if len(skipRecords) > 0 {
			details["records"] = skipRecords
		}
		if cancelled {
			details["cancelled"] = true
		}
		entry.ErrorDetails = details
	}
	if skipped > 0 || cancelled {
		entry.Status = models.SyncPartial
	} else {
		entry.Status = models.SyncCompleted
	}
	now := time.Now()
	entry.CompletedAt = &now
	if err := o.syncLogsRepo.Complete(ctx, entry); err != nil {
		log.Error().Err(err).Msg("failed to complete sync log")
		return entry, err
	}
	return entry, nil
}
