package sync

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hoopsync/internal/adapter"
	"hoopsync/internal/models"
	"hoopsync/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func key(source, externalID string) string { return source + "|" + externalID }

// fakeTeamStore backs both the orchestrator's teamStore interface and
// resolver.TeamStore, so one fake drives both the orchestrator's direct
// lookups and the resolver's merge logic.
type fakeTeamStore struct {
	mu            sync.Mutex
	byKey         map[string]*models.Team
	normNameIndex map[string][]*models.Team
	nextID        int64
	seasonUpserts int
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{byKey: map[string]*models.Team{}, normNameIndex: map[string][]*models.Team{}}
}

func (f *fakeTeamStore) seed(source, externalID string, t *models.Team) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		f.nextID++
		t.ID = f.nextID
	}
	if t.ExternalIDs == nil {
		t.ExternalIDs = map[string]string{}
	}
	t.ExternalIDs[source] = externalID
	f.byKey[key(source, externalID)] = t
	norm := models.NormalizedName(t.Name)
	f.normNameIndex[norm] = append(f.normNameIndex[norm], t)
}

func (f *fakeTeamStore) GetByExternalID(_ context.Context, source, externalID string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.byKey[key(source, externalID)]; ok {
		return t, nil
	}
	return nil, models.NewNotFoundError("team", key(source, externalID))
}

func (f *fakeTeamStore) FindByNormalizedName(_ context.Context, normalizedName string) ([]*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.Team{}, f.normNameIndex[normalizedName]...), nil
}

func (f *fakeTeamStore) Update(_ context.Context, t *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for source, externalID := range t.ExternalIDs {
		f.byKey[key(source, externalID)] = t
	}
	return nil
}

func (f *fakeTeamStore) Create(_ context.Context, t *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	for source, externalID := range t.ExternalIDs {
		f.byKey[key(source, externalID)] = t
	}
	norm := models.NormalizedName(t.Name)
	f.normNameIndex[norm] = append(f.normNameIndex[norm], t)
	return nil
}

func (f *fakeTeamStore) UpsertSeason(_ context.Context, _ *models.TeamSeason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seasonUpserts++
	return nil
}

// fakePlayerRepo backs both the orchestrator's playerStore interface and
// resolver.PlayerStore.
type fakePlayerRepo struct {
	mu            sync.Mutex
	byKey         map[string]*models.Player
	byID          map[int64]*models.Player
	rosterByTeam  map[int64][]*models.Player
	nextID        int64
	historyWrites int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		byKey:        map[string]*models.Player{},
		byID:         map[int64]*models.Player{},
		rosterByTeam: map[int64][]*models.Player{},
	}
}

func (f *fakePlayerRepo) seed(source, externalID string, p *models.Player, teamID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.nextID++
		p.ID = f.nextID
	}
	if p.ExternalIDs == nil {
		p.ExternalIDs = map[string]string{}
	}
	p.ExternalIDs[source] = externalID
	f.byKey[key(source, externalID)] = p
	f.byID[p.ID] = p
	f.rosterByTeam[teamID] = append(f.rosterByTeam[teamID], p)
}

func (f *fakePlayerRepo) GetByExternalID(_ context.Context, source, externalID string) (*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byKey[key(source, externalID)]; ok {
		return p, nil
	}
	return nil, models.NewNotFoundError("player", key(source, externalID))
}

func (f *fakePlayerRepo) FindByTeamRoster(_ context.Context, teamID int64, normalizedFirst, normalizedLast string) ([]*models.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Player
	for _, p := range f.rosterByTeam[teamID] {
		if models.NormalizedName(p.FirstName) == normalizedFirst && models.NormalizedName(p.LastName) == normalizedLast {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlayerRepo) FindByBiographical(context.Context, string, string, time.Time) ([]*models.Player, error) {
	return nil, nil
}

func (f *fakePlayerRepo) Update(_ context.Context, p *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for source, externalID := range p.ExternalIDs {
		f.byKey[key(source, externalID)] = p
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePlayerRepo) Create(_ context.Context, p *models.Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	for source, externalID := range p.ExternalIDs {
		f.byKey[key(source, externalID)] = p
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakePlayerRepo) UpsertTeamHistory(_ context.Context, h *models.PlayerTeamHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyWrites++
	if p, ok := f.byID[h.PlayerID]; ok {
		for _, existing := range f.rosterByTeam[h.TeamID] {
			if existing.ID == p.ID {
				return nil
			}
		}
		f.rosterByTeam[h.TeamID] = append(f.rosterByTeam[h.TeamID], p)
	}
	return nil
}

type fakeGameStore struct {
	mu     sync.Mutex
	byKey  map[string]*models.Game
	nextID int64
}

func newFakeGameStore() *fakeGameStore { return &fakeGameStore{byKey: map[string]*models.Game{}} }

func (f *fakeGameStore) GetByExternalID(_ context.Context, source, externalID string) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.byKey[key(source, externalID)]; ok {
		return g, nil
	}
	return nil, models.NewNotFoundError("game", key(source, externalID))
}

func (f *fakeGameStore) UpsertByExternalID(_ context.Context, source, externalID string, g *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byKey[key(source, externalID)]; ok {
		g.ID = existing.ID
	} else {
		f.nextID++
		g.ID = f.nextID
	}
	f.byKey[key(source, externalID)] = g
	return nil
}

type fakePlayerGameStatsStore struct {
	mu    sync.Mutex
	calls int
}

func (f *fakePlayerGameStatsStore) BulkInsertForGame(_ context.Context, _ int64, _ []*models.PlayerGameStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

type fakeTeamGameStatsStore struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTeamGameStatsStore) BulkInsertForGame(_ context.Context, _ int64, _ []*models.TeamGameStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

type fakePBPStore struct {
	mu    sync.Mutex
	calls int
}

func (f *fakePBPStore) BulkInsertForGame(_ context.Context, _ int64, _ []*models.PBPEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

type fakeSeasonStore struct {
	mu          sync.Mutex
	byLeagueKey map[string]*models.Season
	nextID      int64
}

func newFakeSeasonStore() *fakeSeasonStore {
	return &fakeSeasonStore{byLeagueKey: map[string]*models.Season{}}
}

func (f *fakeSeasonStore) GetByLeagueAndName(_ context.Context, leagueID int64, name string) (*models.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := fmt.Sprintf("%d|%s", leagueID, name)
	if s, ok := f.byLeagueKey[k]; ok {
		return s, nil
	}
	return nil, models.NewNotFoundError("season", k)
}

func (f *fakeSeasonStore) Create(_ context.Context, s *models.Season) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	k := fmt.Sprintf("%d|%s", s.LeagueID, s.Name)
	f.byLeagueKey[k] = s
	return nil
}

func (f *fakeSeasonStore) SetCurrent(context.Context, int64, int64) error { return nil }

type fakeSyncLogStore struct {
	mu        sync.Mutex
	completed []*models.SyncLog
}

func (f *fakeSyncLogStore) Start(_ context.Context, l *models.SyncLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.Status = models.SyncStarted
	l.ID = int64(len(f.completed) + 1)
	return nil
}

func (f *fakeSyncLogStore) Complete(_ context.Context, l *models.SyncLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := l.Validate(); err != nil {
		return err
	}
	f.completed = append(f.completed, l)
	return nil
}

type fakeRecalculator struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRecalculator) RecalculateForPlayer(context.Context, int64, int64, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

// fakeAdapter implements adapter.Adapter and, optionally, adapter.PlayerInfo.
type fakeAdapter struct {
	source    string
	seasons   []adapter.RawSeason
	schedule  []adapter.RawGame
	boxScores map[string]adapter.RawBoxScore
	pbp       map[string][]adapter.RawPBPEvent
	players   map[string]adapter.RawPlayer
}

func (a *fakeAdapter) SourceName() string { return a.source }

func (a *fakeAdapter) GetSeasons(context.Context) ([]adapter.RawSeason, error) { return a.seasons, nil }

func (a *fakeAdapter) GetTeams(context.Context, string) ([]adapter.RawTeam, error) { return nil, nil }

func (a *fakeAdapter) GetSchedule(context.Context, string) ([]adapter.RawGame, error) {
	return a.schedule, nil
}

func (a *fakeAdapter) GetGameBoxScore(_ context.Context, gameExternalID string) (adapter.RawBoxScore, error) {
	b, ok := a.boxScores[gameExternalID]
	if !ok {
		return adapter.RawBoxScore{}, fmt.Errorf("fake adapter: no box score for %s", gameExternalID)
	}
	return b, nil
}

func (a *fakeAdapter) GetGamePBP(_ context.Context, gameExternalID string) ([]adapter.RawPBPEvent, error) {
	return a.pbp[gameExternalID], nil
}

func (a *fakeAdapter) IsGameFinal(g adapter.RawGame) bool { return g.Status == "final" }

func (a *fakeAdapter) GetPlayer(_ context.Context, externalID string) (adapter.RawPlayer, error) {
	p, ok := a.players[externalID]
	if !ok {
		return adapter.RawPlayer{}, fmt.Errorf("fake adapter: no player %s", externalID)
	}
	return p, nil
}

func (a *fakeAdapter) SearchPlayer(context.Context, string, string) ([]adapter.RawPlayer, error) {
	return nil, nil
}

// testHarness wires a fresh Orchestrator against in-memory fakes for one
// source, with a team and season already resolved the way sync_teams would
// leave them.
type testHarness struct {
	orch     *Orchestrator
	teams    *fakeTeamStore
	players  *fakePlayerRepo
	games    *fakeGameStore
	pgStats  *fakePlayerGameStatsStore
	tgStats  *fakeTeamGameStatsStore
	pbp      *fakePBPStore
	seasons  *fakeSeasonStore
	syncLogs *fakeSyncLogStore
	recalc   *fakeRecalculator
	registry *adapter.Registry
}

func newTestHarness(sources ...*fakeAdapter) *testHarness {
	registry := adapter.NewRegistry()
	leagueIDBySource := map[string]int64{}
	for _, a := range sources {
		registry.Register(a)
		leagueIDBySource[a.source] = 1
	}

	h := &testHarness{
		teams:    newFakeTeamStore(),
		players:  newFakePlayerRepo(),
		games:    newFakeGameStore(),
		pgStats:  &fakePlayerGameStatsStore{},
		tgStats:  &fakeTeamGameStatsStore{},
		pbp:      &fakePBPStore{},
		seasons:  newFakeSeasonStore(),
		syncLogs: &fakeSyncLogStore{},
		recalc:   &fakeRecalculator{},
		registry: registry,
	}
	h.orch = &Orchestrator{
		teamsRepo:           h.teams,
		playersRepo:         h.players,
		gamesRepo:           h.games,
		playerGameStatsRepo: h.pgStats,
		teamGameStatsRepo:   h.tgStats,
		pbpRepo:             h.pbp,
		seasonsRepo:         h.seasons,
		syncLogsRepo:        h.syncLogs,
		adapters:            registry,
		teams:               resolver.NewTeamResolver(h.teams),
		players:             resolver.NewPlayerResolver(h.players),
		aggregator:          h.recalc,
		leagueIDBySource:    leagueIDBySource,
		gameWorkers:         2,
	}
	return h
}

const seasonExternalID = "2025"

func baseSeason() adapter.RawSeason {
	return adapter.RawSeason{ExternalID: seasonExternalID, Name: "2025 Season", StartDate: "2025-01-01", EndDate: "2025-06-01", IsCurrent: true}
}

func wilbekinLine(playerExternal, teamExternal string) adapter.RawPlayerLine {
	return adapter.RawPlayerLine{
		PlayerExternal: playerExternal, TeamExternal: teamExternal, IsStarter: true, Minutes: "32:15",
		FGM: 8, FGA: 15, TwoPM: 6, TwoPA: 10, ThreePM: 2, ThreePA: 5, FTM: 2, FTA: 2,
		OReb: 1, DReb: 5, TReb: 6, Ast: 4, Stl: 1, Blk: 0, Tov: 2, PF: 2, Points: 20, PlusMinus: 5,
	}
}

func teamLines(homeExternal, awayExternal string) []adapter.RawTeamLine {
	return []adapter.RawTeamLine{
		{TeamExternal: homeExternal, Points: 80, FGM: 30, FGA: 60, TwoPM: 20, TwoPA: 35, ThreePM: 10, ThreePA: 25, FTM: 10, FTA: 12, OReb: 10, DReb: 25, TReb: 35, Ast: 18, Stl: 6, Blk: 3, Tov: 11, PF: 15},
		{TeamExternal: awayExternal, Points: 75, FGM: 28, FGA: 58, TwoPM: 18, TwoPA: 32, ThreePM: 10, ThreePA: 26, FTM: 9, FTA: 11, OReb: 9, DReb: 24, TReb: 33, Ast: 16, Stl: 5, Blk: 2, Tov: 13, PF: 16},
	}
}

func shotPBP(playerExternal, teamExternal string) adapter.RawPBPEvent {
	return adapter.RawPBPEvent{
		EventNumber: 1, Period: 1, Clock: "10:00", EventType: "shot", EventSubtype: "jumpshot",
		PlayerExternal: playerExternal, TeamExternal: teamExternal, Success: boolPtr(true),
		Attributes: map[string]any{"points": 2},
	}
}

// TestSyncSeason_FirstSync exercises spec.md §8 scenario A: a season with one
// final game not previously synced completes with one record created.
func TestSyncSeason_FirstSync(t *testing.T) {
	a := &fakeAdapter{
		source:  "source-a",
		seasons: []adapter.RawSeason{baseSeason()},
		schedule: []adapter.RawGame{
			{ExternalID: "game-1", SeasonExternal: seasonExternalID, HomeTeamExternal: "home-1", AwayTeamExternal: "away-1", GameDate: "2025-01-10", Status: "final"},
		},
		boxScores: map[string]adapter.RawBoxScore{
			"game-1": {GameExternal: "game-1", Players: []adapter.RawPlayerLine{wilbekinLine("p1", "home-1")}, Teams: teamLines("home-1", "away-1")},
		},
		pbp: map[string][]adapter.RawPBPEvent{"game-1": {shotPBP("p1", "home-1")}},
	}
	h := newTestHarness(a)
	h.teams.seed("source-a", "home-1", &models.Team{Name: "Home Team"})
	h.teams.seed("source-a", "away-1", &models.Team{Name: "Away Team"})
	h.players.seed("source-a", "p1", &models.Player{FirstName: "Scottie", LastName: "Wilbekin"}, 1)

	log, err := h.orch.SyncSeason(context.Background(), "source-a", seasonExternalID, true)

	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, log.Status)
	assert.Equal(t, 1, log.RecordsProcessed)
	assert.Equal(t, 1, log.RecordsCreated)
	assert.Equal(t, 0, log.RecordsSkipped)
	assert.Equal(t, 1, h.pgStats.calls)
	assert.Equal(t, 1, h.tgStats.calls)
	assert.Equal(t, 1, h.pbp.calls)
	assert.Equal(t, 1, h.recalc.calls)

	if _, err := h.games.GetByExternalID(context.Background(), "source-a", "game-1"); err != nil {
		t.Fatalf("expected game-1 to be persisted: %v", err)
	}
}

// TestSyncSeason_ResyncIsNoOp exercises spec.md §8 scenario B: a second run
// over the same schedule excludes the already-synced game and produces no
// new records.
func TestSyncSeason_ResyncIsNoOp(t *testing.T) {
	a := &fakeAdapter{
		source:  "source-a",
		seasons: []adapter.RawSeason{baseSeason()},
		schedule: []adapter.RawGame{
			{ExternalID: "game-1", SeasonExternal: seasonExternalID, HomeTeamExternal: "home-1", AwayTeamExternal: "away-1", GameDate: "2025-01-10", Status: "final"},
		},
		boxScores: map[string]adapter.RawBoxScore{
			"game-1": {GameExternal: "game-1", Players: []adapter.RawPlayerLine{wilbekinLine("p1", "home-1")}, Teams: teamLines("home-1", "away-1")},
		},
	}
	h := newTestHarness(a)
	h.teams.seed("source-a", "home-1", &models.Team{Name: "Home Team"})
	h.teams.seed("source-a", "away-1", &models.Team{Name: "Away Team"})
	h.players.seed("source-a", "p1", &models.Player{FirstName: "Scottie", LastName: "Wilbekin"}, 1)

	first, err := h.orch.SyncSeason(context.Background(), "source-a", seasonExternalID, false)
	require.NoError(t, err)
	require.Equal(t, models.SyncCompleted, first.Status)
	require.Equal(t, 1, first.RecordsCreated)

	second, err := h.orch.SyncSeason(context.Background(), "source-a", seasonExternalID, false)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, second.Status)
	assert.Equal(t, 0, second.RecordsProcessed, "a game already synced by external id must never be re-processed")
	assert.Equal(t, 0, second.RecordsCreated)
}

// TestSyncSeason_CrossSourceMerge exercises spec.md §8 scenario C: a player
// already known from one source is recognized via roster-tier matching when
// a second source reports the same name on the same team, and its external
// id is unioned onto the existing row rather than creating a duplicate.
func TestSyncSeason_CrossSourceMerge(t *testing.T) {
	a := &fakeAdapter{
		source:  "source-b",
		seasons: []adapter.RawSeason{baseSeason()},
		schedule: []adapter.RawGame{
			{ExternalID: "game-1", SeasonExternal: seasonExternalID, HomeTeamExternal: "home-1-eu", AwayTeamExternal: "away-1-eu", GameDate: "2025-01-10", Status: "final"},
		},
		boxScores: map[string]adapter.RawBoxScore{
			"game-1": {GameExternal: "game-1", Players: []adapter.RawPlayerLine{wilbekinLine("PWB", "home-1-eu")}, Teams: teamLines("home-1-eu", "away-1-eu")},
		},
		players: map[string]adapter.RawPlayer{
			"PWB": {ExternalID: "PWB", FirstName: "Scottie", LastName: "Wilbekin", BirthDate: "1993-07-19", HeightCM: 185},
		},
	}
	h := newTestHarness(a)
	team := &models.Team{Name: "Maccabi"}
	h.teams.seed("source-b", "home-1-eu", team)
	h.teams.seed("source-b", "away-1-eu", &models.Team{Name: "Away Team"})

	existing := &models.Player{FirstName: "Scottie", LastName: "Wilbekin"}
	h.players.seed("source-a", "p123", existing, team.ID)

	log, err := h.orch.SyncSeason(context.Background(), "source-b", seasonExternalID, false)

	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, log.Status)
	assert.Equal(t, 0, log.RecordsSkipped)
	assert.Equal(t, "p123", existing.ExternalIDs["source-a"], "the original source's external id survives the merge")
	assert.Equal(t, "PWB", existing.ExternalIDs["source-b"], "the new source's external id is unioned onto the same row")
}

// TestSyncSeason_MergeConflictSkipsGame exercises spec.md §8 scenario D: the
// same roster match as scenario C, but the new source's external id
// conflicts with one already recorded for that source — the game is
// skipped and the sync log records the conflict instead of silently
// overwriting the identity.
func TestSyncSeason_MergeConflictSkipsGame(t *testing.T) {
	a := &fakeAdapter{
		source:  "source-a",
		seasons: []adapter.RawSeason{baseSeason()},
		schedule: []adapter.RawGame{
			{ExternalID: "game-2", SeasonExternal: seasonExternalID, HomeTeamExternal: "home-1", AwayTeamExternal: "away-1", GameDate: "2025-01-17", Status: "final"},
		},
		boxScores: map[string]adapter.RawBoxScore{
			"game-2": {GameExternal: "game-2", Players: []adapter.RawPlayerLine{wilbekinLine("p999", "home-1")}, Teams: teamLines("home-1", "away-1")},
		},
		players: map[string]adapter.RawPlayer{
			"p999": {ExternalID: "p999", FirstName: "Scottie", LastName: "Wilbekin", BirthDate: "1993-07-19", HeightCM: 185},
		},
	}
	h := newTestHarness(a)
	team := &models.Team{Name: "Home Team"}
	h.teams.seed("source-a", "home-1", team)
	h.teams.seed("source-a", "away-1", &models.Team{Name: "Away Team"})

	existing := &models.Player{FirstName: "Scottie", LastName: "Wilbekin"}
	h.players.seed("source-a", "p123", existing, team.ID)

	log, err := h.orch.SyncSeason(context.Background(), "source-a", seasonExternalID, false)

	require.NoError(t, err)
	assert.Equal(t, models.SyncPartial, log.Status)
	assert.Equal(t, 1, log.RecordsSkipped)
	assert.Equal(t, "p123", existing.ExternalIDs["source-a"], "a conflicting external id must never overwrite the existing one")
	require.NotNil(t, log.ErrorDetails)
	records, ok := log.ErrorDetails["records"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Contains(t, records[0]["error"], "identity conflict")
}

// TestSyncSeason_UnknownSourceFails exercises the STARTED -> FAILED
// transition: a source with no registered adapter fails the whole run
// rather than producing a partial record count.
func TestSyncSeason_UnknownSourceFails(t *testing.T) {
	h := newTestHarness()

	log, err := h.orch.SyncSeason(context.Background(), "does-not-exist", seasonExternalID, false)

	require.Error(t, err)
	assert.Equal(t, models.SyncFailed, log.Status)
	require.NotNil(t, log.ErrorMessage)
	assert.Contains(t, *log.ErrorMessage, "does-not-exist")
	require.NotNil(t, log.CompletedAt)
}
