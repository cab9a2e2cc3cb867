// Package models defines the canonical, source-agnostic schema shared by the
// store, resolver, sync orchestrator, aggregator, and analytics engine. No
// type in this package ever holds a raw provider string in an enum-typed
// field — normalizers in normalize.go are the only path from raw input into
// these types.
package models

import "time"

// League is long-lived; Code is the business key external callers key off.
type League struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Code    string `db:"code"`
	Country string `db:"country"`
}

// Season belongs to exactly one League. At most one Season per league may
// have IsCurrent = true.
type Season struct {
	ID        int64     `db:"id"`
	LeagueID  int64     `db:"league_id"`
	Name      string    `db:"name"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	IsCurrent bool      `db:"is_current"`
}

// Validate checks the Season's own invariants (not cross-row uniqueness,
// which the store enforces transactionally).
func (s *Season) Validate() error {
	if s.EndDate.Before(s.StartDate) {
		return NewConstraintError("season_dates", "end_date before start_date")
	}
	return nil
}

// Team exists across seasons; TeamSeason records a specific season's
// membership.
type Team struct {
	ID         int64             `db:"id"`
	Name       string            `db:"name"`
	ShortName  string            `db:"short_name"`
	City       string            `db:"city"`
	Country    string            `db:"country"`
	ExternalIDs map[string]string `db:"-"`
}

// TeamSeason is the composite-key membership row linking a Team to a Season.
type TeamSeason struct {
	TeamID   int64 `db:"team_id"`
	SeasonID int64 `db:"season_id"`
}

// Player is a cross-source canonical person. Positions is the source of
// truth; Position() is a derived legacy accessor (see SPEC_FULL §12.3).
type Player struct {
	ID          int64             `db:"id"`
	FirstName   string            `db:"first_name"`
	LastName    string            `db:"last_name"`
	BirthDate   *time.Time        `db:"birth_date"`
	Nationality *string           `db:"nationality"`
	HeightCM    *int              `db:"height_cm"`
	Positions   []Position        `db:"-"`
	ExternalIDs map[string]string `db:"-"`
}

// Position returns the first entry of Positions for legacy single-position
// consumers, or "" if the player has no recorded position.
func (p *Player) Position() Position {
	if len(p.Positions) == 0 {
		return ""
	}
	return p.Positions[0]
}

// FullName renders "First Last" for display; NormalizedName (see normalize.go)
// is what matching uses.
func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PlayerTeamHistory is unique on (PlayerID, TeamID, SeasonID); a traded
// player has more than one row in a season.
type PlayerTeamHistory struct {
	PlayerID     int64   `db:"player_id"`
	TeamID       int64   `db:"team_id"`
	SeasonID     int64   `db:"season_id"`
	JerseyNumber *int    `db:"jersey_number"`
	Position     *Position `db:"position"`
}

// Game ties two distinct teams in one season on one date.
type Game struct {
	ID          int64             `db:"id"`
	SeasonID    int64             `db:"season_id"`
	HomeTeamID  int64             `db:"home_team_id"`
	AwayTeamID  int64             `db:"away_team_id"`
	GameDate    time.Time         `db:"game_date"`
	Status      GameStatus        `db:"status"`
	HomeScore   *int              `db:"home_score"`
	AwayScore   *int              `db:"away_score"`
	Venue       *string           `db:"venue"`
	Attendance  *int              `db:"attendance"`
	ExternalIDs map[string]string `db:"-"`
}

// Validate checks Game's own-row invariants; status transitions are
// enforced by the store (FINAL is terminal — see errors returned by
// GameRepository.UpsertByExternalID).
func (g *Game) Validate() error {
	if g.HomeTeamID == g.AwayTeamID {
		return NewConstraintError("game_teams_distinct", "home_team_id equals away_team_id")
	}
	scoresPresent := g.HomeScore != nil && g.AwayScore != nil
	if g.Status.ScoresRequired() && !scoresPresent {
		return NewConstraintError("game_scores_required", "status requires non-null scores")
	}
	if !g.Status.ScoresRequired() && (g.HomeScore != nil || g.AwayScore != nil) {
		return NewConstraintError("game_scores_forbidden", "status forbids scores")
	}
	return nil
}

// PlayerGameStats is unique on (GameID, PlayerID). MinutesSeconds stores
// "MM:SS" as integer seconds per spec §4.1.
type PlayerGameStats struct {
	ID             int64          `db:"id"`
	GameID         int64          `db:"game_id"`
	PlayerID       int64          `db:"player_id"`
	TeamID         int64          `db:"team_id"`
	MinutesSeconds int            `db:"minutes_seconds"`
	IsStarter      bool           `db:"is_starter"`
	Points         int            `db:"points"`
	FGM            int            `db:"fgm"`
	FGA            int            `db:"fga"`
	TwoPM          int            `db:"two_pm"`
	TwoPA          int            `db:"two_pa"`
	ThreePM        int            `db:"three_pm"`
	ThreePA        int            `db:"three_pa"`
	FTM            int            `db:"ftm"`
	FTA            int            `db:"fta"`
	OReb           int            `db:"oreb"`
	DReb           int            `db:"dreb"`
	TReb           int            `db:"treb"`
	Ast            int            `db:"ast"`
	Tov            int            `db:"tov"`
	Stl            int            `db:"stl"`
	Blk            int            `db:"blk"`
	PF             int            `db:"pf"`
	PlusMinus      int            `db:"plus_minus"`
	Efficiency     int            `db:"efficiency"`
	Extra          map[string]any `db:"-"`
}

// Validate enforces the box-score arithmetic invariants from spec §3/§8.2.
func (s *PlayerGameStats) Validate() error {
	if s.FGM < 0 || s.FGA < 0 || s.TwoPM < 0 || s.TwoPA < 0 || s.ThreePM < 0 || s.ThreePA < 0 ||
		s.FTM < 0 || s.FTA < 0 || s.OReb < 0 || s.DReb < 0 || s.TReb < 0 || s.Ast < 0 ||
		s.Tov < 0 || s.Stl < 0 || s.Blk < 0 || s.PF < 0 {
		return NewConstraintError("stats_nonnegative", "counter below zero")
	}
	if s.FGM > s.FGA {
		return NewConstraintError("stats_fgm_le_fga", "fgm exceeds fga")
	}
	if s.TwoPM+s.ThreePM != s.FGM {
		return NewConstraintError("stats_2pm_3pm_eq_fgm", "2pm+3pm != fgm")
	}
	if s.OReb+s.DReb != s.TReb {
		return NewConstraintError("stats_oreb_dreb_eq_treb", "oreb+dreb != treb")
	}
	if s.Points != 2*s.TwoPM+3*s.ThreePM+s.FTM {
		return NewConstraintError("stats_points_formula", "points != 2*2pm+3*3pm+ftm")
	}
	return nil
}

// TeamGameStats mirrors PlayerGameStats' shape, keyed by (GameID, TeamID),
// plus team-only aggregates.
type TeamGameStats struct {
	ID               int64          `db:"id"`
	GameID           int64          `db:"game_id"`
	TeamID           int64          `db:"team_id"`
	Points           int            `db:"points"`
	FGM              int            `db:"fgm"`
	FGA              int            `db:"fga"`
	TwoPM            int            `db:"two_pm"`
	TwoPA            int            `db:"two_pa"`
	ThreePM          int            `db:"three_pm"`
	ThreePA          int            `db:"three_pa"`
	FTM              int            `db:"ftm"`
	FTA              int            `db:"fta"`
	OReb             int            `db:"oreb"`
	DReb             int            `db:"dreb"`
	TReb             int            `db:"treb"`
	Ast              int            `db:"ast"`
	Tov              int            `db:"tov"`
	Stl              int            `db:"stl"`
	Blk              int            `db:"blk"`
	PF               int            `db:"pf"`
	FastBreakPoints  int            `db:"fast_break_points"`
	PointsInPaint    int            `db:"points_in_paint"`
	SecondChancePts  int            `db:"second_chance_points"`
	BenchPoints      int            `db:"bench_points"`
	BiggestLead      int            `db:"biggest_lead"`
	TimeLeadingSec   int            `db:"time_leading_seconds"`
	Extra            map[string]any `db:"-"`
}

// PBPEvent is unique on (GameID, EventNumber); Clock is "MM:SS" within Period.
type PBPEvent struct {
	ID            int64          `db:"id"`
	GameID        int64          `db:"game_id"`
	EventNumber   int            `db:"event_number"`
	Period        int            `db:"period"`
	Clock         string         `db:"clock"`
	EventType     EventType      `db:"event_type"`
	EventSubtype  *string        `db:"event_subtype"`
	PlayerID      *int64         `db:"player_id"`
	TeamID        int64          `db:"team_id"`
	Success       *bool          `db:"success"`
	CoordX        *float64       `db:"coord_x"`
	CoordY        *float64       `db:"coord_y"`
	Attributes    map[string]any `db:"-"`
}

// ClockToSeconds converts the event's "MM:SS" clock to seconds remaining in
// the period. Malformed clocks yield 0 rather than propagating — callers
// that need a hard failure should call ParseMinutesSeconds directly.
func (e *PBPEvent) ClockToSeconds() int {
	secs, err := ParseMinutesSeconds(e.Clock)
	if err != nil {
		return 0
	}
	return secs
}

// PlayerSeasonStats is derived, never the source of truth; unique on
// (PlayerID, TeamID, SeasonID).
type PlayerSeasonStats struct {
	ID             int64     `db:"id"`
	PlayerID       int64     `db:"player_id"`
	TeamID         int64     `db:"team_id"`
	SeasonID       int64     `db:"season_id"`
	GamesPlayed    int       `db:"games_played"`
	GamesStarted   int       `db:"games_started"`

	TotalPoints int `db:"total_points"`
	TotalFGM    int `db:"total_fgm"`
	TotalFGA    int `db:"total_fga"`
	TotalTwoPM  int `db:"total_two_pm"`
	TotalTwoPA  int `db:"total_two_pa"`
	TotalThreePM int `db:"total_three_pm"`
	TotalThreePA int `db:"total_three_pa"`
	TotalFTM    int `db:"total_ftm"`
	TotalFTA    int `db:"total_fta"`
	TotalOReb   int `db:"total_oreb"`
	TotalDReb   int `db:"total_dreb"`
	TotalTReb   int `db:"total_treb"`
	TotalAst    int `db:"total_ast"`
	TotalTov    int `db:"total_tov"`
	TotalStl    int `db:"total_stl"`
	TotalBlk    int `db:"total_blk"`
	TotalPF     int `db:"total_pf"`
	TotalMinutesSeconds int `db:"total_minutes_seconds"`

	AvgPoints float64 `db:"avg_points"`
	AvgReb    float64 `db:"avg_reb"`
	AvgAst    float64 `db:"avg_ast"`
	AvgStl    float64 `db:"avg_stl"`
	AvgBlk    float64 `db:"avg_blk"`
	AvgMinutes float64 `db:"avg_minutes"`

	FGPct  *float64 `db:"fg_pct"`
	TwoPPct *float64 `db:"two_p_pct"`
	ThreePPct *float64 `db:"three_p_pct"`
	FTPct  *float64 `db:"ft_pct"`

	TSPct     *float64 `db:"ts_pct"`
	EFGPct    *float64 `db:"efg_pct"`
	ASTToRatio float64 `db:"ast_to_ratio"`

	LastCalculated time.Time `db:"last_calculated"`
}

// SyncLog is the append-only (except terminal update) audit record of a sync
// run.
type SyncLog struct {
	ID               int64          `db:"id"`
	Source           string         `db:"source"`
	EntityType       string         `db:"entity_type"`
	Status           SyncStatus     `db:"status"`
	SeasonID         *int64         `db:"season_id"`
	GameID           *int64         `db:"game_id"`
	RecordsProcessed int            `db:"records_processed"`
	RecordsCreated   int            `db:"records_created"`
	RecordsUpdated   int            `db:"records_updated"`
	RecordsSkipped   int            `db:"records_skipped"`
	ErrorMessage     *string        `db:"error_message"`
	ErrorDetails     map[string]any `db:"-"`
	StartedAt        time.Time      `db:"started_at"`
	CompletedAt      *time.Time     `db:"completed_at"`
}

// Validate checks the SyncLog state-machine invariant from spec §3/§4.5.
func (l *SyncLog) Validate() error {
	if (l.Status == SyncStarted) != (l.CompletedAt == nil) {
		return NewConstraintError("synclog_completed_at", "completed_at must be null iff status=STARTED")
	}
	return nil
}
