// Package adapter defines the per-source fetch-and-map contract (spec.md
// §4.3). Concrete adapters live under internal/adapter/sources/.
package adapter

import "context"

// RawSeason is a season as reported by one provider, pre-normalization.
type RawSeason struct {
	ExternalID string
	Name       string
	StartDate  string
	EndDate    string
	IsCurrent  bool
}

// RawTeam is a team as reported by one provider, optionally with a roster.
type RawTeam struct {
	ExternalID string
	Name       string
	ShortName  string
	City       string
	Country    string
	Roster     []RawPlayer
}

// RawPlayer is a player as reported by one provider.
type RawPlayer struct {
	ExternalID  string
	FirstName   string
	LastName    string
	BirthDate   string // provider date format, parsed by the mapper
	Nationality string
	HeightCM    int
	Position    string // raw provider label, passed through models.NormalizePosition
	JerseyNumber int
}

// RawGame is a game as reported by one provider.
type RawGame struct {
	ExternalID     string
	SeasonExternal string
	HomeTeamExternal string
	AwayTeamExternal string
	GameDate       string
	Status         string // raw provider label
	HomeScore      *int
	AwayScore      *int
	Venue          string
	Attendance     *int
}

// RawPlayerLine is one player's box-score line within a RawBoxScore.
type RawPlayerLine struct {
	PlayerExternal string
	TeamExternal   string
	IsStarter      bool
	Minutes        string // "MM:SS"
	FGM, FGA       int
	TwoPM, TwoPA   int
	ThreePM, ThreePA int
	FTM, FTA       int
	OReb, DReb, TReb int
	Ast, Stl, Blk, Tov, PF int
	Points         int
	PlusMinus      int
	Extra          map[string]any
}

// RawTeamLine is one team's box-score line within a RawBoxScore.
type RawTeamLine struct {
	TeamExternal string
	FGM, FGA     int
	TwoPM, TwoPA int
	ThreePM, ThreePA int
	FTM, FTA     int
	OReb, DReb, TReb int
	Ast, Stl, Blk, Tov, PF int
	Points       int
	FastBreakPoints int
	PointsInPaint   int
	SecondChancePts int
	BenchPoints     int
	BiggestLead     int
	TimeLeadingSec  int
	Extra           map[string]any
}

// RawBoxScore bundles both teams' and all players' lines for one game.
type RawBoxScore struct {
	GameExternal string
	Players      []RawPlayerLine
	Teams        []RawTeamLine
}

// RawPBPEvent is one play-by-play event as reported by one provider.
type RawPBPEvent struct {
	EventNumber    int
	Period         int
	Clock          string // "MM:SS" remaining in period
	EventType      string // raw provider label
	EventSubtype   string
	PlayerExternal string
	TeamExternal   string
	Success        *bool
	CoordX, CoordY *float64
	Attributes     map[string]any
}

// Adapter is the per-source fetch contract (spec.md §4.3).
type Adapter interface {
	SourceName() string
	GetSeasons(ctx context.Context) ([]RawSeason, error)
	GetTeams(ctx context.Context, seasonExternalID string) ([]RawTeam, error)
	GetSchedule(ctx context.Context, seasonExternalID string) ([]RawGame, error)
	GetGameBoxScore(ctx context.Context, gameExternalID string) (RawBoxScore, error)
	GetGamePBP(ctx context.Context, gameExternalID string) ([]RawPBPEvent, error)
	IsGameFinal(g RawGame) bool
}

// PlayerInfo is an optional capability used by the Entity Resolver when
// biographical matching needs a direct player lookup beyond what a roster
// or box score already carries.
type PlayerInfo interface {
	GetPlayer(ctx context.Context, externalID string) (RawPlayer, error)
	SearchPlayer(ctx context.Context, query string, teamExternalID string) ([]RawPlayer, error)
}
