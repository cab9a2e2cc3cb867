// Package analytics implements the read-only analytics engine (spec.md
// §4.7): clutch/situational/opponent/time filters over a game's play-by-play
// stream, on/off-court and lineup splits, and quarter-by-quarter bundles.
// Nothing here mutates the store; every computation is a deterministic fold
// over rows already persisted by a sync run.
package analytics

import (
	"context"

	"hoopsync/internal/models"
	"hoopsync/internal/repository"
)

// regulationPeriods is the boundary between regulation and overtime for
// every league this module targets.
const regulationPeriods = 4

// SubstitutionPolicy resolves the open question in spec.md §9: some sources
// emit SUBSTITUTION events missing one half of the player_in/player_out
// pair. The policy is explicit and caller-selected rather than guessed.
type SubstitutionPolicy string

const (
	// DropIndeterminate leaves the on-court set unchanged when either half
	// of a substitution is unresolved, rather than guess who left or
	// entered.
	DropIndeterminate SubstitutionPolicy = "drop"
	// DegradeAccuracy applies whichever half of a substitution is known,
	// accepting an on-court set that may be briefly short or long a player.
	DegradeAccuracy SubstitutionPolicy = "degrade"
)

// Engine answers analytics queries for one store.
type Engine struct {
	db        *repository.DB
	subPolicy SubstitutionPolicy
}

func New(db *repository.DB, subPolicy SubstitutionPolicy) *Engine {
	if subPolicy == "" {
		subPolicy = DropIndeterminate
	}
	return &Engine{db: db, subPolicy: subPolicy}
}

// PolicyFromConfig translates the operator-facing
// Analytics.StrictLineupSegments toggle into a SubstitutionPolicy: strict
// mode drops indeterminate substitutions rather than guess at them.
func PolicyFromConfig(strictLineupSegments bool) SubstitutionPolicy {
	if strictLineupSegments {
		return DropIndeterminate
	}
	return DegradeAccuracy
}

// ClutchFilter selects PBP events occurring late in a close game (spec.md
// §4.7). Zero values are not valid defaults — use DefaultClutchFilter.
type ClutchFilter struct {
	TimeRemainingSeconds int
	ScoreMargin          int
	IncludeOvertime      bool
	MinPeriod            int
}

func DefaultClutchFilter() ClutchFilter {
	return ClutchFilter{TimeRemainingSeconds: 300, ScoreMargin: 5, IncludeOvertime: true, MinPeriod: regulationPeriods}
}

func (f ClutchFilter) matches(se scoredEvent) bool {
	late := se.Event.Period >= f.MinPeriod
	overtime := f.IncludeOvertime && se.Event.Period > regulationPeriods
	if !late && !overtime {
		return false
	}
	if se.ClockSeconds > f.TimeRemainingSeconds {
		return false
	}
	return abs(se.ScoreHome-se.ScoreAway) <= f.ScoreMargin
}

// SituationalFilter constrains SHOT events by their attributes map. A nil
// field means "don't constrain".
type SituationalFilter struct {
	FastBreak    *bool
	SecondChance *bool
	Contested    *bool
	ShotType     *string
}

func (f SituationalFilter) matches(ev *models.PBPEvent) bool {
	if ev.EventType != models.EventShot {
		return false
	}
	if f.FastBreak != nil {
		v, ok := attrBool(ev.Attributes, "fast_break")
		if !ok || v != *f.FastBreak {
			return false
		}
	}
	if f.SecondChance != nil {
		v, ok := attrBool(ev.Attributes, "second_chance")
		if !ok || v != *f.SecondChance {
			return false
		}
	}
	if f.Contested != nil {
		v, ok := attrBool(ev.Attributes, "contested")
		if !ok || v != *f.Contested {
			return false
		}
	}
	if f.ShotType != nil {
		v, ok := attrString(ev.Attributes, "shot_type")
		if !ok || v != *f.ShotType {
			return false
		}
	}
	return true
}

// OpponentFilter restricts events to one side of the matchup.
type OpponentFilter struct {
	OpponentTeamID *int64
	HomeOnly       bool
	AwayOnly       bool
}

func (f OpponentFilter) matches(ev *models.PBPEvent, homeTeamID, awayTeamID int64) bool {
	if f.OpponentTeamID != nil && ev.TeamID == *f.OpponentTeamID {
		return false
	}
	if f.HomeOnly && ev.TeamID != homeTeamID {
		return false
	}
	if f.AwayOnly && ev.TeamID != awayTeamID {
		return false
	}
	return true
}

// TimeFilter restricts events by period and clock window.
type TimeFilter struct {
	Period             *int
	Periods            []int
	ExcludeGarbageTime bool
	MinTimeRemaining   *int
	MaxTimeRemaining   *int
}

func (f TimeFilter) matches(se scoredEvent) bool {
	if f.Period != nil && se.Event.Period != *f.Period {
		return false
	}
	if len(f.Periods) > 0 {
		found := false
		for _, p := range f.Periods {
			if p == se.Event.Period {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ExcludeGarbageTime && abs(se.ScoreHome-se.ScoreAway) > 20 {
		return false
	}
	if f.MinTimeRemaining != nil && se.ClockSeconds < *f.MinTimeRemaining {
		return false
	}
	if f.MaxTimeRemaining != nil && se.ClockSeconds > *f.MaxTimeRemaining {
		return false
	}
	return true
}

func (e *Engine) scoredEvents(ctx context.Context, gameID int64) ([]scoredEvent, error) {
	game, err := e.db.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	events, err := e.db.PBP.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return scoreEvents(events, game.HomeTeamID), nil
}

// GetClutchEvents implements get_clutch_events(game, filter).
func (e *Engine) GetClutchEvents(ctx context.Context, gameID int64, filter ClutchFilter) ([]*models.PBPEvent, error) {
	scored, err := e.scoredEvents(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var out []*models.PBPEvent
	for _, se := range scored {
		if filter.matches(se) {
			out = append(out, se.Event)
		}
	}
	return out, nil
}

// GetSituationalEvents filters a game's SHOT events by situational tags.
func (e *Engine) GetSituationalEvents(ctx context.Context, gameID int64, filter SituationalFilter) ([]*models.PBPEvent, error) {
	events, err := e.db.PBP.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var out []*models.PBPEvent
	for _, ev := range events {
		if filter.matches(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// GetOpponentFilteredEvents restricts a game's events to one side.
func (e *Engine) GetOpponentFilteredEvents(ctx context.Context, gameID int64, filter OpponentFilter) ([]*models.PBPEvent, error) {
	game, err := e.db.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	events, err := e.db.PBP.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var out []*models.PBPEvent
	for _, ev := range events {
		if filter.matches(ev, game.HomeTeamID, game.AwayTeamID) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// GetTimeFilteredEvents restricts a game's events by period/clock window.
func (e *Engine) GetTimeFilteredEvents(ctx context.Context, gameID int64, filter TimeFilter) ([]*models.PBPEvent, error) {
	scored, err := e.scoredEvents(ctx, gameID)
	if err != nil {
		return nil, err
	}
	var out []*models.PBPEvent
	for _, se := range scored {
		if filter.matches(se) {
			out = append(out, se.Event)
		}
	}
	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
