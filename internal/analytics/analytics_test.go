package analytics

import (
	"testing"

	"hoopsync/internal/models"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestPolicyFromConfig(t *testing.T) {
	assert.Equal(t, DropIndeterminate, PolicyFromConfig(true))
	assert.Equal(t, DegradeAccuracy, PolicyFromConfig(false))
}

func shotEvent(num, period int, clock string, teamID int64, playerID *int64, made bool, attrs map[string]any) *models.PBPEvent {
	return &models.PBPEvent{
		EventNumber: num, Period: period, Clock: clock, EventType: models.EventShot,
		TeamID: teamID, PlayerID: playerID, Success: boolPtr(made), Attributes: attrs,
	}
}

func TestClutchFilter_DefaultMatchesLateCloseEvents(t *testing.T) {
	home, away := int64(1), int64(2)
	events := []*models.PBPEvent{
		shotEvent(1, 1, "10:00", home, nil, true, map[string]any{"points": 2}),   // Q1 — not clutch
		shotEvent(2, 4, "4:30", home, nil, true, map[string]any{"points": 2}),    // Q4, within time, margin 4 -> clutch
		shotEvent(3, 4, "4:00", away, nil, true, map[string]any{"points": 2}),    // margin 2 -> clutch
		shotEvent(4, 4, "0:10", home, nil, true, map[string]any{"points": 10}),   // margin > 5 -> not clutch
	}
	scored := scoreEvents(events, home)

	filter := DefaultClutchFilter()
	var got []*models.PBPEvent
	for _, se := range scored {
		if filter.matches(se) {
			got = append(got, se.Event)
		}
	}

	assert.Len(t, got, 2)
	assert.Equal(t, 2, got[0].EventNumber)
	assert.Equal(t, 3, got[1].EventNumber)
}

func TestClutchFilter_OvertimeIncludedWhenConfigured(t *testing.T) {
	home := int64(1)
	events := []*models.PBPEvent{
		shotEvent(1, 5, "3:00", home, nil, true, map[string]any{"points": 2}),
	}
	scored := scoreEvents(events, home)

	// MinPeriod above the overtime period itself isolates the OR-with-OT
	// branch: period 5 only qualifies through include_overtime, not
	// through period >= min_period.
	filter := DefaultClutchFilter()
	filter.MinPeriod = 6

	assert.True(t, filter.matches(scored[0]))

	filter.IncludeOvertime = false
	assert.False(t, filter.matches(scored[0]))
}

func TestSituationalFilter_OnlyMatchesShotsWithEquality(t *testing.T) {
	reboundEvent := &models.PBPEvent{EventType: models.EventRebound}
	fastBreakMiss := shotEvent(1, 1, "10:00", 1, nil, false, map[string]any{"fast_break": true})
	halfCourt := shotEvent(2, 1, "9:00", 1, nil, true, map[string]any{"fast_break": false})

	filter := SituationalFilter{FastBreak: boolPtr(true)}

	assert.False(t, filter.matches(reboundEvent), "non-shot events never match a situational filter")
	assert.True(t, filter.matches(fastBreakMiss))
	assert.False(t, filter.matches(halfCourt))
}

func TestSituationalFilter_ShotType(t *testing.T) {
	jumper := shotEvent(1, 1, "10:00", 1, nil, true, map[string]any{"shot_type": "jumper"})
	layup := shotEvent(2, 1, "9:00", 1, nil, true, map[string]any{"shot_type": "layup"})

	filter := SituationalFilter{ShotType: strPtr("layup")}

	assert.False(t, filter.matches(jumper))
	assert.True(t, filter.matches(layup))
}

func TestOpponentFilter(t *testing.T) {
	home, away := int64(1), int64(2)
	homeEvent := &models.PBPEvent{TeamID: home}
	awayEvent := &models.PBPEvent{TeamID: away}

	opponentIsAway := OpponentFilter{OpponentTeamID: &away}
	assert.True(t, opponentIsAway.matches(homeEvent, home, away))
	assert.False(t, opponentIsAway.matches(awayEvent, home, away))

	homeOnly := OpponentFilter{HomeOnly: true}
	assert.True(t, homeOnly.matches(homeEvent, home, away))
	assert.False(t, homeOnly.matches(awayEvent, home, away))
}

func TestTimeFilter_ExcludeGarbageTime(t *testing.T) {
	blowout := scoredEvent{Event: &models.PBPEvent{Period: 4}, ScoreHome: 100, ScoreAway: 70}
	closeGame := scoredEvent{Event: &models.PBPEvent{Period: 4}, ScoreHome: 80, ScoreAway: 78}

	filter := TimeFilter{ExcludeGarbageTime: true}

	assert.False(t, filter.matches(blowout))
	assert.True(t, filter.matches(closeGame))
}

func TestTimeFilter_PeriodsList(t *testing.T) {
	filter := TimeFilter{Periods: []int{1, 2}}

	assert.True(t, filter.matches(scoredEvent{Event: &models.PBPEvent{Period: 2}}))
	assert.False(t, filter.matches(scoredEvent{Event: &models.PBPEvent{Period: 3}}))
}

func TestEventPoints_FreeThrowAndShotDefaultAndExplicit(t *testing.T) {
	ft := &models.PBPEvent{EventType: models.EventFreeThrow}
	assert.Equal(t, 1, eventPoints(ft))

	explicit := &models.PBPEvent{EventType: models.EventShot, Attributes: map[string]any{"points": float64(3)}}
	assert.Equal(t, 3, eventPoints(explicit))

	threeBySubtype := &models.PBPEvent{EventType: models.EventShot, EventSubtype: strPtr("3PT Jumper")}
	assert.Equal(t, 3, eventPoints(threeBySubtype))

	threeAtEndOfSubtype := &models.PBPEvent{EventType: models.EventShot, EventSubtype: strPtr("PT3")}
	assert.Equal(t, 3, eventPoints(threeAtEndOfSubtype), "a subtype ending in the 3PT marker must still be detected")

	defaultTwo := &models.PBPEvent{EventType: models.EventShot}
	assert.Equal(t, 2, eventPoints(defaultTwo))
}
