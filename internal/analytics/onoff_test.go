package analytics

import (
	"testing"

	"hoopsync/internal/models"

	"github.com/stretchr/testify/assert"
)

const (
	home = int64(100)
	away = int64(200)

	starP1 = int64(1)
	starP2 = int64(2)
	benchP = int64(3)

	awayP1 = int64(11)
)

func pbp(num, period int, clock string, eventType models.EventType, teamID int64, playerID *int64, made *bool, attrs map[string]any) *models.PBPEvent {
	return &models.PBPEvent{
		EventNumber: num, Period: period, Clock: clock, EventType: eventType,
		TeamID: teamID, PlayerID: playerID, Success: made, Attributes: attrs,
	}
}

func TestReconstructSegments_SubstitutionClosesSegmentAndSwapsLineup(t *testing.T) {
	events := []*models.PBPEvent{
		pbp(1, 1, "10:00", models.EventPeriodStart, home, nil, nil, nil),
		pbp(2, 1, "8:00", models.EventShot, home, &starP1, boolPtr(true), map[string]any{"points": 2}),
		pbp(3, 1, "6:00", models.EventSubstitution, home, nil, nil, map[string]any{
			"player_in_id": float64(benchP), "player_out_id": float64(starP1),
		}),
		pbp(4, 1, "4:00", models.EventShot, home, &benchP, boolPtr(true), map[string]any{"points": 2}),
	}

	segments := reconstructSegments(events, home, away, []int64{starP1, starP2}, []int64{awayP1}, DropIndeterminate)

	assert := assert.New(t)
	if assert.Len(segments, 2) {
		assert.True(segments[0].HomeOnCourt[starP1])
		assert.Equal(2, segments[0].HomePoints)
		assert.False(segments[1].HomeOnCourt[starP1])
		assert.True(segments[1].HomeOnCourt[benchP])
		assert.Equal(2, segments[1].HomePoints)
	}
}

func TestReconstructSegments_DropIndeterminateKeepsLineupOnPartialSub(t *testing.T) {
	events := []*models.PBPEvent{
		pbp(1, 1, "10:00", models.EventShot, home, &starP1, boolPtr(true), map[string]any{"points": 2}),
		pbp(2, 1, "8:00", models.EventSubstitution, home, nil, nil, map[string]any{"player_in_id": float64(benchP)}),
		pbp(3, 1, "6:00", models.EventShot, home, &starP1, boolPtr(true), map[string]any{"points": 2}),
	}

	segments := reconstructSegments(events, home, away, []int64{starP1}, nil, DropIndeterminate)

	for _, seg := range segments {
		assert.True(t, seg.HomeOnCourt[starP1], "indeterminate substitution must not mutate the lineup")
		assert.False(t, seg.HomeOnCourt[benchP])
	}
}

func TestReconstructSegments_DegradeAccuracyAppliesKnownHalf(t *testing.T) {
	events := []*models.PBPEvent{
		pbp(1, 1, "10:00", models.EventShot, home, &starP1, boolPtr(true), map[string]any{"points": 2}),
		pbp(2, 1, "8:00", models.EventSubstitution, home, nil, nil, map[string]any{"player_in_id": float64(benchP)}),
		pbp(3, 1, "6:00", models.EventShot, home, &benchP, boolPtr(true), map[string]any{"points": 2}),
	}

	segments := reconstructSegments(events, home, away, []int64{starP1}, nil, DegradeAccuracy)

	last := segments[len(segments)-1]
	assert.True(t, last.HomeOnCourt[benchP])
}

func TestOnOffForPlayer(t *testing.T) {
	segments := []segment{
		{Seconds: 60, HomePoints: 4, AwayPoints: 2, HomeOnCourt: map[int64]bool{starP1: true}},
		{Seconds: 30, HomePoints: 1, AwayPoints: 3, HomeOnCourt: map[int64]bool{starP2: true}},
	}

	split := onOffForPlayer(segments, starP1, home, home)

	assert.Equal(t, 60, split.OnSeconds)
	assert.Equal(t, 30, split.OffSeconds)
	assert.Equal(t, 4, split.OnTeamPoints)
	assert.Equal(t, 2, split.OnOpponentPoints)
	assert.Equal(t, 2, split.OnPlusMinus())
	assert.Equal(t, 1, split.OffTeamPoints)
	assert.Equal(t, 3, split.OffOpponentPoints)
	assert.Equal(t, -2, split.OffPlusMinus())
}

func TestBestLineups_SortedByPlusMinusDescendingThenDeterministicTieBreak(t *testing.T) {
	segments := []segment{
		{Seconds: 300, HomePoints: 10, AwayPoints: 4, HomeOnCourt: toSet([]int64{1, 2, 3, 4, 5})},
		{Seconds: 200, HomePoints: 2, AwayPoints: 10, HomeOnCourt: toSet([]int64{1, 2, 3, 4, 6})},
	}

	out := bestLineups(segments, home, home, 5, 0)

	if assert.Len(t, out, 2) {
		assert.Greater(t, out[0].PlusMinus(), out[1].PlusMinus())
	}
}

func TestBestLineups_DiscardsBelowMinMinutes(t *testing.T) {
	segments := []segment{
		{Seconds: 30, HomePoints: 2, AwayPoints: 0, HomeOnCourt: toSet([]int64{1, 2})},
	}

	out := bestLineups(segments, home, home, 2, 60)

	assert.Empty(t, out)
}

func TestCombinations_SizeTwoFromThree(t *testing.T) {
	out := combinations([]int64{1, 2, 3}, 2)
	assert.Len(t, out, 3)
}
