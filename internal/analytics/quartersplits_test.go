package analytics

import (
	"testing"

	"hoopsync/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestQuarterSplits_BucketsByPeriodAndMergesOvertime(t *testing.T) {
	player := int64(7)
	other := int64(8)
	events := []*models.PBPEvent{
		pbp(1, 1, "10:00", models.EventShot, home, &player, boolPtr(true), map[string]any{"points": 2}),
		pbp(2, 4, "1:00", models.EventShot, home, &player, boolPtr(false), nil),
		pbp(3, 5, "3:00", models.EventShot, home, &player, boolPtr(true), map[string]any{"points": 3}),
		pbp(4, 1, "9:00", models.EventRebound, home, &other, nil, nil), // different player, ignored
	}

	splits := quarterSplits(events, player)

	if assert.Len(t, splits, 3) {
		assert.Equal(t, "1", splits[0].Label)
		assert.Equal(t, 2, splits[0].Points)
		assert.Equal(t, "4", splits[1].Label)
		assert.Equal(t, 1, splits[1].FGA)
		assert.Equal(t, 0, splits[1].FGM)
		assert.Equal(t, "OT", splits[2].Label)
		assert.Equal(t, 3, splits[2].Points)
		assert.Equal(t, 1, splits[2].ThreePM)
	}
}

func TestQuarterSplits_NoEventsForPlayerYieldsEmpty(t *testing.T) {
	events := []*models.PBPEvent{
		pbp(1, 1, "10:00", models.EventShot, home, nil, boolPtr(true), map[string]any{"points": 2}),
	}

	splits := quarterSplits(events, 999)

	assert.Empty(t, splits)
}

func TestPeriodLabelAndRank(t *testing.T) {
	assert.Equal(t, "1", periodLabel(1))
	assert.Equal(t, "4", periodLabel(4))
	assert.Equal(t, "OT", periodLabel(5))
	assert.Equal(t, "OT", periodLabel(6))

	assert.Less(t, periodRank("1"), periodRank("4"))
	assert.Less(t, periodRank("4"), periodRank("OT"))
}
