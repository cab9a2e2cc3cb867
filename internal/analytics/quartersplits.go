package analytics

import (
	"context"
	"sort"
	"strconv"

	"hoopsync/internal/models"
)

// PeriodStats is one player's counting-stat bundle for a single period, or
// the merged "OT" bundle covering every period past regulation.
type PeriodStats struct {
	Label            string
	Points           int
	Rebounds         int
	Assists          int
	Steals           int
	Blocks           int
	Turnovers        int
	Fouls            int
	FGM, FGA         int
	ThreePM, ThreePA int
	FTM, FTA         int
}

// QuarterSplits implements spec.md §4.7's "quarter splits": bucket playerID's
// counting events by period, merging anything past regulation into "OT".
func (e *Engine) QuarterSplits(ctx context.Context, gameID, playerID int64) ([]PeriodStats, error) {
	events, err := e.db.PBP.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return quarterSplits(events, playerID), nil
}

func quarterSplits(events []*models.PBPEvent, playerID int64) []PeriodStats {
	byLabel := map[string]*PeriodStats{}
	for _, ev := range events {
		if ev.PlayerID == nil || *ev.PlayerID != playerID {
			continue
		}
		label := periodLabel(ev.Period)
		ps, ok := byLabel[label]
		if !ok {
			ps = &PeriodStats{Label: label}
			byLabel[label] = ps
		}
		applyCountingEvent(ps, ev)
	}

	out := make([]PeriodStats, 0, len(byLabel))
	for _, ps := range byLabel {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		return periodRank(out[i].Label) < periodRank(out[j].Label)
	})
	return out
}

func applyCountingEvent(ps *PeriodStats, ev *models.PBPEvent) {
	made := ev.Success != nil && *ev.Success
	switch ev.EventType {
	case models.EventShot:
		pts := eventPoints(ev)
		is3 := pts == 3
		ps.FGA++
		if is3 {
			ps.ThreePA++
		}
		if made {
			ps.FGM++
			ps.Points += pts
			if is3 {
				ps.ThreePM++
			}
		}
	case models.EventFreeThrow:
		ps.FTA++
		if made {
			ps.FTM++
			ps.Points++
		}
	case models.EventRebound:
		ps.Rebounds++
	case models.EventAssist:
		ps.Assists++
	case models.EventSteal:
		ps.Steals++
	case models.EventBlock:
		ps.Blocks++
	case models.EventTurnover:
		ps.Turnovers++
	case models.EventFoul:
		ps.Fouls++
	}
}

func periodLabel(period int) string {
	if period > regulationPeriods {
		return "OT"
	}
	return strconv.Itoa(period)
}

func periodRank(label string) int {
	if label == "OT" {
		return regulationPeriods + 1
	}
	n, _ := strconv.Atoi(label)
	return n
}
