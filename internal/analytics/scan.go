package analytics

import (
	"strings"

	"hoopsync/internal/models"
)

// scoredEvent pairs a PBP event with the running score and clock state at
// the moment it occurred. Built by a single forward scan in event_number
// order (spec.md §5's ordering guarantee) — never recomputed per filter.
type scoredEvent struct {
	Event        *models.PBPEvent
	ScoreHome    int
	ScoreAway    int
	ClockSeconds int
}

// scoreEvents walks events in persisted order, accumulating each made
// shot/free-throw toward its team's running total.
func scoreEvents(events []*models.PBPEvent, homeTeamID int64) []scoredEvent {
	var homeScore, awayScore int
	out := make([]scoredEvent, len(events))
	for i, ev := range events {
		if pts := eventPoints(ev); pts > 0 && ev.Success != nil && *ev.Success {
			if ev.TeamID == homeTeamID {
				homeScore += pts
			} else {
				awayScore += pts
			}
		}
		out[i] = scoredEvent{Event: ev, ScoreHome: homeScore, ScoreAway: awayScore, ClockSeconds: ev.ClockToSeconds()}
	}
	return out
}

// eventPoints derives the point value of a scoring event. Providers that
// report it directly set attributes.points; otherwise a 3PT shot is
// inferred from the event subtype, defaulting to 2.
func eventPoints(ev *models.PBPEvent) int {
	switch ev.EventType {
	case models.EventFreeThrow:
		return 1
	case models.EventShot:
		if v, ok := attrInt(ev.Attributes, "points"); ok {
			return v
		}
		if ev.EventSubtype != nil && containsThree(*ev.EventSubtype) {
			return 3
		}
		return 2
	default:
		return 0
	}
}

func containsThree(subtype string) bool {
	return strings.Contains(subtype, "3")
}

func attrInt(attrs map[string]any, key string) (int, bool) {
	v, ok := attrs[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func attrInt64(attrs map[string]any, key string) (int64, bool) {
	v, ok := attrs[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func attrBool(attrs map[string]any, key string) (bool, bool) {
	v, ok := attrs[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func attrString(attrs map[string]any, key string) (string, bool) {
	v, ok := attrs[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
