package analytics

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"hoopsync/internal/models"
)

// segment is a span of game time with a fixed on-court lineup for both
// teams, produced by reconstructSegments. Every on/off and lineup
// computation folds over these, never over raw events directly.
type segment struct {
	Seconds     int
	HomePoints  int
	AwayPoints  int
	HomeOnCourt map[int64]bool
	AwayOnCourt map[int64]bool
}

// OnOffSplit is the accumulated on/off result for one player (spec.md
// §4.7's "on/off-court analysis").
type OnOffSplit struct {
	PlayerID          int64
	OnSeconds         int
	OffSeconds        int
	OnTeamPoints      int
	OnOpponentPoints  int
	OffTeamPoints     int
	OffOpponentPoints int
}

func (s OnOffSplit) OnPlusMinus() int  { return s.OnTeamPoints - s.OnOpponentPoints }
func (s OnOffSplit) OffPlusMinus() int { return s.OffTeamPoints - s.OffOpponentPoints }

// LineupResult is the accumulated result for one observed combination of
// players (spec.md §4.7's "lineup analysis").
type LineupResult struct {
	PlayerIDs      []int64
	Seconds        int
	TeamPoints     int
	OpponentPoints int
}

func (r LineupResult) PlusMinus() int { return r.TeamPoints - r.OpponentPoints }

// OnOffSplit reconstructs on-court segments for gameID and returns the
// on/off split for playerID, who plays for teamID.
func (e *Engine) OnOffSplit(ctx context.Context, gameID, playerID, teamID int64) (OnOffSplit, error) {
	game, events, homeStarters, awayStarters, err := e.loadGameForSegments(ctx, gameID)
	if err != nil {
		return OnOffSplit{}, err
	}
	segments := reconstructSegments(events, game.HomeTeamID, game.AwayTeamID, homeStarters, awayStarters, e.subPolicy)
	return onOffForPlayer(segments, playerID, teamID, game.HomeTeamID), nil
}

// GetBestLineups implements get_best_lineups(team, game, size, min_minutes).
func (e *Engine) GetBestLineups(ctx context.Context, gameID, teamID int64, size, minMinutes int) ([]LineupResult, error) {
	game, events, homeStarters, awayStarters, err := e.loadGameForSegments(ctx, gameID)
	if err != nil {
		return nil, err
	}
	segments := reconstructSegments(events, game.HomeTeamID, game.AwayTeamID, homeStarters, awayStarters, e.subPolicy)
	return bestLineups(segments, teamID, game.HomeTeamID, size, minMinutes*60), nil
}

func (e *Engine) loadGameForSegments(ctx context.Context, gameID int64) (*models.Game, []*models.PBPEvent, []int64, []int64, error) {
	game, err := e.db.Games.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	events, err := e.db.PBP.ListByGame(ctx, gameID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	box, err := e.db.PlayerGameStats.ListByGame(ctx, gameID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	homeStarters, awayStarters := startersByTeam(box, game.HomeTeamID, game.AwayTeamID)
	return game, events, homeStarters, awayStarters, nil
}

func startersByTeam(stats []*models.PlayerGameStats, homeTeamID, awayTeamID int64) (home, away []int64) {
	for _, s := range stats {
		if !s.IsStarter {
			continue
		}
		switch s.TeamID {
		case homeTeamID:
			home = append(home, s.PlayerID)
		case awayTeamID:
			away = append(away, s.PlayerID)
		}
	}
	return home, away
}

// reconstructSegments scans events in persisted order, closing a segment
// every time the period changes or a substitution fires, so every segment
// has a fixed five-per-team lineup and a well-defined elapsed time.
func reconstructSegments(events []*models.PBPEvent, homeTeamID, awayTeamID int64, homeStarters, awayStarters []int64, policy SubstitutionPolicy) []segment {
	homeOn := toSet(homeStarters)
	awayOn := toSet(awayStarters)

	var segments []segment
	lastPeriod := -1
	lastClock := 0
	var segSeconds, segHome, segAway int

	flush := func() {
		if segSeconds == 0 && segHome == 0 && segAway == 0 {
			return
		}
		segments = append(segments, segment{
			Seconds:     segSeconds,
			HomePoints:  segHome,
			AwayPoints:  segAway,
			HomeOnCourt: cloneSet(homeOn),
			AwayOnCourt: cloneSet(awayOn),
		})
		segSeconds, segHome, segAway = 0, 0, 0
	}

	for _, ev := range events {
		clock := ev.ClockToSeconds()
		if ev.Period != lastPeriod {
			flush()
			lastPeriod = ev.Period
			lastClock = clock
		} else {
			if elapsed := lastClock - clock; elapsed > 0 {
				segSeconds += elapsed
			}
			lastClock = clock
		}

		if pts := eventPoints(ev); pts > 0 && ev.Success != nil && *ev.Success {
			if ev.TeamID == homeTeamID {
				segHome += pts
			} else {
				segAway += pts
			}
		}

		if ev.EventType == models.EventSubstitution {
			flush()
			applySubstitution(ev, homeTeamID, homeOn, awayOn, policy)
		}
	}
	flush()
	return segments
}

func applySubstitution(ev *models.PBPEvent, homeTeamID int64, homeOn, awayOn map[int64]bool, policy SubstitutionPolicy) {
	inID, inOK := attrInt64(ev.Attributes, "player_in_id")
	outID, outOK := attrInt64(ev.Attributes, "player_out_id")
	if policy == DropIndeterminate && (!inOK || !outOK) {
		return
	}
	set := awayOn
	if ev.TeamID == homeTeamID {
		set = homeOn
	}
	if outOK {
		delete(set, outID)
	}
	if inOK {
		set[inID] = true
	}
}

func onOffForPlayer(segments []segment, playerID, teamID, homeTeamID int64) OnOffSplit {
	s := OnOffSplit{PlayerID: playerID}
	for _, seg := range segments {
		onCourt, teamPts, oppPts := seg.HomeOnCourt, seg.HomePoints, seg.AwayPoints
		if teamID != homeTeamID {
			onCourt, teamPts, oppPts = seg.AwayOnCourt, seg.AwayPoints, seg.HomePoints
		}
		if onCourt[playerID] {
			s.OnSeconds += seg.Seconds
			s.OnTeamPoints += teamPts
			s.OnOpponentPoints += oppPts
		} else {
			s.OffSeconds += seg.Seconds
			s.OffTeamPoints += teamPts
			s.OffOpponentPoints += oppPts
		}
	}
	return s
}

// bestLineups enumerates every distinct size-combination observed on
// teamID's on-court sets across segments, discards any under
// minSecondsThreshold, and sorts by plus-minus descending with a
// deterministic tie-break on the combination itself.
func bestLineups(segments []segment, teamID, homeTeamID int64, size, minSecondsThreshold int) []LineupResult {
	totals := map[string]*LineupResult{}
	for _, seg := range segments {
		onCourt, teamPts, oppPts := seg.HomeOnCourt, seg.HomePoints, seg.AwayPoints
		if teamID != homeTeamID {
			onCourt, teamPts, oppPts = seg.AwayOnCourt, seg.AwayPoints, seg.HomePoints
		}
		players := make([]int64, 0, len(onCourt))
		for p := range onCourt {
			players = append(players, p)
		}
		sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })
		for _, combo := range combinations(players, size) {
			key := comboKey(combo)
			r, ok := totals[key]
			if !ok {
				r = &LineupResult{PlayerIDs: combo}
				totals[key] = r
			}
			r.Seconds += seg.Seconds
			r.TeamPoints += teamPts
			r.OpponentPoints += oppPts
		}
	}

	out := make([]LineupResult, 0, len(totals))
	for _, r := range totals {
		if r.Seconds < minSecondsThreshold {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if pi, pj := out[i].PlusMinus(), out[j].PlusMinus(); pi != pj {
			return pi > pj
		}
		return comboKey(out[i].PlayerIDs) < comboKey(out[j].PlayerIDs)
	})
	return out
}

func combinations(items []int64, size int) [][]int64 {
	if size <= 0 || size > len(items) {
		return nil
	}
	var out [][]int64
	var pick func(start int, chosen []int64)
	pick = func(start int, chosen []int64) {
		if len(chosen) == size {
			combo := make([]int64, size)
			copy(combo, chosen)
			out = append(out, combo)
			return
		}
		for i := start; i < len(items); i++ {
			pick(i+1, append(chosen, items[i]))
		}
	}
	pick(0, nil)
	return out
}

func comboKey(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func cloneSet(set map[int64]bool) map[int64]bool {
	out := make(map[int64]bool, len(set))
	for k, v := range set {
		out[k] = v
	}
	return out
}
