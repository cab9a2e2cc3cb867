// Package aggregator recomputes PlayerSeasonStats from the PlayerGameStats
// rows persisted by a sync run (spec.md §4.6). Aggregation is derived, never
// authoritative: every run recomputes totals and rates from scratch off the
// box-score table, so it is safe to call repeatedly and in any order across
// games.
package aggregator

import (
	"context"
	"time"

	"hoopsync/internal/models"
	"hoopsync/internal/repository"
)

// Aggregator recomputes season aggregates for one or more
// (player, team, season) tuples.
type Aggregator struct {
	db *repository.DB
}

func New(db *repository.DB) *Aggregator {
	return &Aggregator{db: db}
}

// RecalculateForPlayer recomputes the single (playerID, teamID, seasonID)
// row, the implicit trigger fired after sync_game for each tuple touched
// by the game, and the explicit `recalculate_for_player` operation.
func (a *Aggregator) RecalculateForPlayer(ctx context.Context, playerID, teamID, seasonID int64) error {
	games, err := a.db.PlayerGameStats.ListByPlayerTeamAndSeason(ctx, playerID, teamID, seasonID)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		return nil
	}
	row := compute(playerID, teamID, seasonID, games)
	return a.db.PlayerSeasonStats.Upsert(ctx, row)
}

// RecalculateForSeason recomputes every (player, team) tuple with a box
// score in the season, the explicit `recalculate_for_season` operation.
func (a *Aggregator) RecalculateForSeason(ctx context.Context, seasonID int64) error {
	tuples, err := a.db.PlayerGameStats.DistinctTuplesBySeason(ctx, seasonID)
	if err != nil {
		return err
	}
	for _, t := range tuples {
		if err := a.RecalculateForPlayer(ctx, t.PlayerID, t.TeamID, t.SeasonID); err != nil {
			return err
		}
	}
	return nil
}

// compute applies the formulas in spec.md §4.6 over one player's games for
// one team within one season.
func compute(playerID, teamID, seasonID int64, games []*models.PlayerGameStats) *models.PlayerSeasonStats {
	s := &models.PlayerSeasonStats{
		PlayerID: playerID,
		TeamID:   teamID,
		SeasonID: seasonID,
	}
	for _, g := range games {
		s.GamesPlayed++
		if g.IsStarter {
			s.GamesStarted++
		}
		s.TotalPoints += g.Points
		s.TotalFGM += g.FGM
		s.TotalFGA += g.FGA
		s.TotalTwoPM += g.TwoPM
		s.TotalTwoPA += g.TwoPA
		s.TotalThreePM += g.ThreePM
		s.TotalThreePA += g.ThreePA
		s.TotalFTM += g.FTM
		s.TotalFTA += g.FTA
		s.TotalOReb += g.OReb
		s.TotalDReb += g.DReb
		s.TotalTReb += g.TReb
		s.TotalAst += g.Ast
		s.TotalTov += g.Tov
		s.TotalStl += g.Stl
		s.TotalBlk += g.Blk
		s.TotalPF += g.PF
		s.TotalMinutesSeconds += g.MinutesSeconds
	}

	n := float64(s.GamesPlayed)
	s.AvgPoints = float64(s.TotalPoints) / n
	s.AvgReb = float64(s.TotalTReb) / n
	s.AvgAst = float64(s.TotalAst) / n
	s.AvgStl = float64(s.TotalStl) / n
	s.AvgBlk = float64(s.TotalBlk) / n
	s.AvgMinutes = float64(s.TotalMinutesSeconds) / 60 / n

	s.FGPct = ratio(s.TotalFGM, s.TotalFGA)
	s.TwoPPct = ratio(s.TotalTwoPM, s.TotalTwoPA)
	s.ThreePPct = ratio(s.TotalThreePM, s.TotalThreePA)
	s.FTPct = ratio(s.TotalFTM, s.TotalFTA)

	if s.TotalFGA > 0 {
		tsa := 2 * (float64(s.TotalFGA) + 0.44*float64(s.TotalFTA))
		ts := float64(s.TotalPoints) / tsa
		s.TSPct = &ts
		efg := (float64(s.TotalFGM) + 0.5*float64(s.TotalThreePM)) / float64(s.TotalFGA)
		s.EFGPct = &efg
	}

	switch {
	case s.TotalTov == 0 && s.TotalAst == 0:
		s.ASTToRatio = 0.0
	case s.TotalTov == 0:
		s.ASTToRatio = float64(s.TotalAst)
	default:
		s.ASTToRatio = float64(s.TotalAst) / float64(s.TotalTov)
	}

	s.LastCalculated = time.Now()
	return s
}

// ratio returns made/attempted, or nil if attempted is zero, per spec.md
// §4.6 ("if attempted = 0, percentage is null").
func ratio(made, attempted int) *float64 {
	if attempted == 0 {
		return nil
	}
	v := float64(made) / float64(attempted)
	return &v
}
