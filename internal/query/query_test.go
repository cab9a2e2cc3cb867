package query

import (
	"testing"

	"hoopsync/internal/models"

	"github.com/stretchr/testify/assert"
)

func season(playerID int64, points, treb, ast, stl, blk, fgm, fga, ftm, fta, tov, games int) *models.PlayerSeasonStats {
	return &models.PlayerSeasonStats{
		PlayerID: playerID, TeamID: 1, GamesPlayed: games,
		TotalPoints: points, TotalTReb: treb, TotalAst: ast, TotalStl: stl, TotalBlk: blk,
		TotalFGM: fgm, TotalFGA: fga, TotalFTM: ftm, TotalFTA: fta, TotalTov: tov,
	}
}

func TestLeaderValue_StoredCategories(t *testing.T) {
	pct := 0.5
	s := &models.PlayerSeasonStats{AvgPoints: 20, AvgReb: 8, AvgAst: 5, AvgStl: 2, AvgBlk: 1, AvgMinutes: 30, FGPct: &pct}

	assert.Equal(t, 20.0, leaderValue("points", s))
	assert.Equal(t, 8.0, leaderValue("rebounds", s))
	assert.Equal(t, 5.0, leaderValue("assists", s))
	assert.Equal(t, 2.0, leaderValue("steals", s))
	assert.Equal(t, 1.0, leaderValue("blocks", s))
	assert.Equal(t, 30.0, leaderValue("minutes", s))
	assert.Equal(t, 0.5, leaderValue("fg_pct", s))
}

func TestLeaderValue_NilPercentageDereferencesToZero(t *testing.T) {
	s := &models.PlayerSeasonStats{}
	assert.Equal(t, 0.0, leaderValue("fg_pct", s))
	assert.Equal(t, 0.0, leaderValue("3pt_pct", s))
	assert.Equal(t, 0.0, leaderValue("ft_pct", s))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, clampLimit(0))
	assert.Equal(t, defaultLimit, clampLimit(-5))
	assert.Equal(t, maxLimit, clampLimit(10_000))
	assert.Equal(t, 50, clampLimit(50))
}

func TestClampOffset(t *testing.T) {
	assert.Equal(t, 0, clampOffset(-10))
	assert.Equal(t, 15, clampOffset(15))
}

// efficiencyRank repeats the min-games filter and per-game efficiency formula
// efficiencyLeaders uses, without requiring a database round trip. It does
// not sort the rows or apply limit.
func efficiencyRank(rows []*models.PlayerSeasonStats, minGames, limit int) []LeaderRow {
	type candidate struct {
		row   *models.PlayerSeasonStats
		value float64
	}
	var candidates []candidate
	for _, r := range rows {
		if r.GamesPlayed < minGames {
			continue
		}
		totalEff := (r.TotalPoints + r.TotalTReb + r.TotalAst + r.TotalStl + r.TotalBlk) -
			((r.TotalFGA - r.TotalFGM) + (r.TotalFTA - r.TotalFTM) + r.TotalTov)
		candidates = append(candidates, candidate{row: r, value: float64(totalEff) / float64(r.GamesPlayed)})
	}
	out := make([]LeaderRow, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, LeaderRow{PlayerID: c.row.PlayerID, TeamID: c.row.TeamID, Value: c.value})
	}
	return out
}

func TestEfficiencyLeaders_FormulaFromTotals(t *testing.T) {
	// points+treb+ast+stl+blk=40, missed fg=2, missed ft=0, tov=3 -> eff=35, /2 games = 17.5
	rows := []*models.PlayerSeasonStats{
		season(1, 20, 10, 5, 3, 2, 8, 10, 0, 0, 3, 2),
	}
	out := efficiencyRank(rows, 1, 10)
	if assert.Len(t, out, 1) {
		assert.InDelta(t, 17.5, out[0].Value, 1e-9)
	}
}

func TestEfficiencyLeaders_MinGamesFilter(t *testing.T) {
	rows := []*models.PlayerSeasonStats{
		season(1, 20, 10, 5, 3, 2, 8, 10, 0, 0, 3, 1),
	}
	out := efficiencyRank(rows, 5, 10)
	assert.Empty(t, out)
}
