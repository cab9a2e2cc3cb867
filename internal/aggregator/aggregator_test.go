package aggregator

import (
	"testing"

	"hoopsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(points, fgm, fga, threePM, ftm, fta, treb, ast, tov, minutes int, starter bool) *models.PlayerGameStats {
	return &models.PlayerGameStats{
		Points: points, FGM: fgm, FGA: fga, ThreePM: threePM,
		FTM: ftm, FTA: fta, TReb: treb, Ast: ast, Tov: tov,
		MinutesSeconds: minutes * 60, IsStarter: starter,
	}
}

func TestCompute_Averages(t *testing.T) {
	games := []*models.PlayerGameStats{
		game(20, 8, 16, 2, 2, 2, 10, 5, 2, 30, true),
		game(10, 4, 10, 0, 2, 2, 6, 3, 1, 20, false),
	}

	s := compute(1, 2, 3, games)

	assert.Equal(t, 2, s.GamesPlayed)
	assert.Equal(t, 1, s.GamesStarted)
	assert.Equal(t, 30, s.TotalPoints)
	assert.Equal(t, 15.0, s.AvgPoints)
	assert.Equal(t, 8.0, s.AvgReb)
	assert.Equal(t, 25.0, s.AvgMinutes)
}

func TestCompute_PercentagesNullWhenAttemptsZero(t *testing.T) {
	games := []*models.PlayerGameStats{
		game(0, 0, 0, 0, 0, 0, 0, 0, 0, 5, false),
	}

	s := compute(1, 2, 3, games)

	assert.Nil(t, s.FGPct)
	assert.Nil(t, s.ThreePPct)
	assert.Nil(t, s.FTPct)
	assert.Nil(t, s.TSPct, "TS%% requires fga > 0")
	assert.Nil(t, s.EFGPct, "eFG%% requires fga > 0")
}

func TestCompute_ShootingPercentages(t *testing.T) {
	games := []*models.PlayerGameStats{
		game(20, 8, 16, 2, 2, 4, 5, 2, 1, 30, true),
	}

	s := compute(1, 2, 3, games)

	require.NotNil(t, s.FGPct)
	assert.Equal(t, 0.5, *s.FGPct)
	require.NotNil(t, s.FTPct)
	assert.Equal(t, 0.5, *s.FTPct)
	require.NotNil(t, s.EFGPct)
	assert.InDelta(t, (8.0+0.5*2.0)/16.0, *s.EFGPct, 1e-9)
	require.NotNil(t, s.TSPct)
	assert.InDelta(t, 20.0/(2*(16.0+0.44*4.0)), *s.TSPct, 1e-9)
}

func TestCompute_AssistToTurnoverRatio(t *testing.T) {
	noTurnoversNoAssists := compute(1, 2, 3, []*models.PlayerGameStats{game(0, 0, 0, 0, 0, 0, 0, 0, 0, 10, false)})
	assert.Equal(t, 0.0, noTurnoversNoAssists.ASTToRatio)

	noTurnovers := compute(1, 2, 3, []*models.PlayerGameStats{game(0, 0, 0, 0, 0, 0, 0, 6, 0, 10, false)})
	assert.Equal(t, 6.0, noTurnovers.ASTToRatio)

	withTurnovers := compute(1, 2, 3, []*models.PlayerGameStats{game(0, 0, 0, 0, 0, 0, 0, 6, 3, 10, false)})
	assert.Equal(t, 2.0, withTurnovers.ASTToRatio)
}

func TestCompute_SingleGame(t *testing.T) {
	// compute itself assumes a non-empty slice; RecalculateForPlayer is the
	// one that short-circuits on zero games to avoid a divide-by-zero here.
	games := []*models.PlayerGameStats{game(10, 4, 8, 0, 2, 2, 4, 2, 1, 20, true)}
	s := compute(1, 2, 3, games)
	assert.Equal(t, 1, s.GamesPlayed)
}
