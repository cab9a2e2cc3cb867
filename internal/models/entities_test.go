package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validStats() *PlayerGameStats {
	return &PlayerGameStats{
		FGM: 8, FGA: 15, TwoPM: 5, TwoPA: 9, ThreePM: 3, ThreePA: 6,
		FTM: 4, FTA: 5, OReb: 2, DReb: 6, TReb: 8, Points: 2*5 + 3*3 + 4,
	}
}

func TestPlayerGameStatsValidate(t *testing.T) {
	s := validStats()
	assert.NoError(t, s.Validate())
}

func TestPlayerGameStatsValidateRejectsBadSplits(t *testing.T) {
	s := validStats()
	s.ThreePM = 4 // now 2pm+3pm=9 != fgm=8
	assert.Error(t, s.Validate())
}

func TestPlayerGameStatsValidateRejectsBadRebounds(t *testing.T) {
	s := validStats()
	s.TReb = 9
	assert.Error(t, s.Validate())
}

func TestPlayerGameStatsValidateRejectsBadPoints(t *testing.T) {
	s := validStats()
	s.Points = 99
	assert.Error(t, s.Validate())
}

func TestPlayerGameStatsValidateRejectsFGMExceedsFGA(t *testing.T) {
	s := validStats()
	s.FGM = 20
	assert.Error(t, s.Validate())
}

func TestGameValidateRejectsSameTeams(t *testing.T) {
	g := &Game{HomeTeamID: 1, AwayTeamID: 1, Status: GameScheduled}
	assert.Error(t, g.Validate())
}

func TestGameValidateRequiresScoresWhenFinal(t *testing.T) {
	g := &Game{HomeTeamID: 1, AwayTeamID: 2, Status: GameFinal}
	assert.Error(t, g.Validate())

	home, away := 90, 88
	g.HomeScore, g.AwayScore = &home, &away
	assert.NoError(t, g.Validate())
}

func TestGameValidateForbidsScoresWhenScheduled(t *testing.T) {
	home := 0
	g := &Game{HomeTeamID: 1, AwayTeamID: 2, Status: GameScheduled, HomeScore: &home}
	assert.Error(t, g.Validate())
}

func TestSyncLogValidateCompletedAtInvariant(t *testing.T) {
	l := &SyncLog{Status: SyncStarted}
	assert.NoError(t, l.Validate())

	l.Status = SyncCompleted
	assert.Error(t, l.Validate())
}

func TestPlayerPositionDerivesFirstEntry(t *testing.T) {
	p := &Player{Positions: []Position{ShootingGuard, SmallForward}}
	assert.Equal(t, ShootingGuard, p.Position())

	empty := &Player{}
	assert.Equal(t, Position(""), empty.Position())
}
