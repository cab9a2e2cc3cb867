package sync

import (
	"hoopsync/internal/adapter"
	"hoopsync/internal/models"
)

// mapTeam converts a provider team into its canonical shape. Resolution
// (external-id/name matching, external_ids union) is the resolver's job;
// the mapper only translates field shapes.
func mapTeam(raw adapter.RawTeam) *models.Team {
	return &models.Team{
		Name:      raw.Name,
		ShortName: raw.ShortName,
		City:      raw.City,
		Country:   raw.Country,
	}
}

func mapPlayer(source string, raw adapter.RawPlayer) (*models.Player, error) {
	p := &models.Player{
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
	}
	if raw.Nationality != "" {
		n := raw.Nationality
		p.Nationality = &n
	}
	if raw.HeightCM > 0 {
		h := raw.HeightCM
		p.HeightCM = &h
	}
	if raw.BirthDate != "" {
		t, err := models.ParseDate(raw.BirthDate, source, "birth_date")
		if err != nil {
			return nil, err
		}
		p.BirthDate = &t
	}
	if raw.Position != "" {
		positions, err := models.NormalizePosition(raw.Position, source)
		if err != nil {
			return nil, err
		}
		p.Positions = positions
	}
	return p, nil
}

func mapPlayerLine(gameID, playerID, teamID int64, raw adapter.RawPlayerLine) (*models.PlayerGameStats, error) {
	secs, err := models.ParseMinutesSeconds(raw.Minutes)
	if err != nil {
		return nil, err
	}
	s := &models.PlayerGameStats{
		GameID:         gameID,
		PlayerID:       playerID,
		TeamID:         teamID,
		MinutesSeconds: secs,
		IsStarter:      raw.IsStarter,
		Points:         raw.Points,
		FGM:            raw.FGM,
		FGA:            raw.FGA,
		TwoPM:          raw.TwoPM,
		TwoPA:          raw.TwoPA,
		ThreePM:        raw.ThreePM,
		ThreePA:        raw.ThreePA,
		FTM:            raw.FTM,
		FTA:            raw.FTA,
		OReb:           raw.OReb,
		DReb:           raw.DReb,
		TReb:           raw.TReb,
		Ast:            raw.Ast,
		Tov:            raw.Tov,
		Stl:            raw.Stl,
		Blk:            raw.Blk,
		PF:             raw.PF,
		PlusMinus:      raw.PlusMinus,
		Extra:          raw.Extra,
	}
	s.Efficiency = (s.Points + s.TReb + s.Ast + s.Stl + s.Blk) -
		((s.FGA - s.FGM) + (s.FTA - s.FTM) + s.Tov)
	return s, nil
}

func mapTeamLine(gameID, teamID int64, raw adapter.RawTeamLine) *models.TeamGameStats {
	return &models.TeamGameStats{
		GameID:          gameID,
		TeamID:          teamID,
		Points:          raw.Points,
		FGM:             raw.FGM,
		FGA:             raw.FGA,
		TwoPM:           raw.TwoPM,
		TwoPA:           raw.TwoPA,
		ThreePM:         raw.ThreePM,
		ThreePA:         raw.ThreePA,
		FTM:             raw.FTM,
		FTA:             raw.FTA,
		OReb:            raw.OReb,
		DReb:            raw.DReb,
		TReb:            raw.TReb,
		Ast:             raw.Ast,
		Tov:             raw.Tov,
		Stl:             raw.Stl,
		Blk:             raw.Blk,
		PF:              raw.PF,
		FastBreakPoints: raw.FastBreakPoints,
		PointsInPaint:   raw.PointsInPaint,
		SecondChancePts: raw.SecondChancePts,
		BenchPoints:     raw.BenchPoints,
		BiggestLead:     raw.BiggestLead,
		TimeLeadingSec:  raw.TimeLeadingSec,
		Extra:           raw.Extra,
	}
}

func mapPBPEvent(source string, gameID int64, raw adapter.RawPBPEvent, playerID *int64, teamID int64) (*models.PBPEvent, error) {
	et, err := models.NormalizeEventType(raw.EventType, source)
	if err != nil {
		return nil, err
	}
	ev := &models.PBPEvent{
		GameID:      gameID,
		EventNumber: raw.EventNumber,
		Period:      raw.Period,
		Clock:       raw.Clock,
		EventType:   et,
		PlayerID:    playerID,
		TeamID:      teamID,
		Success:     raw.Success,
		CoordX:      raw.CoordX,
		CoordY:      raw.CoordY,
		Attributes:  raw.Attributes,
	}
	if raw.EventSubtype != "" {
		ev.EventSubtype = &raw.EventSubtype
	}
	return ev, nil
}
