package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DoyleJ11/dualstrike/internal/engine"
)

type matchRow struct {
	ID           string                              `gorm:"primaryKey"`
	TeamIDs      []engine.TeamID                     `gorm:"serializer:json;not null"`
	Rosters      map[engine.TeamID][]engine.PlayerID `gorm:"serializer:json"`
	BattingOrder []engine.TeamID                     `gorm:"serializer:json"`
	State        engine.MatchState                   `gorm:"index;not null"`
	CreatedAt    time.Time                           `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time                           `gorm:"index;autoUpdateTime:false"`
}

func (matchRow) TableName() string { return "matches" }

type inningsRow struct {
	ID            string `gorm:"primaryKey"`
	MatchID       string `gorm:"index;not null"`
	TeamID        engine.TeamID
	Idx           int                 `gorm:"not null"` // batting-order position
	State         engine.InningsState `gorm:"not null"`
	TotalRuns     int
	TotalWickets  int
	NoWicketBonus bool
	FinalScore    *int
}

func (inningsRow) TableName() string { return "innings" }

type overRow struct {
	ID            string `gorm:"primaryKey"`
	MatchID       string `gorm:"index;not null"`
	InningsID     string `gorm:"index;not null"`
	OverNumber    int    `gorm:"not null"`
	BowlingTeamID engine.TeamID
	BowlerID      engine.PlayerID
	KeeperID      engine.PlayerID
	IsPowerplay   bool
}

func (overRow) TableName() string { return "overs" }

type ballRow struct {
	ID             string `gorm:"primaryKey"`
	MatchID        string `gorm:"index;not null"`
	OverID         string `gorm:"uniqueIndex:idx_balls_over_ball;not null"`
	BallNumber     int    `gorm:"uniqueIndex:idx_balls_over_ball;not null"`
	Runs           int
	IsWicket       bool
	WicketType     engine.WicketType
	FieldingTeamID engine.TeamID
	IsNoball       bool
	IsWide         bool
	Misconduct     bool
	AutoWicket     bool
	EffectiveRuns  int
}

func (ballRow) TableName() string { return "balls" }

type rankingRow struct {
	MatchID  string        `gorm:"primaryKey"`
	TeamID   engine.TeamID `gorm:"primaryKey"`
	Position int           `gorm:"not null"`
	Rank     int           `gorm:"not null"`
	// Points is the rounded value for queries, PointsExact the fraction.
	Points        decimal.Decimal `gorm:"type:numeric(20,16)"`
	PointsExact   string
	FinalScore    int
	FieldingBonus int
	TotalScore    int
}

func (rankingRow) TableName() string { return "match_rankings" }

type matchRows struct {
	match    matchRow
	innings  []inningsRow
	overs    []overRow
	balls    []ballRow
	rankings []rankingRow
}

func toRows(m engine.Match) matchRows {
	rows := matchRows{
		match: matchRow{
			ID:           m.ID,
			TeamIDs:      m.TeamIDs,
			Rosters:      m.Rosters,
			BattingOrder: m.BattingOrder,
			State:        m.State,
			CreatedAt:    m.CreatedAt,
			UpdatedAt:    m.UpdatedAt,
		},
	}
	for _, in := range m.Innings {
		rows.innings = append(rows.innings, inningsRow{
			ID:            in.ID,
			MatchID:       m.ID,
			TeamID:        in.TeamID,
			Idx:           in.Index,
			State:         in.State,
			TotalRuns:     in.TotalRuns,
			TotalWickets:  in.TotalWickets,
			NoWicketBonus: in.NoWicketBonus,
			FinalScore:    in.FinalScore,
		})
		for _, o := range in.Overs {
			rows.overs = append(rows.overs, overRow{
				ID:            o.ID,
				MatchID:       m.ID,
				InningsID:     in.ID,
				OverNumber:    o.OverNumber,
				BowlingTeamID: o.BowlingTeamID,
				BowlerID:      o.BowlerID,
				KeeperID:      o.KeeperID,
				IsPowerplay:   o.IsPowerplay,
			})
			for _, b := range o.Balls {
				rows.balls = append(rows.balls, ballRow{
					ID:             b.ID,
					MatchID:        m.ID,
					OverID:         o.ID,
					BallNumber:     b.BallNumber,
					Runs:           b.Runs,
					IsWicket:       b.IsWicket,
					WicketType:     b.WicketType,
					FieldingTeamID: b.FieldingTeamID,
					IsNoball:       b.IsNoball,
					IsWide:         b.IsWide,
					Misconduct:     b.Misconduct,
					AutoWicket:     b.AutoWicket,
					EffectiveRuns:  b.EffectiveRuns,
				})
			}
		}
	}
	for pos, r := range m.Rankings {
		rows.rankings = append(rows.rankings, rankingRow{
			MatchID:       m.ID,
			TeamID:        r.TeamID,
			Position:      pos,
			Rank:          r.Rank,
			Points:        r.Points,
			PointsExact:   r.PointsExact,
			FinalScore:    r.FinalScore,
			FieldingBonus: r.FieldingBonus,
			TotalScore:    r.TotalScore,
		})
	}
	return rows
}

// fromRows assembles a match. Child rows must be ordered by innings index,
// over number, ball number and ranking position.
func fromRows(rows matchRows) engine.Match {
	m := engine.Match{
		ID:           rows.match.ID,
		TeamIDs:      rows.match.TeamIDs,
		Rosters:      rows.match.Rosters,
		BattingOrder: rows.match.BattingOrder,
		State:        rows.match.State,
		Innings:      make([]engine.Innings, 0, len(rows.innings)),
		CreatedAt:    rows.match.CreatedAt,
		UpdatedAt:    rows.match.UpdatedAt,
	}
	if m.Rosters == nil {
		m.Rosters = map[engine.TeamID][]engine.PlayerID{}
	}

	ballsByOver := make(map[string][]engine.Ball)
	for _, b := range rows.balls {
		ballsByOver[b.OverID] = append(ballsByOver[b.OverID], engine.Ball{
			ID:             b.ID,
			BallNumber:     b.BallNumber,
			Runs:           b.Runs,
			IsWicket:       b.IsWicket,
			WicketType:     b.WicketType,
			FieldingTeamID: b.FieldingTeamID,
			IsNoball:       b.IsNoball,
			IsWide:         b.IsWide,
			Misconduct:     b.Misconduct,
			AutoWicket:     b.AutoWicket,
			EffectiveRuns:  b.EffectiveRuns,
		})
	}
	oversByInnings := make(map[string][]engine.Over)
	for _, o := range rows.overs {
		balls := ballsByOver[o.ID]
		if balls == nil {
			balls = []engine.Ball{}
		}
		oversByInnings[o.InningsID] = append(oversByInnings[o.InningsID], engine.Over{
			ID:            o.ID,
			OverNumber:    o.OverNumber,
			BowlingTeamID: o.BowlingTeamID,
			BowlerID:      o.BowlerID,
			KeeperID:      o.KeeperID,
			IsPowerplay:   o.IsPowerplay,
			Balls:         balls,
		})
	}
	for _, in := range rows.innings {
		m.Innings = append(m.Innings, engine.Innings{
			ID:            in.ID,
			TeamID:        in.TeamID,
			Index:         in.Idx,
			State:         in.State,
			Overs:         oversByInnings[in.ID],
			TotalRuns:     in.TotalRuns,
			TotalWickets:  in.TotalWickets,
			NoWicketBonus: in.NoWicketBonus,
			FinalScore:    in.FinalScore,
		})
	}
	for _, r := range rows.rankings {
		m.Rankings = append(m.Rankings, engine.MatchRanking{
			MatchID:       r.MatchID,
			TeamID:        r.TeamID,
			Rank:          r.Rank,
			Points:        r.Points,
			PointsExact:   r.PointsExact,
			FinalScore:    r.FinalScore,
			FieldingBonus: r.FieldingBonus,
			TotalScore:    r.TotalScore,
		})
	}
	return m
}
