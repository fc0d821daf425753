package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/dualstrike/internal/engine"
)

func TestToRows_FlattensSkeleton(t *testing.T) {
	m := scoredMatch(t, "m-1", time.Now().UTC(), 1, 2, 3)
	rows := toRows(m)

	assert.Equal(t, "m-1", rows.match.ID)
	assert.Len(t, rows.innings, engine.TeamsPerMatch)
	assert.Len(t, rows.overs, engine.TeamsPerMatch*engine.OversPerInnings)
	require.Len(t, rows.balls, 3)
	for i, b := range rows.balls {
		assert.Equal(t, m.Innings[0].Overs[0].ID, b.OverID)
		assert.Equal(t, i+1, b.BallNumber)
		assert.Equal(t, "m-1", b.MatchID)
	}
	assert.Empty(t, rows.rankings)
}

func TestFromRows_RebuildsMatch(t *testing.T) {
	m := scoredMatch(t, "m-1", time.Now().UTC(), 4, 0, 6)
	got := fromRows(toRows(m))
	assertSameMatch(t, m, got)
	assert.Equal(t, m.Rosters, got.Rosters)
}

func TestRankingRows_KeepOutputOrder(t *testing.T) {
	m := engine.Match{
		ID: "m-1",
		Rankings: engine.RankTeams("m-1", []engine.TeamScore{
			{TeamID: "A", FinalScore: 10},
			{TeamID: "B", FinalScore: 30},
			{TeamID: "C", FinalScore: 10},
			{TeamID: "D", FinalScore: 5},
		}),
	}
	rows := toRows(m)
	require.Len(t, rows.rankings, 4)
	for i, r := range rows.rankings {
		assert.Equal(t, i, r.Position)
	}

	got := fromRows(rows)
	require.Len(t, got.Rankings, 4)
	assert.Equal(t, engine.TeamID("B"), got.Rankings[0].TeamID)
	assert.Equal(t, "2", got.Rankings[1].Points.String())
	assert.Equal(t, "2", got.Rankings[1].PointsExact)
}
