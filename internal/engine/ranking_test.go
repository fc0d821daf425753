package engine

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoresOf(totals ...int) []TeamScore {
	scores := make([]TeamScore, len(totals))
	for i, total := range totals {
		scores[i] = TeamScore{TeamID: abcd[i], FinalScore: total}
	}
	return scores
}

func byTeam(rankings []MatchRanking) map[TeamID]MatchRanking {
	out := make(map[TeamID]MatchRanking, len(rankings))
	for _, r := range rankings {
		out[r.TeamID] = r
	}
	return out
}

func assertRanking(t *testing.T, rankings []MatchRanking, ranks []int, points []string) {
	t.Helper()
	got := byTeam(rankings)
	require.Len(t, got, len(ranks))
	for i, team := range abcd[:len(ranks)] {
		assert.Equal(t, ranks[i], got[team].Rank, "rank of %s", team)
		assert.True(t, decimal.RequireFromString(points[i]).Equal(got[team].Points), "points of %s: got %s, want %s", team, got[team].Points, points[i])
	}
}

func TestRankTeams(t *testing.T) {
	cases := []struct {
		name   string
		totals []int
		ranks  []int
		points []string
	}{
		{name: "distinct scores", totals: []int{40, 30, 20, 10}, ranks: []int{1, 2, 3, 4}, points: []string{"5", "3", "1", "0"}},
		{name: "distinct scores out of order", totals: []int{10, 40, 20, 30}, ranks: []int{4, 1, 3, 2}, points: []string{"0", "5", "1", "3"}},
		{name: "two-way tie for second", totals: []int{45, 35, 35, 15}, ranks: []int{1, 2, 2, 4}, points: []string{"5", "2", "2", "0"}},
		{name: "all tied", totals: []int{30, 30, 30, 30}, ranks: []int{1, 1, 1, 1}, points: []string{"2.25", "2.25", "2.25", "2.25"}},
		{name: "two disjoint pairs", totals: []int{50, 50, 20, 20}, ranks: []int{1, 1, 3, 3}, points: []string{"4", "4", "0.5", "0.5"}},
		{name: "tie for first", totals: []int{50, 50, 20, 10}, ranks: []int{1, 1, 3, 4}, points: []string{"4", "4", "1", "0"}},
		{name: "tie for last", totals: []int{50, 40, 0, 0}, ranks: []int{1, 2, 3, 3}, points: []string{"5", "3", "0.5", "0.5"}},
		{name: "negative scores", totals: []int{-5, -10, 0, -5}, ranks: []int{2, 4, 1, 2}, points: []string{"2", "0", "5", "2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rankings := RankTeams("m1", scoresOf(tc.totals...))
			assertRanking(t, rankings, tc.ranks, tc.points)
		})
	}
}

func TestRankTeams_PointsAlwaysSumToNine(t *testing.T) {
	nine := big.NewRat(9, 1)
	// Every way of splitting four positions into contiguous tie groups.
	partitions := [][]int{
		{40, 30, 20, 10},
		{40, 40, 20, 10},
		{40, 30, 30, 10},
		{40, 30, 20, 20},
		{40, 40, 40, 10},
		{40, 30, 30, 30},
		{40, 40, 20, 20},
		{40, 40, 40, 40},
	}
	for _, totals := range partitions {
		rankings := RankTeams("m1", scoresOf(totals...))
		assert.Equal(t, 0, TotalPoints(rankings).Cmp(nine), "totals %v summed to %s", totals, TotalPoints(rankings).RatString())
	}
}

func TestRankTeams_ThreeWayTieKeepsExactThirds(t *testing.T) {
	rankings := byTeam(RankTeams("m1", scoresOf(40, 30, 30, 30)))

	assert.Equal(t, "4/3", rankings["B"].PointsExact)
	assert.Equal(t, 2, rankings["D"].Rank)
	assert.Equal(t, "5", rankings["A"].PointsExact)
}

func TestRankTeams_FieldingBonusChangesOrder(t *testing.T) {
	scores := []TeamScore{
		{TeamID: "A", FinalScore: 20},
		{TeamID: "B", FinalScore: 18, FieldingBonus: 5},
	}
	rankings := RankTeams("m1", scores)
	require.Len(t, rankings, 2)
	assert.Equal(t, TeamID("B"), rankings[0].TeamID)
	assert.Equal(t, 23, rankings[0].TotalScore)
	assert.Equal(t, 18, rankings[0].FinalScore)
}

func completedInnings(team TeamID, idx int, bowling []TeamID, final int, balls ...[]Ball) Innings {
	in := Innings{TeamID: team, Index: idx, State: InningsCompleted}
	for o := 0; o < OversPerInnings; o++ {
		over := Over{OverNumber: o + 1, BowlingTeamID: bowling[o]}
		if o < len(balls) {
			over.Balls = balls[o]
		}
		in.Overs = append(in.Overs, over)
	}
	score := final
	in.FinalScore = &score
	return in
}

func TestFieldingCredits(t *testing.T) {
	innings := []Innings{
		completedInnings("A", 0, []TeamID{"D", "C", "B"}, 0,
			[]Ball{
				{IsWicket: true, WicketType: WicketCatchOut, FieldingTeamID: "C"},
				{IsWicket: true, WicketType: WicketBowlingTeam},
				{IsWicket: true, WicketType: WicketNormal},
			},
			[]Ball{{IsWicket: true, WicketType: WicketBowlingTeam}},
		),
		completedInnings("B", 1, []TeamID{"C", "A", "D"}, 0,
			[]Ball{{IsWicket: true, WicketType: WicketRunOut, FieldingTeamID: "A"}, {Runs: 4}},
		),
	}

	credits := FieldingCredits(innings)
	assert.Equal(t, map[TeamID]int{"C": 10, "D": 5, "A": 5}, credits)
}

func TestCompleteMatch_RepairsMissingFinalScore(t *testing.T) {
	innings := []Innings{
		completedInnings("A", 0, []TeamID{"D", "C", "B"}, 30),
		completedInnings("B", 1, []TeamID{"C", "A", "D"}, 20),
		completedInnings("C", 2, []TeamID{"B", "A", "D"}, 10),
		completedInnings("D", 3, []TeamID{"C", "B", "A"}, 0),
	}
	innings[3].FinalScore = nil
	innings[3].TotalRuns = 35

	res, err := CompleteMatch("m1", innings)
	require.NoError(t, err)
	assert.Equal(t, []TeamID{"D"}, res.Repaired)

	got := byTeam(res.Rankings)
	assert.Equal(t, 1, got["D"].Rank)
	assert.Equal(t, 45, got["D"].FinalScore)
}

func TestCompleteMatch_RequiresFourCompletedInnings(t *testing.T) {
	innings := []Innings{
		completedInnings("A", 0, []TeamID{"D", "C", "B"}, 30),
		completedInnings("B", 1, []TeamID{"C", "A", "D"}, 20),
		completedInnings("C", 2, []TeamID{"B", "A", "D"}, 10),
	}
	_, err := CompleteMatch("m1", innings)
	assert.ErrorIs(t, err, ErrMatchIncomplete)

	innings = append(innings, completedInnings("D", 3, []TeamID{"C", "B", "A"}, 0))
	innings[3].State = InningsInProgress
	_, err = CompleteMatch("m1", innings)
	assert.ErrorIs(t, err, ErrMatchIncomplete)
}
