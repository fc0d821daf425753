package engine

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"

	"github.com/shopspring/decimal"
)

// PointSlots are the points for positions 1..4 under strict ranking.
var PointSlots = [TeamsPerMatch]int64{5, 3, 1, 0}

// TeamScore is a team's ranking input.
type TeamScore struct {
	TeamID        TeamID
	FinalScore    int
	FieldingBonus int
}

func (s TeamScore) Total() int { return s.FinalScore + s.FieldingBonus }

// Result is the outcome of closing a match.
type Result struct {
	Rankings []MatchRanking
	Credits  map[TeamID]int
	// Repaired lists teams whose final score was missing and had to be
	// recomputed from the innings totals.
	Repaired []TeamID
}

// RankTeams orders teams by total score and assigns tie-aware points.
// Teams with equal totals form a group that shares the rank of its first
// position and the average of the point slots the group covers, so the
// points handed out always add up to the sum of PointSlots. Input order
// breaks ties in the output order only.
func RankTeams(matchID string, scores []TeamScore) []MatchRanking {
	sorted := slices.Clone(scores)
	slices.SortStableFunc(sorted, func(a, b TeamScore) int {
		return cmp.Compare(b.Total(), a.Total())
	})

	rankings := make([]MatchRanking, 0, len(sorted))
	for i := 0; i < len(sorted); {
		j := i
		var slotSum int64
		for j < len(sorted) && sorted[j].Total() == sorted[i].Total() {
			if j < len(PointSlots) {
				slotSum += PointSlots[j]
			}
			j++
		}

		size := int64(j - i)
		exact := big.NewRat(slotSum, size)
		points := decimal.NewFromInt(slotSum).Div(decimal.NewFromInt(size))

		for k := i; k < j; k++ {
			rankings = append(rankings, MatchRanking{
				MatchID:       matchID,
				TeamID:        sorted[k].TeamID,
				Rank:          i + 1,
				Points:        points,
				PointsExact:   exact.RatString(),
				FinalScore:    sorted[k].FinalScore,
				FieldingBonus: sorted[k].FieldingBonus,
				TotalScore:    sorted[k].Total(),
			})
		}
		i = j
	}
	return rankings
}

// CompleteMatch ranks the four batting teams of a finished match.
func CompleteMatch(matchID string, innings []Innings) (Result, error) {
	if len(innings) != TeamsPerMatch {
		return Result{}, fmt.Errorf("%w: have %d innings", ErrMatchIncomplete, len(innings))
	}
	for _, in := range innings {
		if in.State != InningsCompleted {
			return Result{}, fmt.Errorf("%w: innings %d is %s", ErrMatchIncomplete, in.Index+1, in.State)
		}
	}

	credits := FieldingCredits(innings)
	res := Result{Credits: credits}

	scores := make([]TeamScore, 0, len(innings))
	for _, in := range innings {
		final := 0
		if in.FinalScore != nil {
			final = *in.FinalScore
		} else {
			final = in.ProvisionalScore()
			res.Repaired = append(res.Repaired, in.TeamID)
		}
		scores = append(scores, TeamScore{
			TeamID:        in.TeamID,
			FinalScore:    final,
			FieldingBonus: credits[in.TeamID],
		})
	}

	res.Rankings = RankTeams(matchID, scores)
	return res, nil
}

// TotalPoints sums the exact points of a ranking.
func TotalPoints(rankings []MatchRanking) *big.Rat {
	sum := new(big.Rat)
	for _, r := range rankings {
		sum.Add(sum, r.ExactPoints())
	}
	return sum
}
