package engine

import (
	"fmt"
	"slices"
)

// BowlingRotation maps the batting-order position of the batting team to the
// batting-order positions of the teams bowling overs 1, 2 and 3.
var BowlingRotation = [TeamsPerMatch][OversPerInnings]int{
	{3, 2, 1},
	{2, 0, 3},
	{1, 0, 3},
	{2, 1, 0},
}

// BowlingOrder returns the three teams bowling against the team at
// battingOrder[inningsIndex], one per over.
func BowlingOrder(battingOrder []TeamID, inningsIndex int) ([]TeamID, error) {
	if len(battingOrder) != TeamsPerMatch {
		return nil, fmt.Errorf("%w: want %d teams, got %d", ErrInvalidBattingOrder, TeamsPerMatch, len(battingOrder))
	}
	if inningsIndex < 0 || inningsIndex >= TeamsPerMatch {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInningsIndex, inningsIndex)
	}

	row := BowlingRotation[inningsIndex]
	order := make([]TeamID, 0, OversPerInnings)
	for _, pos := range row {
		order = append(order, battingOrder[pos])
	}
	return order, nil
}

// ValidateBattingOrder checks that order is a permutation of the match teams.
func ValidateBattingOrder(teamIDs, order []TeamID) error {
	if len(order) != TeamsPerMatch {
		return fmt.Errorf("%w: want %d teams, got %d", ErrInvalidBattingOrder, TeamsPerMatch, len(order))
	}
	seen := make(map[TeamID]bool, len(order))
	for _, id := range order {
		if !slices.Contains(teamIDs, id) {
			return fmt.Errorf("%w: %q is not in this match", ErrInvalidBattingOrder, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidBattingOrder, id)
		}
		seen[id] = true
	}
	return nil
}

// ValidateOverAssignment checks the bowler and keeper nominated for an over.
// Both must be on the bowling team and they must be different players.
func ValidateOverAssignment(rosters map[TeamID][]PlayerID, bowlingTeam TeamID, bowler, keeper PlayerID) error {
	roster := rosters[bowlingTeam]
	if !slices.Contains(roster, bowler) {
		return fmt.Errorf("%w: %q not on %q", ErrBowlerNotOnBowlingTeam, bowler, bowlingTeam)
	}
	if !slices.Contains(roster, keeper) {
		return fmt.Errorf("%w: %q not on %q", ErrKeeperNotOnBowlingTeam, keeper, bowlingTeam)
	}
	if bowler == keeper {
		return fmt.Errorf("%w: %q", ErrBowlerIsKeeper, bowler)
	}
	return nil
}
