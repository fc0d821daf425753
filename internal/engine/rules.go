package engine

import "fmt"

// EvaluateBall converts a raw action into the signed run value credited to
// the batting team. The order of the steps matters: the wicket penalty
// replaces the scored runs, doubling only touches non-wicket runs, and the
// extras and misconduct terms are flat adjustments applied afterwards.
func EvaluateBall(a BallAction, powerplay bool) int {
	value := a.Runs

	if a.IsWicket {
		value = WicketPenalty
		if powerplay {
			value = PowerplayPenalty
		}
	} else if powerplay {
		value *= PowerplayFactor
	}

	if a.IsNoball {
		value += NoballBonus
	}
	if a.IsWide {
		value += WideBonus
	}

	if a.Misconduct {
		value -= MisconductPenalty
	}
	return value
}

func validRuns(runs int) bool {
	switch runs {
	case 0, 1, 2, 3, 4, 6:
		return true
	}
	return false
}

// Normalize validates the action and fills in the default wicket type.
func (a BallAction) Normalize() (BallAction, error) {
	if !validRuns(a.Runs) {
		return a, fmt.Errorf("%w: %d", ErrInvalidRuns, a.Runs)
	}

	if !a.IsWicket {
		if a.WicketType != WicketNone {
			return a, fmt.Errorf("%w: wicket type %q on a non-wicket ball", ErrInvalidWicket, a.WicketType)
		}
		if a.FieldingTeamID != "" {
			return a, fmt.Errorf("%w: fielding team on a non-wicket ball", ErrInvalidWicket)
		}
		return a, nil
	}

	switch a.WicketType {
	case WicketNone:
		a.WicketType = WicketNormal
	case WicketNormal, WicketBowlingTeam:
	case WicketCatchOut, WicketRunOut:
		if a.FieldingTeamID == "" {
			return a, fmt.Errorf("%w for %s", ErrFieldingTeamRequired, a.WicketType)
		}
	default:
		return a, fmt.Errorf("%w: unknown wicket type %q", ErrInvalidWicket, a.WicketType)
	}
	return a, nil
}
