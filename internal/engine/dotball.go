package engine

// IsThirdDot reports whether a legal 0-run delivery about to be appended to
// overs[current] completes a streak of three consecutive legal dot balls.
//
// The scan walks the current over backward and then the earlier overs of the
// same innings. Wides and no-balls are skipped: they neither reset nor extend
// the streak. Only a legal delivery with runs breaks it.
func IsThirdDot(overs []Over, current int) bool {
	if current < 0 || current >= len(overs) {
		return false
	}

	dots := 0
	for o := current; o >= 0; o-- {
		balls := overs[o].Balls
		for i := len(balls) - 1; i >= 0; i-- {
			b := balls[i]
			if !b.IsLegal() {
				continue
			}
			if b.Runs != 0 {
				return false
			}
			dots++
			if dots >= dotStreakThreshold {
				return true
			}
		}
	}
	return false
}

// isDotCandidate is true for the deliveries the streak rule may convert.
func isDotCandidate(a BallAction) bool {
	return a.Runs == 0 && !a.IsWicket && !a.IsNoball && !a.IsWide
}
