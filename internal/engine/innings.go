package engine

// apply adds an already evaluated ball to the running totals.
func (in *Innings) apply(b Ball) {
	in.TotalRuns += b.EffectiveRuns
	if b.IsWicket {
		in.TotalWickets++
	}
}

// Recompute rebuilds the totals from the recorded balls. Undo relies on this
// instead of reversing a single ball's contribution.
func (in *Innings) Recompute() {
	in.TotalRuns = 0
	in.TotalWickets = 0
	for _, o := range in.Overs {
		for _, b := range o.Balls {
			in.apply(b)
		}
	}
	if in.State == InningsCompleted {
		in.Complete()
	}
}

// Complete closes the innings and fixes the final score.
func (in *Innings) Complete() int {
	in.State = InningsCompleted
	in.NoWicketBonus = in.TotalWickets == 0
	score := scoreFor(in.TotalRuns, in.TotalWickets)
	in.FinalScore = &score
	return score
}

// ProvisionalScore is the score the innings would close with right now.
func (in Innings) ProvisionalScore() int {
	return scoreFor(in.TotalRuns, in.TotalWickets)
}

func scoreFor(runs, wickets int) int {
	if wickets == 0 {
		return runs + NoWicketBonus
	}
	return runs
}

// BallsRecorded counts ball records across all overs.
func (in Innings) BallsRecorded() int {
	n := 0
	for _, o := range in.Overs {
		n += len(o.Balls)
	}
	return n
}

// CurrentOver returns the index of the first over with a free ball slot, or
// -1 when all overs are full.
func (in Innings) CurrentOver() int {
	for i, o := range in.Overs {
		if !o.Full() {
			return i
		}
	}
	return -1
}

func (in Innings) exhausted() bool {
	return in.CurrentOver() == -1
}

func (in Innings) powerplayOver() int {
	for i, o := range in.Overs {
		if o.IsPowerplay {
			return i
		}
	}
	return -1
}
