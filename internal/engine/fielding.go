package engine

// FieldingCredits awards FieldingCredit runs per wicket to the team that
// took it: the explicitly credited fielding team for catches and run-outs,
// otherwise the over's bowling team for BOWLING_TEAM wickets. Plain NORMAL
// wickets credit nobody. The result only feeds ranking; innings totals are
// never touched.
func FieldingCredits(innings []Innings) map[TeamID]int {
	credits := make(map[TeamID]int)
	for _, in := range innings {
		for _, o := range in.Overs {
			for _, b := range o.Balls {
				if !b.IsWicket {
					continue
				}
				switch {
				case b.FieldingTeamID != "":
					credits[b.FieldingTeamID] += FieldingCredit
				case b.WicketType == WicketBowlingTeam && o.BowlingTeamID != "":
					credits[o.BowlingTeamID] += FieldingCredit
				}
			}
		}
	}
	return credits
}
