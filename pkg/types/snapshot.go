package types

// Ranking is one team's final placing. Points is a decimal string,
// PointsExact the same value as a fraction ("9/4").
type Ranking struct {
	TeamID        string `json:"teamId"`
	Rank          int    `json:"rank"`
	Points        string `json:"points"`
	PointsExact   string `json:"pointsExact"`
	FinalScore    int    `json:"finalScore"`
	FieldingBonus int    `json:"fieldingBonus"`
	TotalScore    int    `json:"totalScore"`
}

type RankingsResponse struct {
	MatchID  string    `json:"matchId"`
	State    string    `json:"state"`
	Rankings []Ranking `json:"rankings"`
	// TotalPoints is always 9 for a completed match.
	TotalPoints string `json:"totalPoints"`
}

// InningsSummary is a compact scoreboard line.
type InningsSummary struct {
	Index        int    `json:"index"`
	TeamID       string `json:"teamId"`
	State        string `json:"state"`
	TotalRuns    int    `json:"totalRuns"`
	TotalWickets int    `json:"totalWickets"`
	BallsBowled  int    `json:"ballsBowled"`
	Score        int    `json:"score"` // final, or provisional while batting
}
