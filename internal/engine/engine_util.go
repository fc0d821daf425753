package engine

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

// NewMatch registers four teams and their rosters in the CREATED state.
func NewMatch(id string, teams []TeamID, rosters map[TeamID][]PlayerID) (Match, error) {
	if err := validateTeams(teams); err != nil {
		return Match{}, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	m := Match{
		ID:      id,
		TeamIDs: slices.Clone(teams),
		Rosters: make(map[TeamID][]PlayerID, len(rosters)),
		State:   MatchCreated,
		Innings: []Innings{},
	}
	for team, players := range rosters {
		if !slices.Contains(teams, team) {
			return Match{}, fmt.Errorf("%w: roster for unknown team %q", ErrInvalidTeams, team)
		}
		m.Rosters[team] = slices.Clone(players)
	}
	return m, nil
}

func validateTeams(teams []TeamID) error {
	if len(teams) != TeamsPerMatch {
		return fmt.Errorf("%w: want %d teams, got %d", ErrInvalidTeams, TeamsPerMatch, len(teams))
	}
	seen := make(map[TeamID]bool, len(teams))
	for _, t := range teams {
		if t == "" || seen[t] {
			return fmt.Errorf("%w: empty or duplicate team %q", ErrInvalidTeams, t)
		}
		seen[t] = true
	}
	return nil
}

// Clone returns a deep copy so a rejected command can never leak a mutation.
func (m Match) Clone() Match {
	c := m
	c.TeamIDs = slices.Clone(m.TeamIDs)
	c.BattingOrder = slices.Clone(m.BattingOrder)
	c.Rankings = slices.Clone(m.Rankings)
	if m.Rosters != nil {
		c.Rosters = make(map[TeamID][]PlayerID, len(m.Rosters))
		for team, players := range m.Rosters {
			c.Rosters[team] = slices.Clone(players)
		}
	}
	if m.Innings != nil {
		c.Innings = make([]Innings, len(m.Innings))
		for i, in := range m.Innings {
			c.Innings[i] = in.clone()
		}
	}
	return c
}

func (in Innings) clone() Innings {
	c := in
	if in.FinalScore != nil {
		score := *in.FinalScore
		c.FinalScore = &score
	}
	c.Overs = make([]Over, len(in.Overs))
	for i, o := range in.Overs {
		o.Balls = slices.Clone(o.Balls)
		c.Overs[i] = o
	}
	return c
}

// buildInnings lays out the 4×3 skeleton for a confirmed batting order.
func buildInnings(matchID string, order []TeamID) ([]Innings, error) {
	innings := make([]Innings, 0, TeamsPerMatch)
	for idx, team := range order {
		schedule, err := BowlingOrder(order, idx)
		if err != nil {
			return nil, err
		}
		in := Innings{
			ID:     derivedID(matchID, "innings", idx),
			TeamID: team,
			Index:  idx,
			State:  InningsNotStarted,
			Overs:  make([]Over, 0, OversPerInnings),
		}
		for o := 0; o < OversPerInnings; o++ {
			in.Overs = append(in.Overs, Over{
				ID:            derivedID(in.ID, "over", o+1),
				OverNumber:    o + 1,
				BowlingTeamID: schedule[o],
				Balls:         []Ball{},
			})
		}
		innings = append(innings, in)
	}
	return innings, nil
}

// derivedID names skeleton parts deterministically so a replayed toss or a
// reloaded match keeps stable ids.
func derivedID(parent, kind string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(parent+"/"+kind+"/"+strconv.Itoa(n))).String()
}

func ballID(overID string, ballNumber int) string {
	return derivedID(overID, "ball", ballNumber)
}

func inningsAt(m *Match, idx int) (*Innings, error) {
	if idx < 0 || idx >= len(m.Innings) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInningsIndex, idx)
	}
	return &m.Innings[idx], nil
}

func openOver(m *Match, cmd Command) (*Innings, *Over, error) {
	in, err := inningsAt(m, cmd.Innings)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Over < 1 || cmd.Over > len(in.Overs) {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidOverNumber, cmd.Over)
	}
	return in, &in.Overs[cmd.Over-1], nil
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// ChangesState is false when events only acknowledge a replayed ball.
func ChangesState(events []Event) bool {
	for _, event := range events {
		if event.Type != EvtBallReplayed {
			return true
		}
	}
	return false
}
