package engine

import (
	"fmt"
	"slices"
)

type CommandType string

const (
	CmdMarkReady       CommandType = "MarkReady"
	CmdRecordToss      CommandType = "RecordToss"
	CmdStartInnings    CommandType = "StartInnings"
	CmdAssignOver      CommandType = "AssignOver"
	CmdSetPowerplay    CommandType = "SetPowerplay"
	CmdRecordBall      CommandType = "RecordBall"
	CmdUndoBall        CommandType = "UndoBall"
	CmdCompleteInnings CommandType = "CompleteInnings"
	CmdLockMatch       CommandType = "LockMatch"
)

/*
	CmdMarkReady       -> EvtMatchReady
	CmdRecordToss      -> EvtTossRecorded
	CmdStartInnings    -> EvtInningsStarted (carries the bowling schedule)
	CmdAssignOver      -> EvtOverAssigned
	CmdSetPowerplay    -> EvtPowerplaySet
	CmdRecordBall      -> [EvtAutoWicket] -> EvtBallRecorded -> [EvtInningsCompleted -> [EvtMatchCompleted -> [EvtRankingRepaired]]]
	                      or EvtBallReplayed when the ball number was already recorded
	CmdUndoBall        -> EvtBallUndone
	CmdCompleteInnings -> EvtInningsCompleted -> [EvtMatchCompleted -> [EvtRankingRepaired]]
	CmdLockMatch       -> EvtMatchLocked
*/

// Command is one umpire action. Innings is the 0-based batting-order
// position, Over the 1-based over number.
type Command struct {
	Type         CommandType
	Innings      int
	Over         int
	BallNumber   int
	Action       BallAction
	BattingOrder []TeamID
	Bowler       PlayerID
	Keeper       PlayerID
}

type EventType string

const (
	EvtMatchReady       EventType = "MatchReady"
	EvtTossRecorded     EventType = "TossRecorded"
	EvtInningsStarted   EventType = "InningsStarted"
	EvtOverAssigned     EventType = "OverAssigned"
	EvtPowerplaySet     EventType = "PowerplaySet"
	EvtAutoWicket       EventType = "AutoWicket"
	EvtBallRecorded     EventType = "BallRecorded"
	EvtBallReplayed     EventType = "BallReplayed"
	EvtBallUndone       EventType = "BallUndone"
	EvtInningsCompleted EventType = "InningsCompleted"
	EvtMatchCompleted   EventType = "MatchCompleted"
	EvtRankingRepaired  EventType = "RankingRepaired"
	EvtMatchLocked      EventType = "MatchLocked"
)

type Event struct {
	Type       EventType      `json:"type"`
	Innings    int            `json:"innings"`
	Over       int            `json:"over,omitempty"`
	Ball       *Ball          `json:"ball,omitempty"`
	Schedule   []TeamID       `json:"schedule,omitempty"`
	FinalScore int            `json:"finalScore,omitempty"`
	Rankings   []MatchRanking `json:"rankings,omitempty"`
	Teams      []TeamID       `json:"teams,omitempty"`
}

// Apply validates cmd against m and returns the produced events and the new
// match. On error the returned match is m, untouched.
func Apply(m Match, cmd Command) ([]Event, Match, error) {
	if m.State == MatchLocked {
		return nil, m, fmt.Errorf("%w: match is locked", ErrWrongState)
	}

	next := m.Clone()

	var (
		events []Event
		err    error
	)
	switch cmd.Type {
	case CmdMarkReady:
		events, err = markReady(&next)
	case CmdRecordToss:
		events, err = recordToss(&next, cmd)
	case CmdStartInnings:
		events, err = startInnings(&next, cmd)
	case CmdAssignOver:
		events, err = assignOver(&next, cmd)
	case CmdSetPowerplay:
		events, err = setPowerplay(&next, cmd)
	case CmdRecordBall:
		events, err = recordBall(&next, cmd)
	case CmdUndoBall:
		events, err = undoBall(&next, cmd)
	case CmdCompleteInnings:
		events, err = completeInnings(&next, cmd)
	case CmdLockMatch:
		events, err = lockMatch(&next)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}
	if err != nil {
		return nil, m, err
	}
	return events, next, nil
}

func requireState(m *Match, allowed ...MatchState) error {
	if !slices.Contains(allowed, m.State) {
		return fmt.Errorf("%w: match is %s", ErrWrongState, m.State)
	}
	return nil
}

func markReady(m *Match) ([]Event, error) {
	if err := requireState(m, MatchCreated); err != nil {
		return nil, err
	}
	if err := validateTeams(m.TeamIDs); err != nil {
		return nil, err
	}
	m.State = MatchReady
	return []Event{{Type: EvtMatchReady}}, nil
}

func recordToss(m *Match, cmd Command) ([]Event, error) {
	if err := requireState(m, MatchReady); err != nil {
		return nil, err
	}
	if err := ValidateBattingOrder(m.TeamIDs, cmd.BattingOrder); err != nil {
		return nil, err
	}

	innings, err := buildInnings(m.ID, cmd.BattingOrder)
	if err != nil {
		return nil, err
	}
	m.BattingOrder = slices.Clone(cmd.BattingOrder)
	m.Innings = innings
	m.State = MatchToss
	return []Event{{Type: EvtTossRecorded, Teams: slices.Clone(m.BattingOrder)}}, nil
}

func startInnings(m *Match, cmd Command) ([]Event, error) {
	if err := requireState(m, MatchToss, MatchInProgress); err != nil {
		return nil, err
	}
	in, err := inningsAt(m, cmd.Innings)
	if err != nil {
		return nil, err
	}
	if in.State != InningsNotStarted {
		return nil, fmt.Errorf("%w: innings %d is %s", ErrWrongState, cmd.Innings+1, in.State)
	}
	if cmd.Innings > 0 && m.Innings[cmd.Innings-1].State != InningsCompleted {
		return nil, fmt.Errorf("%w: innings %d", ErrInningsOutOfOrder, cmd.Innings)
	}

	schedule, err := BowlingOrder(m.BattingOrder, cmd.Innings)
	if err != nil {
		return nil, err
	}
	for i := range in.Overs {
		in.Overs[i].BowlingTeamID = schedule[i]
	}
	in.State = InningsInProgress
	m.State = MatchInProgress

	return []Event{{Type: EvtInningsStarted, Innings: cmd.Innings, Schedule: schedule}}, nil
}

func assignOver(m *Match, cmd Command) ([]Event, error) {
	if err := requireState(m, MatchToss, MatchInProgress); err != nil {
		return nil, err
	}
	in, over, err := openOver(m, cmd)
	if err != nil {
		return nil, err
	}
	if in.State == InningsCompleted {
		return nil, fmt.Errorf("%w: innings %d", ErrInningsNotInProgress, cmd.Innings+1)
	}
	if err := ValidateOverAssignment(m.Rosters, over.BowlingTeamID, cmd.Bowler, cmd.Keeper); err != nil {
		return nil, err
	}
	over.BowlerID = cmd.Bowler
	over.KeeperID = cmd.Keeper
	return []Event{{Type: EvtOverAssigned, Innings: cmd.Innings, Over: cmd.Over}}, nil
}

func setPowerplay(m *Match, cmd Command) ([]Event, error) {
	if err := requireState(m, MatchToss, MatchInProgress); err != nil {
		return nil, err
	}
	in, over, err := openOver(m, cmd)
	if err != nil {
		return nil, err
	}
	if in.State == InningsCompleted {
		return nil, fmt.Errorf("%w: innings %d", ErrInningsNotInProgress, cmd.Innings+1)
	}
	if len(over.Balls) > 0 {
		return nil, fmt.Errorf("%w: over %d", ErrPowerplayOverStarted, cmd.Over)
	}

	if prev := in.powerplayOver(); prev >= 0 && prev != cmd.Over-1 {
		if len(in.Overs[prev].Balls) > 0 {
			return nil, fmt.Errorf("%w: over %d", ErrPowerplayAlreadyUsed, prev+1)
		}
		in.Overs[prev].IsPowerplay = false
	}
	over.IsPowerplay = true
	return []Event{{Type: EvtPowerplaySet, Innings: cmd.Innings, Over: cmd.Over}}, nil
}

func recordBall(m *Match, cmd Command) ([]Event, error) {
	if err := requireState(m, MatchInProgress, MatchCompleted); err != nil {
		return nil, err
	}
	in, over, err := openOver(m, cmd)
	if err != nil {
		return nil, err
	}

	// Redelivery of a recorded ball is answered with the stored ball.
	if cmd.BallNumber >= 1 && cmd.BallNumber <= len(over.Balls) {
		stored := over.Balls[cmd.BallNumber-1]
		return []Event{{Type: EvtBallReplayed, Innings: cmd.Innings, Over: cmd.Over, Ball: &stored}}, nil
	}

	if err := requireState(m, MatchInProgress); err != nil {
		return nil, err
	}
	if in.State != InningsInProgress {
		return nil, fmt.Errorf("%w: innings %d is %s", ErrInningsNotInProgress, cmd.Innings+1, in.State)
	}
	if over.Full() {
		return nil, fmt.Errorf("%w: over %d", ErrOverFull, cmd.Over)
	}
	if current := in.CurrentOver(); current != cmd.Over-1 {
		return nil, fmt.Errorf("%w: current over is %d", ErrOverNotCurrent, current+1)
	}
	if cmd.BallNumber != len(over.Balls)+1 {
		return nil, fmt.Errorf("%w: want ball %d, got %d", ErrBallOutOfSequence, len(over.Balls)+1, cmd.BallNumber)
	}

	action, err := cmd.Action.Normalize()
	if err != nil {
		return nil, err
	}
	if action.FieldingTeamID != "" {
		if !slices.Contains(m.TeamIDs, action.FieldingTeamID) || action.FieldingTeamID == in.TeamID {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFieldingTeam, action.FieldingTeamID)
		}
	}

	var events []Event
	auto := false
	if isDotCandidate(action) && IsThirdDot(in.Overs, cmd.Over-1) {
		action.IsWicket = true
		action.WicketType = WicketNormal
		auto = true
		events = append(events, Event{Type: EvtAutoWicket, Innings: cmd.Innings, Over: cmd.Over})
	}

	ball := Ball{
		ID:             ballID(over.ID, cmd.BallNumber),
		BallNumber:     cmd.BallNumber,
		Runs:           action.Runs,
		IsWicket:       action.IsWicket,
		WicketType:     action.WicketType,
		FieldingTeamID: action.FieldingTeamID,
		IsNoball:       action.IsNoball,
		IsWide:         action.IsWide,
		Misconduct:     action.Misconduct,
		AutoWicket:     auto,
		EffectiveRuns:  EvaluateBall(action, over.IsPowerplay),
	}
	over.Balls = append(over.Balls, ball)
	in.apply(ball)

	recorded := ball
	events = append(events, Event{Type: EvtBallRecorded, Innings: cmd.Innings, Over: cmd.Over, Ball: &recorded})

	if in.exhausted() {
		events = append(events, closeInnings(m, cmd.Innings)...)
	}
	return events, nil
}

func undoBall(m *Match, cmd Command) ([]Event, error) {
	if err := requireState(m, MatchInProgress); err != nil {
		return nil, err
	}
	in, err := inningsAt(m, cmd.Innings)
	if err != nil {
		return nil, err
	}

	switch in.State {
	case InningsInProgress:
	case InningsCompleted:
		// A completed innings reopens only while the next one has not begun.
		if cmd.Innings+1 < len(m.Innings) && m.Innings[cmd.Innings+1].State != InningsNotStarted {
			return nil, fmt.Errorf("%w: innings %d already followed", ErrInningsNotInProgress, cmd.Innings+1)
		}
	default:
		return nil, fmt.Errorf("%w: innings %d is %s", ErrInningsNotInProgress, cmd.Innings+1, in.State)
	}

	oi := -1
	for i := len(in.Overs) - 1; i >= 0; i-- {
		if len(in.Overs[i].Balls) > 0 {
			oi = i
			break
		}
	}
	if oi < 0 {
		return nil, ErrNothingToUndo
	}

	over := &in.Overs[oi]
	removed := over.Balls[len(over.Balls)-1]
	over.Balls = over.Balls[:len(over.Balls)-1]

	in.State = InningsInProgress
	in.FinalScore = nil
	in.NoWicketBonus = false
	in.Recompute()

	return []Event{{Type: EvtBallUndone, Innings: cmd.Innings, Over: oi + 1, Ball: &removed}}, nil
}

func completeInnings(m *Match, cmd Command) ([]Event, error) {
	if err := requireState(m, MatchInProgress); err != nil {
		return nil, err
	}
	in, err := inningsAt(m, cmd.Innings)
	if err != nil {
		return nil, err
	}
	if in.State != InningsInProgress {
		return nil, fmt.Errorf("%w: innings %d is %s", ErrInningsNotInProgress, cmd.Innings+1, in.State)
	}
	return closeInnings(m, cmd.Innings), nil
}

func lockMatch(m *Match) ([]Event, error) {
	if err := requireState(m, MatchCompleted); err != nil {
		return nil, err
	}
	m.State = MatchLocked
	return []Event{{Type: EvtMatchLocked}}, nil
}

// closeInnings completes innings idx and, once every innings is done, ranks
// the match.
func closeInnings(m *Match, idx int) []Event {
	in := &m.Innings[idx]
	score := in.Complete()
	events := []Event{{Type: EvtInningsCompleted, Innings: idx, FinalScore: score}}

	for _, other := range m.Innings {
		if other.State != InningsCompleted {
			return events
		}
	}

	res, err := CompleteMatch(m.ID, m.Innings)
	if err != nil {
		// Unreachable: every innings was just checked as completed.
		return events
	}
	m.Rankings = res.Rankings
	m.State = MatchCompleted
	events = append(events, Event{Type: EvtMatchCompleted, Rankings: slices.Clone(res.Rankings)})
	if len(res.Repaired) > 0 {
		events = append(events, Event{Type: EvtRankingRepaired, Teams: res.Repaired})
	}
	return events
}
