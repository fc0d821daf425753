package types

import (
	"errors"
	"net/http"

	"github.com/DoyleJ11/dualstrike/internal/engine"
	"github.com/DoyleJ11/dualstrike/internal/hub"
	"github.com/DoyleJ11/dualstrike/internal/matchroom"
	wire "github.com/DoyleJ11/dualstrike/pkg/types"
)

type ClientMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Innings   int    `json:"innings"`
	Over      int    `json:"over,omitempty"`

	wire.TossRequest
	wire.AssignOverRequest
	wire.BallRequest
}

type ServerMessage struct {
	Type      string          `json:"type"` // "StateSnapshot" | "CommandResult" | "Error"
	RequestID string          `json:"requestId,omitempty"`
	Version   int             `json:"version,omitempty"`
	Match     *engine.Match   `json:"match,omitempty"`
	Events    []engine.Event  `json:"events,omitempty"`
	Error     *wire.ErrorBody `json:"error,omitempty"`
}

func Teams(ids []string) []engine.TeamID {
	out := make([]engine.TeamID, len(ids))
	for i, id := range ids {
		out[i] = engine.TeamID(id)
	}
	return out
}

func Rosters(in map[string][]string) map[engine.TeamID][]engine.PlayerID {
	out := make(map[engine.TeamID][]engine.PlayerID, len(in))
	for team, players := range in {
		ps := make([]engine.PlayerID, len(players))
		for i, p := range players {
			ps[i] = engine.PlayerID(p)
		}
		out[engine.TeamID(team)] = ps
	}
	return out
}

func TossCommand(req wire.TossRequest) engine.Command {
	return engine.Command{Type: engine.CmdRecordToss, BattingOrder: Teams(req.BattingOrder)}
}

func AssignCommand(innings, over int, req wire.AssignOverRequest) engine.Command {
	return engine.Command{
		Type:    engine.CmdAssignOver,
		Innings: innings,
		Over:    over,
		Bowler:  engine.PlayerID(req.Bowler),
		Keeper:  engine.PlayerID(req.Keeper),
	}
}

func BallCommand(innings, over int, req wire.BallRequest) engine.Command {
	return engine.Command{
		Type:       engine.CmdRecordBall,
		Innings:    innings,
		Over:       over,
		BallNumber: req.BallNumber,
		Action: engine.BallAction{
			Runs:           req.Runs,
			IsWicket:       req.IsWicket,
			WicketType:     engine.WicketType(req.WicketType),
			FieldingTeamID: engine.TeamID(req.FieldingTeamID),
			IsNoball:       req.IsNoball,
			IsWide:         req.IsWide,
			Misconduct:     req.Misconduct,
		},
	}
}

// ToCommand maps a websocket message onto an engine command.
func ToCommand(m ClientMessage) (engine.Command, bool) {
	switch m.Type {
	case wire.MsgMarkReady:
		return engine.Command{Type: engine.CmdMarkReady}, true
	case wire.MsgRecordToss:
		return TossCommand(m.TossRequest), true
	case wire.MsgStartInnings:
		return engine.Command{Type: engine.CmdStartInnings, Innings: m.Innings}, true
	case wire.MsgAssignOver:
		return AssignCommand(m.Innings, m.Over, m.AssignOverRequest), true
	case wire.MsgSetPowerplay:
		return engine.Command{Type: engine.CmdSetPowerplay, Innings: m.Innings, Over: m.Over}, true
	case wire.MsgRecordBall:
		return BallCommand(m.Innings, m.Over, m.BallRequest), true
	case wire.MsgUndoBall:
		return engine.Command{Type: engine.CmdUndoBall, Innings: m.Innings}, true
	case wire.MsgCompleteInnings:
		return engine.Command{Type: engine.CmdCompleteInnings, Innings: m.Innings}, true
	case wire.MsgLockMatch:
		return engine.Command{Type: engine.CmdLockMatch}, true
	default:
		return engine.Command{}, false
	}
}

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{engine.ErrInvalidBattingOrder, "invalid_batting_order", http.StatusBadRequest},
	{engine.ErrInvalidInningsIndex, "invalid_innings_index", http.StatusBadRequest},
	{engine.ErrInvalidOverNumber, "invalid_over_number", http.StatusBadRequest},
	{engine.ErrInvalidTeams, "invalid_teams", http.StatusBadRequest},
	{engine.ErrBowlerNotOnBowlingTeam, "bowler_not_on_bowling_team", http.StatusBadRequest},
	{engine.ErrKeeperNotOnBowlingTeam, "keeper_not_on_bowling_team", http.StatusBadRequest},
	{engine.ErrBowlerIsKeeper, "bowler_is_keeper", http.StatusBadRequest},
	{engine.ErrInvalidRuns, "invalid_runs", http.StatusBadRequest},
	{engine.ErrInvalidWicket, "invalid_wicket", http.StatusBadRequest},
	{engine.ErrFieldingTeamRequired, "fielding_team_required", http.StatusBadRequest},
	{engine.ErrInvalidFieldingTeam, "invalid_fielding_team", http.StatusBadRequest},
	{engine.ErrUnsupportedCommand, "unsupported_command", http.StatusBadRequest},
	{engine.ErrWrongState, "wrong_state", http.StatusConflict},
	{engine.ErrInningsNotInProgress, "innings_not_in_progress", http.StatusConflict},
	{engine.ErrInningsOutOfOrder, "innings_out_of_order", http.StatusConflict},
	{engine.ErrOverFull, "over_full", http.StatusConflict},
	{engine.ErrOverNotCurrent, "over_not_current", http.StatusConflict},
	{engine.ErrBallOutOfSequence, "ball_out_of_sequence", http.StatusConflict},
	{engine.ErrNothingToUndo, "nothing_to_undo", http.StatusConflict},
	{engine.ErrPowerplayAlreadyUsed, "powerplay_already_used", http.StatusConflict},
	{engine.ErrPowerplayOverStarted, "powerplay_over_started", http.StatusConflict},
	{engine.ErrMatchIncomplete, "match_incomplete", http.StatusConflict},
	{hub.ErrNotFound, "match_not_found", http.StatusNotFound},
	{hub.ErrExists, "match_exists", http.StatusConflict},
	{matchroom.ErrPersist, "persist_failed", http.StatusServiceUnavailable},
	{matchroom.ErrClosed, "match_closed", http.StatusServiceUnavailable},
	{hub.ErrStopped, "shutting_down", http.StatusServiceUnavailable},
}

// ErrorCode maps an error to a stable code and HTTP status.
func ErrorCode(err error) (string, int) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code, e.status
		}
	}
	return "internal", http.StatusInternalServerError
}

func ErrorBody(err error) *wire.ErrorBody {
	code, _ := ErrorCode(err)
	return &wire.ErrorBody{Code: code, Message: err.Error()}
}

func RankingsView(m engine.Match) wire.RankingsResponse {
	resp := wire.RankingsResponse{
		MatchID:     m.ID,
		State:       string(m.State),
		Rankings:    make([]wire.Ranking, 0, len(m.Rankings)),
		TotalPoints: engine.TotalPoints(m.Rankings).RatString(),
	}
	for _, r := range m.Rankings {
		resp.Rankings = append(resp.Rankings, wire.Ranking{
			TeamID:        string(r.TeamID),
			Rank:          r.Rank,
			Points:        r.Points.String(),
			PointsExact:   r.PointsExact,
			FinalScore:    r.FinalScore,
			FieldingBonus: r.FieldingBonus,
			TotalScore:    r.TotalScore,
		})
	}
	return resp
}

func Scoreboard(m engine.Match) []wire.InningsSummary {
	out := make([]wire.InningsSummary, 0, len(m.Innings))
	for _, in := range m.Innings {
		score := in.ProvisionalScore()
		if in.FinalScore != nil {
			score = *in.FinalScore
		}
		out = append(out, wire.InningsSummary{
			Index:        in.Index,
			TeamID:       string(in.TeamID),
			State:        string(in.State),
			TotalRuns:    in.TotalRuns,
			TotalWickets: in.TotalWickets,
			BallsBowled:  in.BallsRecorded(),
			Score:        score,
		})
	}
	return out
}
