package types

// Client -> Server message types. A websocket message carries the same
// fields as the HTTP request body of the matching route, plus innings and
// over where the route has them in its path.
const (
	MsgMarkReady       = "MarkReady"
	MsgRecordToss      = "RecordToss"
	MsgStartInnings    = "StartInnings"
	MsgAssignOver      = "AssignOver"
	MsgSetPowerplay    = "SetPowerplay"
	MsgRecordBall      = "RecordBall"
	MsgUndoBall        = "UndoBall"
	MsgCompleteInnings = "CompleteInnings"
	MsgLockMatch       = "LockMatch"
)

// Server -> Client
const (
	MsgStateSnapshot = "StateSnapshot"
	MsgCommandResult = "CommandResult"
	MsgError         = "Error"
)

// CreateMatchRequest registers four teams. ID is optional.
type CreateMatchRequest struct {
	ID      string              `json:"id,omitempty"`
	TeamIDs []string            `json:"teamIds"`
	Rosters map[string][]string `json:"rosters,omitempty"`
}

type TossRequest struct {
	BattingOrder []string `json:"battingOrder"`
}

type AssignOverRequest struct {
	Bowler string `json:"bowler"`
	Keeper string `json:"keeper"`
}

// BallRequest is one delivery. BallNumber is 1-based within the over and
// doubles as the idempotency key.
type BallRequest struct {
	BallNumber     int    `json:"ballNumber"`
	Runs           int    `json:"runs"`
	IsWicket       bool   `json:"isWicket"`
	WicketType     string `json:"wicketType,omitempty"`
	FieldingTeamID string `json:"fieldingTeamId,omitempty"`
	IsNoball       bool   `json:"isNoball"`
	IsWide         bool   `json:"isWide"`
	Misconduct     bool   `json:"misconduct"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
