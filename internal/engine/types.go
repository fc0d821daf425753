package engine

import (
	"errors"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidBattingOrder = errors.New("invalid batting order")
var ErrInvalidInningsIndex = errors.New("invalid innings index")
var ErrInvalidOverNumber = errors.New("invalid over number")
var ErrInvalidTeams = errors.New("invalid teams")
var ErrBowlerNotOnBowlingTeam = errors.New("bowler is not on the bowling team")
var ErrKeeperNotOnBowlingTeam = errors.New("keeper is not on the bowling team")
var ErrBowlerIsKeeper = errors.New("bowler and keeper must be different players")
var ErrInvalidRuns = errors.New("invalid runs")
var ErrInvalidWicket = errors.New("invalid wicket")
var ErrFieldingTeamRequired = errors.New("fielding team required")
var ErrInvalidFieldingTeam = errors.New("invalid fielding team")
var ErrWrongState = errors.New("command not allowed in current match state")
var ErrInningsNotInProgress = errors.New("innings not in progress")
var ErrInningsOutOfOrder = errors.New("previous innings not completed")
var ErrOverFull = errors.New("over already has 6 balls")
var ErrOverNotCurrent = errors.New("over is not the current over")
var ErrBallOutOfSequence = errors.New("ball number out of sequence")
var ErrNothingToUndo = errors.New("no ball to undo")
var ErrPowerplayAlreadyUsed = errors.New("powerplay already used in this innings")
var ErrPowerplayOverStarted = errors.New("powerplay over already has balls")
var ErrMatchIncomplete = errors.New("match needs 4 completed innings")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Scoring constants.
const (
	TeamsPerMatch      = 4
	OversPerInnings    = 3
	BallsPerOver       = 6
	WicketPenalty      = -5
	PowerplayPenalty   = -10
	PowerplayFactor    = 2
	NoballBonus        = 2
	WideBonus          = 2
	MisconductPenalty  = 5
	NoWicketBonus      = 10
	FieldingCredit     = 5
	dotStreakThreshold = 2
)

type TeamID string
type PlayerID string

type MatchState string

const (
	MatchCreated    MatchState = "CREATED"
	MatchReady      MatchState = "READY"
	MatchToss       MatchState = "TOSS"
	MatchInProgress MatchState = "IN_PROGRESS"
	MatchCompleted  MatchState = "COMPLETED"
	MatchLocked     MatchState = "LOCKED"
)

type InningsState string

const (
	InningsNotStarted InningsState = "NOT_STARTED"
	InningsInProgress InningsState = "IN_PROGRESS"
	InningsCompleted  InningsState = "COMPLETED"
)

type WicketType string

const (
	WicketNone        WicketType = ""
	WicketNormal      WicketType = "NORMAL"
	WicketBowlingTeam WicketType = "BOWLING_TEAM"
	WicketCatchOut    WicketType = "CATCH_OUT"
	WicketRunOut      WicketType = "RUN_OUT"
)

// Ball is one recorded delivery. Balls are never edited after they are appended.
type Ball struct {
	ID             string     `json:"id"`
	BallNumber     int        `json:"ballNumber"`
	Runs           int        `json:"runs"`
	IsWicket       bool       `json:"isWicket"`
	WicketType     WicketType `json:"wicketType,omitempty"`
	FieldingTeamID TeamID     `json:"fieldingTeamId,omitempty"`
	IsNoball       bool       `json:"isNoball"`
	IsWide         bool       `json:"isWide"`
	Misconduct     bool       `json:"misconduct"`
	AutoWicket     bool       `json:"autoWicket,omitempty"` // third consecutive dot
	EffectiveRuns  int        `json:"effectiveRuns"`
}

// IsLegal reports whether the ball was delivered without a wide or no-ball.
func (b Ball) IsLegal() bool { return !b.IsNoball && !b.IsWide }

type Over struct {
	ID            string   `json:"id"`
	OverNumber    int      `json:"overNumber"`
	BowlingTeamID TeamID   `json:"bowlingTeamId"`
	BowlerID      PlayerID `json:"bowlerId,omitempty"`
	KeeperID      PlayerID `json:"keeperId,omitempty"`
	IsPowerplay   bool     `json:"isPowerplay"`
	Balls         []Ball   `json:"balls"`
}

func (o Over) Full() bool { return len(o.Balls) >= BallsPerOver }

type Innings struct {
	ID            string       `json:"id"`
	TeamID        TeamID       `json:"teamId"`
	Index         int          `json:"index"`
	State         InningsState `json:"state"`
	Overs         []Over       `json:"overs"`
	TotalRuns     int          `json:"totalRuns"`
	TotalWickets  int          `json:"totalWickets"`
	NoWicketBonus bool         `json:"noWicketBonus"`
	FinalScore    *int         `json:"finalScore,omitempty"`
}

type Match struct {
	ID           string                `json:"id"`
	TeamIDs      []TeamID              `json:"teamIds"`
	Rosters      map[TeamID][]PlayerID `json:"rosters,omitempty"`
	BattingOrder []TeamID              `json:"battingOrder,omitempty"`
	State        MatchState            `json:"state"`
	Innings      []Innings             `json:"innings"`
	Rankings     []MatchRanking        `json:"rankings,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// MatchRanking is the final standing of one team. Points is the averaged
// value shared by a tie group; PointsExact holds the same value as a
// fraction ("4/3") so a three-way split still sums to exactly 9.
type MatchRanking struct {
	MatchID       string          `json:"matchId"`
	TeamID        TeamID          `json:"teamId"`
	Rank          int             `json:"rank"`
	Points        decimal.Decimal `json:"points"`
	PointsExact   string          `json:"pointsExact"`
	FinalScore    int             `json:"finalScore"`
	FieldingBonus int             `json:"fieldingBonus"`
	TotalScore    int             `json:"totalScore"`
}

// ExactPoints returns the points as an exact fraction, falling back to the
// decimal value for rankings that predate PointsExact.
func (r MatchRanking) ExactPoints() *big.Rat {
	if rat, ok := new(big.Rat).SetString(r.PointsExact); ok {
		return rat
	}
	return r.Points.Rat()
}

// BallAction is the raw umpire input for one delivery.
type BallAction struct {
	Runs           int        `json:"runs"`
	IsWicket       bool       `json:"isWicket"`
	WicketType     WicketType `json:"wicketType,omitempty"`
	FieldingTeamID TeamID     `json:"fieldingTeamId,omitempty"`
	IsNoball       bool       `json:"isNoball"`
	IsWide         bool       `json:"isWide"`
	Misconduct     bool       `json:"misconduct"`
}
