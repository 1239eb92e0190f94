package game

// PlayerID identifies one of the two players.
type PlayerID int

const (
	Player1 PlayerID = 1
	Player2 PlayerID = 2
)

// Opponent returns the other player.
func (p PlayerID) Opponent() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// Cell is a board coordinate. Row 0 is the top row, Col 0 the left column.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Orientation of a wall anchored at a cell.
type Orientation string

const (
	// Vertical walls at (r,c) block movement between (r,c) and (r,c+1).
	Vertical Orientation = "vertical"
	// Horizontal walls at (r,c) block movement between (r-1,c) and (r,c).
	Horizontal Orientation = "horizontal"
)

// WallPosition is a placed or candidate wall. Player is the owner; zero
// means unowned (a candidate that has not been committed yet).
type WallPosition struct {
	Cell        Cell        `json:"cell"`
	Orientation Orientation `json:"orientation"`
	Player      PlayerID    `json:"playerId,omitempty"`
}

// Pawns holds one player's pawn cells. In the classic variant Mouse is the
// player's fixed home cell rather than a movable pawn.
type Pawns struct {
	Cat   Cell `json:"cat"`
	Mouse Cell `json:"mouse"`
}

// Variant names a ruleset preset sharing the same grid/legality engine.
type Variant string

const (
	VariantStandard  Variant = "standard"
	VariantClassic   Variant = "classic"
	VariantSurvival  Variant = "survival"
	VariantFreestyle Variant = "freestyle"
)

// Status of a game.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
	StatusAborted  Status = "aborted"
)

// Reasons a game can finish with.
const (
	ReasonCapture       = "capture"
	ReasonResignation   = "resignation"
	ReasonTimeout       = "timeout"
	ReasonDrawAgreement = "draw-agreement"
	ReasonOneMoveRule   = "one-move-rule"
	ReasonSurvived      = "survived"
	ReasonStalemate     = "stalemate"
)

// Result of a finished game. Winner is zero for drawn outcomes.
type Result struct {
	Winner PlayerID `json:"winner,omitempty"`
	Reason string   `json:"reason"`
}

// TimeControl is the clock setting both players start with.
type TimeControl struct {
	InitialSeconds   int    `json:"initialSeconds"`
	IncrementSeconds int    `json:"incrementSeconds"`
	Preset           string `json:"preset,omitempty"`
}

// ActionType tags one action inside a move.
type ActionType string

const (
	ActionCat   ActionType = "cat"
	ActionMouse ActionType = "mouse"
	ActionWall  ActionType = "wall"
)

// Action is a single pawn step or wall placement within a move.
type Action struct {
	Type            ActionType  `json:"type"`
	Target          Cell        `json:"target"`
	WallOrientation Orientation `json:"wallOrientation,omitempty"`
}

// Move is what one player submits on their turn: up to two actions.
type Move struct {
	Actions []Action `json:"actions"`
}

// ActionKind tags a GameAction submitted to ApplyAction.
type ActionKind string

const (
	KindMove     ActionKind = "move"
	KindResign   ActionKind = "resign"
	KindTimeout  ActionKind = "timeout"
	KindDraw     ActionKind = "draw"
	KindTakeback ActionKind = "takeback"
	KindGiveTime ActionKind = "giveTime"
)

// GameAction is the tagged union of everything a caller can submit.
// Timestamp is caller-supplied wall-clock milliseconds so that replay and
// tests control elapsed-time accounting deterministically.
type GameAction struct {
	Kind      ActionKind `json:"kind"`
	Move      *Move      `json:"move,omitempty"`
	Player    PlayerID   `json:"playerId,omitempty"`
	Seconds   float64    `json:"seconds,omitempty"`
	Timestamp int64      `json:"timestamp"`
}

// MoveInHistory snapshots the fully resolved state after one move. The
// grid clone makes undo and history scrubbing O(1).
type MoveInHistory struct {
	Index    int
	Move     Move
	Grid     *Grid
	Pawns    map[PlayerID]Pawns
	TimeLeft map[PlayerID]float64
}

func manhattan(a, b Cell) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
