package game

import (
	"errors"
	"fmt"
)

// GameState is the authoritative turn-based state machine. Values are
// immutable by convention: every accepted action produces a new state via
// ApplyAction and the receiver is never mutated. Internally the
// implementation clones first and then mutates the private clone, which
// keeps the external contract pure while the code stays imperative.
type GameState struct {
	config         Config
	grid           *Grid
	pawns          map[PlayerID]Pawns
	turn           PlayerID
	moveCount      int
	status         Status
	result         *Result
	timeLeft       map[PlayerID]float64
	lastMoveTime   int64
	history        []MoveInHistory
	turnsToSurvive int

	// pristine snapshot for undoing back past the first move
	initialGrid  *Grid
	initialPawns map[PlayerID]Pawns
	initialTime  map[PlayerID]float64
}

// NewGameState constructs the starting state for the given configuration.
// Freestyle configurations without a pre-generated setup get one generated
// and written back into the config so that serialization round-trips.
func NewGameState(config Config) (*GameState, error) {
	if config.BoardWidth < MinBoardSize || config.BoardWidth > MaxBoardSize ||
		config.BoardHeight < MinBoardSize || config.BoardHeight > MaxBoardSize {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidBoardSize, config.BoardWidth, config.BoardHeight)
	}

	initial, err := buildInitialState(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to build initial state: %w", err)
	}

	grid := NewGrid(config.BoardWidth, config.BoardHeight)
	for _, wall := range initial.Walls {
		grid.AddWall(wall)
	}

	timeLeft := map[PlayerID]float64{
		Player1: float64(config.TimeControl.InitialSeconds),
		Player2: float64(config.TimeControl.InitialSeconds),
	}

	return &GameState{
		config:         config,
		grid:           grid,
		pawns:          clonePawns(initial.Pawns),
		turn:           Player1,
		status:         StatusPlaying,
		timeLeft:       timeLeft,
		turnsToSurvive: initial.TurnsToSurvive,
		initialGrid:    grid.Clone(),
		initialPawns:   clonePawns(initial.Pawns),
		initialTime:    cloneTime(timeLeft),
	}, nil
}

func (that *GameState) Config() Config                 { return that.config }
func (that *GameState) Turn() PlayerID                 { return that.turn }
func (that *GameState) MoveCount() int                 { return that.moveCount }
func (that *GameState) Status() Status                 { return that.status }
func (that *GameState) LastMoveTime() int64            { return that.lastMoveTime }
func (that *GameState) Pawns(player PlayerID) Pawns    { return that.pawns[player] }
func (that *GameState) TimeLeft(player PlayerID) float64 { return that.timeLeft[player] }

// Result returns the game result, or nil while the game is undecided.
func (that *GameState) Result() *Result {
	return cloneResult(that.result)
}

// History returns the move history snapshots, oldest first. Entries are
// immutable; callers must not modify the returned slice.
func (that *GameState) History() []MoveInHistory {
	return that.history
}

// Walls enumerates the walls currently on the board.
func (that *GameState) Walls() []WallPosition {
	return that.grid.Walls()
}

// Distance is the BFS hop count between two cells on the current board,
// -1 when unreachable. Rendering layers use it for reachable-cell
// highlights, bots for pursuit.
func (that *GameState) Distance(from, to Cell) int {
	return that.grid.Distance(from, to)
}

// AccessibleNeighbors returns the orthogonal neighbors of a cell not cut
// off by a wall.
func (that *GameState) AccessibleNeighbors(cell Cell) []Cell {
	return that.grid.AccessibleNeighbors(cell)
}

// CanPlaceWall reports whether the candidate wall would be a legal
// placement in the current position.
func (that *GameState) CanPlaceWall(candidate WallPosition) bool {
	return that.grid.CanBuildWall(that.reachPairs(), candidate)
}

// CatGoal returns the cell the player's cat is trying to reach: the
// opponent's mouse, or the player's own home in the classic variant.
func (that *GameState) CatGoal(player PlayerID) Cell {
	if that.config.Variant == VariantClassic {
		return that.pawns[player].Mouse
	}
	return that.pawns[player.Opponent()].Mouse
}

// reachPairs lists the cat-to-goal connections every committed wall
// placement must preserve.
func (that *GameState) reachPairs() []ReachPair {
	return []ReachPair{
		{From: that.pawns[Player1].Cat, To: that.CatGoal(Player1)},
		{From: that.pawns[Player2].Cat, To: that.CatGoal(Player2)},
	}
}

// Clone returns an independent copy of the state, for example to branch a
// speculative preview position without touching the authoritative one.
func (that *GameState) Clone() *GameState {
	return that.clone()
}

// ApplyAction validates and applies a game action, returning the
// resulting state. The receiver is never modified: on error no new state
// exists and the old state remains current by construction.
func (that *GameState) ApplyAction(action GameAction) (*GameState, error) {
	next := that.clone()

	var err error
	switch action.Kind {
	case KindMove:
		err = next.applyMove(action)
	case KindResign:
		err = next.applyResign(action)
	case KindTimeout:
		err = next.applyTimeout(action)
	case KindDraw:
		err = next.applyDraw()
	case KindGiveTime:
		err = next.applyGiveTime(action)
	case KindTakeback:
		err = next.applyTakeback(action)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownActionKind, action.Kind)
	}

	if err != nil {
		return nil, err
	}

	return next, nil
}

func (that *GameState) applyMove(action GameAction) error {
	if that.status != StatusPlaying {
		return ErrGameNotPlaying
	}
	if action.Player != that.turn {
		return ErrNotYourTurn
	}

	// The very first move of the game is free so that pre-game thinking
	// time is not charged against anyone's clock.
	if that.moveCount > 0 {
		elapsed := float64(action.Timestamp-that.lastMoveTime) / 1000.0
		remaining := that.timeLeft[action.Player] - elapsed
		if remaining < 0 {
			remaining = 0
		}
		that.timeLeft[action.Player] = remaining
	}
	that.lastMoveTime = action.Timestamp

	var move Move
	if action.Move != nil {
		move = *action.Move
	}
	if len(move.Actions) > maxActionsPerMove {
		return ErrTooManyActions
	}

	for _, act := range move.Actions {
		if err := that.applyOneAction(action.Player, act); err != nil {
			return err
		}
	}

	that.resolveMoveOutcome(action.Player, move)

	return nil
}

const maxActionsPerMove = 2

func (that *GameState) applyOneAction(player PlayerID, act Action) error {
	switch act.Type {
	case ActionCat, ActionMouse:
		return that.applyPawnStep(player, act)
	case ActionWall:
		// Legality is checked against the provisional pawn positions, so
		// a wall combined with a pawn step in the same move sees where
		// the pawns will actually be.
		candidate := WallPosition{Cell: act.Target, Orientation: act.WallOrientation, Player: player}
		if !that.grid.CanBuildWall(that.reachPairs(), candidate) {
			return fmt.Errorf("%w: %s wall at (%d,%d)", ErrIllegalWall, act.WallOrientation, act.Target.Row, act.Target.Col)
		}
		that.grid.AddWall(candidate)
		return nil
	default:
		return fmt.Errorf("%w: action type %q", ErrUnknownActionKind, act.Type)
	}
}

func (that *GameState) applyPawnStep(player PlayerID, act Action) error {
	if that.config.Variant == VariantClassic && act.Type == ActionMouse {
		return ErrMouseImmovable
	}
	if !that.grid.InBounds(act.Target) {
		return fmt.Errorf("%w: (%d,%d)", ErrTargetOutOfBounds, act.Target.Row, act.Target.Col)
	}

	pawns := that.pawns[player]
	from := pawns.Cat
	if act.Type == ActionMouse {
		from = pawns.Mouse
	}

	switch manhattan(from, act.Target) {
	case 1:
		if that.grid.blockedBetween(from, act.Target) {
			return ErrMoveBlocked
		}
	case 2:
		if !that.canDoubleStep(from, act.Target) {
			return ErrInvalidDoubleMove
		}
	default:
		return ErrInvalidMoveDistance
	}

	if act.Type == ActionCat {
		pawns.Cat = act.Target
	} else {
		pawns.Mouse = act.Target
	}
	that.pawns[player] = pawns

	return nil
}

// canDoubleStep checks the two-hop special move: exactly two unit steps
// through one admissible intermediate cell, never a longer path.
func (that *GameState) canDoubleStep(from, to Cell) bool {
	deltaRow := to.Row - from.Row
	deltaCol := to.Col - from.Col

	var intermediates []Cell
	if deltaRow == 0 || deltaCol == 0 {
		intermediates = []Cell{{Row: from.Row + deltaRow/2, Col: from.Col + deltaCol/2}}
	} else {
		intermediates = []Cell{
			{Row: from.Row + deltaRow, Col: from.Col},
			{Row: from.Row, Col: from.Col + deltaCol},
		}
	}

	for _, mid := range intermediates {
		if !that.grid.InBounds(mid) {
			continue
		}
		if !that.grid.blockedBetween(from, mid) && !that.grid.blockedBetween(mid, to) {
			return true
		}
	}

	return false
}

// resolveMoveOutcome records the completed move and evaluates terminal
// conditions against the fully resolved position.
func (that *GameState) resolveMoveOutcome(mover PlayerID, move Move) {
	opponent := mover.Opponent()

	// Fischer increment: credited once the move is complete, so an
	// illegal move attempt earns nothing.
	that.timeLeft[mover] += float64(that.config.TimeControl.IncrementSeconds)

	that.moveCount++
	that.history = append(that.history, MoveInHistory{
		Index:    that.moveCount,
		Move:     move,
		Grid:     that.grid.Clone(),
		Pawns:    clonePawns(that.pawns),
		TimeLeft: cloneTime(that.timeLeft),
	})
	that.turn = opponent

	// Capture by the mover's cat. Player 1 moves first each round, so a
	// photo-finish capture by player 1 is downgraded to a one-move-rule
	// draw when the opponent could have mirrored the winning move. The
	// check is asymmetric on purpose: it never triggers for player 2.
	if that.pawns[mover].Cat == that.CatGoal(mover) {
		if mover == Player1 {
			if d := that.grid.Distance(that.pawns[opponent].Cat, that.CatGoal(opponent)); d != -1 && d <= 2 {
				that.finish(0, ReasonOneMoveRule)
				return
			}
		}
		that.finish(mover, ReasonCapture)
		return
	}

	// Reverse capture: the opponent's cat already sits on its goal cell.
	if that.pawns[opponent].Cat == that.CatGoal(opponent) {
		that.finish(opponent, ReasonCapture)
		return
	}

	// Survival: the defender wins once the attacker has used up all of
	// their pursuit moves without a capture.
	if that.config.Variant == VariantSurvival && mover == Player1 && (that.moveCount+1)/2 >= that.turnsToSurvive {
		that.finish(Player2, ReasonSurvived)
		return
	}

	if !that.hasAnyLegalAction(opponent) {
		that.finish(0, ReasonStalemate)
	}
}

// hasAnyLegalAction reports whether the player has at least one legal
// pawn step or wall placement. The wall scan only runs in the rare case
// that both pawns are fully walled in.
func (that *GameState) hasAnyLegalAction(player PlayerID) bool {
	pawns := that.pawns[player]
	if len(that.grid.AccessibleNeighbors(pawns.Cat)) > 0 {
		return true
	}
	if that.config.Variant != VariantClassic && len(that.grid.AccessibleNeighbors(pawns.Mouse)) > 0 {
		return true
	}

	pairs := that.reachPairs()
	for row := 0; row < that.grid.Height(); row++ {
		for col := 0; col < that.grid.Width(); col++ {
			cell := Cell{Row: row, Col: col}
			if that.grid.CanBuildWall(pairs, WallPosition{Cell: cell, Orientation: Vertical}) {
				return true
			}
			if that.grid.CanBuildWall(pairs, WallPosition{Cell: cell, Orientation: Horizontal}) {
				return true
			}
		}
	}

	return false
}

func (that *GameState) applyResign(action GameAction) error {
	if that.status != StatusPlaying {
		return ErrGameNotPlaying
	}
	that.finish(action.Player.Opponent(), ReasonResignation)
	return nil
}

func (that *GameState) applyTimeout(action GameAction) error {
	if that.status != StatusPlaying {
		return ErrGameNotPlaying
	}
	that.timeLeft[action.Player] = 0
	that.finish(action.Player.Opponent(), ReasonTimeout)
	return nil
}

func (that *GameState) applyDraw() error {
	if that.status != StatusPlaying {
		return ErrGameNotPlaying
	}
	that.finish(0, ReasonDrawAgreement)
	return nil
}

func (that *GameState) applyGiveTime(action GameAction) error {
	if that.status != StatusPlaying {
		return ErrGameNotPlaying
	}
	that.timeLeft[action.Player.Opponent()] += action.Seconds
	return nil
}

// applyTakeback reverts history back to the prior playing state. The
// accepting player is the one in action.Player; the requester is the
// other. When it is currently the requester's turn the accepter moved
// most recently, so both that move and the requester's move before it
// are undone; otherwise only the requester's move is.
func (that *GameState) applyTakeback(action GameAction) error {
	if that.status == StatusAborted {
		return ErrGameNotPlaying
	}

	undo := 1
	if that.turn == action.Player.Opponent() {
		undo = 2
	}

	for i := 0; i < undo; i++ {
		if err := that.undoLastMove(); err != nil {
			if i > 0 && errors.Is(err, ErrNothingToTakeback) {
				break
			}
			return err
		}
	}

	return nil
}

func (that *GameState) undoLastMove() error {
	if len(that.history) == 0 {
		return ErrNothingToTakeback
	}

	that.history = that.history[:len(that.history)-1]
	that.moveCount--

	if len(that.history) > 0 {
		last := that.history[len(that.history)-1]
		that.grid = last.Grid.Clone()
		that.pawns = clonePawns(last.Pawns)
		that.timeLeft = cloneTime(last.TimeLeft)
	} else {
		that.grid = that.initialGrid.Clone()
		that.pawns = clonePawns(that.initialPawns)
		that.timeLeft = cloneTime(that.initialTime)
	}

	that.turn = that.turn.Opponent()
	that.status = StatusPlaying
	that.result = nil

	return nil
}

func (that *GameState) finish(winner PlayerID, reason string) {
	that.status = StatusFinished
	that.result = &Result{Winner: winner, Reason: reason}
}

// clone deep-copies every mutable field. History entries are immutable
// snapshots, so the slice gets a fresh backing array while the entries
// themselves are shared. The pristine initial snapshot is never mutated
// and is shared as well; undo clones it before installing it.
func (that *GameState) clone() *GameState {
	return &GameState{
		config:         that.config,
		grid:           that.grid.Clone(),
		pawns:          clonePawns(that.pawns),
		turn:           that.turn,
		moveCount:      that.moveCount,
		status:         that.status,
		result:         cloneResult(that.result),
		timeLeft:       cloneTime(that.timeLeft),
		lastMoveTime:   that.lastMoveTime,
		history:        append([]MoveInHistory(nil), that.history...),
		turnsToSurvive: that.turnsToSurvive,
		initialGrid:    that.initialGrid,
		initialPawns:   that.initialPawns,
		initialTime:    that.initialTime,
	}
}

func clonePawns(pawns map[PlayerID]Pawns) map[PlayerID]Pawns {
	cloned := make(map[PlayerID]Pawns, len(pawns))
	for player, p := range pawns {
		cloned[player] = p
	}
	return cloned
}

func cloneTime(timeLeft map[PlayerID]float64) map[PlayerID]float64 {
	cloned := make(map[PlayerID]float64, len(timeLeft))
	for player, t := range timeLeft {
		cloned[player] = t
	}
	return cloned
}

func cloneResult(result *Result) *Result {
	if result == nil {
		return nil
	}
	cloned := *result
	return &cloned
}
