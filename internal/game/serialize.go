package game

import "fmt"

// SerializedMove is one history entry in wire/storage form: notation
// instead of a grid snapshot.
type SerializedMove struct {
	Index    int    `json:"index"`
	Notation string `json:"notation"`
}

// Serialized is the wire/storage form of a GameState. Reconstruction
// replays each notation entry through a fresh state, so the payload stays
// compact while full grid snapshots are rebuilt on the way.
type Serialized struct {
	Config       Config               `json:"config"`
	Status       Status               `json:"status"`
	Result       *Result              `json:"result,omitempty"`
	Turn         PlayerID             `json:"turn"`
	MoveCount    int                  `json:"moveCount"`
	TimeLeft     map[PlayerID]float64 `json:"timeLeft"`
	LastMoveTime int64                `json:"lastMoveTime"`
	Pawns        map[PlayerID]Pawns   `json:"pawns"`
	Walls        []WallPosition       `json:"walls"`
	History      []SerializedMove     `json:"history"`
}

// Serialize renders the state for transport or persistence.
func (that *GameState) Serialize() *Serialized {
	history := make([]SerializedMove, len(that.history))
	for i, entry := range that.history {
		history[i] = SerializedMove{
			Index:    entry.Index,
			Notation: MoveToNotation(entry.Move, that.config.BoardHeight),
		}
	}

	return &Serialized{
		Config:       that.config,
		Status:       that.status,
		Result:       cloneResult(that.result),
		Turn:         that.turn,
		MoveCount:    that.moveCount,
		TimeLeft:     cloneTime(that.timeLeft),
		LastMoveTime: that.lastMoveTime,
		Pawns:        clonePawns(that.pawns),
		Walls:        that.grid.Walls(),
		History:      history,
	}
}

// FromSerialized reconstructs a GameState by replaying the notation
// history through a fresh state built from the serialized config. Clocks,
// last-move time, status and result are then restored from the snapshot,
// since resignations, timeouts and clock values are not derivable from
// the moves alone. A history entry that fails to parse or apply aborts
// reconstruction with an error; callers that prefer availability over
// history fidelity can retry with the history stripped.
func FromSerialized(serialized *Serialized) (*GameState, error) {
	state, err := NewGameState(serialized.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild initial state: %w", err)
	}

	// A payload whose history was stripped (for example after a corrupt
	// entry) still carries the full position snapshot; install it
	// directly. Takebacks are lost, play continues.
	if len(serialized.History) == 0 && serialized.MoveCount > 0 {
		grid := NewGrid(serialized.Config.BoardWidth, serialized.Config.BoardHeight)
		for _, wall := range serialized.Walls {
			grid.AddWall(wall)
		}
		state.grid = grid
		state.pawns = clonePawns(serialized.Pawns)
		state.turn = serialized.Turn
		state.moveCount = serialized.MoveCount

		// The snapshot becomes the floor undo can reach; the true game
		// start is no longer reconstructible without the history.
		state.initialGrid = grid.Clone()
		state.initialPawns = clonePawns(serialized.Pawns)
		state.initialTime = cloneTime(serialized.TimeLeft)
	}

	for _, entry := range serialized.History {
		move, err := MoveFromNotation(entry.Notation, serialized.Config.BoardHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to parse history entry %d: %w", entry.Index, err)
		}

		// Replaying with a constant timestamp keeps elapsed time at zero,
		// so the replay cannot distort the restored clocks.
		state, err = state.ApplyAction(GameAction{
			Kind:      KindMove,
			Move:      &move,
			Player:    state.Turn(),
			Timestamp: serialized.LastMoveTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to replay history entry %d: %w", entry.Index, err)
		}
	}

	state.timeLeft = cloneTime(serialized.TimeLeft)
	state.lastMoveTime = serialized.LastMoveTime
	state.status = serialized.Status
	state.result = cloneResult(serialized.Result)

	return state, nil
}
