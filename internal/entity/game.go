package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/wallchase/wallchase-backend/internal/apperror"
	"github.com/wallchase/wallchase-backend/internal/game"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	PublicType  = "public"
	PrivateType = "private"
	WithBotType = "bot"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is the lobby-level record stored in the hot store: who is seated
// where, whether the match has started, and the serialized engine state.
// All rule decisions live in the engine; Game only tracks the session
// around it.
type Game struct {
	ID      string           `json:"id"`
	Type    string           `json:"type,omitempty"`
	Status  string           `json:"status"`
	Players []*Player        `json:"players,omitempty"`
	State   *game.Serialized `json:"state,omitempty"`
}

func NewGame(id, gameType string, state *game.Serialized) *Game {
	return &Game{
		ID:     id,
		Type:   gameType,
		Status: StatusWaiting,
		State:  state,
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

// SyncStatus pulls the lobby status in line with the engine state after
// an action was applied.
func (that *Game) SyncStatus() {
	if that.State == nil {
		return
	}
	switch that.State.Status {
	case game.StatusFinished, game.StatusAborted:
		that.Status = StatusFinished
	case game.StatusPlaying:
		if that.Status != StatusWaiting {
			that.Status = StatusOngoing
		}
	}
}

// PlayerByID returns the seated player with the given ID, or nil.
func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// PlayerByNumber returns the player seated as the given engine side, or
// nil when that seat is still open.
func (that *Game) PlayerByNumber(number game.PlayerID) *Player {
	for _, player := range that.Players {
		if player.Number == number {
			return player
		}
	}
	return nil
}

// OpenSeat returns the engine side not taken yet. Player 1 goes first.
func (that *Game) OpenSeat() (game.PlayerID, error) {
	if that.PlayerByNumber(game.Player1) == nil {
		return game.Player1, nil
	}
	if that.PlayerByNumber(game.Player2) == nil {
		return game.Player2, nil
	}
	return 0, apperror.ErrGameFull
}

func (that *Game) GetRandomNumbers() (game.PlayerID, game.PlayerID) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return game.Player1, game.Player2
	}
	return game.Player2, game.Player1
}
