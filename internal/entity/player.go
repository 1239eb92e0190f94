package entity

import (
	"strings"

	"github.com/wallchase/wallchase-backend/internal/game"
)

const botIDPrefix = "bot:"

type Player struct {
	ID     string        `json:"id"`
	Number game.PlayerID `json:"number,omitempty"`
	GameID string        `json:"game_id,omitempty"`
}

func (that *Player) IsBot() bool {
	return strings.HasPrefix(that.ID, botIDPrefix)
}

// NewBotPlayer creates the bot seat for a game, keyed by the game ID so
// every bot game has exactly one bot identity.
func NewBotPlayer(gameID string, number game.PlayerID) *Player {
	return &Player{
		ID:     botIDPrefix + gameID,
		Number: number,
		GameID: gameID,
	}
}
