package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
)

// Message is one WebSocket exchange: an action name plus its payload.
// Responses reuse the request's action name.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player *entity.Player   `json:"player,omitempty"`
	Game   *entity.Game     `json:"game,omitempty"`
	Config *game.Config     `json:"config,omitempty"`
	Action *game.GameAction `json:"game_action,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func marshalPayload(payload Payload) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return raw, nil
}
