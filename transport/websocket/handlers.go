package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wallchase/wallchase-backend/internal/apperror"
	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
)

const payloadActionGameLeave = "game:leave"

// defaultConfig is used when game:new arrives without an engine config.
func defaultConfig() game.Config {
	return game.Config{
		BoardWidth:  9,
		BoardHeight: 9,
		Variant:     game.VariantStandard,
		TimeControl: game.TimeControl{InitialSeconds: 300},
	}
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	var playerID string
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return that.sendError(conn, msg.Action, "failed to create a new player")
	}

	that.registerConnection(player.ID, conn)

	payloadResp := Payload{Player: player}

	if player.GameID != "" {
		existingGame, err := that.gameUseCase.GetGameByPlayerID(ctx, player.ID)
		if err != nil {
			log.Error("failed to get game", "gameID", player.GameID, "error", err)
			return that.sendError(conn, msg.Action, "failed to get the game")
		}
		payloadResp.Game = maskGameDetails(existingGame)
	}

	if err = that.sendMessage(conn, msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleNewGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendError(conn, msg.Action, "Player is required")
	}

	if payloadReq.Game == nil {
		log.Error("Game is missing in payload")
		return that.sendError(conn, msg.Action, "Game is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	config := defaultConfig()
	if payloadReq.Config != nil {
		config = *payloadReq.Config
	}

	var existingGame *entity.Game
	var err error

	if payloadReq.Game.IsPublic() {
		existingGame, err = that.gameUseCase.CreateOrJoinToPublicGame(ctx, payloadReq.Player.ID, config)
	} else {
		existingGame, err = that.gameUseCase.GetOrCreateGame(ctx, payloadReq.Player.ID, payloadReq.Game.Type, config)
	}

	if err != nil {
		log.Error("failed to create or join game", "type", payloadReq.Game.Type, "error", err)
		return that.sendError(conn, msg.Action, "failed to create a new game")
	}

	that.broadcastGame(msg.Action, existingGame)

	log.Info("game ready", "gameID", existingGame.ID)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleJoinGame")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendError(conn, msg.Action, "Player is required")
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		log.Error("Game is missing in payload")
		return that.sendError(conn, msg.Action, "Game is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	existingGame, err := that.gameUseCase.JoinGameByID(ctx, payloadReq.Game.ID, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to join game", "error", err)
		return that.sendError(conn, msg.Action, fmt.Sprintf("game %s: %v", payloadReq.Game.ID, err))
	}

	that.broadcastGame(msg.Action, existingGame)

	log.Info("Player joined game", "gameID", existingGame.ID)

	return nil
}

func (that *Server) handleGameAction(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameAction")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendError(conn, msg.Action, "Player is required")
	}

	if payloadReq.Action == nil {
		log.Error("Action is missing in payload")
		return that.sendError(conn, msg.Action, "Action is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	log = log.With("playerID", payloadReq.Player.ID)

	existingGame, err := that.gameUseCase.ApplyAction(ctx, payloadReq.Player.ID, *payloadReq.Action)

	switch {
	case errors.Is(err, apperror.ErrGameFinished):
		that.broadcastGame(msg.Action, existingGame)
		log.Info("Game finished", "gameID", existingGame.ID)
		return nil

	case errors.Is(err, apperror.ErrGameIsNotStarted):
		return that.sendError(conn, msg.Action, fmt.Sprintf("game %s: %v", existingGame.ID, err))

	case err != nil:
		// Engine rejections (wrong turn, blocked move, illegal wall) go
		// back to the sender; nothing changed for the opponent.
		log.Warn("action rejected", "error", err)
		return that.sendError(conn, msg.Action, err.Error())
	}

	that.broadcastGame(msg.Action, existingGame)

	log.Info("action applied", "gameID", existingGame.ID)

	return nil
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, conn *connection) error {
	log := that.logger.With("method", "handleGameLeave")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payloadReq.Player == nil {
		log.Error("Player is missing in payload")
		return that.sendError(conn, msg.Action, "Player is required")
	}

	that.registerConnection(payloadReq.Player.ID, conn)

	existingGame, err := that.gameUseCase.GetGameByPlayerID(ctx, payloadReq.Player.ID)
	if err != nil {
		log.Error("failed to find game", "error", err)
		return that.sendError(conn, msg.Action, "game doesn't exist")
	}

	if err = that.gameUseCase.EndGame(ctx, existingGame); err != nil {
		log.Error("failed to end game", "error", err)
		return that.sendError(conn, msg.Action, "failed to leave the game")
	}

	that.broadcastGame(payloadActionGameLeave, existingGame)

	log.Info("Player left game", "gameID", existingGame.ID)

	return nil
}

// broadcastGame pushes the game state to every seated human player.
func (that *Server) broadcastGame(action string, existingGame *entity.Game) {
	log := that.logger.With("method", "broadcastGame", "gameID", existingGame.ID)

	for _, player := range existingGame.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connectionFor(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		payloadResp := Payload{
			Player: player,
			Game:   maskGameDetails(existingGame),
		}

		if err := that.sendMessage(conn, action, payloadResp); err != nil {
			log.Error("failed to send game update", "error", err)
		}
	}
}

// maskGameDetails strips the seat list from the broadcast copy; each
// client gets its own Player in the payload instead.
func maskGameDetails(existingGame *entity.Game) *entity.Game {
	masked := *existingGame
	masked.Players = nil
	return &masked
}
