package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
)

type fakeUseCase struct {
	games map[string]*entity.Game

	applyErr error
}

func (that *fakeUseCase) GetOrCreatePlayer(_ context.Context, id string) (*entity.Player, error) {
	if id == "" {
		id = "generated"
	}
	return &entity.Player{ID: id}, nil
}

func (that *fakeUseCase) GetOrCreateGame(_ context.Context, playerID, gameType string, config game.Config) (*entity.Game, error) {
	state, err := game.NewGameState(config)
	if err != nil {
		return nil, err
	}

	newGame := entity.NewGame("game-1", gameType, state.Serialize())
	newGame.Players = []*entity.Player{{ID: playerID, Number: game.Player1, GameID: newGame.ID}}
	that.games[newGame.ID] = newGame

	return newGame, nil
}

func (that *fakeUseCase) CreateOrJoinToPublicGame(ctx context.Context, playerID string, config game.Config) (*entity.Game, error) {
	return that.GetOrCreateGame(ctx, playerID, entity.PublicType, config)
}

func (that *fakeUseCase) JoinGameByID(_ context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame := that.games[gameID]
	existingGame.Players = append(existingGame.Players, &entity.Player{ID: playerID, Number: game.Player2, GameID: gameID})
	existingGame.Status = entity.StatusOngoing
	return existingGame, nil
}

func (that *fakeUseCase) GetGameByPlayerID(context.Context, string) (*entity.Game, error) {
	return that.games["game-1"], nil
}

func (that *fakeUseCase) ApplyAction(_ context.Context, playerID string, _ game.GameAction) (*entity.Game, error) {
	if that.applyErr != nil {
		return that.games["game-1"], that.applyErr
	}
	return that.games["game-1"], nil
}

func (that *fakeUseCase) EndGame(context.Context, *entity.Game) error {
	return nil
}

func newTestServer(t *testing.T, useCase *fakeUseCase) *websocket.Conn {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	server := New(logger, useCase)

	httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.serveConnection(context.Background(), w, r)
	}))
	t.Cleanup(httpServer.Close)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, payload Payload) Message {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: raw}))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))

	return reply
}

func decodePayload(t *testing.T, msg Message) Payload {
	t.Helper()

	var payload Payload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return payload
}

func TestServer_Connect(t *testing.T) {
	useCase := &fakeUseCase{games: make(map[string]*entity.Game)}
	conn := newTestServer(t, useCase)

	t.Run("assigns an id to a new player", func(t *testing.T) {
		// When: connecting without a player id
		reply := sendAction(t, conn, "connect", Payload{})

		// Then: the server assigns one
		require.Equal(t, "connect", reply.Action)
		payload := decodePayload(t, reply)
		require.NotNil(t, payload.Player)
		assert.Equal(t, "generated", payload.Player.ID)
	})

	t.Run("keeps a known player id", func(t *testing.T) {
		reply := sendAction(t, conn, "connect", Payload{Player: &entity.Player{ID: "alice"}})

		payload := decodePayload(t, reply)
		require.NotNil(t, payload.Player)
		assert.Equal(t, "alice", payload.Player.ID)
	})

	t.Run("rejects an unknown action", func(t *testing.T) {
		reply := sendAction(t, conn, "game:teleport", Payload{})

		payload := decodePayload(t, reply)
		assert.Equal(t, "unknown action", payload.Error)
	})
}

func TestServer_NewGame(t *testing.T) {
	useCase := &fakeUseCase{games: make(map[string]*entity.Game)}
	conn := newTestServer(t, useCase)

	// Given: a connected player
	sendAction(t, conn, "connect", Payload{Player: &entity.Player{ID: "alice"}})

	// When: creating a private game without an engine config
	reply := sendAction(t, conn, "game:new", Payload{
		Player: &entity.Player{ID: "alice"},
		Game:   &entity.Game{Type: entity.PrivateType},
	})

	// Then: the broadcast carries the masked game and this player's seat
	require.Equal(t, "game:new", reply.Action)
	payload := decodePayload(t, reply)
	require.NotNil(t, payload.Game)
	assert.Equal(t, "game-1", payload.Game.ID)
	assert.Nil(t, payload.Game.Players)
	require.NotNil(t, payload.Game.State)
	assert.Equal(t, 9, payload.Game.State.Config.BoardWidth)
	require.NotNil(t, payload.Player)
	assert.Equal(t, "alice", payload.Player.ID)
}

func TestServer_GameAction(t *testing.T) {
	t.Run("broadcasts an applied action", func(t *testing.T) {
		useCase := &fakeUseCase{games: make(map[string]*entity.Game)}
		conn := newTestServer(t, useCase)

		sendAction(t, conn, "game:new", Payload{
			Player: &entity.Player{ID: "alice"},
			Game:   &entity.Game{Type: entity.PrivateType},
		})

		reply := sendAction(t, conn, "game:action", Payload{
			Player: &entity.Player{ID: "alice"},
			Action: &game.GameAction{Kind: game.KindMove},
		})

		require.Equal(t, "game:action", reply.Action)
		payload := decodePayload(t, reply)
		require.NotNil(t, payload.Game)
		assert.Empty(t, payload.Error)
	})

	t.Run("returns an engine rejection to the sender only", func(t *testing.T) {
		useCase := &fakeUseCase{games: make(map[string]*entity.Game), applyErr: game.ErrNotYourTurn}
		conn := newTestServer(t, useCase)

		sendAction(t, conn, "game:new", Payload{
			Player: &entity.Player{ID: "alice"},
			Game:   &entity.Game{Type: entity.PrivateType},
		})

		reply := sendAction(t, conn, "game:action", Payload{
			Player: &entity.Player{ID: "alice"},
			Action: &game.GameAction{Kind: game.KindMove},
		})

		payload := decodePayload(t, reply)
		assert.Contains(t, payload.Error, game.ErrNotYourTurn.Error())
	})
}
