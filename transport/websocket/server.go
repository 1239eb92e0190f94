package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string, config game.Config) (*entity.Game, error)
	CreateOrJoinToPublicGame(ctx context.Context, playerID string, config game.Config) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error)

	ApplyAction(ctx context.Context, playerID string, action game.GameAction) (*entity.Game, error)
	EndGame(ctx context.Context, existingGame *entity.Game) error
}

// connection wraps a websocket conn with a write lock; gorilla conns do
// not allow concurrent writers.
type connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (that *connection) sendJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

type handlerFunc func(ctx context.Context, message *Message, conn *connection) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger,
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		connections: make(map[string]*connection),
		handlers:    make(map[string]handlerFunc),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:action"] = server.handleGameAction
	server.handlers["game:leave"] = server.handleGameLeave

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection upgrades the HTTP request and pumps messages until the
// client goes away.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{conn: wsConn}
	defer func() {
		that.handleDisconnect(conn)
		_ = wsConn.Close()
	}()

	log.Info("WebSocket connection established", "remote", wsConn.RemoteAddr().String())

	for {
		var message Message
		if err = wsConn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("connection closed unexpectedly", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendError(conn, message.Action, "unknown action"); err != nil {
				log.Error("failed to send error response", "error", err)
			}
			continue
		}

		if err = handler(ctx, &message, conn); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) registerConnection(playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()
	that.connections[playerID] = conn
}

func (that *Server) connectionFor(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()
	conn, ok := that.connections[playerID]
	return conn, ok
}

func (that *Server) handleDisconnect(conn *connection) {
	log := that.logger.With("method", "handleDisconnect")

	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, registered := range that.connections {
		if registered == conn {
			delete(that.connections, playerID)
			log.Info("player disconnected", "playerID", playerID)
			return
		}
	}
}

func (that *Server) sendMessage(conn *connection, action string, payload Payload) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	response := Message{
		Action:  action,
		Payload: raw,
	}

	if err = conn.sendJSON(response); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

func (that *Server) sendError(conn *connection, action, errorMsg string) error {
	return that.sendMessage(conn, action, Payload{Error: errorMsg})
}
