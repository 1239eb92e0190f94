package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wallchase/wallchase-backend/internal/apperror"
	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
	"github.com/wallchase/wallchase-backend/internal/repository"
)

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	Unseat(ctx context.Context, player *entity.Player) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	AddOpenGame(ctx context.Context, id string) error
	PopOpenGame(ctx context.Context) (string, error)
	RemoveOpenGame(ctx context.Context, id string) error
}

type archiveRepo interface {
	Save(ctx context.Context, item *entity.Game) error
}

type botService interface {
	ChooseAction(state *game.GameState, bot game.PlayerID, timestamp int64) (game.GameAction, error)
}

// GameManager serializes all mutations of a game behind a per-game lock:
// the engine state itself is immutable, but the read-modify-write cycle
// against the repository is not, and two concurrent actions on the same
// game must not interleave it.
type GameManager struct {
	logger *slog.Logger

	playerRepo playerRepo
	gameRepo   gameRepo
	archive    archiveRepo
	bot        botService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, archive archiveRepo, bot botService) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		archive:    archive,
		bot:        bot,

		locks: make(map[string]*sync.Mutex),
	}
}

func (that *GameManager) lockGame(id string) *sync.Mutex {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock, ok := that.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[id] = lock
	}

	return lock
}

func (that *GameManager) releaseGameLock(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()
	delete(that.locks, id)
}

func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		return that.createPlayer(ctx)
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		player = &entity.Player{ID: id}
		if err = that.updatePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}
		return player, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	player := &entity.Player{
		ID: uuid.NewString(),
	}

	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

// GetOrCreateGame returns the player's current game, or creates a new
// one from the given engine config.
func (that *GameManager) GetOrCreateGame(ctx context.Context, playerID, gameType string, config game.Config) (*entity.Game, error) {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		existingGame, err := that.getGameByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}
		return existingGame, nil
	}

	return that.createGame(ctx, player, gameType, config)
}

// CreateOrJoinToPublicGame seats the player in a waiting public game, or
// opens a new one when nobody is waiting.
func (that *GameManager) CreateOrJoinToPublicGame(ctx context.Context, playerID string, config game.Config) (*entity.Game, error) {
	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID != "" {
		existingGame, err := that.getGameByID(ctx, player.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}
		return existingGame, nil
	}

	openID, err := that.gameRepo.PopOpenGame(ctx)
	if errors.Is(err, repository.ErrGameNotFound) {
		return that.createGame(ctx, player, entity.PublicType, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop open game: %w", err)
	}

	return that.JoinGameByID(ctx, openID, player.ID)
}

// JoinGameByID seats the player on the open side of the game and starts
// the match once both seats are taken.
func (that *GameManager) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	lock := that.lockGame(gameID)
	lock.Lock()
	defer lock.Unlock()

	existingGame, err := that.getGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if existingGame.PlayerByID(player.ID) != nil {
		return existingGame, nil
	}

	seat, err := existingGame.OpenSeat()
	if err != nil {
		return nil, fmt.Errorf("%w: game id %s", err, gameID)
	}

	player.GameID = existingGame.ID
	player.Number = seat
	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player by id: %w", err)
	}

	existingGame.Players = append(existingGame.Players, player)
	if len(existingGame.Players) == 2 {
		existingGame.Status = entity.StatusOngoing
		if err = that.gameRepo.RemoveOpenGame(ctx, existingGame.ID); err != nil {
			that.logger.Warn("failed to remove open game", "gameID", existingGame.ID, "error", err)
		}
	}

	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, fmt.Errorf("failed to update game by id: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) GetGameByPlayerID(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	existingGame, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

// ApplyAction validates and applies one game action on behalf of the
// player, persisting the resulting state. Finished games are archived to
// the cold store and removed from the hot one.
func (that *GameManager) ApplyAction(ctx context.Context, playerID string, action game.GameAction) (*entity.Game, error) {
	log := that.logger.With("method", "ApplyAction", "playerID", playerID)

	player, err := that.getPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	lock := that.lockGame(player.GameID)
	lock.Lock()
	retired := false
	defer func() {
		lock.Unlock()
		// The lock entry may only be dropped once nobody holds the
		// mutex, or a concurrent caller would mint a second one for
		// the same game.
		if retired {
			that.releaseGameLock(player.GameID)
		}
	}()

	existingGame, err := that.getGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = existingGame.ConfirmOngoingState(); err != nil {
		return existingGame, err
	}

	seated := existingGame.PlayerByID(player.ID)
	if seated == nil {
		return nil, apperror.ErrNotSeated
	}

	state, err := that.hydrate(existingGame)
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate game state: %w", err)
	}

	action.Player = seated.Number
	if action.Timestamp == 0 {
		action.Timestamp = time.Now().UnixMilli()
	}

	next, err := state.ApplyAction(action)
	if err != nil {
		return existingGame, fmt.Errorf("failed to apply action: %w", err)
	}

	// Let the bot answer while the game is still running.
	if existingGame.IsWithBot() && next.Status() == game.StatusPlaying {
		if seat := existingGame.PlayerByNumber(next.Turn()); seat != nil && seat.IsBot() {
			next, err = that.playBotMove(next, seat.Number, action.Timestamp)
			if err != nil {
				log.Warn("bot failed to move", "gameID", existingGame.ID, "error", err)
			}
		}
	}

	existingGame.State = next.Serialize()
	existingGame.SyncStatus()

	if err = that.updateGame(ctx, existingGame); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if existingGame.IsFinished() {
		that.retireGame(ctx, existingGame)
		retired = true
		return existingGame, apperror.ErrGameFinished
	}

	return existingGame, nil
}

func (that *GameManager) playBotMove(state *game.GameState, bot game.PlayerID, timestamp int64) (*game.GameState, error) {
	action, err := that.bot.ChooseAction(state, bot, timestamp)
	if err != nil {
		return state, fmt.Errorf("failed to choose bot action: %w", err)
	}

	next, err := state.ApplyAction(action)
	if err != nil {
		return state, fmt.Errorf("failed to apply bot action: %w", err)
	}

	return next, nil
}

// EndGame aborts a running game, archives it and frees both seats.
func (that *GameManager) EndGame(ctx context.Context, existingGame *entity.Game) error {
	lock := that.lockGame(existingGame.ID)
	lock.Lock()
	defer func() {
		lock.Unlock()
		that.releaseGameLock(existingGame.ID)
	}()

	if existingGame.State != nil && existingGame.State.Status == game.StatusPlaying {
		existingGame.State.Status = game.StatusAborted
	}
	existingGame.Status = entity.StatusFinished

	if err := that.updateGame(ctx, existingGame); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	that.retireGame(ctx, existingGame)

	return nil
}

// hydrate rebuilds the engine state from the stored serialized form.
// A corrupt history is dropped rather than bricking the game: the
// position snapshot alone still allows play to continue.
func (that *GameManager) hydrate(existingGame *entity.Game) (*game.GameState, error) {
	if existingGame.State == nil {
		return nil, fmt.Errorf("game %s has no engine state", existingGame.ID)
	}

	state, err := game.FromSerialized(existingGame.State)
	if err == nil {
		return state, nil
	}

	that.logger.Warn("failed to replay game history, dropping it", "gameID", existingGame.ID, "error", err)

	stripped := *existingGame.State
	stripped.History = nil
	state, err = game.FromSerialized(&stripped)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild state without history: %w", err)
	}

	return state, nil
}

// retireGame moves a finished game from the hot store into the archive
// and unseats its players. Failures are logged, not returned: the game
// result has already been decided and persisted.
func (that *GameManager) retireGame(ctx context.Context, existingGame *entity.Game) {
	log := that.logger.With("method", "retireGame", "gameID", existingGame.ID)

	if err := that.archive.Save(ctx, existingGame); err != nil {
		log.Error("failed to archive game", "error", err)
	}

	if err := that.gameRepo.DeleteByID(ctx, existingGame.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	if err := that.gameRepo.RemoveOpenGame(ctx, existingGame.ID); err != nil {
		log.Error("failed to remove open game", "error", err)
	}

	for _, player := range existingGame.Players {
		if player.IsBot() {
			continue
		}

		if err := that.playerRepo.Unseat(ctx, player); err != nil {
			log.Error("failed to unseat player", "error", err)
		}
	}

	log.Info("game retired")
}

func (that *GameManager) createGame(ctx context.Context, player *entity.Player, gameType string, config game.Config) (*entity.Game, error) {
	state, err := game.NewGameState(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create game state: %w", err)
	}

	gameID := uuid.NewString()

	newGame := entity.NewGame(gameID, gameType, state.Serialize())

	creatorSeat, botSeat := newGame.GetRandomNumbers()
	if newGame.IsWithBot() {
		// The bot only acts in reply to a human move, so the human
		// always opens.
		creatorSeat, botSeat = game.Player1, game.Player2
	}

	player.GameID = gameID
	player.Number = creatorSeat

	newGame.Players = []*entity.Player{player}

	switch {
	case newGame.IsWithBot():
		bot := entity.NewBotPlayer(gameID, botSeat)
		newGame.Players = append(newGame.Players, bot)
		newGame.Status = entity.StatusOngoing
	case newGame.IsPublic():
		if err = that.gameRepo.AddOpenGame(ctx, gameID); err != nil {
			return nil, fmt.Errorf("failed to add open game: %w", err)
		}
	}

	if err = that.updatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if err = that.updateGame(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return newGame, nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

func (that *GameManager) updateGame(ctx context.Context, existingGame *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, existingGame); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
