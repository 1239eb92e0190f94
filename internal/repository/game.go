package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/wallchase/wallchase-backend/internal/entity"
)

var ErrGameNotFound = errors.New("game not found")

const openGamesKey = "games:open"

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	AddOpenGame(ctx context.Context, id string) error
	PopOpenGame(ctx context.Context) (string, error)
	RemoveOpenGame(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	gameKey := "game:" + game.ID
	err = that.client.Set(ctx, gameKey, gameJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	gameKey := "game:" + id

	response, err := that.client.Get(ctx, gameKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by ID: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	gameKey := "game:" + id

	err := that.client.Del(ctx, gameKey).Err()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	return nil
}

// AddOpenGame registers a public game waiting for an opponent.
func (that *dbGame) AddOpenGame(ctx context.Context, id string) error {
	if err := that.client.SAdd(ctx, openGamesKey, id).Err(); err != nil {
		return fmt.Errorf("failed to add open game: %w", err)
	}

	return nil
}

// PopOpenGame takes one waiting public game off the matchmaking set.
// Returns ErrGameNotFound when no game is waiting.
func (that *dbGame) PopOpenGame(ctx context.Context) (string, error) {
	id, err := that.client.SPop(ctx, openGamesKey).Result()

	if errors.Is(err, redis.Nil) {
		return "", ErrGameNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to pop open game: %w", err)
	}

	return id, nil
}

func (that *dbGame) RemoveOpenGame(ctx context.Context, id string) error {
	if err := that.client.SRem(ctx, openGamesKey, id).Err(); err != nil {
		return fmt.Errorf("failed to remove open game: %w", err)
	}

	return nil
}
