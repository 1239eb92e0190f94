package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
	"github.com/wallchase/wallchase-backend/testing/suite"
)

func TestPlayerRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player seated in a game
	player := &entity.Player{
		ID:     "123",
		Number: game.Player1,
		GameID: "456",
	}

	// When: CreateOrUpdate is called
	err := playerRepo.CreateOrUpdate(ctx, player)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		player := &entity.Player{
			ID:     "123",
			Number: game.Player2,
			GameID: "456",
		}

		err := playerRepo.CreateOrUpdate(ctx, player)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the retrieved player should match the saved player
		require.NoError(t, err)
		assert.Equal(t, player, retrievedPlayer)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// When: GetByID is called with non-existent ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, "9999999")

		// Then: an ErrPlayerNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrPlayerNotFound, err)
		assert.Empty(t, retrievedPlayer.ID)
	})
}

func TestPlayerRepository_Unseat(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player seated in a game
	player := &entity.Player{
		ID:     "123",
		Number: game.Player1,
		GameID: "456",
	}
	require.NoError(t, playerRepo.CreateOrUpdate(ctx, player))

	// When: the seat is freed
	err := playerRepo.Unseat(ctx, player)

	// Then: the player record survives with no seat
	require.NoError(t, err)

	retrievedPlayer, err := playerRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, "123", retrievedPlayer.ID)
	assert.Zero(t, retrievedPlayer.Number)
	assert.Empty(t, retrievedPlayer.GameID)
}
