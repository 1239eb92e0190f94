package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
	"github.com/wallchase/wallchase-backend/internal/repository/storage"
)

func newArchive(t *testing.T) (context.Context, ArchiveRepository) {
	t.Helper()

	st, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, st.Close())
	})

	ctx := context.Background()
	require.NoError(t, st.Init(ctx))

	return ctx, NewArchiveRepository(st.Connection)
}

func newFinishedGame(t *testing.T, id string) *entity.Game {
	t.Helper()

	state, err := game.NewGameState(game.Config{
		BoardWidth:  5,
		BoardHeight: 5,
		Variant:     game.VariantStandard,
		TimeControl: game.TimeControl{InitialSeconds: 300},
	})
	require.NoError(t, err)

	state, err = state.ApplyAction(game.GameAction{Kind: game.KindResign, Player: game.Player2, Timestamp: 1000})
	require.NoError(t, err)

	finishedGame := entity.NewGame(id, entity.PublicType, state.Serialize())
	finishedGame.Status = entity.StatusFinished

	return finishedGame
}

func TestArchiveRepository_SaveAndGet(t *testing.T) {
	ctx, archive := newArchive(t)

	// Given: a finished game
	finishedGame := newFinishedGame(t, "123")

	// When: archiving and reading it back
	err := archive.Save(ctx, finishedGame)
	require.NoError(t, err)

	item, err := archive.GetByID(ctx, "123")

	// Then: the headline columns and the full state survive
	require.NoError(t, err)
	assert.Equal(t, "123", item.ID)
	assert.Equal(t, entity.PublicType, item.Type)
	assert.Equal(t, game.VariantStandard, item.Variant)
	assert.Equal(t, game.Player1, item.Winner)
	assert.Equal(t, game.ReasonResignation, item.Reason)
	require.NotNil(t, item.State)
	assert.Equal(t, game.StatusFinished, item.State.Status)
}

func TestArchiveRepository_GetByID_NotFound(t *testing.T) {
	ctx, archive := newArchive(t)

	_, err := archive.GetByID(ctx, "9999999")

	require.ErrorIs(t, err, ErrArchivedGameNotFound)
}

func TestArchiveRepository_SaveRequiresState(t *testing.T) {
	ctx, archive := newArchive(t)

	err := archive.Save(ctx, &entity.Game{ID: "123"})

	require.Error(t, err)
}

func TestArchiveRepository_ListRecent(t *testing.T) {
	ctx, archive := newArchive(t)

	// Given: two archived games
	require.NoError(t, archive.Save(ctx, newFinishedGame(t, "first")))
	require.NoError(t, archive.Save(ctx, newFinishedGame(t, "second")))

	// When: listing with a limit
	items, err := archive.ListRecent(ctx, 10)

	// Then: both come back
	require.NoError(t, err)
	require.Len(t, items, 2)

	items, err = archive.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
}
