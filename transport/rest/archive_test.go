package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wallchase/wallchase-backend/internal/game"
	"github.com/wallchase/wallchase-backend/internal/repository"
)

type stubArchive struct {
	items map[string]*repository.ArchivedGame
}

func (that *stubArchive) GetByID(_ context.Context, id string) (*repository.ArchivedGame, error) {
	item, ok := that.items[id]
	if !ok {
		return nil, repository.ErrArchivedGameNotFound
	}
	return item, nil
}

func (that *stubArchive) ListRecent(_ context.Context, limit int) ([]*repository.ArchivedGame, error) {
	var items []*repository.ArchivedGame
	for _, item := range that.items {
		if len(items) == limit {
			break
		}
		items = append(items, item)
	}
	return items, nil
}

func newTestHandler() *archiveHandler {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	archive := &stubArchive{items: map[string]*repository.ArchivedGame{
		"123": {
			ID:      "123",
			Variant: game.VariantStandard,
			Winner:  game.Player1,
			Reason:  game.ReasonCapture,
		},
	}}
	return newArchiveHandler(logger, archive)
}

func TestArchiveHandler_GetGame(t *testing.T) {
	handler := newTestHandler()

	t.Run("returns the archived game", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/archive/games/123", nil)
		rec := httptest.NewRecorder()

		handler.getGame(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var item repository.ArchivedGame
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
		assert.Equal(t, "123", item.ID)
		assert.Equal(t, game.Player1, item.Winner)
	})

	t.Run("404 for an unknown game", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/archive/games/nope", nil)
		rec := httptest.NewRecorder()

		handler.getGame(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("405 for non-GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/archive/games/123", nil)
		rec := httptest.NewRecorder()

		handler.getGame(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestArchiveHandler_ListGames(t *testing.T) {
	handler := newTestHandler()

	t.Run("lists archived games", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/archive/games", nil)
		rec := httptest.NewRecorder()

		handler.listGames(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var items []*repository.ArchivedGame
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		assert.Len(t, items, 1)
	})

	t.Run("rejects a bad limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/archive/games?limit=zero", nil)
		rec := httptest.NewRecorder()

		handler.listGames(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPingHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()

	pingHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
