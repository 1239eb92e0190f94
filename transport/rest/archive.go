package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/wallchase/wallchase-backend/internal/repository"
)

const defaultListLimit = 20

type archiveHandler struct {
	logger  *slog.Logger
	archive archiveRepo
}

func newArchiveHandler(logger *slog.Logger, archive archiveRepo) *archiveHandler {
	return &archiveHandler{
		logger:  logger,
		archive: archive,
	}
}

// listGames serves GET /archive/games?limit=N.
func (that *archiveHandler) listGames(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "listGames")

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := that.archive.ListRecent(r.Context(), limit)
	if err != nil {
		log.Error("failed to list archived games", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, log, items)
}

// getGame serves GET /archive/games/{id}.
func (that *archiveHandler) getGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getGame")

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/archive/games/")
	if id == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	item, err := that.archive.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrArchivedGameNotFound) {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("failed to get archived game", "gameID", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, log, item)
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
