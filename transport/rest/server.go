package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wallchase/wallchase-backend/internal/repository"
)

type archiveRepo interface {
	GetByID(ctx context.Context, id string) (*repository.ArchivedGame, error)
	ListRecent(ctx context.Context, limit int) ([]*repository.ArchivedGame, error)
}

func Start(ctx context.Context, logger *slog.Logger, archive archiveRepo, port string) error {
	handler := newArchiveHandler(logger, archive)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)
	mux.HandleFunc("/archive/games", handler.listGames)
	mux.HandleFunc("/archive/games/", handler.getGame)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down http server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
