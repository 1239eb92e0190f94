package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wallchase/wallchase-backend/internal/entity"
	"github.com/wallchase/wallchase-backend/internal/game"
)

var ErrArchivedGameNotFound = errors.New("archived game not found")

// ArchivedGame is one finished game at rest: the headline columns are
// queryable, the full serialized state rides along as JSON.
type ArchivedGame struct {
	ID         string
	Type       string
	Variant    game.Variant
	Winner     game.PlayerID
	Reason     string
	MoveCount  int
	State      *game.Serialized
	ArchivedAt time.Time
}

type ArchiveRepository interface {
	Save(ctx context.Context, item *entity.Game) error
	GetByID(ctx context.Context, id string) (*ArchivedGame, error)
	ListRecent(ctx context.Context, limit int) ([]*ArchivedGame, error)
}

type dbArchive struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &dbArchive{
		conn: conn,
	}
}

func (that *dbArchive) Save(ctx context.Context, item *entity.Game) error {
	if item.State == nil {
		return fmt.Errorf("game %s has no state to archive", item.ID)
	}

	stateJSON, err := json.Marshal(item.State)
	if err != nil {
		return fmt.Errorf("could not marshal game state: %w", err)
	}

	var winner game.PlayerID
	var reason string
	if item.State.Result != nil {
		winner = item.State.Result.Winner
		reason = item.State.Result.Reason
	}

	query := `INSERT OR REPLACE INTO archived_games
		(id, type, variant, winner, reason, move_count, state, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = that.conn.ExecContext(ctx, query,
		item.ID,
		item.Type,
		string(item.State.Config.Variant),
		int(winner),
		reason,
		item.State.MoveCount,
		string(stateJSON),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive game: %w", err)
	}

	return nil
}

func (that *dbArchive) GetByID(ctx context.Context, id string) (*ArchivedGame, error) {
	query := `SELECT id, type, variant, winner, reason, move_count, state, archived_at
		FROM archived_games WHERE id = ?`

	item, err := scanArchivedGame(that.conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArchivedGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archived game by ID: %w", err)
	}

	return item, nil
}

func (that *dbArchive) ListRecent(ctx context.Context, limit int) ([]*ArchivedGame, error) {
	query := `SELECT id, type, variant, winner, reason, move_count, state, archived_at
		FROM archived_games ORDER BY archived_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived games: %w", err)
	}
	defer rows.Close()

	var items []*ArchivedGame
	for rows.Next() {
		item, err := scanArchivedGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archived game: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate archived games: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArchivedGame(row rowScanner) (*ArchivedGame, error) {
	var item ArchivedGame
	var variant, stateJSON string
	var winner int
	var archivedAt int64

	if err := row.Scan(&item.ID, &item.Type, &variant, &winner, &item.Reason, &item.MoveCount, &stateJSON, &archivedAt); err != nil {
		return nil, err
	}

	var state game.Serialized
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	item.Variant = game.Variant(variant)
	item.Winner = game.PlayerID(winner)
	item.State = &state
	item.ArchivedAt = time.Unix(archivedAt, 0)

	return &item, nil
}
