package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saurav-22/task-management-app-backend/internal/domain"
)

// InsertBoard creates a board owned by the given user.
func (s *Store) InsertBoard(ctx context.Context, title string, ownerID int64) (domain.Board, error) {
	board := domain.Board{Title: title, OwnerID: ownerID}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO boards (title, owner_id)
		VALUES ($1, $2)
		RETURNING id
	`, title, ownerID).Scan(&board.ID)
	if err != nil {
		return domain.Board{}, wrapErr("insert board", err)
	}
	return board, nil
}

// BoardsByOwner lists every board the given user owns.
func (s *Store) BoardsByOwner(ctx context.Context, ownerID int64) ([]domain.Board, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, owner_id
		FROM boards
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, wrapErr("list boards", err)
	}
	defer rows.Close()

	boards := []domain.Board{}
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.OwnerID); err != nil {
			return nil, wrapErr("list boards", err)
		}
		boards = append(boards, b)
	}
	return boards, wrapErr("list boards", rows.Err())
}

// OwnedBoard fetches a board only if it belongs to the given owner. A board
// that exists under a different owner and a board that does not exist at all
// both return ErrNotFound, so callers cannot probe for foreign boards.
func (s *Store) OwnedBoard(ctx context.Context, boardID, ownerID int64) (domain.Board, error) {
	var b domain.Board
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, owner_id
		FROM boards
		WHERE id = $1 AND owner_id = $2
	`, boardID, ownerID).Scan(&b.ID, &b.Title, &b.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Board{}, ErrNotFound
	}
	if err != nil {
		return domain.Board{}, wrapErr("find owned board", err)
	}
	return b, nil
}
