package storage

import (
	"context"
	"database/sql"

	"github.com/saurav-22/task-management-app-backend/internal/domain"
)

// InsertTask persists a task. assigneeID may be nil for unassigned tasks.
func (s *Store) InsertTask(ctx context.Context, title string, boardID int64, assigneeID *int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (title, board_id, assignee_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, title, boardID, assigneeID).Scan(&id)
	if err != nil {
		return 0, wrapErr("insert task", err)
	}
	return id, nil
}

// TasksByBoard lists the tasks on a board, joining the assignee email for
// display. The join is LEFT so unassigned tasks still appear.
func (s *Store) TasksByBoard(ctx context.Context, boardID int64) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.title, t.board_id, t.assignee_id, u.email
		FROM tasks t
		LEFT JOIN users u ON t.assignee_id = u.id
		WHERE t.board_id = $1
		ORDER BY t.id
	`, boardID)
	if err != nil {
		return nil, wrapErr("list tasks", err)
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		var t domain.Task
		var assigneeID sql.NullInt64
		var email sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.BoardID, &assigneeID, &email); err != nil {
			return nil, wrapErr("list tasks", err)
		}
		if assigneeID.Valid {
			t.AssigneeID = &assigneeID.Int64
		}
		if email.Valid {
			t.AssigneeEmail = email.String
		}
		tasks = append(tasks, t)
	}
	return tasks, wrapErr("list tasks", rows.Err())
}
