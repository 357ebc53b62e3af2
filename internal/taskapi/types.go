package taskapi

import (
	"context"

	"github.com/saurav-22/task-management-app-backend/internal/domain"
)

// Storage abstracts task and board persistence for handlers.
type Storage interface {
	// OwnedBoard returns storage.ErrNotFound both when the board does not
	// exist and when it belongs to someone else.
	OwnedBoard(ctx context.Context, boardID, ownerID int64) (domain.Board, error)
	InsertTask(ctx context.Context, title string, boardID int64, assigneeID *int64) (int64, error)
	TasksByBoard(ctx context.Context, boardID int64) ([]domain.Task, error)
}

// Authenticator is implemented by types able to extract user ids from
// Authorization headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (int64, error)
}

// Resolver maps an assignee email to a user id via the user service,
// authenticating with the caller's forwarded credential.
type Resolver interface {
	ResolveByEmail(ctx context.Context, email, authHeader string) (int64, error)
}

// Deduper prevents a repeated idempotency key from creating a second task.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID int64, key string) (bool, error)
	// Remove deletes a previously added key, used when the write fails.
	Remove(ctx context.Context, userID int64, key string) error
}
