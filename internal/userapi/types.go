package userapi

import (
	"context"
	"time"

	"github.com/saurav-22/task-management-app-backend/internal/domain"
)

// Storage abstracts user persistence for handlers.
type Storage interface {
	InsertUser(ctx context.Context, email, passwordHash string) (int64, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	CredentialsByEmail(ctx context.Context, email string) (int64, string, error)
}

// Authenticator is implemented by types able to extract user ids from
// Authorization headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (int64, error)
}

// TokenIssuer mints signed tokens at login.
type TokenIssuer interface {
	IssueToken(userID int64, ttl time.Duration) (string, error)
}
