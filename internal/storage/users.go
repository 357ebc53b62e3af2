package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saurav-22/task-management-app-backend/internal/domain"
)

// InsertUser creates an account with an already-hashed password.
func (s *Store) InsertUser(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, email, passwordHash).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrEmailTaken
	}
	if err != nil {
		return 0, wrapErr("insert user", err)
	}
	return id, nil
}

// UserByEmail resolves an email to the user record.
func (s *Store) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, wrapErr("find user", err)
	}
	return u, nil
}

// CredentialsByEmail fetches the id and password hash for a login attempt.
func (s *Store) CredentialsByEmail(ctx context.Context, email string) (int64, string, error) {
	var id int64
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash
		FROM users
		WHERE email = $1
	`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	if err != nil {
		return 0, "", wrapErr("find credentials", err)
	}
	return id, hash, nil
}
