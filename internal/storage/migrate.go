package storage

import "context"

const migration = `
CREATE TABLE IF NOT EXISTS users (
    id bigserial PRIMARY KEY,
    email text NOT NULL UNIQUE,
    password_hash text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS boards (
    id bigserial PRIMARY KEY,
    title text NOT NULL,
    owner_id bigint NOT NULL REFERENCES users(id),
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS boards_owner_id_idx ON boards (owner_id);

CREATE TABLE IF NOT EXISTS tasks (
    id bigserial PRIMARY KEY,
    title text NOT NULL,
    board_id bigint NOT NULL REFERENCES boards(id),
    assignee_id bigint REFERENCES users(id),
    created_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS tasks_board_id_idx ON tasks (board_id);
`

// Migrate creates the schema if it does not exist yet. The services share one
// database, so every service can run this at startup and the first one wins.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return err
}
