package auth

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresUserStore persists users in Postgres.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore creates a store over an open connection.
func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// FindActiveByUsername joins users to roles so the role name can be embedded
// in issued tokens. Inactive users are invisible to login.
func (s *PostgresUserStore) FindActiveByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, r.role_name
		FROM users u
		JOIN roles r ON u.role_id = r.id
		WHERE u.username = $1 AND u.is_active = TRUE
	`, username)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UsernameOrEmailExists checks both columns across all users regardless of
// the active flag.
func (s *PostgresUserStore) UsernameOrEmailExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
	`, username, email).Scan(&exists)
	return exists, err
}

// Create inserts a new user and returns its id. New users are active by
// default per the schema.
func (s *PostgresUserStore) Create(ctx context.Context, username, email, passwordHash string, roleID int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, username, email, passwordHash, roleID).Scan(&id)
	return id, err
}
