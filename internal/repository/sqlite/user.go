package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/pollbox/pollbox/internal/apperror"
	"github.com/pollbox/pollbox/internal/model"
	"github.com/pollbox/pollbox/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

// githubID converts the zero value to NULL. github_id carries a UNIQUE
// index, and password-only accounts all have no GitHub identity; NULLs
// don't collide, zeros would.
func githubID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateUser inserts a new account. A taken email surfaces as a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, github_id, avatar_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role,
		githubID(user.GitHubID), user.AvatarURL, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return apperror.Conflict("user", "email already registered")
		}
		return apperror.Storage(fmt.Errorf("inserting user: %w", err))
	}
	return nil
}

// GetUserByID returns one account.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, github_id, avatar_url, created_at, updated_at
		 FROM users WHERE id = ?`, id), "user", id)
}

// GetUserByEmail returns the account registered under email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, github_id, avatar_url, created_at, updated_at
		 FROM users WHERE email = ?`, email), "user", email)
}

func (db *DB) scanUser(row *sql.Row, resource, key string) (*model.User, error) {
	var u model.User
	var ghID sql.NullInt64
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role,
		&ghID, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(resource, key)
		}
		return nil, apperror.Storage(fmt.Errorf("getting %s %s: %w", resource, key, err))
	}
	u.GitHubID = ghID.Int64
	return &u, nil
}

// UpsertGitHubUser inserts on first OAuth login and refreshes the profile
// fields on later logins, keyed by the GitHub user ID. The existing
// internal ID is kept so polls, votes, and comments stay attached.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return apperror.Storage(fmt.Errorf("looking up github user %d: %w", user.GitHubID, err))
	}

	if existingID != "" {
		user.ID = existingID
		user.UpdatedAt = time.Now().UTC()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			user.Name, user.AvatarURL, user.UpdatedAt, user.ID,
		)
		if err != nil {
			return apperror.Storage(fmt.Errorf("updating github user %s: %w", user.ID, err))
		}
		if err := db.conn.QueryRowContext(ctx,
			`SELECT email, role, created_at FROM users WHERE id = ?`, user.ID,
		).Scan(&user.Email, &user.Role, &user.CreatedAt); err != nil {
			return apperror.Storage(fmt.Errorf("reading back github user %s: %w", user.ID, err))
		}
		return nil
	}

	return db.CreateUser(ctx, user)
}
