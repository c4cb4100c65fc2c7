// Package sqlite implements the repository interfaces on an embedded
// SQLite database (modernc.org/sqlite — pure Go, no cgo).
//
// The consistency rules the service depends on live in this schema:
//
//   - UNIQUE(poll_id, voter_id) on votes: one vote per user per poll,
//     enforced by the engine as a compare-and-insert. Two racing casts by
//     the same voter produce exactly one row and one constraint violation.
//   - UNIQUE(poll_id, label_norm) on options: no two options of a poll may
//     normalize (trim + case-fold) to the same text.
//   - FOREIGN KEY (option_id, poll_id) → options(id, poll_id) on votes:
//     a vote can only reference an option of its own poll, so a stale
//     option id from an edited poll is rejected by the store even when it
//     races the edit.
//   - ON DELETE CASCADE everywhere below a poll: deleting a poll (or
//     replacing its options) removes options, votes, and comments without
//     application bookkeeping.
//
// Constraint violations are translated into apperror values in errors.go;
// nothing above this package sees driver error text.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB wraps the sql.DB pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite has a single writer. An in-memory database additionally
	// exists per connection, so the pool must be collapsed to one
	// connection or tests would each see an empty schema. For file
	// databases a small pool suffices; writes serialize regardless.
	if strings.Contains(dbPath, ":memory:") {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(4)
		conn.SetMaxIdleConns(4)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed during a write. Foreign keys are off by
	// default in SQLite and every invariant above depends on them.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'user',
			github_id     INTEGER UNIQUE,
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS polls (
			id          TEXT PRIMARY KEY,
			owner_id    TEXT NOT NULL REFERENCES users(id),
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_polls_owner_id ON polls(owner_id);
		CREATE INDEX IF NOT EXISTS idx_polls_created_at ON polls(created_at);

		CREATE TABLE IF NOT EXISTS options (
			id         TEXT PRIMARY KEY,
			poll_id    TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
			label      TEXT NOT NULL,
			label_norm TEXT NOT NULL,
			position   INTEGER NOT NULL,
			UNIQUE (poll_id, label_norm),
			UNIQUE (id, poll_id)
		);
		CREATE INDEX IF NOT EXISTS idx_options_poll_id ON options(poll_id);

		CREATE TABLE IF NOT EXISTS votes (
			id         TEXT PRIMARY KEY,
			poll_id    TEXT NOT NULL,
			option_id  TEXT NOT NULL,
			voter_id   TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL,
			UNIQUE (poll_id, voter_id),
			FOREIGN KEY (option_id, poll_id)
				REFERENCES options(id, poll_id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_votes_option_id ON votes(option_id);

		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			poll_id    TEXT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
			author_id  TEXT NOT NULL REFERENCES users(id),
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_poll_id ON comments(poll_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
