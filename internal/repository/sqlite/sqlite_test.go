package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/pollbox/pollbox/internal/model"
)

// newTestDB opens a fresh in-memory database per test. The pool collapses
// to one connection for :memory: paths, so every query sees the same data.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test User", PasswordHash: "x"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestPoll(t *testing.T, db *DB, ownerID string, labels ...string) (*model.Poll, []model.Option) {
	t.Helper()
	if len(labels) == 0 {
		labels = []string{"Yes", "No"}
	}
	options := make([]model.Option, len(labels))
	for i, l := range labels {
		options[i] = model.Option{Label: l}
	}
	poll := &model.Poll{OwnerID: ownerID, Title: "Test poll"}
	if err := db.CreatePoll(context.Background(), poll, options); err != nil {
		t.Fatalf("failed to create test poll: %v", err)
	}
	return poll, options
}

func castTestVote(t *testing.T, db *DB, pollID, optionID, voterID string) *model.Vote {
	t.Helper()
	vote := &model.Vote{PollID: pollID, OptionID: optionID, VoterID: voterID}
	if err := db.CastVote(context.Background(), vote); err != nil {
		t.Fatalf("failed to cast test vote: %v", err)
	}
	return vote
}

func countRows(t *testing.T, db *DB, table, where string, args ...any) int {
	t.Helper()
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		query += " WHERE " + where
	}
	if err := db.conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("counting rows in %s: %v", table, err)
	}
	return n
}
