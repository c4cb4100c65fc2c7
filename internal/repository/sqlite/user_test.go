package sqlite

import (
	"context"
	"testing"

	"github.com/pollbox/pollbox/internal/apperror"
	"github.com/pollbox/pollbox/internal/model"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "taken@example.com")

	user := &model.User{Email: "taken@example.com", Name: "Other", PasswordHash: "y"}
	err := db.CreateUser(context.Background(), user)
	if !apperror.IsKind(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want conflict", err)
	}
}

func TestCreateUser_MultiplePasswordAccounts(t *testing.T) {
	db := newTestDB(t)

	// Neither account has a GitHub identity; the github_id UNIQUE index
	// must not treat the two as colliding.
	createTestUser(t, db, "a@example.com")
	createTestUser(t, db, "b@example.com")
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "find-me@example.com")

	got, err := db.GetUserByEmail(context.Background(), "find-me@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("user ID = %q, want %q", got.ID, created.ID)
	}
	if got.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", got.Role, model.RoleUser)
	}

	if _, err := db.GetUserByEmail(context.Background(), "nobody@example.com"); !apperror.IsKind(err, apperror.ErrNotFound) {
		t.Fatalf("GetUserByEmail() error = %v, want not-found", err)
	}
}

func TestUpsertGitHubUser_InsertThenUpdate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Email:     "gh@example.com",
		Name:      "octocat",
		GitHubID:  12345,
		AvatarURL: "https://example.com/a.png",
	}
	if err := db.UpsertGitHubUser(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHubUser() insert error = %v", err)
	}
	firstID := user.ID
	if firstID == "" {
		t.Fatal("UpsertGitHubUser() did not assign an ID")
	}

	again := &model.User{
		Email:     "gh@example.com",
		Name:      "octocat-renamed",
		GitHubID:  12345,
		AvatarURL: "https://example.com/b.png",
	}
	if err := db.UpsertGitHubUser(context.Background(), again); err != nil {
		t.Fatalf("UpsertGitHubUser() update error = %v", err)
	}
	if again.ID != firstID {
		t.Errorf("upsert changed the internal ID: %q != %q", again.ID, firstID)
	}

	got, err := db.GetUserByID(context.Background(), firstID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Name != "octocat-renamed" {
		t.Errorf("name = %q, want %q", got.Name, "octocat-renamed")
	}
	if got.AvatarURL != "https://example.com/b.png" {
		t.Errorf("avatar = %q, want refreshed URL", got.AvatarURL)
	}
}
