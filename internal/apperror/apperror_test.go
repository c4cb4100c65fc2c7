package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	base := DuplicateVote("p1")
	wrapped := fmt.Errorf("casting vote: %w", base)

	if !IsKind(wrapped, ErrConflict) {
		t.Error("wrapped duplicate vote should match ErrConflict")
	}
	if IsKind(wrapped, ErrNotFound) {
		t.Error("duplicate vote must not match ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("errors.As failed to extract *AppError")
	}
	if appErr.Message == "" {
		t.Error("AppError message is empty")
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Storage(cause)

	if !IsKind(err, ErrStorage) {
		t.Error("Storage() should match ErrStorage")
	}
	if !errors.Is(err, cause) {
		t.Error("Storage() should keep the cause in the chain for logs")
	}
	if err.Error() == cause.Error() {
		t.Error("Storage() must not expose the cause as its message")
	}
}

func TestValidationCarriesField(t *testing.T) {
	err := ValidationFailed("title", "title is required")

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As failed")
	}
	if appErr.Field != "title" {
		t.Errorf("Field = %q, want %q", appErr.Field, "title")
	}
}
