package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pollbox/pollbox/internal/apperror"
	"github.com/pollbox/pollbox/internal/auth"
	"github.com/pollbox/pollbox/internal/model"
	"github.com/pollbox/pollbox/internal/repository"
)

const (
	MinPasswordLength = 8
	MaxEmailLength    = 254
	MaxNameLength     = 100
)

// AuthService handles signup, login, and the GitHub OAuth account flow.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, passwords: passwords, tokens: tokens, logger: logger}
}

// SignUp registers an email/password account and returns the user with a
// fresh access token. A taken email surfaces as a conflict.
func (s *AuthService) SignUp(ctx context.Context, email, name, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" || !strings.Contains(email, "@") || len(email) > MaxEmailLength {
		return nil, "", apperror.ValidationFailed("email", "a valid email address is required")
	}
	if name == "" {
		return nil, "", apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > MaxNameLength {
		return nil, "", apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or fewer", MaxNameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", apperror.Storage(err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return user, token, nil
}

// SignIn checks email/password credentials and returns the user with a
// fresh access token. Unknown email and wrong password produce the same
// error so callers can't probe which emails are registered.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.ErrNotFound) {
			return nil, "", apperror.Unauthenticated("invalid email or password")
		}
		return nil, "", err
	}
	if user.PasswordHash == "" {
		// GitHub-only account; there is no password to check.
		return nil, "", apperror.Unauthenticated("invalid email or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, "", apperror.Unauthenticated("invalid email or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", apperror.Storage(err)
	}

	s.logger.Info("user signed in", "user_id", user.ID)
	return user, token, nil
}

// LoginOrRegisterGitHub upserts the account for a completed OAuth exchange
// and returns it with a fresh access token. First login creates the
// account; later logins refresh name and avatar.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, gh *auth.GitHubUser) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(gh.Email))
	if email == "" {
		// GitHub hides the email when the user opts out of sharing it.
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", gh.ID, gh.Login)
	}
	name := gh.Login

	user := &model.User{
		Email:     email,
		Name:      name,
		GitHubID:  gh.ID,
		AvatarURL: gh.AvatarURL,
	}
	if err := s.users.UpsertGitHubUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", apperror.Storage(err)
	}

	s.logger.Info("github login", "user_id", user.ID, "github_id", gh.ID)
	return user, token, nil
}

// GetUserByID returns the account for an authenticated caller.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}
