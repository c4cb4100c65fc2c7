package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pollbox/pollbox/internal/auth"
	"github.com/pollbox/pollbox/internal/cache"
	"github.com/pollbox/pollbox/internal/model"
	"github.com/pollbox/pollbox/internal/repository/sqlite"
	"github.com/pollbox/pollbox/internal/service"
)

// testAPI runs the real router against a fresh in-memory database, so
// these tests exercise the whole chain: routing, auth middleware,
// services, and the store's constraints.
type testAPI struct {
	router http.Handler
	db     *sqlite.DB
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	require.NoError(t, err)
	viewCache, err := cache.New(16, time.Minute)
	require.NoError(t, err)

	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	github := auth.NewGitHubProvider("test-id", "test-secret", "http://localhost/auth/github/callback")

	pollService := service.NewPollService(db, viewCache, logger)
	voteService := service.NewVoteService(db, db, viewCache, logger)
	commentService := service.NewCommentService(db, db, viewCache, logger)
	authService := service.NewAuthService(db, passwords, tokens, logger)

	pollHandler := NewPollHandler(pollService, voteService, logger)
	voteHandler := NewVoteHandler(voteService, logger)
	commentHandler := NewCommentHandler(commentService, logger)
	authHandler := NewAuthHandler(authService, github, time.Hour, "", logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignUp)
		r.Post("/login", authHandler.HandleSignIn)
		r.Post("/logout", authHandler.HandleLogout)
	})
	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/polls", pollHandler.HandleList)
			r.Get("/polls/{id}", pollHandler.HandleGet)
			r.Get("/polls/{id}/results", voteHandler.HandleResults)
			r.Get("/polls/{id}/comments", commentHandler.HandleList)
		})
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Post("/polls", pollHandler.HandleCreate)
			r.Put("/polls/{id}", pollHandler.HandleUpdate)
			r.Delete("/polls/{id}", pollHandler.HandleDelete)
			r.Post("/polls/{id}/votes", voteHandler.HandleCast)
			r.Post("/polls/{id}/comments", commentHandler.HandleCreate)
			r.Delete("/comments/{id}", commentHandler.HandleDelete)
		})
	})

	return &testAPI{router: router, db: db, tokens: tokens}
}

// newUser creates an account directly in the store and returns it with a
// valid bearer token.
func (api *testAPI) newUser(t *testing.T, email string) (*model.User, string) {
	t.Helper()
	user := &model.User{Email: email, Name: "Test User", PasswordHash: "x"}
	require.NoError(t, api.db.CreateUser(context.Background(), user))
	token, err := api.tokens.Generate(user.ID)
	require.NoError(t, err)
	return user, token
}

// do sends a JSON request. An empty token means anonymous.
func (api *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// createPoll posts a poll over HTTP and returns the decoded detail view.
func (api *testAPI) createPoll(t *testing.T, token, title string, options ...string) *model.PollWithOptions {
	t.Helper()
	if len(options) == 0 {
		options = []string{"Yes", "No"}
	}
	rec := api.do(t, http.MethodPost, "/api/polls", token, map[string]any{
		"title":   title,
		"options": options,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create poll: %s", rec.Body.String())

	var pw model.PollWithOptions
	decodeBody(t, rec, &pw)
	return &pw
}
