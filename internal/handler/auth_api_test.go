package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollbox/pollbox/internal/auth"
	"github.com/pollbox/pollbox/internal/model"
)

func TestSignUpAndLoginEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"email":    "ada@example.com",
		"name":     "Ada",
		"password": "longenough",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signup struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	decodeBody(t, rec, &signup)
	assert.NotEmpty(t, signup.User.ID)
	assert.NotEmpty(t, signup.Token)

	// The token cookie is HttpOnly.
	cookies := rec.Result().Cookies()
	var tokenCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == auth.TokenCookie {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)
	assert.True(t, tokenCookie.HttpOnly)

	// Same email again is a conflict.
	rec = api.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"email":    "ada@example.com",
		"name":     "Other",
		"password": "longenough",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login with the right and wrong credentials.
	rec = api.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "longenough",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The issued token authenticates API calls.
	rec = api.do(t, http.MethodGet, "/api/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me model.User
	decodeBody(t, rec, &me)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestMeEndpoint_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint_ExpiresCookie(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.TokenCookie {
			assert.Less(t, c.MaxAge, 0, "logout must expire the token cookie")
			return
		}
	}
	t.Fatal("logout did not set the token cookie")
}

func TestPasswordHashNeverSerialized(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"email":    "ada@example.com",
		"name":     "Ada",
		"password": "longenough",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")
}
