package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Str0ng!Passw0rd"

func (e *testEnv) signup(username string) authResponse {
	e.t.Helper()
	resp := e.postJSON("/auth/signup/", nil, map[string]string{
		"username": username,
		"email":    username + "@Example.com",
		"password": strongPassword,
	})
	require.Equal(e.t, fiber.StatusCreated, resp.StatusCode)
	return decode[authResponse](e.t, resp)
}

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	body := env.signup("leo")
	assert.NotEmpty(t, body.Token)
	require.NotNil(t, body.User)
	assert.Equal(t, "leo", body.User.Username)

	var stored models.User
	require.NoError(t, env.db.Where("username = ?", "leo").First(&stored).Error)
	assert.Equal(t, "leo@example.com", stored.Email)
	assert.NotEqual(t, strongPassword, stored.Password, "passwords are hashed")

	t.Run("duplicate username", func(t *testing.T) {
		resp := env.postJSON("/auth/signup/", nil, map[string]string{
			"username": "leo", "email": "other@example.com", "password": strongPassword,
		})
		assertErrorCode(t, resp, fiber.StatusConflict, models.CodeConflict)
	})

	invalid := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"reserved username", map[string]string{"username": "follow", "email": "f@example.com", "password": strongPassword}, "username"},
		{"weak password", map[string]string{"username": "mia", "email": "mia@example.com", "password": "short"}, "password"},
		{"bad email", map[string]string{"username": "mia", "email": "nope", "password": strongPassword}, "email"},
		{"missing fields", map[string]string{"username": "mia"}, ""},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.postJSON("/auth/signup/", nil, tc.body)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			errBody := decode[models.ErrorResponse](t, resp)
			assert.Equal(t, models.CodeValidation, errBody.Code)
			assert.Equal(t, tc.field, errBody.Field)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.signup("leo")

	t.Run("json client gets a token and cookie", func(t *testing.T) {
		resp := env.postJSON("/auth/login/", nil, map[string]string{"username": "leo", "password": strongPassword})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		cookie := tokenCookie(resp)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

		body := decode[authResponse](t, resp)
		assert.Equal(t, cookie.Value, body.Token)
		assert.Equal(t, "leo", body.User.Username)

		req := httptest.NewRequest(http.MethodGet, "/follow/", nil)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: cookie.Value})
		assert.Equal(t, fiber.StatusOK, env.send(req).StatusCode, "the cookie authenticates page requests")
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := env.postJSON("/auth/login/", nil, map[string]string{"username": "leo", "password": "Wr0ng!Password"})
		assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthorized)
	})

	t.Run("unknown user looks the same", func(t *testing.T) {
		resp := env.postJSON("/auth/login/", nil, map[string]string{"username": "ghost", "password": strongPassword})
		assertErrorCode(t, resp, fiber.StatusUnauthorized, models.CodeUnauthorized)
	})

	t.Run("missing credentials", func(t *testing.T) {
		resp := env.postJSON("/auth/login/", nil, map[string]string{"username": "leo"})
		assertErrorCode(t, resp, fiber.StatusBadRequest, models.CodeValidation)
	})

	t.Run("browser form follows next", func(t *testing.T) {
		resp := env.postForm("/auth/login/", nil, url.Values{
			"username": {"leo"}, "password": {strongPassword}, "next": {"/follow/"},
		})
		assertRedirect(t, resp, "/follow/")
		assert.NotNil(t, tokenCookie(resp))
	})

	t.Run("off-site next is ignored", func(t *testing.T) {
		resp := env.postForm("/auth/login/", nil, url.Values{
			"username": {"leo"}, "password": {strongPassword}, "next": {"//evil.example.com/"},
		})
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t)

	body := decode[map[string]string](t, env.get("/auth/login/?next=%2Ffollow%2F", nil))
	assert.Equal(t, "/follow/", body["next"])

	body = decode[map[string]string](t, env.get("/auth/login/?next=%2F%2Fevil.example.com", nil))
	assert.Equal(t, "", body["next"])
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.signup("leo").Token

	withToken := func(req *http.Request) *http.Request {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
		return req
	}

	require.Equal(t, fiber.StatusOK, env.send(withToken(httptest.NewRequest(http.MethodGet, "/follow/", nil))).StatusCode)

	resp := env.send(withToken(httptest.NewRequest(http.MethodPost, "/auth/logout/", nil)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookie := tokenCookie(resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	resp = env.send(withToken(httptest.NewRequest(http.MethodGet, "/follow/", nil)))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode, "a revoked token is treated as a guest")
}
