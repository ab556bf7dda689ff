package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/internal/config"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"
	"yatube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

var testBase = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// testEnv is a fully wired server over sqlite and, optionally, miniredis.
type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	mr  *miniredis.Miniredis
	srv *Server
	app *fiber.App
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            testSecret,
		Env:                  "test",
		LoginURL:             "/auth/login/",
		AllowedOrigins:       "http://localhost:3000",
		PageSize:             10,
		IndexCacheTTLSeconds: 20,
	}
}

func newTestEnv(t *testing.T, configure ...func(*config.Config)) *testEnv {
	t.Helper()
	mr, rdb := testutil.NewRedis(t)
	env := buildEnv(t, rdb, configure...)
	env.mr = mr
	return env
}

// newTestEnvWithoutRedis runs the server the way it degrades when Redis is unreachable.
func newTestEnvWithoutRedis(t *testing.T, configure ...func(*config.Config)) *testEnv {
	t.Helper()
	return buildEnv(t, nil, configure...)
}

func buildEnv(t *testing.T, rdb *redis.Client, configure ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, fn := range configure {
		fn(cfg)
	}
	db := testutil.NewSQLiteDB(t)
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	srv.accountService = service.NewAccountService(srv.userRepo, bcrypt.MinCost)
	return &testEnv{t: t, db: db, srv: srv, app: srv.App()}
}

func (e *testEnv) user(username string) *models.User {
	e.t.Helper()
	return testutil.CreateUser(e.t, e.db, username)
}

func (e *testEnv) admin(username string) *models.User {
	e.t.Helper()
	u := e.user(username)
	require.NoError(e.t, e.db.Model(u).Update("is_admin", true).Error)
	return u
}

func (e *testEnv) token(u *models.User) string {
	e.t.Helper()
	signed, _, err := middleware.IssueToken(testSecret, u.ID, u.Username, time.Now())
	require.NoError(e.t, err)
	return signed
}

func (e *testEnv) send(req *http.Request) *http.Response {
	e.t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// get issues a GET as u (nil for a guest).
func (e *testEnv) get(target string, u *models.User) *http.Response {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.send(e.as(req, u))
}

// postForm submits an urlencoded form the way a browser does.
func (e *testEnv) postForm(target string, u *models.User, values url.Values) *http.Response {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set(fiber.HeaderAccept, "text/html,application/xhtml+xml,*/*;q=0.8")
	return e.send(e.as(req, u))
}

// postJSON submits payload from a client that wants JSON back.
func (e *testEnv) postJSON(target string, u *models.User, payload any) *http.Response {
	e.t.Helper()
	return e.sendJSON(http.MethodPost, target, u, payload)
}

func (e *testEnv) sendJSON(method, target string, u *models.User, payload any) *http.Response {
	e.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(e.t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	return e.send(e.as(req, u))
}

func (e *testEnv) as(req *http.Request, u *models.User) *http.Request {
	if u != nil {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+e.token(u))
	}
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get(fiber.HeaderLocation))
}

func assertErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, code, body.Code)
}

func TestNewServerWithDeps_RequiresDatabase(t *testing.T) {
	_, err := NewServerWithDeps(testConfig(), nil, nil)
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	t.Run("live", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.get("/health/live", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "up", decode[map[string]any](t, resp)["status"])
	})

	t.Run("ready", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.get("/health/ready", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decode[map[string]any](t, resp)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, map[string]any{"database": "healthy", "redis": "healthy"}, body["checks"])
	})

	t.Run("redis down", func(t *testing.T) {
		env := newTestEnv(t)
		env.mr.SetError("LOADING Redis is loading the dataset in memory")
		resp := env.get("/health/ready", nil)
		require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "unhealthy", decode[map[string]any](t, resp)["status"])
	})

	t.Run("no redis configured", func(t *testing.T) {
		env := newTestEnvWithoutRedis(t)
		resp := env.get("/health/ready", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		checks := decode[map[string]any](t, resp)["checks"].(map[string]any)
		assert.Equal(t, "unavailable", checks["redis"])
	})
}

func TestNotFoundRoutes(t *testing.T) {
	env := newTestEnv(t)
	leo := env.user("leo")
	post := testutil.CreatePost(t, env.db, leo, "hello")

	for _, target := range []string{
		"/group/",
		"/group/missing/",
		"/ghost/",
		"/leo/abc/",
		"/leo/0/",
		"/leo/999/",
		"/other/" + uintString(post.ID) + "/",
		"/a/b/c/d/e/",
	} {
		t.Run(target, func(t *testing.T) {
			assertErrorCode(t, env.get(target, nil), fiber.StatusNotFound, models.CodeNotFound)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get("/", nil)

	resp := env.get("/metrics", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "yatube_active_websockets")
	assert.Contains(t, body, `yatube_view_cache_requests_total{result="miss",view="index"}`)
}

func TestErrorHandler(t *testing.T) {
	env := newTestEnv(t)
	app := fiber.New(fiber.Config{ErrorHandler: env.srv.errorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error { return assert.AnError })
	app.Get("/forbidden", func(c *fiber.Ctx) error { return models.NewForbiddenError("no") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, models.CodeInternal, body.Code)
	assert.Empty(t, body.Details, "internal causes stay server-side")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/forbidden", nil), -1)
	require.NoError(t, err)
	assertErrorCode(t, resp, fiber.StatusForbidden, models.CodeForbidden)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	assertErrorCode(t, resp, fiber.StatusNotFound, models.CodeNotFound)
}
