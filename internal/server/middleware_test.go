package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	resp := env.get("/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestCORSOnRateLimitedResponses(t *testing.T) {
	env := newTestEnv(t)
	const origin = "http://localhost:3000"

	request := func(method string) *http.Response {
		req := httptest.NewRequest(method, "/health/live", nil)
		req.Header.Set(fiber.HeaderOrigin, origin)
		if method == fiber.MethodOptions {
			req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodGet)
		}
		return env.send(req)
	}

	for i := 0; i < 100; i++ {
		require.Equal(t, fiber.StatusOK, request(fiber.MethodGet).StatusCode, "request %d", i)
	}

	limited := request(fiber.MethodGet)
	assert.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	assert.Equal(t, origin, limited.Header.Get(fiber.HeaderAccessControlAllowOrigin))

	preflight := request(fiber.MethodOptions)
	assert.Equal(t, fiber.StatusNoContent, preflight.StatusCode, "preflight is never limited")
	assert.Equal(t, origin, preflight.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://evil.example.com")
	resp := env.send(req)
	assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
