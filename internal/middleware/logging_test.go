package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxHandlerAddsRequestScopedAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger("production", &buf)
	t.Cleanup(func() { InitLogger("test", &bytes.Buffer{}) })

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, uint(42))
	logger.With("component", "test").InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
	assert.EqualValues(t, 42, rec["user_id"])
	assert.Equal(t, "test", rec["component"])
}

func TestStructuredLoggerAndContextMiddleware(t *testing.T) {
	var buf bytes.Buffer
	InitLogger("production", &buf)
	t.Cleanup(func() { InitLogger("test", &bytes.Buffer{}) })

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return c.Next()
	})
	app.Use(ContextMiddleware())
	app.Use(StructuredLogger())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request processed", rec["msg"])
	assert.Equal(t, "/ping", rec["path"])
	assert.EqualValues(t, 7, rec["user_id"])
	assert.NotEmpty(t, rec["request_id"])
}

func TestTracingMiddlewareSetsTraceHeader(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/clubs/:id", func(c *fiber.Ctx) error {
		assert.NotNil(t, c.Locals("traceID"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/clubs/1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)
}
