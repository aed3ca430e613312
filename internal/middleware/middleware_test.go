package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthApp(tokens *jwt.Manager, privilege string) *fiber.App {
	app := fiber.New()
	app.Get("/secure", RequireAuth(tokens), RequirePrivilege(privilege), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func get(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequireAuth(t *testing.T) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	app := newAuthApp(tokens, model.PrivProductView)

	token, err := tokens.GenerateToken("user-1", "u@example.com", "User", []string{model.PrivProductView})
	require.NoError(t, err)

	resp := get(t, app, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = get(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = get(t, app, "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	other := jwt.NewManager("other-secret", time.Hour)
	forged, err := other.GenerateToken("user-1", "u@example.com", "User", []string{model.PrivProductView})
	require.NoError(t, err)
	resp = get(t, app, forged)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	app := newAuthApp(tokens, model.PrivProductView)

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequirePrivilege(t *testing.T) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	app := newAuthApp(tokens, model.PrivProductDelete)

	token, err := tokens.GenerateToken("user-1", "u@example.com", "User", []string{model.PrivProductView})
	require.NoError(t, err)

	resp := get(t, app, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireAnyPrivilege(t *testing.T) {
	tokens := jwt.NewManager("test-secret", time.Hour)
	app := fiber.New()
	app.Get("/secure", RequireAuth(tokens), RequireAnyPrivilege(model.PrivDashboardView, model.PrivProductView), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	token, err := tokens.GenerateToken("user-1", "", "", []string{model.PrivProductView})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, get(t, app, token).StatusCode)

	token, err = tokens.GenerateToken("user-1", "", "", []string{model.PrivTransactionView})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, token).StatusCode)
}

func TestRateLimit(t *testing.T) {
	limit, err := RateLimit("2-M", zap.NewNop())
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/secure", limit, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp := get(t, app, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp := get(t, app, "")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
}

func TestRateLimitRejectsBadFormat(t *testing.T) {
	_, err := RateLimit("lots", zap.NewNop())
	assert.Error(t, err)
}
