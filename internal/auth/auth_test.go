package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mondejar-101/erpsample/internal/apierror"
	"github.com/Mondejar-101/erpsample/internal/config"
	"github.com/Mondejar-101/erpsample/internal/database/dbtest"
	"github.com/Mondejar-101/erpsample/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef", TokenTTL: time.Hour}
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apierror.Handler})
	app.Post("/auth/register", RegisterHandler(cfg))
	app.Post("/auth/login", LoginHandler(cfg))
	protected := app.Group("", JWTMiddleware(cfg))
	protected.Get("/auth/me", MeHandler())
	protected.Get("/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

type authResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func post(t *testing.T, app *fiber.App, path string, body any) (*http.Response, authResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var out authResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	dbtest.Use(t)
	app := newApp(testConfig())

	resp, first := post(t, app, "/auth/register", RegisterRequest{Name: "Ada", Email: "Ada@Example.com", Password: "s3cret-pass"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.RoleAdmin, first.User.Role)
	assert.Equal(t, "ada@example.com", first.User.Email)

	resp, second := post(t, app, "/auth/register", RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "s3cret-pass"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.RoleStaff, second.User.Role)

	resp, _ = post(t, app, "/auth/register", RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "s3cret-pass"})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/admin-only", first.Token).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin-only", second.Token).StatusCode)
}

func TestRegister_Validation(t *testing.T) {
	dbtest.Use(t)
	app := newApp(testConfig())

	resp, _ := post(t, app, "/auth/register", RegisterRequest{Name: "Ada", Email: "nope", Password: "s3cret-pass"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, app, "/auth/register", RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "short"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginAndMe(t *testing.T) {
	dbtest.Use(t)
	app := newApp(testConfig())

	post(t, app, "/auth/register", RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "s3cret-pass"})

	resp, _ := post(t, app, "/auth/login", LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, login := post(t, app, "/auth/login", LoginRequest{Email: "ADA@example.com", Password: "s3cret-pass"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)

	me := get(t, app, "/auth/me", login.Token)
	require.Equal(t, fiber.StatusOK, me.StatusCode)
	var u UserResponse
	require.NoError(t, json.NewDecoder(me.Body).Decode(&u))
	assert.Equal(t, "Ada", u.Name)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/auth/me", "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/auth/me", "garbage").StatusCode)
}

func TestParseToken_RejectsOtherSecret(t *testing.T) {
	user := &models.User{ID: 3, Name: "Ada", Email: "ada@example.com", Role: models.RoleStaff}
	token, err := GenerateToken("0123456789abcdef0123456789abcdef", time.Hour, user)
	require.NoError(t, err)

	claims, err := ParseToken("0123456789abcdef0123456789abcdef", token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)

	_, err = ParseToken("ffffffffffffffffffffffffffffffff", token)
	assert.Error(t, err)

	expired, err := GenerateToken("0123456789abcdef0123456789abcdef", -time.Minute, user)
	require.NoError(t, err)
	_, err = ParseToken("0123456789abcdef0123456789abcdef", expired)
	assert.Error(t, err)
}
