package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "SecurePass12!"

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// newTestServer builds a Server backed by an isolated in-memory SQLite
// database and a miniredis instance, with all routes registered.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() { cache.SetClient(nil) })

	cfg := &config.Config{
		Env:       "test",
		Port:      "0",
		JWTSecret: "test-secret-key-0123456789abcdef",
	}

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

// doJSON performs a request with an optional JSON body and bearer token,
// decoding the JSON response into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

// doJSONList is doJSON for endpoints that return a JSON array.
func doJSONList(t *testing.T, app *fiber.App, method, path, token string) (*http.Response, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded []map[string]any
	if len(raw) > 0 && raw[0] == '[' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

type testAccount struct {
	ID           uint
	Username     string
	AccessToken  string
	RefreshToken string
}

// registerAccount registers a user through the API and returns its tokens.
func registerAccount(t *testing.T, app *fiber.App, username string) testAccount {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %v", body)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok, "register response missing user: %v", body)

	return testAccount{
		ID:           uint(user["id"].(float64)),
		Username:     username,
		AccessToken:  body["access_token"].(string),
		RefreshToken: body["refresh_token"].(string),
	}
}
