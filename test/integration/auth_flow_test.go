package integration

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"deep-research-be/internal/bootstrap"
	"deep-research-be/internal/config"
	"deep-research-be/internal/server"
	"deep-research-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuthFlow registers a user over HTTP, logs in, and calls a protected
// endpoint with the returned token.
func TestAuthFlow(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("Warning: Could not load ../../.env: %v", err)
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	require.NoError(t, err, "Failed to connect to DB")

	container := bootstrap.NewContainer(db, cfg)
	srv := server.New(cfg, container)
	app := srv.GetApp()

	email := "auth-flow-" + uuid.New().String() + "@example.com"

	registerBody := `{"full_name":"Auth Flow","email":"` + email + `","password":"secret-pass-123"}`
	req := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	loginBody := `{"email":"` + email + `","password":"secret-pass-123"}`
	req = httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotEmpty(t, envelope.Data.Token)

	// Token grants access to a protected route
	req = httptest.NewRequest("GET", "/api/chat/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+envelope.Data.Token)
	resp, err = app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	// And the wrong token does not
	req = httptest.NewRequest("GET", "/api/chat/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
