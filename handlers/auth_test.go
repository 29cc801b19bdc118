package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/sessions"
	"github.com/recipebox/recipebox/internal/tokens"
	"github.com/recipebox/recipebox/internal/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
}

func newAuthTestServer(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	usersSvc := users.NewService(users.NewMemoryUserRepository())
	sessionsSvc := sessions.NewService(sessions.NewMemoryRepository())
	verifier := tokens.NewVerifier(cfg.JWT.Secret)

	g := gin.New()
	api := g.Group("/api")
	NewAuthHandler(cfg, usersSvc, sessionsSvc, verifier).Register(api)
	return g, cfg
}

func doJSON(t *testing.T, g *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestCreateUser(t *testing.T) {
	g, _ := newAuthTestServer(t)

	w := doJSON(t, g, http.MethodPost, "/api/user/create",
		`{"email":"test@Example.COM","password":"secret","name":"Test"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])
	// domain is lowercased, password never echoed
	require.Equal(t, "test@example.com", resp["email"])
	require.NotContains(t, w.Body.String(), "secret")
	require.NotContains(t, w.Body.String(), "password")

	// duplicate email
	w = doJSON(t, g, http.MethodPost, "/api/user/create",
		`{"email":"test@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// password too short
	w = doJSON(t, g, http.MethodPost, "/api/user/create",
		`{"email":"short@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTokenEndpoint(t *testing.T) {
	g, _ := newAuthTestServer(t)
	w := doJSON(t, g, http.MethodPost, "/api/user/create",
		`{"email":"login@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, g, http.MethodPost, "/api/user/token",
		`{"email":"login@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	require.NotEmpty(t, resp["refresh_token"])
	require.EqualValues(t, 900, resp["expires_in"])

	// wrong password
	w = doJSON(t, g, http.MethodPost, "/api/user/token",
		`{"email":"login@example.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// unknown user
	w = doJSON(t, g, http.MethodPost, "/api/user/token",
		`{"email":"nobody@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenRefreshAndRevoke(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer sessions.SetBlacklistClient(nil)

	g, _ := newAuthTestServer(t)
	doJSON(t, g, http.MethodPost, "/api/user/create",
		`{"email":"r@example.com","password":"secret"}`, "")
	w := doJSON(t, g, http.MethodPost, "/api/user/token",
		`{"email":"r@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var tokenResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	access := tokenResp["access_token"].(string)
	refresh := tokenResp["refresh_token"].(string)

	// refresh works
	w = doJSON(t, g, http.MethodPost, "/api/user/token/refresh",
		`{"refresh_token":"`+refresh+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "access_token")

	// bogus refresh token
	w = doJSON(t, g, http.MethodPost, "/api/user/token/refresh",
		`{"refresh_token":"bogus"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// revoke: refresh token dies, access token is blacklisted
	w = doJSON(t, g, http.MethodPost, "/api/user/token/revoke",
		`{"refresh_token":"`+refresh+`"}`, access)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, g, http.MethodPost, "/api/user/token/refresh",
		`{"refresh_token":"`+refresh+`"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	black, err := sessions.IsAccessTokenBlacklisted(context.Background(), access)
	require.NoError(t, err)
	require.True(t, black)

	// blacklisted access token no longer passes auth
	w = doJSON(t, g, http.MethodGet, "/api/user/me", "", access)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeEndpoints(t *testing.T) {
	g, _ := newAuthTestServer(t)
	doJSON(t, g, http.MethodPost, "/api/user/create",
		`{"email":"me@example.com","password":"secret","name":"Me"}`, "")
	w := doJSON(t, g, http.MethodPost, "/api/user/token",
		`{"email":"me@example.com","password":"secret"}`, "")
	var tokenResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	access := tokenResp["access_token"].(string)

	// unauthenticated
	w = doJSON(t, g, http.MethodGet, "/api/user/me", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, g, http.MethodGet, "/api/user/me", "", access)
	require.Equal(t, http.StatusOK, w.Code)
	var me map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	require.Equal(t, "me@example.com", me["email"])
	require.Equal(t, "Me", me["name"])

	// rename and change password
	w = doJSON(t, g, http.MethodPatch, "/api/user/me",
		`{"name":"New Name","password":"newsecret"}`, access)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "New Name")

	// old password no longer works, new one does
	w = doJSON(t, g, http.MethodPost, "/api/user/token",
		`{"email":"me@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(t, g, http.MethodPost, "/api/user/token",
		`{"email":"me@example.com","password":"newsecret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	// short new password rejected
	w = doJSON(t, g, http.MethodPatch, "/api/user/me", `{"password":"pw"}`, access)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
