package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSchemaEndpoints(t *testing.T) {
	g := gin.New()
	RegisterSchema(g)

	req := httptest.NewRequest("GET", "/api/docs/", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "swagger-ui")

	req2 := httptest.NewRequest("GET", "/schema/", nil)
	w2 := httptest.NewRecorder()
	g.ServeHTTP(w2, req2)
	require.Equal(t, 200, w2.Code)
	require.Contains(t, w2.Header().Get("Content-Type"), "application/json")

	// the schema must be raw JSON, not a JSON-encoded string
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &doc))
	require.Equal(t, "3.0.0", doc["openapi"])

	body := w2.Body.String()
	for _, path := range []string{
		"/api/user/create",
		"/api/user/token",
		"/api/recipe/recipes",
		"/api/recipe/tags",
		"/api/recipe/ingredients",
	} {
		require.Contains(t, body, path)
	}
}
