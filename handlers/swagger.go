package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSchema registers the API documentation endpoints.
// - GET /schema/    -> machine-readable OpenAPI JSON
// - GET /api/docs/  -> a small HTML page that renders the schema with Swagger UI
func RegisterSchema(rg *gin.Engine) {
	rg.GET("/schema/", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(schemaJSON))
	})

	rg.GET("/api/docs/", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, docsHTML)
	})
}

const docsHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>recipebox — API docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/schema/',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// OpenAPI document describing the public API surface.
const schemaJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "recipebox", "version": "v1.0.0" },
  "components": {
    "securitySchemes": {
      "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" }
    },
    "schemas": {
      "User": {"type":"object","properties":{"id":{"type":"string"},"email":{"type":"string"},"name":{"type":"string"}}},
      "Attr": {"type":"object","properties":{"id":{"type":"string"},"name":{"type":"string"}}},
      "RecipeInput": {"type":"object","properties":{"title":{"type":"string"},"description":{"type":"string"},"time_minutes":{"type":"integer"},"price":{"type":"string"},"link":{"type":"string"},"tags":{"type":"array","items":{"type":"object","properties":{"name":{"type":"string"}}}},"ingredients":{"type":"array","items":{"type":"object","properties":{"name":{"type":"string"}}}}}},
      "Recipe": {"type":"object","properties":{"id":{"type":"string"},"title":{"type":"string"},"description":{"type":"string"},"time_minutes":{"type":"integer"},"price":{"type":"string"},"link":{"type":"string"},"tags":{"type":"array","items":{"$ref":"#/components/schemas/Attr"}},"ingredients":{"type":"array","items":{"$ref":"#/components/schemas/Attr"}},"image_url":{"type":"string"}}}
    }
  },
  "paths": {
    "/api/user/create": {
      "post": { "summary": "Register a new user", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","password"],"properties":{"email":{"type":"string"},"password":{"type":"string"},"name":{"type":"string"}}}}}}, "responses": { "201": { "description": "user created" }, "400": { "description": "validation error" } } }
    },
    "/api/user/token": {
      "post": { "summary": "Exchange credentials for a token pair", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","password"],"properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/api/user/token/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["refresh_token"],"properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/api/user/token/revoke": {
      "post": { "summary": "Revoke refresh token and blacklist access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["refresh_token"],"properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "token revoked" } } }
    },
    "/api/user/me": {
      "get": { "summary": "Get own profile", "security": [{"bearerAuth":[]}], "responses": { "200": { "description": "profile" }, "401": { "description": "unauthorized" } } },
      "patch": { "summary": "Update own profile", "security": [{"bearerAuth":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated profile" } } }
    },
    "/api/recipe/recipes": {
      "get": { "summary": "List own recipes", "security": [{"bearerAuth":[]}], "parameters": [{"name":"tags","in":"query","schema":{"type":"string"},"description":"comma-separated tag IDs"},{"name":"ingredients","in":"query","schema":{"type":"string"},"description":"comma-separated ingredient IDs"}], "responses": { "200": { "description": "recipe list" } } },
      "post": { "summary": "Create a recipe", "security": [{"bearerAuth":[]}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/RecipeInput"}}}}, "responses": { "201": { "description": "recipe created" }, "400": { "description": "validation error" } } }
    },
    "/api/recipe/recipes/{id}": {
      "get": { "summary": "Get recipe detail", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "recipe detail" }, "404": { "description": "not found" } } },
      "put": { "summary": "Replace a recipe", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/RecipeInput"}}}}, "responses": { "200": { "description": "updated recipe" } } },
      "patch": { "summary": "Partially update a recipe", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/RecipeInput"}}}}, "responses": { "200": { "description": "updated recipe" } } },
      "delete": { "summary": "Delete a recipe", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "204": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/api/recipe/recipes/{id}/upload-image": {
      "post": { "summary": "Upload a recipe image", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"image":{"type":"string","format":"binary"}}}}}}, "responses": { "200": { "description": "image stored" }, "400": { "description": "image missing" } } }
    },
    "/api/recipe/tags": {
      "get": { "summary": "List own tags", "security": [{"bearerAuth":[]}], "parameters": [{"name":"assigned_only","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "tag list" } } }
    },
    "/api/recipe/tags/{id}": {
      "patch": { "summary": "Rename a tag", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a tag", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "204": { "description": "deleted" } } }
    },
    "/api/recipe/ingredients": {
      "get": { "summary": "List own ingredients", "security": [{"bearerAuth":[]}], "parameters": [{"name":"assigned_only","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "ingredient list" } } }
    },
    "/api/recipe/ingredients/{id}": {
      "patch": { "summary": "Rename an ingredient", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "updated" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete an ingredient", "security": [{"bearerAuth":[]}], "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "204": { "description": "deleted" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
