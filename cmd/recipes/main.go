package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipebox/recipebox/handlers"
	"github.com/recipebox/recipebox/internal/database"
	"github.com/recipebox/recipebox/internal/recipe/service"
	"github.com/recipebox/recipebox/internal/tokens"
)

// Standalone recipes-only service. Useful for local development and for
// deployments that split the catalog from the account service. Requires
// JWT_SECRET shared with whichever service issues access tokens.
func main() {
	port := os.Getenv("RECIPE_SERVICE_PORT")
	if port == "" {
		port = "5020"
	}

	r := gin.New()
	r.Use(gin.Recovery())

	// Prefer a Mongo-backed service when MONGODB_URI is provided.
	var svc service.Service
	if mongoURI := os.Getenv("MONGODB_URI"); mongoURI != "" {
		client, err := database.ConnectMongo(context.Background(), mongoURI, 10*time.Second)
		if err != nil {
			log.Printf("warning: cannot connect to MongoDB (%v) — using memory-backed repo", err)
			svc = service.NewMemoryService()
		} else {
			db := client.Database(os.Getenv("MONGODB_DATABASE"))
			svc = service.NewMongoService(db)
		}
	} else {
		svc = service.NewMemoryService()
	}

	verifier := tokens.NewVerifier(os.Getenv("JWT_SECRET"))
	api := r.Group("/api")
	handlers.NewRecipeHandler(svc, nil, verifier).Register(api)
	handlers.NewAttrHandler(svc, verifier).Register(api)
	handlers.RegisterSchema(r)

	log.Printf("recipes service listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
