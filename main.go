package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/recipebox/recipebox/handlers"
	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/database"
	recipesvc "github.com/recipebox/recipebox/internal/recipe/service"
	"github.com/recipebox/recipebox/internal/sessions"
	"github.com/recipebox/recipebox/internal/storage"
	"github.com/recipebox/recipebox/internal/tokens"
	"github.com/recipebox/recipebox/internal/users"
	"github.com/recipebox/recipebox/pkg/logger"
	"github.com/recipebox/recipebox/pkg/metrics"
	"github.com/recipebox/recipebox/pkg/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL (debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v jwt_secret_set=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.JWT.Secret != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	r.Use(gin.Logger(), gin.Recovery())

	// shared runtime vars used by handlers/readiness
	var userSvc *users.Service
	var sessionsSvc *sessions.Service
	var imageStore *storage.MinIOStorage

	// Connect to Redis early so the blacklist and rate-limiter can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err == nil {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["users"] = userSvc != nil
		deps["sessions"] = sessionsSvc != nil
		if userSvc == nil || sessionsSvc == nil {
			ready = false
		}

		// Redis readiness only matters when it backs the rate limiter
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		// image storage is optional; report but never block readiness
		deps["storage"] = imageStore != nil

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	ctx := context.Background()

	// Prefer Redis-based sessions when available (fast, in-memory)
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB-backed services (users + recipes; sessions when Redis is absent)
	var recipeSvc recipesvc.Service
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
			recipeSvc = recipesvc.NewMongoService(db)
			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}
		}
	}
	if recipeSvc == nil {
		logger.Warnf("MongoDB unavailable; recipes use in-memory storage (data is not persisted)")
		recipeSvc = recipesvc.NewMemoryService()
		if userSvc == nil {
			userSvc = users.NewService(users.NewMemoryUserRepository())
		}
		if sessionsSvc == nil {
			sessionsSvc = sessions.NewService(sessions.NewMemoryRepository())
		}
	}

	// MinIO image storage is optional; upload-image returns 503 without it
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		st, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
		} else {
			imageStore = st
			logger.Infof("Connected to MinIO: %s (bucket %s)", mcfg.Endpoint, mcfg.Bucket)
		}
	}

	verifier := tokens.NewVerifier(cfg.JWT.Secret)

	api := r.Group("/api")
	handlers.NewAuthHandler(cfg, userSvc, sessionsSvc, verifier).Register(api)
	rh := handlers.NewRecipeHandler(recipeSvc, imageStoreOrNil(imageStore), verifier)
	rh.Register(api)
	handlers.NewAttrHandler(recipeSvc, verifier).Register(api)
	handlers.RegisterSchema(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting recipebox service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

// imageStoreOrNil avoids handing the handler a typed-nil interface value.
func imageStoreOrNil(s *storage.MinIOStorage) handlers.ImageStore {
	if s == nil {
		return nil
	}
	return s
}
