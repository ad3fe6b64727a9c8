package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"social_quests_api/internal/api"
	"social_quests_api/internal/middleware"
	"social_quests_api/internal/repository"
	"social_quests_api/internal/service"
	"social_quests_api/pkg/auth"
	"social_quests_api/pkg/logger"

	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	userService := service.NewUserService(repo)
	authService := service.NewAuthService(repo)
	questService := service.NewQuestService(repo)

	hub := api.NewLeaderboardHub(userService)
	progressService := service.NewProgressService(repo, hub)

	tokenAuth := auth.NewTokenAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, userService)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api")
	a.Use(limiter.Middleware())
	api.NewAuthRoutes(a, authService, tokenAuth, cfg.Auth.IdentityScheme)
	api.NewQuestRoutes(a, questService, progressService, tokenAuth)
	api.NewProgressRoutes(a, progressService, tokenAuth)

	api.NewLeaderboardRoutes(router, userService)
	hub.Register(router)

	router.StaticFile("/static/swagger.json", "./static/swagger.json")
	router.GET("/api/docs", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/static/swagger.json")
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server",
		zap.String("addr", addr),
		zap.String("identity_scheme", cfg.Auth.IdentityScheme))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
