package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sodam/backend/config"
	"github.com/sodam/backend/internal/usecase"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, auth *usecase.AuthService) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Dashboard page and its form posts
	router.GET("/", handler.DashboardPage)
	router.POST("/", handler.DashboardAction)

	// The API is served both unversioned and under /api/v1; one limiter
	// covers both.
	rateLimit := RateLimitMiddleware(cfg.RateLimit.PerIP)
	for _, prefix := range []string{"/api", "/api/v1"} {
		api := router.Group(prefix)
		api.Use(rateLimit)

		recs := api.Group("/recs")
		{
			recs.POST("/score", handler.Score)
			recs.POST("/batch", handler.Batch)
			recs.GET("/sample", handler.Sample)
		}

		accounts := api.Group("/auth")
		{
			accounts.POST("/register", handler.Register)
			accounts.POST("/login", handler.Login)
			accounts.GET("/me", AuthMiddleware(auth), handler.Me)
		}
	}

	return router
}
