package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verdeai/backend/config"
	"github.com/verdeai/backend/internal/platform/logger"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger) (*gin.Engine, error) {
	log = logger.OrNop(log)

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	corsMiddleware, err := CORSMiddleware(cfg.Server.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(corsMiddleware)

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	limiter := NewIPRateLimiter(cfg.RateLimit.PerIP, log)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(limiter.RateLimit())
	{
		products := v1.Group("/products")
		products.Use(BodyLimitMiddleware(cfg.Server.MaxBodyBytes))
		{
			products.POST("/identify", handler.IdentifyProduct)
			products.POST("/score", handler.ScoreProduct)
			products.POST("/analyze", handler.AnalyzeProduct)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("/emissions", handler.CountryEmissions)
		}
	}

	return router, nil
}
