package api

import (
	"context"

	"github.com/RishiKendai/codesim/internal/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the router. ctx bounds the background drive computations.
func SetupRoutes(ctx context.Context, cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(ErrorHandlerMiddleware())

	handler := NewHandler(ctx, deps, cfg.MaxConcurrentCompute, cfg.BatchSize, cfg.ComputationTimeout)
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	v1.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	v1.Use(RateLimitMiddleware(rateLimiter))
	{
		v1.POST("/compare", handler.Compare)
		v1.POST("/compute", handler.Compute)
		v1.GET("/reports/:driveId", handler.GetReport)
	}

	return router
}
