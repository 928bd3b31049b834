package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/config"
)

// RouterOptions carries the optional collaborators of the router
type RouterOptions struct {
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Limiter enforces the per-IP rate limit. Nil builds one from cfg.RateLimit.
	Limiter *RateLimiter
	Log     zerolog.Logger
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, opts RouterOptions) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(cfg.RateLimit.PerIP)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(opts.Log))
	router.Use(LoggerMiddleware(opts.Log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics stay outside the rate limit
	router.GET("/health", handler.HealthCheck)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(limiter))
	{
		recommendations := v1.Group("/recommendations")
		{
			recommendations.GET("", handler.GetRecommendations)
			recommendations.GET("/events", handler.StreamGeneratedRecipes)
		}

		v1.GET("/images", handler.GetImage)
		v1.GET("/weather", handler.GetWeather)
		v1.GET("/shopping", handler.GetShopping)

		v1.GET("/profile", handler.GetProfile)
		v1.PUT("/profile", handler.PutProfile)

		ingredients := v1.Group("/ingredients")
		{
			ingredients.GET("", handler.ListIngredients)
			ingredients.POST("", handler.AddIngredient)
			ingredients.DELETE("/:id", handler.DeleteIngredient)
		}

		v1.POST("/ratings", handler.AddRating)
	}

	return router
}
