package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eduinsight/dropout-backend/internal/config"
	"github.com/eduinsight/dropout-backend/internal/handler"
	"github.com/eduinsight/dropout-backend/internal/middleware"
	"github.com/eduinsight/dropout-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Meta       *handler.MetaHandler
	Prediction *handler.PredictionHandler
	History    *handler.HistoryHandler
	Mood       *handler.MoodHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Service info and health, outside the versioned API for probes
	// and legacy consumers.
	router.GET("/", handlers.Meta.Home)
	router.GET("/health", handlers.Meta.Health)

	// Rate limiter for prediction routes (60 requests per minute per IP;
	// batch requests count once regardless of size).
	predictLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Prediction API ─────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		// The feature contract is immutable per deployed model; let
		// clients cache it for an hour.
		api.GET("/features", middleware.CacheControl(3600), handlers.Meta.Features)

		predict := api.Group("")
		predict.Use(predictLimiter.Middleware())
		{
			predict.POST("/predict", handlers.Prediction.Predict)
			predict.POST("/predict/batch", handlers.Prediction.PredictBatch)
		}

		// ─── 2. Prediction History ─────────────────────────────────
		history := api.Group("/history")
		{
			history.GET("/recent", handlers.History.Recent)
			history.GET("/students/:student_id", handlers.History.ByStudent)
			history.GET("/stats", handlers.History.Stats)
		}

		// ─── 3. Mood Tracking ──────────────────────────────────────
		mood := api.Group("/mood")
		{
			mood.POST("", handlers.Mood.Create)
			mood.GET("/recent", handlers.Mood.Recent)
		}
	}

	// Unversioned aliases for pre-v1 consumers.
	router.GET("/features", middleware.CacheControl(3600), handlers.Meta.Features)
	legacy := router.Group("")
	legacy.Use(predictLimiter.Middleware())
	{
		legacy.POST("/predict", handlers.Prediction.Predict)
		legacy.POST("/predict/batch", handlers.Prediction.PredictBatch)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/predictions/stream", handlers.WS.PredictionStream)
	}

	return router
}
