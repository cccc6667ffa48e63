package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/eduinsight/dropout-backend/internal/features"
	"github.com/eduinsight/dropout-backend/internal/response"
	"github.com/eduinsight/dropout-backend/internal/service"
)

// ServiceVersion is reported by the info endpoint.
const ServiceVersion = "1.0.0"

// MetaHandler serves the service info, health, and feature contract
// endpoints.
type MetaHandler struct {
	predictionService *service.PredictionService
	pool              *pgxpool.Pool
	rdb               *redis.Client
}

func NewMetaHandler(predictionService *service.PredictionService, pool *pgxpool.Pool, rdb *redis.Client) *MetaHandler {
	return &MetaHandler{
		predictionService: predictionService,
		pool:              pool,
		rdb:               rdb,
	}
}

// Home godoc
// GET /
func (h *MetaHandler) Home(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"message": "Student Dropout Prediction API",
		"version": ServiceVersion,
		"endpoints": gin.H{
			"/api/v1/predict":       "POST - Predict student dropout risk",
			"/api/v1/predict/batch": "POST - Predict dropout risk for a batch of students",
			"/api/v1/features":      "GET - Get required features list",
			"/health":               "GET - Health check",
		},
	})
}

// Health godoc
// GET /health
func (h *MetaHandler) Health(c *gin.Context) {
	pingCtx, pingCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer pingCancel()

	status := "healthy"
	postgresUp := h.pool.Ping(pingCtx) == nil
	redisUp := h.rdb.Ping(pingCtx).Err() == nil
	if !postgresUp || !redisUp {
		status = "degraded"
	}

	response.Success(c, http.StatusOK, gin.H{
		"status":       status,
		"model_loaded": h.predictionService.ModelLoaded(),
		"postgres":     postgresUp,
		"redis":        redisUp,
	})
}

// Features godoc
// GET /api/v1/features
func (h *MetaHandler) Features(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"features":             features.Keys(),
		"feature_descriptions": features.Mapping(),
	})
}
