package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eduinsight/dropout-backend/internal/model"
	"github.com/eduinsight/dropout-backend/internal/response"
	"github.com/eduinsight/dropout-backend/internal/service"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// HistoryHandler serves the stored prediction history consumed by the
// dashboard.
type HistoryHandler struct {
	historyService *service.HistoryService
}

func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// Recent godoc
// GET /api/v1/history/recent?limit=
func (h *HistoryHandler) Recent(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))

	predictions, err := h.historyService.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if predictions == nil {
		predictions = []model.StoredPrediction{}
	}

	response.Success(c, http.StatusOK, gin.H{"predictions": predictions})
}

// ByStudent godoc
// GET /api/v1/history/students/:student_id
func (h *HistoryHandler) ByStudent(c *gin.Context) {
	studentID := c.Param("student_id")
	limit := parseLimit(c.Query("limit"))

	predictions, err := h.historyService.ByStudent(c.Request.Context(), studentID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if len(predictions) == 0 {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student_id":  studentID,
		"predictions": predictions,
	})
}

// Stats godoc
// GET /api/v1/history/stats
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.historyService.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultHistoryLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultHistoryLimit
	}
	if n > maxHistoryLimit {
		return maxHistoryLimit
	}
	return n
}
