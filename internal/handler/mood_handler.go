package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eduinsight/dropout-backend/internal/model"
	"github.com/eduinsight/dropout-backend/internal/response"
	"github.com/eduinsight/dropout-backend/internal/service"
	"github.com/eduinsight/dropout-backend/internal/validator"
)

// MoodHandler records and lists student wellbeing check-ins.
type MoodHandler struct {
	moodService *service.MoodService
}

func NewMoodHandler(moodService *service.MoodService) *MoodHandler {
	return &MoodHandler{moodService: moodService}
}

// Create godoc
// POST /api/v1/mood
func (h *MoodHandler) Create(c *gin.Context) {
	var req model.CreateMoodEntryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry := &model.MoodEntry{
		StudentID:   req.StudentID,
		Mood:        req.Mood,
		StressLevel: req.StressLevel,
		SleepHours:  *req.SleepHours,
		Notes:       req.Notes,
	}
	if err := h.moodService.Create(c.Request.Context(), entry); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"entry": entry})
}

// Recent godoc
// GET /api/v1/mood/recent?student_id=&limit=
func (h *MoodHandler) Recent(c *gin.Context) {
	studentID := c.Query("student_id")
	limit := parseLimit(c.Query("limit"))

	entries, err := h.moodService.Recent(c.Request.Context(), studentID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if entries == nil {
		entries = []model.MoodEntry{}
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}
