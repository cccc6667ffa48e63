package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/features"
	"github.com/eduinsight/dropout-backend/internal/response"
	"github.com/eduinsight/dropout-backend/internal/service"
)

type PredictionHandler struct {
	predictionService *service.PredictionService
	historyService    *service.HistoryService
	log               zerolog.Logger
}

func NewPredictionHandler(predictionService *service.PredictionService, historyService *service.HistoryService, log zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		historyService:    historyService,
		log:               log.With().Str("component", "prediction_handler").Logger(),
	}
}

// batchRequest wraps the student record list for batch prediction.
// Students stays raw so a non-list value reaches the service's
// validation taxonomy instead of failing as a malformed payload.
type batchRequest struct {
	Students json.RawMessage `json:"students"`
}

// decodeStudents returns the record list, or nil when the field is
// absent, null, or not a list. The service turns nil into a
// ValidationError, after its model-availability check.
func decodeStudents(raw json.RawMessage) []features.Record {
	if len(raw) == 0 {
		return nil
	}
	var students []features.Record
	if err := json.Unmarshal(raw, &students); err != nil {
		return nil
	}
	return students
}

// Predict godoc
// POST /api/v1/predict
// The 31 required feature keys sit at the top level of the body; an
// optional student_id tags the stored history row.
func (h *PredictionHandler) Predict(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"detail": err.Error()})
		return
	}
	if len(payload) == 0 {
		// Model availability outranks payload shape.
		if !h.predictionService.ModelLoaded() {
			h.failPrediction(c, service.ErrModelUnavailable)
			return
		}
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrInvalidPayload,
			"no input data provided")
		return
	}

	// student_id is a passthrough tag, not a model feature.
	studentID, _ := payload["student_id"].(string)
	delete(payload, "student_id")
	record := features.Record(payload)

	result, err := h.predictionService.Predict(c.Request.Context(), record)
	if err != nil {
		h.failPrediction(c, err)
		return
	}

	// Persistence is best-effort and asynchronous; the prediction
	// response never waits on it.
	h.historyService.Record(c.Request.Context(), studentID, record, result)

	response.Success(c, http.StatusOK, result)
}

// PredictBatch godoc
// POST /api/v1/predict/batch
// Applies the single-record pipeline to every element of "students"
// with per-index failure isolation.
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"detail": err.Error()})
		return
	}

	outcome, err := h.predictionService.PredictBatch(c.Request.Context(), decodeStudents(req.Students))
	if err != nil {
		h.failPrediction(c, err)
		return
	}

	response.Success(c, http.StatusOK, outcome)
}

// failPrediction maps the service error taxonomy onto HTTP statuses
// and error codes.
func (h *PredictionHandler) failPrediction(c *gin.Context, err error) {
	if errors.Is(err, service.ErrModelUnavailable) {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrModelUnavailable)
		return
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		if len(validationErr.MissingFeatures) > 0 {
			response.FailMissingFeatures(c, http.StatusBadRequest,
				validationErr.Error(), validationErr.MissingFeatures)
			return
		}
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, validationErr.Error())
		return
	}

	var inferenceErr *service.InferenceError
	if errors.As(err, &inferenceErr) {
		h.log.Error().Err(err).Msg("Inference failed")
		response.FailWithMessage(c, http.StatusInternalServerError, response.ErrInference, inferenceErr.Error())
		return
	}

	h.log.Error().Err(err).Msg("Prediction failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
