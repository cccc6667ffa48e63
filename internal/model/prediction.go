package model

import (
	"time"

	"github.com/google/uuid"
)

// RiskTier is the discrete dropout risk classification derived from
// the model's probability output. It is not a direct classifier
// output.
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// ClassDropout is the output class the risk tier keys off.
const ClassDropout = "Dropout"

// PredictionResult is the outcome of running inference on one student
// record. Immutable once built; the caller owns it.
type PredictionResult struct {
	PredictedLabel     string             `json:"prediction"`
	ClassProbabilities map[string]float64 `json:"probabilities"`
	RiskTier           RiskTier           `json:"risk_level"`
	Confidence         float64            `json:"confidence"`
}

// DropoutProbability returns the probability assigned to the Dropout
// class, or 0 if the model does not know that class.
func (r *PredictionResult) DropoutProbability() float64 {
	return r.ClassProbabilities[ClassDropout]
}

// BatchEntry is one per-index outcome inside a batch. Exactly one of
// the prediction fields or Error is populated, indicated by Status.
type BatchEntry struct {
	Index              int                `json:"index"`
	Status             string             `json:"status"`
	PredictedLabel     string             `json:"prediction,omitempty"`
	ClassProbabilities map[string]float64 `json:"probabilities,omitempty"`
	RiskTier           RiskTier           `json:"risk_level,omitempty"`
	Confidence         float64            `json:"confidence,omitempty"`
	Error              string             `json:"error,omitempty"`
}

const (
	BatchStatusSuccess = "success"
	BatchStatusError   = "error"
)

// BatchOutcome aggregates per-index results for one batch request.
// len(Results) always equals Total, and Succeeded+Failed == Total.
type BatchOutcome struct {
	Results   []BatchEntry `json:"results"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// StoredPrediction is a persisted prediction history row.
type StoredPrediction struct {
	ID                 uuid.UUID              `json:"id"`
	StudentID          string                 `json:"student_id,omitempty"`
	PredictedLabel     string                 `json:"prediction"`
	DropoutProbability float64                `json:"dropout_probability"`
	RiskTier           RiskTier               `json:"risk_level"`
	Confidence         float64                `json:"confidence"`
	Features           map[string]interface{} `json:"features,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}

// PredictionStats summarizes the prediction history for dashboards.
type PredictionStats struct {
	Total       int              `json:"total"`
	ByRiskTier  map[RiskTier]int `json:"by_risk_level"`
	ByPredicted map[string]int   `json:"by_prediction"`
}
