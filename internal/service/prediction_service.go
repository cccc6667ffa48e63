package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/classifier"
	"github.com/eduinsight/dropout-backend/internal/features"
	"github.com/eduinsight/dropout-backend/internal/model"
)

// Risk tier thresholds, observed behavior of the deployed model.
// The policy is asymmetric on purpose: a "Dropout" prediction needs a
// higher bar to escalate from Medium to High, while any other
// prediction with elevated dropout probability still warrants caution.
const (
	dropoutHighThreshold   = 0.7
	dropoutMediumThreshold = 0.4
	otherMediumThreshold   = 0.3
)

// PredictionService turns validated student feature records into risk
// predictions. It holds no mutable state and performs no I/O; the
// classifier is shared and read-only, so the service is safe for
// concurrent use.
type PredictionService struct {
	clf     classifier.Classifier
	classes []string
	log     zerolog.Logger
}

// NewPredictionService creates a PredictionService. clf may be nil
// when the model artifact failed to load; every request then fails
// with ErrModelUnavailable until the process restarts.
func NewPredictionService(clf classifier.Classifier, log zerolog.Logger) *PredictionService {
	s := &PredictionService{
		clf: clf,
		log: log.With().Str("component", "prediction_service").Logger(),
	}
	if clf != nil {
		// The label order is stable across calls; query it once.
		s.classes = clf.Classes()
	}
	return s
}

// ModelLoaded reports whether a classifier is available.
func (s *PredictionService) ModelLoaded() bool {
	return s.clf != nil
}

// Predict runs the full single-record pipeline: validate, map to the
// model's column shape, infer, and derive the risk tier.
func (s *PredictionService) Predict(ctx context.Context, record features.Record) (*model.PredictionResult, error) {
	if s.clf == nil {
		return nil, ErrModelUnavailable
	}

	if err := features.Validate(record); err != nil {
		var missing *features.MissingError
		if errors.As(err, &missing) {
			return nil, &ValidationError{MissingFeatures: missing.Keys}
		}
		return nil, &ValidationError{Message: err.Error()}
	}

	row := features.ToModelInput(record)

	label, err := s.clf.Predict(row)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	proba, err := s.clf.PredictProba(row)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	if len(proba) != len(s.classes) {
		return nil, &InferenceError{Err: fmt.Errorf(
			"classifier returned %d probabilities for %d classes", len(proba), len(s.classes))}
	}

	probabilities := make(map[string]float64, len(s.classes))
	confidence := 0.0
	for i, class := range s.classes {
		probabilities[class] = proba[i]
		if proba[i] > confidence {
			confidence = proba[i]
		}
	}

	return &model.PredictionResult{
		PredictedLabel:     label,
		ClassProbabilities: probabilities,
		RiskTier:           deriveRiskTier(label, probabilities[model.ClassDropout]),
		Confidence:         confidence,
	}, nil
}

// PredictBatch applies Predict to each record independently. One
// record's failure never aborts or skips the others; the outcome
// always carries one entry per input index.
func (s *PredictionService) PredictBatch(ctx context.Context, records []features.Record) (*model.BatchOutcome, error) {
	if s.clf == nil {
		return nil, ErrModelUnavailable
	}
	if records == nil {
		return nil, &ValidationError{Message: "students data must be a list"}
	}

	outcome := &model.BatchOutcome{
		Results: make([]model.BatchEntry, 0, len(records)),
		Total:   len(records),
	}

	for i, record := range records {
		entry := s.predictEntry(ctx, i, record)
		if entry.Status == model.BatchStatusSuccess {
			outcome.Succeeded++
		} else {
			outcome.Failed++
		}
		outcome.Results = append(outcome.Results, entry)
	}
	return outcome, nil
}

// predictEntry runs one batch element inside an isolated failure
// boundary. Even a panic in the classifier is confined to its index.
func (s *PredictionService) predictEntry(ctx context.Context, index int, record features.Record) (entry model.BatchEntry) {
	entry = model.BatchEntry{Index: index, Status: model.BatchStatusError}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Int("index", index).Interface("panic", r).Msg("Prediction panicked")
			entry.Error = fmt.Sprintf("prediction failed: %v", r)
		}
	}()

	result, err := s.Predict(ctx, record)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	entry.Status = model.BatchStatusSuccess
	entry.PredictedLabel = result.PredictedLabel
	entry.ClassProbabilities = result.ClassProbabilities
	entry.RiskTier = result.RiskTier
	entry.Confidence = result.Confidence
	return entry
}

// deriveRiskTier maps the dropout probability to a discrete tier.
// The thresholds differ by predicted label; see the constants above.
func deriveRiskTier(predictedLabel string, dropoutProb float64) model.RiskTier {
	if predictedLabel == model.ClassDropout {
		switch {
		case dropoutProb > dropoutHighThreshold:
			return model.RiskHigh
		case dropoutProb > dropoutMediumThreshold:
			return model.RiskMedium
		default:
			return model.RiskLow
		}
	}
	if dropoutProb > otherMediumThreshold {
		return model.RiskMedium
	}
	return model.RiskLow
}
