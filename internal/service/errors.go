package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelUnavailable is returned for every prediction request when
// the classifier could not be loaded at process start. It is
// process-level; requests fail until a restart with a valid artifact.
var ErrModelUnavailable = errors.New("prediction model is not loaded")

// ValidationError reports a malformed request: required features
// missing from a record, or a batch payload that is not a list.
// The caller can recover by resubmitting a corrected payload.
type ValidationError struct {
	Message string
	// MissingFeatures lists every absent required key, so a caller
	// can fix all omissions in a single round-trip.
	MissingFeatures []string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFeatures) > 0 {
		return fmt.Sprintf("missing required features: %s", strings.Join(e.MissingFeatures, ", "))
	}
	return e.Message
}

// InferenceError wraps a failure raised by the classifier, including
// type-coercion failures on malformed values and label/probability
// shape mismatches. Inference is deterministic, so it is never
// retried.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return "inference failed: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
