package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eduinsight/dropout-backend/internal/features"
	"github.com/eduinsight/dropout-backend/internal/model"
)

// fakeClassifier returns canned outputs. err fails inference for
// every record; panicOnPredict exercises the batch failure boundary.
type fakeClassifier struct {
	classes []string
	label   string
	proba   []float64
	err     error
	// panicOnPredict triggers a panic inside Predict, to exercise the
	// batch failure boundary.
	panicOnPredict bool
}

func (f *fakeClassifier) Predict(row *features.ModelInput) (string, error) {
	if f.panicOnPredict {
		panic("classifier exploded")
	}
	return f.label, f.err
}

func (f *fakeClassifier) PredictProba(row *features.ModelInput) ([]float64, error) {
	return f.proba, f.err
}

func (f *fakeClassifier) Classes() []string {
	return f.classes
}

func dropoutClassifier(label string, dropout, enrolled, graduate float64) *fakeClassifier {
	return &fakeClassifier{
		classes: []string{"Dropout", "Enrolled", "Graduate"},
		label:   label,
		proba:   []float64{dropout, enrolled, graduate},
	}
}

func fullRecord() features.Record {
	record := make(features.Record, features.Count)
	for _, key := range features.Keys() {
		record[key] = 1
	}
	return record
}

func newService(clf *fakeClassifier) *PredictionService {
	if clf == nil {
		return NewPredictionService(nil, zerolog.Nop())
	}
	return NewPredictionService(clf, zerolog.Nop())
}

func TestPredictBuildsResult(t *testing.T) {
	svc := newService(dropoutClassifier("Graduate", 0.1, 0.2, 0.7))

	result, err := svc.Predict(context.Background(), fullRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PredictedLabel != "Graduate" {
		t.Fatalf("expected Graduate, got %q", result.PredictedLabel)
	}
	if len(result.ClassProbabilities) != 3 {
		t.Fatalf("expected 3 probabilities, got %d", len(result.ClassProbabilities))
	}

	sum := 0.0
	for _, p := range result.ClassProbabilities {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("probabilities sum to %f, want 1.0", sum)
	}
	if result.Confidence != 0.7 {
		t.Fatalf("confidence should be the max probability, got %f", result.Confidence)
	}
}

func TestRiskTierThresholds(t *testing.T) {
	cases := []struct {
		label   string
		dropout float64
		want    model.RiskTier
	}{
		{"Dropout", 0.75, model.RiskHigh},
		{"Dropout", 0.5, model.RiskMedium},
		{"Dropout", 0.2, model.RiskLow},
		{"Graduate", 0.35, model.RiskMedium},
		{"Graduate", 0.1, model.RiskLow},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%.2f", tc.label, tc.dropout), func(t *testing.T) {
			rest := (1 - tc.dropout) / 2
			svc := newService(dropoutClassifier(tc.label, tc.dropout, rest, rest))

			result, err := svc.Predict(context.Background(), fullRecord())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.RiskTier != tc.want {
				t.Fatalf("label=%s dropout=%.2f: got %s, want %s",
					tc.label, tc.dropout, result.RiskTier, tc.want)
			}
		})
	}
}

func TestRiskTierWithoutDropoutClass(t *testing.T) {
	// A model without a Dropout class defaults the dropout
	// probability to 0, so the tier is always Low.
	svc := newService(&fakeClassifier{
		classes: []string{"Enrolled", "Graduate"},
		label:   "Graduate",
		proba:   []float64{0.4, 0.6},
	})

	result, err := svc.Predict(context.Background(), fullRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RiskTier != model.RiskLow {
		t.Fatalf("expected Low, got %s", result.RiskTier)
	}
}

func TestPredictMissingFeatures(t *testing.T) {
	svc := newService(dropoutClassifier("Graduate", 0.1, 0.2, 0.7))

	record := fullRecord()
	delete(record, "course")
	delete(record, "gdp")

	_, err := svc.Predict(context.Background(), record)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if len(validationErr.MissingFeatures) != 2 {
		t.Fatalf("expected both missing keys, got %v", validationErr.MissingFeatures)
	}
}

func TestPredictInferenceFailure(t *testing.T) {
	clf := dropoutClassifier("Dropout", 0.8, 0.1, 0.1)
	clf.err = errors.New("incompatible input")
	svc := newService(clf)

	_, err := svc.Predict(context.Background(), fullRecord())
	var inferenceErr *InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected InferenceError, got %T (%v)", err, err)
	}
	if !errors.Is(err, clf.err) {
		t.Fatal("InferenceError should wrap the classifier error")
	}
}

func TestPredictProbabilityLengthMismatch(t *testing.T) {
	svc := newService(&fakeClassifier{
		classes: []string{"Dropout", "Enrolled", "Graduate"},
		label:   "Dropout",
		proba:   []float64{0.5, 0.5},
	})

	_, err := svc.Predict(context.Background(), fullRecord())
	var inferenceErr *InferenceError
	if !errors.As(err, &inferenceErr) {
		t.Fatalf("expected InferenceError, got %T (%v)", err, err)
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	svc := newService(nil)

	// Even a malformed record must fail with model-unavailable:
	// validation is never attempted.
	_, err := svc.Predict(context.Background(), features.Record{})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}

	_, err = svc.PredictBatch(context.Background(), []features.Record{fullRecord()})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable for batch, got %v", err)
	}
}

func TestPredictBatchIsolation(t *testing.T) {
	svc := newService(dropoutClassifier("Dropout", 0.8, 0.1, 0.1))

	broken := fullRecord()
	delete(broken, "course")
	records := []features.Record{fullRecord(), fullRecord(), broken, fullRecord()}

	outcome, err := svc.PredictBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Total != 4 || outcome.Succeeded != 3 || outcome.Failed != 1 {
		t.Fatalf("got total=%d succeeded=%d failed=%d, want 4/3/1",
			outcome.Total, outcome.Succeeded, outcome.Failed)
	}
	if len(outcome.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(outcome.Results))
	}
	for i, entry := range outcome.Results {
		if entry.Index != i {
			t.Fatalf("results[%d].Index = %d", i, entry.Index)
		}
	}
	failed := outcome.Results[2]
	if failed.Status != model.BatchStatusError {
		t.Fatalf("expected index 2 to fail, got %q", failed.Status)
	}
	if !strings.Contains(failed.Error, "course") {
		t.Fatalf("failure should name the missing key, got %q", failed.Error)
	}
	for _, i := range []int{0, 1, 3} {
		if outcome.Results[i].Status != model.BatchStatusSuccess {
			t.Fatalf("expected index %d to succeed", i)
		}
		if outcome.Results[i].RiskTier != model.RiskHigh {
			t.Fatalf("expected High tier at index %d", i)
		}
	}
}

func TestPredictBatchEmpty(t *testing.T) {
	svc := newService(dropoutClassifier("Dropout", 0.8, 0.1, 0.1))

	outcome, err := svc.PredictBatch(context.Background(), []features.Record{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Total != 0 || outcome.Succeeded != 0 || outcome.Failed != 0 {
		t.Fatalf("expected zero counts, got %+v", outcome)
	}
	if len(outcome.Results) != 0 {
		t.Fatalf("expected empty results, got %d", len(outcome.Results))
	}
}

func TestPredictBatchNilList(t *testing.T) {
	svc := newService(dropoutClassifier("Dropout", 0.8, 0.1, 0.1))

	_, err := svc.PredictBatch(context.Background(), nil)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
}

func TestPredictBatchContainsPanic(t *testing.T) {
	clf := dropoutClassifier("Dropout", 0.8, 0.1, 0.1)
	clf.panicOnPredict = true
	svc := newService(clf)

	outcome, err := svc.PredictBatch(context.Background(), []features.Record{fullRecord()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Failed != 1 || outcome.Total != 1 {
		t.Fatalf("expected the panicking record to fail in place, got %+v", outcome)
	}
	if !strings.Contains(outcome.Results[0].Error, "classifier exploded") {
		t.Fatalf("expected panic message in error, got %q", outcome.Results[0].Error)
	}
}

