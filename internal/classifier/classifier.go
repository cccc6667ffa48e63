// Package classifier provides the inference capability used by the
// prediction service. The service depends only on the Classifier
// interface; the concrete model family and its serialization format
// are interchangeable behind it.
package classifier

import "github.com/eduinsight/dropout-backend/internal/features"

// Classifier is the opaque capability of a pre-trained model: map a
// single feature row to a label and to a probability distribution over
// the model's known classes. Implementations must be safe for
// concurrent read-only use once loaded.
type Classifier interface {
	// Predict returns the predicted class label for one row.
	Predict(row *features.ModelInput) (string, error)

	// PredictProba returns the probability for each known class, in
	// the same order as Classes.
	PredictProba(row *features.ModelInput) ([]float64, error)

	// Classes returns the model's output labels in training order.
	// The slice is stable across calls and must not be mutated.
	Classes() []string
}
