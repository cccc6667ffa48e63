package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/eduinsight/dropout-backend/internal/features"
)

// ModelTypeRandomForest is the only artifact model type this loader
// understands.
const ModelTypeRandomForest = "random_forest"

// TreeNode is one node of a decision tree, stored in a flat array.
// Child fields are indexes into the same array; leaves carry the
// training-sample count per class, from which leaf probabilities are
// derived.
type TreeNode struct {
	FeatureIdx  int     `json:"feature_idx"`
	Threshold   float64 `json:"threshold"`
	LeftChild   int     `json:"left_child"`
	RightChild  int     `json:"right_child"`
	ClassCounts []int   `json:"class_counts"`
	IsLeaf      bool    `json:"is_leaf"`
}

// RandomForest is an ensemble of decision trees over a fixed column
// set. Probabilities are the average of per-tree leaf distributions;
// the predicted label is the argmax class.
type RandomForest struct {
	ModelType string       `json:"model_type"`
	Version   string       `json:"version"`
	ClassList []string     `json:"classes"`
	Columns   []string     `json:"columns"`
	Trees     [][]TreeNode `json:"trees"`
}

// LoadFromFile reads a JSON forest artifact from disk.
func LoadFromFile(path string) (*RandomForest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var rf RandomForest
	if err := json.Unmarshal(payload, &rf); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if err := rf.check(); err != nil {
		return nil, err
	}
	return &rf, nil
}

// Save writes the forest as a JSON artifact.
func (rf *RandomForest) Save(path string) error {
	if err := rf.check(); err != nil {
		return err
	}
	payload, err := json.Marshal(rf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (rf *RandomForest) check() error {
	if rf.ModelType != ModelTypeRandomForest {
		return fmt.Errorf("unsupported model type %q", rf.ModelType)
	}
	if len(rf.Trees) == 0 {
		return errors.New("model has no trees")
	}
	if len(rf.ClassList) == 0 {
		return errors.New("model has no classes")
	}
	return nil
}

// Classes returns the label list in training order.
func (rf *RandomForest) Classes() []string {
	return rf.ClassList
}

// Predict returns the class with the highest averaged probability.
func (rf *RandomForest) Predict(row *features.ModelInput) (string, error) {
	proba, err := rf.PredictProba(row)
	if err != nil {
		return "", err
	}
	best := 0
	for i := range proba {
		if proba[i] > proba[best] {
			best = i
		}
	}
	return rf.ClassList[best], nil
}

// PredictProba averages the leaf class distributions of every tree.
// The returned vector aligns with Classes and sums to 1.
func (rf *RandomForest) PredictProba(row *features.ModelInput) ([]float64, error) {
	vec, err := coerceRow(row)
	if err != nil {
		return nil, err
	}

	sum := make([]float64, len(rf.ClassList))
	for ti, tree := range rf.Trees {
		dist, err := walkTree(tree, vec, len(rf.ClassList))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
		for i, p := range dist {
			sum[i] += p
		}
	}
	n := float64(len(rf.Trees))
	for i := range sum {
		sum[i] /= n
	}
	return sum, nil
}

func walkTree(tree []TreeNode, vec []float64, classCount int) ([]float64, error) {
	if len(tree) == 0 {
		return nil, errors.New("empty tree")
	}
	// A valid root-to-leaf path never revisits a node, so it takes at
	// most len(tree) steps. Hitting the bound means the artifact has a
	// cycle.
	idx := 0
	for steps := 0; steps < len(tree); steps++ {
		node := tree[idx]
		if node.IsLeaf {
			return leafDistribution(node, classCount)
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(vec) {
			return nil, fmt.Errorf("feature index %d out of range", node.FeatureIdx)
		}
		if vec[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(tree) {
			return nil, errors.New("invalid tree state")
		}
	}
	return nil, errors.New("invalid tree state")
}

func leafDistribution(node TreeNode, classCount int) ([]float64, error) {
	if len(node.ClassCounts) != classCount {
		return nil, fmt.Errorf("leaf has %d class counts, model has %d classes",
			len(node.ClassCounts), classCount)
	}
	total := 0
	for _, c := range node.ClassCounts {
		total += c
	}
	if total == 0 {
		return nil, errors.New("leaf has no samples")
	}
	dist := make([]float64, classCount)
	for i, c := range node.ClassCounts {
		dist[i] = float64(c) / float64(total)
	}
	return dist, nil
}

// coerceRow converts the untyped row values to float64. JSON numbers
// decode as float64 already; integer types show up from tests and the
// trainer. Anything else is an inference-time type error.
func coerceRow(row *features.ModelInput) ([]float64, error) {
	if row == nil {
		return nil, errors.New("nil model input")
	}
	vec := make([]float64, len(row.Values))
	for i, v := range row.Values {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", row.Columns[i], err)
		}
		vec[i] = f
	}
	return vec, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case nil:
		return 0, errors.New("value is null")
	default:
		return 0, fmt.Errorf("cannot convert %T to number", v)
	}
}
