package classifier

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eduinsight/dropout-backend/internal/features"
)

// stumpForest builds a two-tree forest over a single feature with the
// classes Dropout/Enrolled/Graduate.
func stumpForest() *RandomForest {
	stump := func(leftCounts, rightCounts []int) []TreeNode {
		return []TreeNode{
			{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassCounts: leftCounts, IsLeaf: true},
			{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassCounts: rightCounts, IsLeaf: true},
		}
	}
	return &RandomForest{
		ModelType: "random_forest",
		Version:   "1.0",
		ClassList: []string{"Dropout", "Enrolled", "Graduate"},
		Columns:   []string{"Age at enrollment"},
		Trees: [][]TreeNode{
			stump([]int{8, 1, 1}, []int{0, 1, 9}),
			stump([]int{6, 2, 2}, []int{2, 2, 6}),
		},
	}
}

func rowWith(value interface{}) *features.ModelInput {
	return &features.ModelInput{
		Columns: []string{"Age at enrollment"},
		Values:  []interface{}{value},
	}
}

func TestPredictProbaAveragesTrees(t *testing.T) {
	rf := stumpForest()

	proba, err := rf.PredictProba(rowWith(0.0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proba) != 3 {
		t.Fatalf("expected 3 probabilities, got %d", len(proba))
	}
	// Left leaves: (0.8, 0.1, 0.1) and (0.6, 0.2, 0.2) → (0.7, 0.15, 0.15).
	if math.Abs(proba[0]-0.7) > 1e-9 {
		t.Fatalf("expected Dropout probability 0.7, got %f", proba[0])
	}

	sum := 0.0
	for _, p := range proba {
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("probabilities sum to %f, want 1.0", sum)
	}
}

func TestPredictArgmax(t *testing.T) {
	rf := stumpForest()

	label, err := rf.Predict(rowWith(0.0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "Dropout" {
		t.Fatalf("expected Dropout, got %q", label)
	}

	label, err = rf.Predict(rowWith(5.0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "Graduate" {
		t.Fatalf("expected Graduate, got %q", label)
	}
}

func TestPredictProbaRejectsNonNumeric(t *testing.T) {
	rf := stumpForest()

	_, err := rf.PredictProba(rowWith("twenty"))
	if err == nil {
		t.Fatal("expected error for non-numeric value")
	}
	if !strings.Contains(err.Error(), "Age at enrollment") {
		t.Fatalf("error should name the column: %v", err)
	}

	if _, err := rf.PredictProba(rowWith(nil)); err == nil {
		t.Fatal("expected error for null value")
	}
}

func TestPredictProbaCoercesNumericKinds(t *testing.T) {
	rf := stumpForest()

	for _, v := range []interface{}{int(1), int64(1), float32(1), true} {
		if _, err := rf.PredictProba(rowWith(v)); err != nil {
			t.Fatalf("value %T: unexpected error: %v", v, err)
		}
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	rf := stumpForest()
	path := filepath.Join(t.TempDir(), "model.json")

	if err := rf.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(loaded.Trees) != len(rf.Trees) {
		t.Fatalf("expected %d trees, got %d", len(rf.Trees), len(loaded.Trees))
	}
	label, err := loaded.Predict(rowWith(0.0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "Dropout" {
		t.Fatalf("expected Dropout, got %q", label)
	}
}

func TestLoadRejectsWrongModelType(t *testing.T) {
	rf := stumpForest()
	rf.ModelType = "gradient_boost"

	raw, err := json.Marshal(rf)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err = LoadFromFile(path)
	if err == nil {
		t.Fatal("expected error for unsupported model type")
	}
	if !strings.Contains(err.Error(), "gradient_boost") {
		t.Fatalf("error should name the offending type: %v", err)
	}
}

func TestPredictProbaRejectsCyclicTree(t *testing.T) {
	rf := stumpForest()
	// Node 1 points back at the root instead of being a leaf.
	rf.Trees = [][]TreeNode{{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 1},
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 0, RightChild: 0},
	}}

	_, err := rf.PredictProba(rowWith(0.0))
	if err == nil {
		t.Fatal("expected error for cyclic tree")
	}
	if !strings.Contains(err.Error(), "invalid tree state") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestTrainSeparatesClasses(t *testing.T) {
	// Two well-separated clusters over two features.
	var rows [][]float64
	var labels []int
	for i := 0; i < 40; i++ {
		rows = append(rows, []float64{float64(i % 5), 0})
		labels = append(labels, 0)
		rows = append(rows, []float64{float64(i%5) + 50, 10})
		labels = append(labels, 1)
	}

	cfg := TrainConfig{Trees: 10, MaxDepth: 4, MinSamplesSplit: 2, Seed: 1}
	rf, err := Train(rows, labels, []string{"Dropout", "Graduate"}, []string{"a", "b"}, cfg)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	in := &features.ModelInput{Columns: []string{"a", "b"}, Values: []interface{}{2.0, 0.0}}
	label, err := rf.Predict(in)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if label != "Dropout" {
		t.Fatalf("expected Dropout cluster, got %q", label)
	}

	in = &features.ModelInput{Columns: []string{"a", "b"}, Values: []interface{}{52.0, 10.0}}
	label, err = rf.Predict(in)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if label != "Graduate" {
		t.Fatalf("expected Graduate cluster, got %q", label)
	}
}

func TestTrainRejectsBadInput(t *testing.T) {
	if _, err := Train(nil, nil, nil, nil, TrainConfig{}); err == nil {
		t.Fatal("expected error for empty data")
	}
	if _, err := Train([][]float64{{1}}, []int{0, 1}, []string{"a"}, []string{"x"}, TrainConfig{}); err == nil {
		t.Fatal("expected error for size mismatch")
	}
}
