package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"

	"github.com/eduinsight/dropout-backend/internal/classifier"
	"github.com/eduinsight/dropout-backend/internal/features"
)

// targetColumn holds the enrollment outcome label in the dataset.
const targetColumn = "Target"

func main() {
	datasetPath := flag.String("dataset", "dataset.csv", "training dataset CSV path")
	modelPath := flag.String("model_path", "random_forest_model.json", "model output path")
	trees := flag.Int("trees", 100, "number of trees")
	maxDepth := flag.Int("max_depth", 10, "max tree depth")
	minSplit := flag.Int("min_samples_split", 5, "minimum samples to split a node")
	testRatio := flag.Float64("test_ratio", 0.2, "holdout ratio for accuracy reporting")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	rows, labels, classes, err := loadDataset(*datasetPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded %d rows, classes: %v", len(rows), classes)

	trainX, trainY, testX, testY := splitDataset(rows, labels, *testRatio, *seed)

	cfg := classifier.TrainConfig{
		Trees:           *trees,
		MaxDepth:        *maxDepth,
		MinSamplesSplit: *minSplit,
		Seed:            *seed,
	}
	forest, err := classifier.Train(trainX, trainY, classes, features.Columns(), cfg)
	if err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	if len(testY) > 0 {
		log.Printf("holdout accuracy: %.3f", evaluate(forest, testX, testY, classes))
	}

	if err := forest.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}
	fmt.Printf("model saved to %s\n", *modelPath)
}

// loadDataset reads the CSV, selects the 31 contract columns in
// training order, and encodes the Target column as class indexes.
func loadDataset(path string) ([][]float64, []int, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}

	columns := features.Columns()
	selected := make([]int, len(columns))
	for i, col := range columns {
		idx, ok := colIdx[col]
		if !ok {
			return nil, nil, nil, fmt.Errorf("dataset is missing column %q", col)
		}
		selected[i] = idx
	}
	targetIdx, ok := colIdx[targetColumn]
	if !ok {
		return nil, nil, nil, fmt.Errorf("dataset is missing column %q", targetColumn)
	}

	var rows [][]float64
	var rawLabels []string
	classSet := make(map[string]bool)

	for lineNo, rec := range records[1:] {
		row := make([]float64, len(selected))
		valid := true
		for i, idx := range selected {
			if idx >= len(rec) {
				valid = false
				break
			}
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				valid = false
				break
			}
			row[i] = v
		}
		if !valid {
			log.Printf("skipping row %d: unparseable values", lineNo+2)
			continue
		}
		if targetIdx >= len(rec) || rec[targetIdx] == "" {
			continue
		}
		rows = append(rows, row)
		rawLabels = append(rawLabels, rec[targetIdx])
		classSet[rec[targetIdx]] = true
	}

	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}
	labels := make([]int, len(rawLabels))
	for i, l := range rawLabels {
		labels[i] = classIdx[l]
	}

	return rows, labels, classes, nil
}

func splitDataset(rows [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		return rows, labels, nil, nil
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(rows))
	testCount := int(float64(len(rows)) * testRatio)

	for i, j := range perm {
		if i < testCount {
			testX = append(testX, rows[j])
			testY = append(testY, labels[j])
		} else {
			trainX = append(trainX, rows[j])
			trainY = append(trainY, labels[j])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluate(forest *classifier.RandomForest, testX [][]float64, testY []int, classes []string) float64 {
	correct := 0
	for i, row := range testX {
		in := &features.ModelInput{Columns: features.Columns(), Values: toAny(row)}
		label, err := forest.Predict(in)
		if err != nil {
			continue
		}
		if label == classes[testY[i]] {
			correct++
		}
	}
	return float64(correct) / float64(len(testY))
}

func toAny(row []float64) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
