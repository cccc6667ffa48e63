package classifier

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// TrainConfig controls forest training.
type TrainConfig struct {
	Trees    int
	MaxDepth int
	// MinSamplesSplit stops splitting nodes smaller than this.
	MinSamplesSplit int
	Seed            int64
}

// DefaultTrainConfig mirrors the hyperparameters the production model
// was trained with.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Trees:           100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		Seed:            42,
	}
}

// Train fits a random forest. labels are indexes into classes; rows
// are feature vectors aligned with columns. Each tree is grown on a
// bootstrap sample considering sqrt(len(columns)) features per split.
func Train(rows [][]float64, labels []int, classes, columns []string, cfg TrainConfig) (*RandomForest, error) {
	if len(rows) == 0 || len(labels) == 0 {
		return nil, errors.New("no training data")
	}
	if len(rows) != len(labels) {
		return nil, errors.New("rows and labels size mismatch")
	}
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	featurePerSplit := int(math.Sqrt(float64(len(columns))))
	if featurePerSplit < 1 {
		featurePerSplit = 1
	}

	rf := &RandomForest{
		ModelType: ModelTypeRandomForest,
		Version:   "1.0",
		ClassList: classes,
		Columns:   columns,
		Trees:     make([][]TreeNode, 0, cfg.Trees),
	}

	for t := 0; t < cfg.Trees; t++ {
		sampleRows, sampleLabels := bootstrap(rows, labels, rng)
		tree := buildNode(sampleRows, sampleLabels, len(classes), 0, featurePerSplit, cfg, rng)
		rf.Trees = append(rf.Trees, tree)
	}
	return rf, nil
}

func bootstrap(rows [][]float64, labels []int, rng *rand.Rand) ([][]float64, []int) {
	n := len(rows)
	outRows := make([][]float64, n)
	outLabels := make([]int, n)
	for i := 0; i < n; i++ {
		j := rng.Intn(n)
		outRows[i] = rows[j]
		outLabels[i] = labels[j]
	}
	return outRows, outLabels
}

// buildNode grows a subtree and returns it as a flat node array with
// the root at index 0, the left subtree immediately after, then the
// right subtree.
func buildNode(rows [][]float64, labels []int, classCount, depth, featurePerSplit int, cfg TrainConfig, rng *rand.Rand) []TreeNode {
	if depth >= cfg.MaxDepth || len(labels) < cfg.MinSamplesSplit || isPure(labels) {
		return []TreeNode{leafNode(labels, classCount)}
	}

	featureIdx, threshold, ok := bestSplit(rows, labels, featurePerSplit, rng)
	if !ok {
		return []TreeNode{leafNode(labels, classCount)}
	}

	leftRows, leftLabels, rightRows, rightLabels := partition(rows, labels, featureIdx, threshold)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		return []TreeNode{leafNode(labels, classCount)}
	}

	left := buildNode(leftRows, leftLabels, classCount, depth+1, featurePerSplit, cfg, rng)
	right := buildNode(rightRows, rightLabels, classCount, depth+1, featurePerSplit, cfg, rng)

	nodes := make([]TreeNode, 0, 1+len(left)+len(right))
	nodes = append(nodes, TreeNode{
		FeatureIdx: featureIdx,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(left),
	})
	nodes = append(nodes, left...)
	nodes = append(nodes, right...)

	// Child indexes inside the subtrees are relative to their own
	// root; shift them into this node's array.
	for i := 1; i < 1+len(left); i++ {
		shift(&nodes[i], 1)
	}
	for i := 1 + len(left); i < len(nodes); i++ {
		shift(&nodes[i], 1+len(left))
	}
	return nodes
}

func shift(n *TreeNode, offset int) {
	if n.IsLeaf {
		return
	}
	n.LeftChild += offset
	n.RightChild += offset
}

func leafNode(labels []int, classCount int) TreeNode {
	counts := make([]int, classCount)
	for _, l := range labels {
		if l >= 0 && l < classCount {
			counts[l]++
		}
	}
	return TreeNode{
		FeatureIdx:  -1,
		LeftChild:   -1,
		RightChild:  -1,
		ClassCounts: counts,
		IsLeaf:      true,
	}
}

// bestSplit evaluates a random feature subset, trying the median of
// each candidate feature as the threshold and keeping the split with
// the lowest weighted gini impurity.
func bestSplit(rows [][]float64, labels []int, featurePerSplit int, rng *rand.Rand) (int, float64, bool) {
	featureCount := len(rows[0])
	candidates := rng.Perm(featureCount)
	if featurePerSplit < featureCount {
		candidates = candidates[:featurePerSplit]
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	for _, fi := range candidates {
		values := make([]float64, len(rows))
		for i := range rows {
			values[i] = rows[i][fi]
		}
		threshold := median(values)

		var leftLabels, rightLabels []int
		for i := range rows {
			if rows[i][fi] <= threshold {
				leftLabels = append(leftLabels, labels[i])
			} else {
				rightLabels = append(rightLabels, labels[i])
			}
		}
		if len(leftLabels) == 0 || len(rightLabels) == 0 {
			continue
		}
		impurity := weightedGini(leftLabels, rightLabels)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = fi
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func partition(rows [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	var leftRows, rightRows [][]float64
	var leftLabels, rightLabels []int
	for i, row := range rows {
		if row[featureIdx] <= threshold {
			leftRows = append(leftRows, row)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightRows = append(rightRows, row)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftRows, leftLabels, rightRows, rightLabels
}

func weightedGini(left, right []int) float64 {
	lw := float64(len(left))
	rw := float64(len(right))
	total := lw + rw
	return (lw/total)*gini(left) + (rw/total)*gini(right)
}

func gini(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(len(labels))
		impurity -= p * p
	}
	return impurity
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, l := range labels[1:] {
		if l != first {
			return false
		}
	}
	return true
}
