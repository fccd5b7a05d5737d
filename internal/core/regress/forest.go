package regress

import (
	"errors"
	"fmt"
	"math/rand"
)

// RandomForest averages bootstrap-trained regression trees. The seed fixes
// the bootstrap draws so a run over identical data reproduces exactly.
type RandomForest struct {
	NumTrees int              `json:"num_trees"`
	MaxDepth int              `json:"max_depth"`
	Seed     int64            `json:"seed"`
	Trees    []regressionTree `json:"trees"`
}

func (m *RandomForest) Algorithm() string { return AlgorithmRandomForest }

func (m *RandomForest) Fit(features [][]float64, targets []float64) error {
	if err := checkTrainingSet(features, targets); err != nil {
		return err
	}
	if m.NumTrees <= 0 {
		m.NumTrees = 100
	}
	if m.MaxDepth <= 0 {
		m.MaxDepth = 10
	}

	n := len(targets)
	rng := rand.New(rand.NewSource(m.Seed))

	trees := make([]regressionTree, 0, m.NumTrees)
	sampleX := make([][]float64, n)
	sampleY := make([]float64, n)
	for t := 0; t < m.NumTrees; t++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			sampleX[i] = features[j]
			sampleY[i] = targets[j]
		}
		tree, err := fitTree(sampleX, sampleY, m.MaxDepth, 1)
		if err != nil {
			return fmt.Errorf("fit tree %d: %w", t, err)
		}
		trees = append(trees, tree)
	}
	m.Trees = trees
	return nil
}

func (m *RandomForest) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errors.New("model not fitted")
	}
	sum := 0.0
	for _, tree := range m.Trees {
		v, err := tree.predict(features)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(len(m.Trees)), nil
}
