package regress

import (
	"errors"
	"fmt"
)

// GradientBoosting fits shallow trees to the running residuals of a squared
// loss, starting from the target mean. Fully deterministic for a given
// training set.
type GradientBoosting struct {
	NumStages    int              `json:"num_stages"`
	MaxDepth     int              `json:"max_depth"`
	LearningRate float64          `json:"learning_rate"`
	Init         float64          `json:"init"`
	Trees        []regressionTree `json:"trees"`
}

func (m *GradientBoosting) Algorithm() string { return AlgorithmGradientBoosting }

func (m *GradientBoosting) Fit(features [][]float64, targets []float64) error {
	if err := checkTrainingSet(features, targets); err != nil {
		return err
	}
	if m.NumStages <= 0 {
		m.NumStages = 100
	}
	if m.MaxDepth <= 0 {
		m.MaxDepth = 3
	}
	if m.LearningRate <= 0 {
		m.LearningRate = 0.1
	}

	m.Init = meanOf(targets)

	residuals := make([]float64, len(targets))
	for i, y := range targets {
		residuals[i] = y - m.Init
	}

	trees := make([]regressionTree, 0, m.NumStages)
	for stage := 0; stage < m.NumStages; stage++ {
		tree, err := fitTree(features, residuals, m.MaxDepth, 1)
		if err != nil {
			return fmt.Errorf("fit stage %d: %w", stage, err)
		}
		trees = append(trees, tree)

		for i, row := range features {
			v, err := tree.predict(row)
			if err != nil {
				return fmt.Errorf("stage %d residual update: %w", stage, err)
			}
			residuals[i] -= m.LearningRate * v
		}
	}
	m.Trees = trees
	return nil
}

func (m *GradientBoosting) Predict(features []float64) (float64, error) {
	if len(m.Trees) == 0 {
		return 0, errors.New("model not fitted")
	}
	out := m.Init
	for _, tree := range m.Trees {
		v, err := tree.predict(features)
		if err != nil {
			return 0, err
		}
		out += m.LearningRate * v
	}
	return out, nil
}
