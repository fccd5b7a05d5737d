// Package regress holds the candidate regression algorithms, the feature
// scaler and the evaluation helpers used by the training pipeline. Every
// model serializes to a JSON envelope so fitted state can be persisted and
// reloaded without refitting.
package regress

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	AlgorithmLinear           = "LinearRegression"
	AlgorithmRandomForest     = "RandomForest"
	AlgorithmGradientBoosting = "GradientBoosting"
	AlgorithmKNeighbors       = "KNeighbors"
)

// Regressor is one single-target model. Fit must leave the receiver usable
// for Predict and for MarshalParams round-tripping.
type Regressor interface {
	Algorithm() string
	Fit(features [][]float64, targets []float64) error
	Predict(features []float64) (float64, error)
}

// NewCandidate returns a fresh, unfitted regressor for a candidate key.
// Hyperparameters are fixed per key; the bank is always trained with the
// same four configurations.
func NewCandidate(key int) (Regressor, error) {
	switch key {
	case 1:
		return &LinearRegression{}, nil
	case 2:
		return &RandomForest{NumTrees: 100, MaxDepth: 10, Seed: 42}, nil
	case 3:
		return &GradientBoosting{NumStages: 100, MaxDepth: 3, LearningRate: 0.1}, nil
	case 4:
		return &KNeighbors{K: 5}, nil
	default:
		return nil, fmt.Errorf("unknown candidate key: %d", key)
	}
}

// CandidateKeys returns the fixed bank keys in training order.
func CandidateKeys() []int {
	return []int{1, 2, 3, 4}
}

type envelope struct {
	Algorithm string          `json:"algorithm"`
	Params    json.RawMessage `json:"params"`
}

// Marshal serializes a fitted regressor with its algorithm tag.
func Marshal(r Regressor) ([]byte, error) {
	params, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", r.Algorithm(), err)
	}
	return json.Marshal(envelope{Algorithm: r.Algorithm(), Params: params})
}

// Unmarshal restores a regressor from its envelope.
func Unmarshal(data []byte) (Regressor, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode model envelope: %w", err)
	}

	var model Regressor
	switch env.Algorithm {
	case AlgorithmLinear:
		model = &LinearRegression{}
	case AlgorithmRandomForest:
		model = &RandomForest{}
	case AlgorithmGradientBoosting:
		model = &GradientBoosting{}
	case AlgorithmKNeighbors:
		model = &KNeighbors{}
	default:
		return nil, fmt.Errorf("unknown algorithm %q", env.Algorithm)
	}
	if err := json.Unmarshal(env.Params, model); err != nil {
		return nil, fmt.Errorf("decode %s params: %w", env.Algorithm, err)
	}
	return model, nil
}

func checkTrainingSet(features [][]float64, targets []float64) error {
	if len(features) == 0 || len(targets) == 0 {
		return errors.New("empty training set")
	}
	if len(features) != len(targets) {
		return fmt.Errorf("features/targets size mismatch: %d/%d", len(features), len(targets))
	}
	width := len(features[0])
	if width == 0 {
		return errors.New("empty feature vector")
	}
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("ragged feature matrix at row %d", i)
		}
	}
	return nil
}
