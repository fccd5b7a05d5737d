package regress

import (
	"errors"
	"fmt"
	"math"
)

// StandardScaler standardizes each feature to zero mean and unit variance.
// It is fitted once per training run and must be reused verbatim for every
// prediction until the next retrain; refitting at serve time would shift the
// input distribution the models were trained on.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-feature mean and population standard deviation. A
// zero-variance feature gets std 1 so it scales to zero instead of dividing
// by zero, matching sklearn's StandardScaler.
func (s *StandardScaler) Fit(features [][]float64) error {
	if err := checkTrainingSet(features, make([]float64, len(features))); err != nil {
		return err
	}
	n := float64(len(features))
	width := len(features[0])

	mean := make([]float64, width)
	for _, row := range features {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	std := make([]float64, width)
	for _, row := range features {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	s.Mean = mean
	s.Std = std
	return nil
}

// Transform standardizes one vector with the fitted parameters.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(s.Mean) == 0 {
		return nil, errors.New("scaler not fitted")
	}
	if len(features) != len(s.Mean) {
		return nil, fmt.Errorf("feature width mismatch: got %d, want %d", len(features), len(s.Mean))
	}
	out := make([]float64, len(features))
	for j, v := range features {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// TransformAll standardizes a whole matrix.
func (s *StandardScaler) TransformAll(features [][]float64) ([][]float64, error) {
	out := make([][]float64, len(features))
	for i, row := range features {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
