package regress

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// KNeighbors predicts the mean target of the K nearest training rows by
// Euclidean distance. Fitting just retains the (scaled) training set.
type KNeighbors struct {
	K        int         `json:"k"`
	Features [][]float64 `json:"features"`
	Targets  []float64   `json:"targets"`
}

func (m *KNeighbors) Algorithm() string { return AlgorithmKNeighbors }

func (m *KNeighbors) Fit(features [][]float64, targets []float64) error {
	if err := checkTrainingSet(features, targets); err != nil {
		return err
	}
	if m.K <= 0 {
		m.K = 5
	}
	m.Features = make([][]float64, len(features))
	for i, row := range features {
		m.Features[i] = append([]float64(nil), row...)
	}
	m.Targets = append([]float64(nil), targets...)
	return nil
}

func (m *KNeighbors) Predict(features []float64) (float64, error) {
	if len(m.Targets) == 0 {
		return 0, errors.New("model not fitted")
	}
	if len(features) != len(m.Features[0]) {
		return 0, fmt.Errorf("feature width mismatch: got %d, want %d", len(features), len(m.Features[0]))
	}

	type neighbor struct {
		dist   float64
		target float64
	}
	neighbors := make([]neighbor, len(m.Targets))
	for i, row := range m.Features {
		sum := 0.0
		for j, v := range row {
			d := v - features[j]
			sum += d * d
		}
		neighbors[i] = neighbor{dist: math.Sqrt(sum), target: m.Targets[i]}
	}
	sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })

	k := m.K
	if k > len(neighbors) {
		k = len(neighbors)
	}
	sum := 0.0
	for i := 0; i < k; i++ {
		sum += neighbors[i].target
	}
	return sum / float64(k), nil
}
