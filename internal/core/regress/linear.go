package regress

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least squares with an intercept, solved by QR
// factorization of the design matrix.
type LinearRegression struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

func (m *LinearRegression) Algorithm() string { return AlgorithmLinear }

func (m *LinearRegression) Fit(features [][]float64, targets []float64) error {
	if err := checkTrainingSet(features, targets); err != nil {
		return err
	}
	rows := len(features)
	cols := len(features[0])

	// Constant columns carry no signal and would make the design matrix rank
	// deficient; they are excluded from the solve and get weight zero, which
	// is the minimum-norm least-squares solution for them.
	active := activeColumns(features)

	// Design matrix over the active columns with a trailing bias column.
	a := mat.NewDense(rows, len(active)+1, nil)
	for i, row := range features {
		for k, j := range active {
			a.Set(i, k, row[j])
		}
		a.Set(i, len(active), 1)
	}
	b := mat.NewVecDense(rows, append([]float64(nil), targets...))

	var qr mat.QR
	qr.Factorize(a)

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return fmt.Errorf("solve least squares: %w", err)
	}

	weights := make([]float64, cols)
	for k, j := range active {
		weights[j] = sol.AtVec(k)
	}
	m.Weights = weights
	m.Intercept = sol.AtVec(len(active))
	return nil
}

func activeColumns(features [][]float64) []int {
	cols := len(features[0])
	active := make([]int, 0, cols)
	for j := 0; j < cols; j++ {
		first := features[0][j]
		for _, row := range features[1:] {
			if row[j] != first {
				active = append(active, j)
				break
			}
		}
	}
	return active
}

func (m *LinearRegression) Predict(features []float64) (float64, error) {
	if len(m.Weights) == 0 {
		return 0, errors.New("model not fitted")
	}
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("feature width mismatch: got %d, want %d", len(features), len(m.Weights))
	}
	out := m.Intercept
	for j, w := range m.Weights {
		out += w * features[j]
	}
	return out, nil
}
