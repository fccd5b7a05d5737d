package regress

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// MeanSquaredError averages squared residuals over the evaluation set.
func MeanSquaredError(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual))
}

// RSquared is the coefficient of determination of predictions against the
// held-out targets.
func RSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}

// AccuracyPercent renders R² the way the training summary reports it: a
// percentage rounded to two decimals with at least one fractional digit,
// e.g. "87.45%", "50.0%".
func AccuracyPercent(r2 float64) string {
	s := strconv.FormatFloat(Round2(r2*100), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

// Round2 rounds to two decimal places for reporting. Stored values keep full
// precision; rounding is display-only.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
