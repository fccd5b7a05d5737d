package regress

import "math/rand"

// SplitSeed fixes the train/test shuffle so identical input data yields
// identical partitions and therefore identical metrics across runs.
const SplitSeed = 42

// TrainTestSplit returns a deterministic shuffled index split. testRatio
// outside (0,1) falls back to 0.2.
func TrainTestSplit(n int, testRatio float64, seed int64) (trainIdx, testIdx []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	testSize := int(float64(n) * testRatio)
	if testSize < 1 && n > 1 {
		testSize = 1
	}
	split := n - testSize

	trainIdx = append(trainIdx, perm[:split]...)
	testIdx = append(testIdx, perm[split:]...)
	return trainIdx, testIdx
}

// Take gathers rows of a matrix and a target vector by index.
func Take(features [][]float64, targets []float64, idx []int) ([][]float64, []float64) {
	outX := make([][]float64, len(idx))
	outY := make([]float64, len(idx))
	for i, j := range idx {
		outX[i] = features[j]
		outY[i] = targets[j]
	}
	return outX, outY
}
