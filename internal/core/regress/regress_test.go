package regress

import (
	"math"
	"math/rand"
	"testing"
)

// syntheticSales builds rows of the five training features with a noiseless
// linear target, enough for the tree and neighbor models to learn from.
func syntheticSales(n int) (features [][]float64, targets []float64) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		year := 2013 + float64(i%2)
		month := 1 + float64(i%12)
		units := 100 + rng.Float64()*400
		price := 10 + rng.Float64()*10
		cogs := units * price * 0.6

		features = append(features, []float64{year, month, units, price, cogs})
		targets = append(targets, units*price)
	}
	return features, targets
}

func TestLinearRegressionRecoversCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var features [][]float64
	var targets []float64
	for i := 0; i < 50; i++ {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 10
		features = append(features, []float64{x1, x2})
		targets = append(targets, 0.5*x1-2*x2+3)
	}

	var model LinearRegression
	if err := model.Fit(features, targets); err != nil {
		t.Fatalf("fit: %v", err)
	}

	wantWeights := []float64{0.5, -2}
	for j, w := range model.Weights {
		if math.Abs(w-wantWeights[j]) > 1e-6 {
			t.Fatalf("weight %d = %v, want %v", j, w, wantWeights[j])
		}
	}
	if math.Abs(model.Intercept-3) > 1e-6 {
		t.Fatalf("intercept = %v, want 3", model.Intercept)
	}

	got, err := model.Predict([]float64{4, 1})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if math.Abs(got-3) > 1e-6 {
		t.Fatalf("prediction = %v, want 3", got)
	}
}

func TestLinearRegressionRejectsRaggedMatrix(t *testing.T) {
	var model LinearRegression
	err := model.Fit([][]float64{{1, 2}, {3}}, []float64{1, 2})
	if err == nil {
		t.Fatalf("expected error for ragged feature matrix")
	}
}

func TestDeepTreeChildIndexesStayAbsolute(t *testing.T) {
	var features [][]float64
	var targets []float64
	for i := 0; i < 8; i++ {
		features = append(features, []float64{float64(i)})
		targets = append(targets, float64(i))
	}

	tree, err := fitTree(features, targets, 2, 1)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	for i, node := range tree.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.LeftChild <= i || node.RightChild <= i {
			t.Fatalf("node %d children (%d, %d) must point past it", i, node.LeftChild, node.RightChild)
		}
		if node.LeftChild >= len(tree.Nodes) || node.RightChild >= len(tree.Nodes) {
			t.Fatalf("node %d children (%d, %d) out of range", i, node.LeftChild, node.RightChild)
		}
	}

	// Depth 2 over 0..7 partitions into quarters; each leaf holds the mean of
	// its two samples.
	cases := []struct {
		x    float64
		want float64
	}{
		{0, 0.5},
		{2, 2.5},
		{5, 4.5},
		{7, 6.5},
	}
	for _, tc := range cases {
		got, err := tree.predict([]float64{tc.x})
		if err != nil {
			t.Fatalf("predict(%v): %v", tc.x, err)
		}
		if got != tc.want {
			t.Fatalf("predict(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestLinearRegressionIgnoresConstantFeature(t *testing.T) {
	var features [][]float64
	var targets []float64
	for i := 0; i < 20; i++ {
		x := float64(i)
		features = append(features, []float64{0, x})
		targets = append(targets, 3*x+7)
	}

	var model LinearRegression
	if err := model.Fit(features, targets); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if model.Weights[0] != 0 {
		t.Fatalf("constant feature weight = %v, want 0", model.Weights[0])
	}
	if math.Abs(model.Weights[1]-3) > 1e-6 || math.Abs(model.Intercept-7) > 1e-6 {
		t.Fatalf("weights = %v, intercept = %v", model.Weights, model.Intercept)
	}
}

func TestNonlinearCandidatesTrackTarget(t *testing.T) {
	features, targets := syntheticSales(200)

	for _, key := range []int{2, 3, 4} {
		model, err := NewCandidate(key)
		if err != nil {
			t.Fatalf("candidate %d: %v", key, err)
		}
		if err := model.Fit(features, targets); err != nil {
			t.Fatalf("fit %s: %v", model.Algorithm(), err)
		}

		var predicted []float64
		for _, row := range features {
			p, err := model.Predict(row)
			if err != nil {
				t.Fatalf("predict %s: %v", model.Algorithm(), err)
			}
			predicted = append(predicted, p)
		}
		if r2 := RSquared(targets, predicted); r2 < 0.5 {
			t.Fatalf("%s training fit r2 = %v, want >= 0.5", model.Algorithm(), r2)
		}
	}
}

func TestFittedModelsSurviveSerialization(t *testing.T) {
	features, targets := syntheticSales(60)

	for _, key := range CandidateKeys() {
		model, err := NewCandidate(key)
		if err != nil {
			t.Fatalf("candidate %d: %v", key, err)
		}
		if err := model.Fit(features, targets); err != nil {
			t.Fatalf("fit %s: %v", model.Algorithm(), err)
		}

		data, err := Marshal(model)
		if err != nil {
			t.Fatalf("marshal %s: %v", model.Algorithm(), err)
		}
		restored, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", model.Algorithm(), err)
		}
		if restored.Algorithm() != model.Algorithm() {
			t.Fatalf("algorithm changed: %s -> %s", model.Algorithm(), restored.Algorithm())
		}

		for i := 0; i < 5; i++ {
			want, err := model.Predict(features[i])
			if err != nil {
				t.Fatalf("predict original: %v", err)
			}
			got, err := restored.Predict(features[i])
			if err != nil {
				t.Fatalf("predict restored: %v", err)
			}
			if math.Abs(want-got) > 1e-9 {
				t.Fatalf("%s row %d: restored %v, original %v", model.Algorithm(), i, got, want)
			}
		}
	}
}

func TestUnmarshalRejectsUnknownAlgorithm(t *testing.T) {
	_, err := Unmarshal([]byte(`{"algorithm":"SupportVector","params":{}}`))
	if err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
}

func TestScalerPopulationStd(t *testing.T) {
	var scaler StandardScaler
	err := scaler.Fit([][]float64{{2, 10}, {4, 20}, {6, 30}})
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	if math.Abs(scaler.Mean[0]-4) > 1e-12 || math.Abs(scaler.Mean[1]-20) > 1e-12 {
		t.Fatalf("mean = %v", scaler.Mean)
	}
	// Population std, not sample std: sqrt(8/3) for the first feature.
	if math.Abs(scaler.Std[0]-math.Sqrt(8.0/3.0)) > 1e-12 {
		t.Fatalf("std = %v", scaler.Std)
	}

	scaled, err := scaler.Transform([]float64{4, 20})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if scaled[0] != 0 || scaled[1] != 0 {
		t.Fatalf("mean row should scale to zeros, got %v", scaled)
	}
}

func TestScalerConstantFeatureScalesToZero(t *testing.T) {
	var scaler StandardScaler
	if err := scaler.Fit([][]float64{{1, 5}, {2, 5}, {3, 5}}); err != nil {
		t.Fatalf("fit: %v", err)
	}

	if scaler.Std[1] != 1 {
		t.Fatalf("constant feature std = %v, want 1", scaler.Std[1])
	}
	scaled, err := scaler.Transform([]float64{2, 5})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if scaled[0] != 0 || scaled[1] != 0 {
		t.Fatalf("scaled = %v, want zeros", scaled)
	}
}

func TestScalerTransformWidthMismatch(t *testing.T) {
	var scaler StandardScaler
	if err := scaler.Fit([][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := scaler.Transform([]float64{1}); err == nil {
		t.Fatalf("expected width mismatch error")
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	train1, test1 := TrainTestSplit(100, 0.2, SplitSeed)
	train2, test2 := TrainTestSplit(100, 0.2, SplitSeed)

	if len(test1) != 20 || len(train1) != 80 {
		t.Fatalf("split sizes = %d/%d", len(train1), len(test1))
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatalf("train index %d differs between runs", i)
		}
	}
	for i := range test1 {
		if test1[i] != test2[i] {
			t.Fatalf("test index %d differs between runs", i)
		}
	}

	seen := make(map[int]bool, 100)
	for _, idx := range append(append([]int(nil), train1...), test1...) {
		if seen[idx] {
			t.Fatalf("index %d appears twice", idx)
		}
		seen[idx] = true
	}
	if len(seen) != 100 {
		t.Fatalf("partition covers %d of 100 indexes", len(seen))
	}
}

func TestTrainTestSplitTinyInput(t *testing.T) {
	train, test := TrainTestSplit(2, 0.2, SplitSeed)
	if len(test) != 1 || len(train) != 1 {
		t.Fatalf("split sizes = %d/%d, want 1/1", len(train), len(test))
	}
}

func TestMeanSquaredError(t *testing.T) {
	mse := MeanSquaredError([]float64{1, 2, 3}, []float64{1, 2, 5})
	if math.Abs(mse-4.0/3.0) > 1e-12 {
		t.Fatalf("mse = %v", mse)
	}
	if !math.IsNaN(MeanSquaredError(nil, nil)) {
		t.Fatalf("expected NaN for empty input")
	}
}

func TestAccuracyPercentFormatting(t *testing.T) {
	cases := []struct {
		r2   float64
		want string
	}{
		{0.874512, "87.45%"},
		{0.5, "50.0%"},
		{1, "100.0%"},
		{-0.031, "-3.1%"},
	}
	for _, tc := range cases {
		if got := AccuracyPercent(tc.r2); got != tc.want {
			t.Fatalf("AccuracyPercent(%v) = %q, want %q", tc.r2, got, tc.want)
		}
	}
}
