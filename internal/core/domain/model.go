package domain

import "time"

// Candidate keys are fixed: the admin selects a model by this number.
const (
	CandidateLinear           = 1
	CandidateRandomForest     = 2
	CandidateGradientBoosting = 3
	CandidateKNeighbors       = 4
)

// CandidateMetrics is the held-out evaluation of one candidate pair. Accuracy
// strings carry R² as a rounded percentage, e.g. "87.45%".
type CandidateMetrics struct {
	Name           string  `json:"name"`
	SalesMSE       float64 `json:"sales_mse"`
	ProfitMSE      float64 `json:"profit_mse"`
	SalesAccuracy  string  `json:"sales_accuracy"`
	ProfitAccuracy string  `json:"profit_accuracy"`
}

// TrainingSummary is what an upload (or retrain) reports back: metrics for
// every candidate in the freshly persisted bank, keyed 1..4.
type TrainingSummary struct {
	DatasetID  string                   `json:"dataset_id"`
	RowsUsed   int                      `json:"rows_used"`
	Candidates map[int]CandidateMetrics `json:"models"`
	TrainedAt  time.Time                `json:"trained_at"`
}

// ActiveModelInfo describes the currently serving candidate.
type ActiveModelInfo struct {
	Key        int       `json:"key"`
	Name       string    `json:"name"`
	SelectedAt time.Time `json:"selected_at"`
}
