package regress

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/adhassan/salescast/internal/core/domain"
)

// CandidatePair couples the two fitted regressors of one candidate: one for
// the sales target, one for the profit target.
type CandidatePair struct {
	Key    int
	Name   string
	Sales  Regressor
	Profit Regressor
}

type candidatePairJSON struct {
	Key    int             `json:"key"`
	Name   string          `json:"name"`
	Sales  json.RawMessage `json:"sales_model"`
	Profit json.RawMessage `json:"profit_model"`
}

func (p CandidatePair) MarshalJSON() ([]byte, error) {
	sales, err := Marshal(p.Sales)
	if err != nil {
		return nil, fmt.Errorf("candidate %d sales model: %w", p.Key, err)
	}
	profit, err := Marshal(p.Profit)
	if err != nil {
		return nil, fmt.Errorf("candidate %d profit model: %w", p.Key, err)
	}
	return json.Marshal(candidatePairJSON{Key: p.Key, Name: p.Name, Sales: sales, Profit: profit})
}

func (p *CandidatePair) UnmarshalJSON(data []byte) error {
	var raw candidatePairJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sales, err := Unmarshal(raw.Sales)
	if err != nil {
		return fmt.Errorf("candidate %d sales model: %w", raw.Key, err)
	}
	profit, err := Unmarshal(raw.Profit)
	if err != nil {
		return fmt.Errorf("candidate %d profit model: %w", raw.Key, err)
	}
	p.Key = raw.Key
	p.Name = raw.Name
	p.Sales = sales
	p.Profit = profit
	return nil
}

// ModelBank is the complete output of one training run. A new run replaces
// the bank wholesale; there is no incremental update.
type ModelBank struct {
	DatasetID  string                          `json:"dataset_id"`
	RowsUsed   int                             `json:"rows_used"`
	TrainedAt  time.Time                       `json:"trained_at"`
	Candidates map[int]*CandidatePair          `json:"candidates"`
	Metrics    map[int]domain.CandidateMetrics `json:"metrics"`
}

// Summary converts the bank's stored metrics into the report returned by an
// upload or retrain.
func (b *ModelBank) Summary() domain.TrainingSummary {
	candidates := make(map[int]domain.CandidateMetrics, len(b.Metrics))
	for key, m := range b.Metrics {
		candidates[key] = m
	}
	return domain.TrainingSummary{
		DatasetID:  b.DatasetID,
		RowsUsed:   b.RowsUsed,
		Candidates: candidates,
		TrainedAt:  b.TrainedAt,
	}
}

// ActiveModel is the single candidate promoted for serving, persisted
// independently of the bank it was copied from.
type ActiveModel struct {
	Key        int           `json:"key"`
	Name       string        `json:"name"`
	Pair       CandidatePair `json:"pair"`
	SelectedAt time.Time     `json:"selected_at"`
}

// Info strips the fitted models for API responses.
func (a *ActiveModel) Info() domain.ActiveModelInfo {
	return domain.ActiveModelInfo{Key: a.Key, Name: a.Name, SelectedAt: a.SelectedAt}
}
