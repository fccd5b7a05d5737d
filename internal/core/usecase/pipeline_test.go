package usecase

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/adhassan/salescast/internal/core/domain"
)

// linearTable builds an upload where both targets are exactly linear in the
// five model features: sales = 10*units + 5*price + 2*cogs and
// profit = 0.5*sales - 1000. Ordinary least squares must reproduce both.
func linearTable(rows int) domain.RawTable {
	table := domain.RawTable{Columns: domain.RequiredColumns()}
	for i := 0; i < rows; i++ {
		units := float64(100 + (i*37)%211)
		salePrice := float64(10 + (i*17)%29)
		cogs := float64(50 + (i*53)%101)
		sales := 10*units + 5*salePrice + 2*cogs
		profit := 0.5*sales - 1000
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(2013 + i%2),
			strconv.Itoa(1 + i%12),
			fcell(units), "3.00", fcell(salePrice), fcell(sales),
			"0.00", fcell(sales), fcell(cogs), fcell(profit),
		})
	}
	return table
}

func TestTrainSelectPredictLinearRoundTrip(t *testing.T) {
	repo := &datasetRepoFake{ds: &domain.Dataset{ID: "ds-1"}}
	store := &artifactStoreFake{}

	trainUC := NewTrainModelsUseCase(repo, &tableReaderFake{table: linearTable(100)}, store)
	if _, err := trainUC.TrainByID(context.Background(), "ds-1"); err != nil {
		t.Fatalf("TrainByID() error = %v", err)
	}

	selectUC := NewSelectModelUseCase(store)
	info, err := selectUC.Select(context.Background(), domain.CandidateLinear)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if info.Name != "LinearRegression" {
		t.Fatalf("active model name = %q", info.Name)
	}

	predictUC := NewPredictUseCase(store)
	input := domain.PredictionInput{
		Year:      intPtr(2014),
		Month:     intPtr(6),
		UnitsSold: floatPtr(200),
		SalePrice: floatPtr(20),
		COGS:      floatPtr(100),
	}
	_, record, err := predictUC.Predict(context.Background(), input)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	wantSales := 10*200.0 + 5*20.0 + 2*100.0
	wantProfit := 0.5*wantSales - 1000
	if math.Abs(record.PredictedSales-wantSales) > 1e-3 {
		t.Fatalf("predicted sales = %v, want %v", record.PredictedSales, wantSales)
	}
	if math.Abs(record.PredictedProfit-wantProfit) > 1e-3 {
		t.Fatalf("predicted profit = %v, want %v", record.PredictedProfit, wantProfit)
	}
}

func TestTrainByIDConstantYearColumn(t *testing.T) {
	table := salesTable(40)
	for _, row := range table.Rows {
		row[0] = "2020"
	}

	repo := &datasetRepoFake{ds: &domain.Dataset{ID: "ds-1"}}
	store := &artifactStoreFake{}
	uc := NewTrainModelsUseCase(repo, &tableReaderFake{table: table}, store)

	summary, err := uc.TrainByID(context.Background(), "ds-1")
	if err != nil {
		t.Fatalf("TrainByID() error = %v", err)
	}
	if len(summary.Candidates) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(summary.Candidates))
	}
	for key, m := range summary.Candidates {
		if m.SalesMSE < 0 || m.ProfitMSE < 0 {
			t.Fatalf("candidate %d has negative MSE: %+v", key, m)
		}
		if m.SalesAccuracy == "" || m.ProfitAccuracy == "" {
			t.Fatalf("candidate %d missing accuracy strings: %+v", key, m)
		}
	}
	if store.scaler == nil || store.scaler.Std[0] != 1 {
		t.Fatalf("constant year column should get std 1, got %+v", store.scaler)
	}
}

func TestSelectUnknownKeyKeepsActiveModel(t *testing.T) {
	store := &artifactStoreFake{bank: fittedBank()}
	uc := NewSelectModelUseCase(store)

	if _, err := uc.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	if _, err := uc.Select(context.Background(), 9); !domain.IsKind(err, domain.ErrModelNotFound) {
		t.Fatalf("expected model not found, got %v", err)
	}
	if store.active == nil || store.active.Key != 1 {
		t.Fatalf("failed selection must leave the active model unchanged, got %+v", store.active)
	}
}
