package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/regress"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func identityScaler() *regress.StandardScaler {
	return &regress.StandardScaler{Mean: make([]float64, 5), Std: []float64{1, 1, 1, 1, 1}}
}

func servingStore() *artifactStoreFake {
	// sales = 2*units, profit = units - cogs, with an identity scaler the
	// expected outputs are exact.
	pair := regress.CandidatePair{
		Key:    1,
		Name:   regress.AlgorithmLinear,
		Sales:  &regress.LinearRegression{Weights: []float64{0, 0, 2, 0, 0}},
		Profit: &regress.LinearRegression{Weights: []float64{0, 0, 1, 0, -1}},
	}
	return &artifactStoreFake{
		scaler: identityScaler(),
		active: &regress.ActiveModel{Key: 1, Name: pair.Name, Pair: pair, SelectedAt: time.Now().UTC()},
	}
}

func validInput() domain.PredictionInput {
	return domain.PredictionInput{
		Year:      intPtr(2024),
		Month:     intPtr(6),
		UnitsSold: floatPtr(150),
		SalePrice: floatPtr(12.5),
		COGS:      floatPtr(40),
	}
}

func TestPredictWithActiveModel(t *testing.T) {
	uc := NewPredictUseCase(servingStore())

	result, record, err := uc.Predict(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if result.PredictedSales != 300 {
		t.Fatalf("predicted sales = %v, want 300", result.PredictedSales)
	}
	if result.PredictedProfit != 110 {
		t.Fatalf("predicted profit = %v, want 110", result.PredictedProfit)
	}
	if record.Year != 2025 {
		t.Fatalf("recorded year = %d, want request year + 1", record.Year)
	}
	if record.PredictedSales != 300 || record.PredictedProfit != 110 {
		t.Fatalf("record predictions = %v/%v", record.PredictedSales, record.PredictedProfit)
	}
}

func TestPredictRecordKeepsFullPrecision(t *testing.T) {
	store := servingStore()
	store.active.Pair.Sales = &regress.LinearRegression{Weights: []float64{0, 0, 0, 0, 0}, Intercept: 1.0 / 3.0}
	uc := NewPredictUseCase(store)

	result, record, err := uc.Predict(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if result.PredictedSales != 0.33 {
		t.Fatalf("display value = %v, want 0.33", result.PredictedSales)
	}
	if math.Abs(record.PredictedSales-1.0/3.0) > 1e-12 {
		t.Fatalf("stored value = %v, want full precision", record.PredictedSales)
	}
}

func TestPredictWithoutActiveModel(t *testing.T) {
	uc := NewPredictUseCase(&artifactStoreFake{})

	_, _, err := uc.Predict(context.Background(), validInput())
	if !domain.IsKind(err, domain.ErrNoActiveModel) {
		t.Fatalf("expected no active model error, got %v", err)
	}
}

func TestPredictMissingField(t *testing.T) {
	uc := NewPredictUseCase(servingStore())

	input := validInput()
	input.COGS = nil
	if _, _, err := uc.Predict(context.Background(), input); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestPredictRejectsNonFinite(t *testing.T) {
	uc := NewPredictUseCase(servingStore())

	input := validInput()
	input.UnitsSold = floatPtr(math.NaN())
	if _, _, err := uc.Predict(context.Background(), input); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestPredictMonthOutOfRange(t *testing.T) {
	uc := NewPredictUseCase(servingStore())

	input := validInput()
	input.Month = intPtr(13)
	if _, _, err := uc.Predict(context.Background(), input); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
