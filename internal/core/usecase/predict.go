package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/ports"
	"github.com/adhassan/salescast/internal/core/regress"
)

// PredictUseCase serves point predictions with the active model pair and the
// scaler of its training run. It writes nothing; history recording belongs to
// the HTTP layer.
type PredictUseCase struct {
	artifacts ports.ArtifactStore
}

func NewPredictUseCase(artifacts ports.ArtifactStore) *PredictUseCase {
	return &PredictUseCase{artifacts: artifacts}
}

func (uc *PredictUseCase) Predict(ctx context.Context, input domain.PredictionInput) (*domain.PredictionResult, *domain.PredictionRecord, error) {
	active, scaler, err := uc.artifacts.LoadServing(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load serving artifacts: %w", err)
	}

	if err := validateInput(input); err != nil {
		return nil, nil, err
	}

	features := []float64{
		float64(*input.Year), float64(*input.Month),
		*input.UnitsSold, *input.SalePrice, *input.COGS,
	}
	scaled, err := scaler.Transform(features)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "scale input", err)
	}

	sales, err := active.Pair.Sales.Predict(scaled)
	if err != nil {
		return nil, nil, fmt.Errorf("predict sales: %w", err)
	}
	profit, err := active.Pair.Profit.Predict(scaled)
	if err != nil {
		return nil, nil, fmt.Errorf("predict profit: %w", err)
	}

	result := &domain.PredictionResult{
		PredictedSales:  regress.Round2(sales),
		PredictedProfit: regress.Round2(profit),
	}
	// History rows label the forecast horizon: the recorded year is the
	// request year plus one. Predicted values keep full precision.
	record := &domain.PredictionRecord{
		Year:            *input.Year + 1,
		Month:           *input.Month,
		UnitsSold:       *input.UnitsSold,
		SalePrice:       *input.SalePrice,
		COGS:            *input.COGS,
		PredictedSales:  sales,
		PredictedProfit: profit,
	}
	return result, record, nil
}

func validateInput(input domain.PredictionInput) error {
	missing := func(name string) error {
		return domain.WrapError(domain.ErrInvalidInput, "validate input",
			fmt.Errorf("missing field %q", name))
	}
	switch {
	case input.Year == nil:
		return missing("year")
	case input.Month == nil:
		return missing("month")
	case input.UnitsSold == nil:
		return missing("units_sold")
	case input.SalePrice == nil:
		return missing("sale_price")
	case input.COGS == nil:
		return missing("cogs")
	}

	if *input.Month < 1 || *input.Month > 12 {
		return domain.WrapError(domain.ErrInvalidInput, "validate input",
			fmt.Errorf("month %d out of range", *input.Month))
	}
	for _, v := range []float64{*input.UnitsSold, *input.SalePrice, *input.COGS} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.WrapError(domain.ErrInvalidInput, "validate input",
				errors.New("non-finite numeric field"))
		}
	}
	return nil
}
