package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/adhassan/salescast/internal/core/cleaning"
	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/ports"
	"github.com/adhassan/salescast/internal/core/regress"
)

// minTrainingRows is the smallest cleaned row count that still leaves a
// non-degenerate train/test split for every candidate.
const minTrainingRows = 10

type TrainModelsUseCase struct {
	repo      ports.DatasetRepository
	reader    ports.TableReader
	artifacts ports.ArtifactStore
}

func NewTrainModelsUseCase(
	repo ports.DatasetRepository,
	reader ports.TableReader,
	artifacts ports.ArtifactStore,
) *TrainModelsUseCase {
	return &TrainModelsUseCase{
		repo:      repo,
		reader:    reader,
		artifacts: artifacts,
	}
}

// TrainByID runs the full pipeline for a registered dataset: read, clean,
// scale, split, fit all four candidate pairs and persist the scaler and bank
// together. Any failure marks the dataset failed and leaves the previously
// persisted artifacts untouched.
func (uc *TrainModelsUseCase) TrainByID(ctx context.Context, datasetID string) (*domain.TrainingSummary, error) {
	if err := uc.markStatus(ctx, datasetID, domain.DatasetTraining, ""); err != nil {
		return nil, fmt.Errorf("set status=training: %w", err)
	}

	bank, err := uc.trainPipeline(ctx, datasetID)
	if err != nil {
		if failErr := uc.markFailed(ctx, datasetID, err); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.repo.SetRowCount(ctx, datasetID, bank.RowsUsed); err != nil {
		return nil, fmt.Errorf("set row count: %w", err)
	}
	if err := uc.markStatus(ctx, datasetID, domain.DatasetTrained, ""); err != nil {
		return nil, fmt.Errorf("set status=trained: %w", err)
	}

	summary := bank.Summary()
	return &summary, nil
}

func (uc *TrainModelsUseCase) trainPipeline(ctx context.Context, datasetID string) (*regress.ModelBank, error) {
	ds, err := uc.repo.GetByID(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset by id: %w", err)
	}

	records, err := uc.cleanDataset(ctx, ds)
	if err != nil {
		return nil, err
	}

	features := make([][]float64, len(records))
	salesTargets := make([]float64, len(records))
	profitTargets := make([]float64, len(records))
	for i, r := range records {
		features[i] = r.Features()
		salesTargets[i] = r.Sales
		profitTargets[i] = r.Profit
	}

	scaler := &regress.StandardScaler{}
	if err := scaler.Fit(features); err != nil {
		return nil, domain.WrapError(domain.ErrInsufficientData, "fit scaler", err)
	}
	scaled, err := scaler.TransformAll(features)
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", err)
	}

	trainIdx, testIdx := regress.TrainTestSplit(len(scaled), 0.2, regress.SplitSeed)
	trainX, trainSales := regress.Take(scaled, salesTargets, trainIdx)
	testX, testSales := regress.Take(scaled, salesTargets, testIdx)
	_, trainProfit := regress.Take(scaled, profitTargets, trainIdx)
	_, testProfit := regress.Take(scaled, profitTargets, testIdx)

	bank := &regress.ModelBank{
		DatasetID:  datasetID,
		RowsUsed:   len(records),
		TrainedAt:  time.Now().UTC(),
		Candidates: make(map[int]*regress.CandidatePair, 4),
		Metrics:    make(map[int]domain.CandidateMetrics, 4),
	}

	for _, key := range regress.CandidateKeys() {
		pair, metrics, err := trainCandidate(key, trainX, trainSales, trainProfit, testX, testSales, testProfit)
		if err != nil {
			return nil, err
		}
		bank.Candidates[key] = pair
		bank.Metrics[key] = metrics
	}

	if err := uc.artifacts.SaveTrainingArtifacts(ctx, scaler, bank); err != nil {
		return nil, fmt.Errorf("persist training artifacts: %w", err)
	}
	return bank, nil
}

func (uc *TrainModelsUseCase) cleanDataset(ctx context.Context, ds *domain.Dataset) ([]domain.CleanRecord, error) {
	table, err := uc.reader.Read(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("read dataset table: %w", err)
	}

	records, _, err := cleaning.Clean(table)
	if err != nil {
		return nil, err
	}
	if len(records) < minTrainingRows {
		return nil, domain.WrapError(domain.ErrInsufficientData, "clean dataset",
			fmt.Errorf("%d usable rows after cleaning, need at least %d", len(records), minTrainingRows))
	}
	return records, nil
}

// trainCandidate fits one candidate pair and evaluates it on the held-out
// split. A failing candidate fails the whole run; a partial bank is never
// persisted.
func trainCandidate(
	key int,
	trainX [][]float64, trainSales, trainProfit []float64,
	testX [][]float64, testSales, testProfit []float64,
) (*regress.CandidatePair, domain.CandidateMetrics, error) {
	salesModel, err := regress.NewCandidate(key)
	if err != nil {
		return nil, domain.CandidateMetrics{}, fmt.Errorf("build sales candidate: %w", err)
	}
	profitModel, err := regress.NewCandidate(key)
	if err != nil {
		return nil, domain.CandidateMetrics{}, fmt.Errorf("build profit candidate: %w", err)
	}

	if err := salesModel.Fit(trainX, trainSales); err != nil {
		return nil, domain.CandidateMetrics{}, domain.WrapError(domain.ErrTraining, "train candidates",
			fmt.Errorf("candidate %d (%s) sales: %w", key, salesModel.Algorithm(), err))
	}
	if err := profitModel.Fit(trainX, trainProfit); err != nil {
		return nil, domain.CandidateMetrics{}, domain.WrapError(domain.ErrTraining, "train candidates",
			fmt.Errorf("candidate %d (%s) profit: %w", key, profitModel.Algorithm(), err))
	}

	predSales, err := predictAll(salesModel, testX)
	if err != nil {
		return nil, domain.CandidateMetrics{}, domain.WrapError(domain.ErrTraining, "evaluate candidates",
			fmt.Errorf("candidate %d (%s) sales: %w", key, salesModel.Algorithm(), err))
	}
	predProfit, err := predictAll(profitModel, testX)
	if err != nil {
		return nil, domain.CandidateMetrics{}, domain.WrapError(domain.ErrTraining, "evaluate candidates",
			fmt.Errorf("candidate %d (%s) profit: %w", key, profitModel.Algorithm(), err))
	}

	metrics := domain.CandidateMetrics{
		Name:           salesModel.Algorithm(),
		SalesMSE:       regress.Round2(regress.MeanSquaredError(testSales, predSales)),
		ProfitMSE:      regress.Round2(regress.MeanSquaredError(testProfit, predProfit)),
		SalesAccuracy:  regress.AccuracyPercent(regress.RSquared(testSales, predSales)),
		ProfitAccuracy: regress.AccuracyPercent(regress.RSquared(testProfit, predProfit)),
	}
	pair := &regress.CandidatePair{
		Key:    key,
		Name:   salesModel.Algorithm(),
		Sales:  salesModel,
		Profit: profitModel,
	}
	return pair, metrics, nil
}

func predictAll(model regress.Regressor, features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, row := range features {
		v, err := model.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (uc *TrainModelsUseCase) markStatus(ctx context.Context, datasetID string, status domain.DatasetStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, datasetID, status, errMessage)
}

func (uc *TrainModelsUseCase) markFailed(ctx context.Context, datasetID string, trainErr error) error {
	if trainErr == nil {
		return nil
	}
	return uc.markStatus(ctx, datasetID, domain.DatasetFailed, trainErr.Error())
}
