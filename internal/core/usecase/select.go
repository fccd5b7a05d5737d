package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/ports"
	"github.com/adhassan/salescast/internal/core/regress"
)

// SelectModelUseCase promotes one trained candidate to the serving slot and
// reports the current bank.
type SelectModelUseCase struct {
	artifacts ports.ArtifactStore
}

func NewSelectModelUseCase(artifacts ports.ArtifactStore) *SelectModelUseCase {
	return &SelectModelUseCase{artifacts: artifacts}
}

// Select copies the chosen candidate pair out of the bank into the active
// slot. The copy keeps serving stable across later retrains until the admin
// selects again.
func (uc *SelectModelUseCase) Select(ctx context.Context, key int) (*domain.ActiveModelInfo, error) {
	bank, err := uc.artifacts.LoadBank(ctx)
	if err != nil {
		return nil, fmt.Errorf("load model bank: %w", err)
	}

	pair, ok := bank.Candidates[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrModelNotFound, "select model",
			fmt.Errorf("no candidate with key %d", key))
	}

	active := &regress.ActiveModel{
		Key:        key,
		Name:       pair.Name,
		Pair:       *pair,
		SelectedAt: time.Now().UTC(),
	}
	if err := uc.artifacts.SaveActive(ctx, active); err != nil {
		return nil, fmt.Errorf("persist active model: %w", err)
	}

	info := active.Info()
	return &info, nil
}

// Catalog returns the latest training summary and, when one has been
// selected, the active model. A missing active slot is not an error here.
func (uc *SelectModelUseCase) Catalog(ctx context.Context) (*domain.TrainingSummary, *domain.ActiveModelInfo, error) {
	bank, err := uc.artifacts.LoadBank(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load model bank: %w", err)
	}
	summary := bank.Summary()

	active, _, err := uc.artifacts.LoadServing(ctx)
	if err != nil {
		if domain.IsKind(err, domain.ErrNoActiveModel) {
			return &summary, nil, nil
		}
		return nil, nil, fmt.Errorf("load active model: %w", err)
	}
	info := active.Info()
	return &summary, &info, nil
}
