package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/ports"
)

// UploadDatasetUseCase registers an uploaded sales file and immediately runs
// the training pass, so the caller gets the comparison table in the upload
// response.
type UploadDatasetUseCase struct {
	repo    ports.DatasetRepository
	storage ports.ObjectStorage
	trainer ports.ModelTrainer
}

func NewUploadDatasetUseCase(
	repo ports.DatasetRepository,
	storage ports.ObjectStorage,
	trainer ports.ModelTrainer,
) *UploadDatasetUseCase {
	return &UploadDatasetUseCase{
		repo:    repo,
		storage: storage,
		trainer: trainer,
	}
}

func (uc *UploadDatasetUseCase) Upload(
	ctx context.Context,
	filename, uploadedBy string,
	body io.Reader,
) (*domain.Dataset, *domain.TrainingSummary, error) {
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, nil, fmt.Errorf("save to object storage: %w", err)
	}

	ds := &domain.Dataset{
		ID:          id,
		Filename:    filename,
		StoragePath: storageKey,
		Status:      domain.DatasetUploaded,
		UploadedBy:  uploadedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, ds); err != nil {
		return nil, nil, fmt.Errorf("create dataset record: %w", err)
	}

	summary, err := uc.trainer.TrainByID(ctx, ds.ID)
	if err != nil {
		return ds, nil, err
	}
	return ds, summary, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "dataset.bin"
	}
	return base
}
