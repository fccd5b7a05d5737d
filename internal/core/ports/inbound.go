package ports

import (
	"context"
	"io"

	"github.com/adhassan/salescast/internal/core/domain"
)

// DatasetUploader is the inbound contract for the administrative upload:
// store the file, register it and run the synchronous training pass.
type DatasetUploader interface {
	Upload(ctx context.Context, filename, uploadedBy string, body io.Reader) (*domain.Dataset, *domain.TrainingSummary, error)
}

// ModelTrainer retrains from an already registered dataset; the worker's
// entry point.
type ModelTrainer interface {
	TrainByID(ctx context.Context, datasetID string) (*domain.TrainingSummary, error)
}

// ModelSelector promotes one bank candidate to the active serving slot.
type ModelSelector interface {
	Select(ctx context.Context, key int) (*domain.ActiveModelInfo, error)
	Catalog(ctx context.Context) (*domain.TrainingSummary, *domain.ActiveModelInfo, error)
}

// PredictionEngine produces point predictions for both targets. It owns no
// persistent state; recording history is the caller's concern.
type PredictionEngine interface {
	Predict(ctx context.Context, input domain.PredictionInput) (*domain.PredictionResult, *domain.PredictionRecord, error)
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
}
