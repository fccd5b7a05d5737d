package ports

import (
	"context"
	"io"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/regress"
)

// DatasetRepository persists the upload registry and its training lifecycle.
type DatasetRepository interface {
	Create(ctx context.Context, ds *domain.Dataset) error
	GetByID(ctx context.Context, id string) (*domain.Dataset, error)
	UpdateStatus(ctx context.Context, id string, status domain.DatasetStatus, errMessage string) error
	SetRowCount(ctx context.Context, id string, rows int) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// RoleRepository persists role records.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
}

// PredictionRepository is the append-only sink for served predictions.
type PredictionRepository interface {
	Append(ctx context.Context, rec *domain.PredictionRecord) error
	List(ctx context.Context) ([]domain.PredictionRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PredictionRecord, error)
}

// ObjectStorage stores raw uploaded dataset files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TableReader parses a stored dataset file into a raw table.
type TableReader interface {
	Read(ctx context.Context, ds *domain.Dataset) (domain.RawTable, error)
}

// ArtifactStore keeps the three training artifacts (scaler, full bank,
// active model) as independently addressable items with atomic replacement.
// Loads of a never-written artifact return the matching domain kind
// (ErrModelNotFound for the bank, ErrNoActiveModel for the active slot).
type ArtifactStore interface {
	// SaveTrainingArtifacts replaces the scaler and bank together; a failed
	// run must leave the previous pair untouched.
	SaveTrainingArtifacts(ctx context.Context, scaler *regress.StandardScaler, bank *regress.ModelBank) error
	LoadBank(ctx context.Context) (*regress.ModelBank, error)
	SaveActive(ctx context.Context, active *regress.ActiveModel) error
	// LoadServing reads the active model and the scaler consistently, under
	// the same lock that guards training writes.
	LoadServing(ctx context.Context) (*regress.ActiveModel, *regress.StandardScaler, error)
}

// MessageQueue publishes/consumes retraining jobs.
type MessageQueue interface {
	PublishRetrainRequested(ctx context.Context, datasetID string) error
	SubscribeRetrainRequested(ctx context.Context, handler func(context.Context, string) error) error
}

// PasswordHasher hashes and verifies user credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer mints and verifies bearer tokens carrying a user identity.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, err error)
	Verify(token string) (*domain.Identity, error)
}
