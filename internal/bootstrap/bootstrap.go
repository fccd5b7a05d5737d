package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adhassan/salescast/internal/config"
	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/ports"
	"github.com/adhassan/salescast/internal/core/usecase"
	"github.com/adhassan/salescast/internal/infrastructure/artifact"
	"github.com/adhassan/salescast/internal/infrastructure/auth"
	"github.com/adhassan/salescast/internal/infrastructure/queue/nats"
	"github.com/adhassan/salescast/internal/infrastructure/repository/postgres"
	"github.com/adhassan/salescast/internal/infrastructure/resilience"
	"github.com/adhassan/salescast/internal/infrastructure/storage/localfs"
	"github.com/adhassan/salescast/internal/infrastructure/tabular"
)

// App wires the full dependency graph once so the api and worker binaries
// share one composition root.
type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Datasets    ports.DatasetRepository
	Users       ports.UserRepository
	Roles       ports.RoleRepository
	Predictions ports.PredictionRepository
	Tokens      ports.TokenIssuer

	AuthUC    ports.AuthService
	UploadUC  ports.DatasetUploader
	TrainUC   ports.ModelTrainer
	SelectUC  ports.ModelSelector
	PredictUC ports.PredictionEngine

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	datasets := postgres.NewDatasetRepository(db)
	users := postgres.NewUserRepository(db)
	roles := postgres.NewRoleRepository(db)
	predictions := postgres.NewPredictionRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	artifacts, err := artifact.NewFSStore(cfg.ArtifactPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init artifact store: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	hasher := auth.NewBcryptHasher(0)
	tokens, err := auth.NewJWTIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	reader := tabular.NewReader(storage)
	trainUC := usecase.NewTrainModelsUseCase(datasets, reader, artifacts)
	uploadUC := usecase.NewUploadDatasetUseCase(datasets, storage, trainUC)
	selectUC := usecase.NewSelectModelUseCase(artifacts)
	predictUC := usecase.NewPredictUseCase(artifacts)
	authUC := usecase.NewAuthUseCase(users, hasher, tokens)

	if err := seedAdmin(ctx, cfg, users, hasher); err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	return &App{
		Config: cfg,

		Queue:       queue,
		Datasets:    datasets,
		Users:       users,
		Roles:       roles,
		Predictions: predictions,
		Tokens:      tokens,

		AuthUC:    authUC,
		UploadUC:  uploadUC,
		TrainUC:   trainUC,
		SelectUC:  selectUC,
		PredictUC: predictUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// seedAdmin creates the bootstrap administrator when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no account with that email exists yet.
func seedAdmin(ctx context.Context, cfg config.Config, users ports.UserRepository, hasher ports.PasswordHasher) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !domain.IsKind(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		// Another instance may have seeded concurrently.
		if domain.IsKind(err, domain.ErrEmailTaken) {
			return nil
		}
		return err
	}
	return nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
