package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adhassan/salescast/internal/core/domain"
)

type DatasetRepository struct {
	db *sql.DB
}

func NewDatasetRepository(db *sql.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

func (r *DatasetRepository) Create(ctx context.Context, ds *domain.Dataset) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO datasets (id, filename, storage_path, row_count, status, error_message, uploaded_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		ds.ID, ds.Filename, ds.StoragePath, ds.RowCount, string(ds.Status), ds.Error, ds.UploadedBy, ds.CreatedAt, ds.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}
	return nil
}

func (r *DatasetRepository) GetByID(ctx context.Context, id string) (*domain.Dataset, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, storage_path, row_count, status, error_message, uploaded_by, created_at, updated_at
FROM datasets
WHERE id = $1
`, id)

	var ds domain.Dataset
	var status string
	err := row.Scan(
		&ds.ID, &ds.Filename, &ds.StoragePath, &ds.RowCount,
		&status, &ds.Error, &ds.UploadedBy, &ds.CreatedAt, &ds.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDatasetNotFound, "get dataset", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan dataset: %w", err)
	}
	ds.Status = domain.DatasetStatus(status)
	return &ds, nil
}

func (r *DatasetRepository) UpdateStatus(ctx context.Context, id string, status domain.DatasetStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE datasets
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update dataset status: %w", err)
	}
	return oneRowOr(result, domain.ErrDatasetNotFound, "update dataset status", id)
}

func (r *DatasetRepository) SetRowCount(ctx context.Context, id string, rows int) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE datasets
SET row_count = $2, updated_at = $3
WHERE id = $1
`, id, rows, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set dataset row count: %w", err)
	}
	return oneRowOr(result, domain.ErrDatasetNotFound, "set dataset row count", id)
}

// oneRowOr maps a zero-row UPDATE/DELETE to the given not-found kind.
func oneRowOr(result sql.Result, kind error, operation, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows == 0 {
		return domain.WrapError(kind, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
