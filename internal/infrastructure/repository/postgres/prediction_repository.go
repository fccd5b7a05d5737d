package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adhassan/salescast/internal/core/domain"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Append(ctx context.Context, rec *domain.PredictionRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO predictions (id, user_id, year, month, units_sold, sale_price, cogs, predicted_sales, predicted_profit, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		rec.ID, rec.UserID, rec.Year, rec.Month, rec.UnitsSold, rec.SalePrice, rec.COGS,
		rec.PredictedSales, rec.PredictedProfit, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepository) List(ctx context.Context) ([]domain.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, year, month, units_sold, sale_price, cogs, predicted_sales, predicted_profit, created_at
FROM predictions
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return collectPredictions(rows)
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]domain.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, year, month, units_sold, sale_price, cogs, predicted_sales, predicted_profit, created_at
FROM predictions
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}
	return collectPredictions(rows)
}

func collectPredictions(rows *sql.Rows) ([]domain.PredictionRecord, error) {
	defer rows.Close()

	out := make([]domain.PredictionRecord, 0)
	for rows.Next() {
		var rec domain.PredictionRecord
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Year, &rec.Month,
			&rec.UnitsSold, &rec.SalePrice, &rec.COGS,
			&rec.PredictedSales, &rec.PredictedProfit, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}
