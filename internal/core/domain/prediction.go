package domain

import "time"

// PredictionInput carries the five model features of one request. Pointers
// track field presence so a missing field is distinguishable from zero.
type PredictionInput struct {
	Year      *int     `json:"year"`
	Month     *int     `json:"month"`
	UnitsSold *float64 `json:"units_sold"`
	SalePrice *float64 `json:"sale_price"`
	COGS      *float64 `json:"cogs"`
}

// PredictionResult holds display values rounded to two decimals.
type PredictionResult struct {
	PredictedSales  float64 `json:"predicted_sales"`
	PredictedProfit float64 `json:"predicted_profit"`
}

// PredictionRecord is the append-only history row. Raw* keep full precision;
// the rounded values are display-only and never stored.
type PredictionRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	UnitsSold       float64   `json:"units_sold"`
	SalePrice       float64   `json:"sale_price"`
	COGS            float64   `json:"cogs"`
	PredictedSales  float64   `json:"predicted_sales"`
	PredictedProfit float64   `json:"predicted_profit"`
	CreatedAt       time.Time `json:"created_at"`
}
