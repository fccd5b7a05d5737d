package domain

import "time"

type DatasetStatus string

const (
	DatasetUploaded DatasetStatus = "uploaded"
	DatasetTraining DatasetStatus = "training"
	DatasetTrained  DatasetStatus = "trained"
	DatasetFailed   DatasetStatus = "failed"
)

// Dataset is the registry row for one uploaded sales file. The raw bytes live
// in object storage under StoragePath; Status tracks the training lifecycle.
type Dataset struct {
	ID          string        `json:"id"`
	Filename    string        `json:"filename"`
	StoragePath string        `json:"storage_path"`
	RowCount    int           `json:"row_count"`
	Status      DatasetStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	UploadedBy  string        `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Required column headers of the uploaded file, after whitespace trimming.
const (
	ColYear               = "Year"
	ColMonthNumber        = "Month Number"
	ColUnitsSold          = "Units Sold"
	ColManufacturingPrice = "Manufacturing Price"
	ColSalePrice          = "Sale Price"
	ColGrossSales         = "Gross Sales"
	ColDiscounts          = "Discounts"
	ColSales              = "Sales"
	ColCOGS               = "COGS"
	ColProfit             = "Profit"
)

// NumericColumns are parsed with the currency rules (strip "$" and
// thousands separators, "(N)" means -N, a bare "-" means missing).
func NumericColumns() []string {
	return []string{
		ColUnitsSold, ColManufacturingPrice, ColSalePrice, ColGrossSales,
		ColDiscounts, ColSales, ColCOGS, ColProfit,
	}
}

func RequiredColumns() []string {
	return append([]string{ColYear, ColMonthNumber}, NumericColumns()...)
}

// RawTable is one parsed upload: trimmed headers and string cells, before any
// numeric cleaning.
type RawTable struct {
	Columns []string
	Rows    [][]string
}

// CleanRecord is a fully numeric row that survived cleaning. All fields are
// finite; Sales and Profit sit inside their 1.5×IQR bounds.
type CleanRecord struct {
	Year               int
	Month              int
	UnitsSold          float64
	ManufacturingPrice float64
	SalePrice          float64
	GrossSales         float64
	Discounts          float64
	Sales              float64
	COGS               float64
	Profit             float64
}

// Features returns the model input vector in training order:
// year, month, units sold, sale price, COGS.
func (r CleanRecord) Features() []float64 {
	return []float64{float64(r.Year), float64(r.Month), r.UnitsSold, r.SalePrice, r.COGS}
}

func FeatureNames() []string {
	return []string{ColYear, ColMonthNumber, ColUnitsSold, ColSalePrice, ColCOGS}
}
