// Package tabular parses stored dataset files into raw tables. CSV is read
// with the stdlib codec; .xlsx workbooks go through excelize and use the
// first sheet only.
package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/adhassan/salescast/internal/core/domain"
	"github.com/adhassan/salescast/internal/core/ports"
)

type Reader struct {
	storage ports.ObjectStorage
}

func NewReader(storage ports.ObjectStorage) *Reader {
	return &Reader{storage: storage}
}

func (r *Reader) Read(ctx context.Context, ds *domain.Dataset) (domain.RawTable, error) {
	reader, err := r.storage.Open(ctx, ds.StoragePath)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open dataset file: %w", err)
	}
	defer reader.Close()

	var rows [][]string
	switch strings.ToLower(filepath.Ext(ds.Filename)) {
	case ".xlsx":
		rows, err = readWorkbook(reader)
	case ".csv", "":
		rows, err = readCSV(reader)
	default:
		return domain.RawTable{}, domain.WrapError(domain.ErrBadFormat, "read dataset",
			fmt.Errorf("unsupported file type %q", filepath.Ext(ds.Filename)))
	}
	if err != nil {
		return domain.RawTable{}, domain.WrapError(domain.ErrBadFormat, "read dataset", err)
	}

	return toTable(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	// Exported spreadsheets pad short rows; length checks happen per cell
	// during cleaning.
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func toTable(rows [][]string) (domain.RawTable, error) {
	if len(rows) == 0 {
		return domain.RawTable{}, domain.WrapError(domain.ErrBadFormat, "read dataset",
			errors.New("empty file"))
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.TrimSpace(name)
	}
	return domain.RawTable{Columns: header, Rows: rows[1:]}, nil
}
