package export

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avollmer/invoice-extractor/internal/fields"
)

// Service turns accumulated records into an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RecordsXLSX returns a workbook (as bytes) with one row per record. The
// header is the given field order extended by any extra keys found in the
// records (sorted, so output is stable); a record missing a key gets an
// empty cell.
func (s *Service) RecordsXLSX(header []string, recs []fields.Record) ([]byte, error) {
	start := time.Now()

	columns := unionColumns(header, recs)

	f := excelize.NewFile()
	const sheet = "Extraktion"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIndex, _ := f.GetSheetIndex("Sheet1"); defIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, rec := range recs {
		for colIdx, name := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, rec[name])
		}
	}

	// Widen all columns a bit; field values are short strings.
	if len(columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(columns))
		_ = f.SetColWidth(sheet, "A", last, 22)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"columns", len(columns),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// unionColumns keeps the caller's order and appends unseen record keys
// sorted.
func unionColumns(header []string, recs []fields.Record) []string {
	seen := make(map[string]struct{}, len(header))
	columns := make([]string, 0, len(header))
	for _, h := range header {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		columns = append(columns, h)
	}
	var extras []string
	for _, rec := range recs {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)
	return append(columns, extras...)
}
