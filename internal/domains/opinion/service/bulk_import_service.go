package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"what-to-watch/internal/domains/opinion/model"
	"what-to-watch/internal/shared/metrics"
)

// importColumns are the header names an import file may use.
var importColumns = map[string]bool{
	"title":    true,
	"text":     true,
	"source":   true,
	"added_by": true,
}

var requiredImportColumns = []string{"title", "text"}

type bulkImportService struct {
	opinions ServiceInterface
}

// NewBulkImportService creates the CSV importer on top of the opinion service
func NewBulkImportService(opinions ServiceInterface) BulkImportServiceInterface {
	return &bulkImportService{opinions: opinions}
}

// Import reads the whole file, then creates one opinion per row. Every row
// commits on its own, so a bad row never undoes the rows before it.
func (s *bulkImportService) Import(ctx context.Context, r io.Reader) (*model.BulkImportResult, error) {
	rows, err := s.parseCSV(r)
	if err != nil {
		return nil, err
	}

	result := &model.BulkImportResult{TotalRows: len(rows)}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import interrupted after %d rows: %w", result.Loaded, err)
		}

		_, err := s.opinions.Create(ctx, row.ToCreateRequest(), ChannelImport)
		if err != nil {
			rowErrs, fatal := rowErrors(row.Row, err)
			if fatal != nil {
				return result, fmt.Errorf("failed to import row %d: %w", row.Row, fatal)
			}
			result.Errors = append(result.Errors, rowErrs...)
			metrics.ImportRowsTotal.WithLabelValues("failed").Inc()
			continue
		}

		result.Loaded++
		metrics.ImportRowsTotal.WithLabelValues("loaded").Inc()
	}

	log.Info().
		Int("total_rows", result.TotalRows).
		Int("loaded", result.Loaded).
		Int("failed", len(result.Errors)).
		Msg("Bulk import finished")

	return result, nil
}

// parseCSV maps the header explicitly; unknown or missing required columns
// reject the file.
func (s *bulkImportService) parseCSV(r io.Reader) ([]model.CSVOpinionRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &model.OpinionError{Code: model.ErrInvalidCSVHeader.Code, Message: "CSV file is empty"}
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := buildColumnIndexMap(header)
	if err != nil {
		return nil, err
	}

	getCol := func(record []string, name string) string {
		if idx, ok := colIndex[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var rows []model.CSVOpinionRow
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum, err)
		}

		rows = append(rows, model.CSVOpinionRow{
			Row:     rowNum,
			Title:   getCol(record, "title"),
			Text:    getCol(record, "text"),
			Source:  getCol(record, "source"),
			AddedBy: getCol(record, "added_by"),
		})
	}

	return rows, nil
}

// buildColumnIndexMap tạo map từ column name → index
func buildColumnIndexMap(header []string) (map[string]int, error) {
	colMap := make(map[string]int, len(header))
	var unknown []string

	for i, colName := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(colName, "\ufeff")))
		if !importColumns[name] {
			unknown = append(unknown, colName)
			continue
		}
		if _, dup := colMap[name]; dup {
			return nil, &model.OpinionError{
				Code:    model.ErrInvalidCSVHeader.Code,
				Message: fmt.Sprintf("column %q appears more than once", name),
			}
		}
		colMap[name] = i
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &model.OpinionError{
			Code:    model.ErrInvalidCSVHeader.Code,
			Message: fmt.Sprintf("unknown columns: %s", strings.Join(unknown, ", ")),
		}
	}

	for _, name := range requiredImportColumns {
		if _, ok := colMap[name]; !ok {
			return nil, &model.OpinionError{
				Code:    model.ErrInvalidCSVHeader.Code,
				Message: fmt.Sprintf("missing required column %q", name),
			}
		}
	}

	return colMap, nil
}

// rowErrors splits row level failures from failures that stop the import.
func rowErrors(row int, err error) ([]model.ImportRowError, error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for field := range verr.Fields {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		out := make([]model.ImportRowError, 0, len(fields))
		for _, field := range fields {
			out = append(out, model.ImportRowError{Row: row, Field: field, Message: verr.Fields[field].Error()})
		}
		return out, nil
	case errors.Is(err, model.ErrDuplicateText):
		return []model.ImportRowError{{Row: row, Field: "text", Message: model.ErrDuplicateText.Message}}, nil
	case errors.Is(err, model.ErrUnstorableText):
		return []model.ImportRowError{{Row: row, Message: model.ErrUnstorableText.Message}}, nil
	default:
		return nil, err
	}
}
