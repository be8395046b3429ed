package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iafilius/ScoreDistribution/src/types"
)

// parseCSV reads a CSV file whose header row names the score column.
func parseCSV(source string, data []byte, opts Options) ([]types.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}
	return tableRecords(source, rows, opts.Field)
}

// parseXLSX reads the first sheet of a workbook whose header row names the score column.
func parseXLSX(source string, data []byte, opts Options) ([]types.Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: no sheets found", ErrMalformed, source)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: sheet %q: %v", ErrMalformed, source, sheets[0], err)
	}
	return tableRecords(source, rows, opts.Field)
}

// tableRecords turns header+rows into records. An empty sheet is an empty record list; a
// header without the field column, or a row with an empty cell, is a missing field.
func tableRecords(source string, rows [][]string, field string) ([]types.Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	col := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == field {
			col = i
			break
		}
	}
	if col < 0 {
		if len(rows) == 1 {
			return nil, nil
		}
		return nil, &RecordError{Source: source, Index: 0, Field: field, Err: ErrMissingField, Detail: "no such column in header"}
	}
	out := make([]types.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			return nil, &RecordError{Source: source, Index: i, Field: field, Err: ErrMissingField}
		}
		cell := strings.TrimSpace(row[col])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &RecordError{Source: source, Index: i, Field: field, Err: ErrNonNumeric, Detail: fmt.Sprintf("got %q", cell)}
		}
		out = append(out, types.Record{Source: source, Index: i, Score: v})
	}
	return out, nil
}
