package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/iafilius/ScoreDistribution/src/types"
)

// fieldGetter pulls the raw score value out of a decoded record.
type fieldGetter func(rec any) (value any, found bool)

func newFieldGetter(field string) (fieldGetter, error) {
	if strings.HasPrefix(field, "$") || strings.HasPrefix(field, "@") {
		x, err := jp.ParseString(field)
		if err != nil {
			return nil, fmt.Errorf("invalid field JSONPath %q: %w", field, err)
		}
		return func(rec any) (any, bool) {
			res := x.Get(rec)
			if len(res) == 0 {
				return nil, false
			}
			return res[0], true
		}, nil
	}
	return func(rec any) (any, bool) {
		m, ok := rec.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[field]
		return v, ok
	}, nil
}

// parseJSON decodes a JSON document and selects the record array with opts.RecordsPath.
func parseJSON(source string, data []byte, opts Options) ([]types.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s: empty document", ErrMalformed, source)
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}
	items, err := selectRecords(doc, opts.RecordsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}
	get, err := newFieldGetter(opts.Field)
	if err != nil {
		return nil, err
	}
	out := make([]types.Record, 0, len(items))
	for i, item := range items {
		rec, err := decodeRecord(source, i, item, opts.Field, get)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func selectRecords(doc any, recordsPath string) ([]any, error) {
	if recordsPath == DefaultRecordsPath {
		arr, ok := doc.([]any)
		if !ok {
			return nil, fmt.Errorf("top-level value is %s, want an array of records", jsonKind(doc))
		}
		return arr, nil
	}
	x, err := jp.ParseString(recordsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid records JSONPath %q: %v", recordsPath, err)
	}
	res := x.Get(doc)
	if len(res) == 0 {
		return nil, fmt.Errorf("records path %q matched nothing", recordsPath)
	}
	// "$.users" yields the array itself, "$.users[*]" yields its elements.
	if len(res) == 1 {
		if arr, ok := res[0].([]any); ok {
			return arr, nil
		}
	}
	return res, nil
}

// parseJSONLines decodes one record object per non-blank line.
func parseJSONLines(source string, data []byte, opts Options) ([]types.Record, error) {
	get, err := newFieldGetter(opts.Field)
	if err != nil {
		return nil, err
	}
	reader := bufio.NewReader(bytes.NewReader(data))
	var out []types.Record
	lineNo := 0
	for {
		line, readErr := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			lineNo++
			item, err := oj.ParseString(line)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: line %d: %v", ErrMalformed, source, lineNo, err)
			}
			rec, err := decodeRecord(source, len(out), item, opts.Field, get)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		if readErr != nil {
			break
		}
	}
	return out, nil
}

func decodeRecord(source string, index int, item any, field string, get fieldGetter) (types.Record, error) {
	if _, ok := item.(map[string]any); !ok {
		return types.Record{}, fmt.Errorf("%w: %s: record %d is %s, want an object", ErrMalformed, source, index, jsonKind(item))
	}
	raw, found := get(item)
	if !found {
		return types.Record{}, &RecordError{Source: source, Index: index, Field: field, Err: ErrMissingField}
	}
	v, err := numericValue(raw)
	if err != nil {
		return types.Record{}, &RecordError{Source: source, Index: index, Field: field, Err: ErrNonNumeric, Detail: err.Error()}
	}
	return types.Record{Source: source, Index: index, Score: v}, nil
}

// numericValue accepts only JSON numbers.
func numericValue(raw any) (float64, error) {
	var v float64
	switch n := raw.(type) {
	case int64:
		v = float64(n)
	case int:
		v = float64(n)
	case float64:
		v = n
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, err
		}
		v = f
	default:
		return 0, fmt.Errorf("got %s", jsonKind(raw))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("got non-finite %v", v)
	}
	return v, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case string:
		return "a string"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	case int64, int, float64, json.Number:
		return "a number"
	}
	return fmt.Sprintf("%T", v)
}
