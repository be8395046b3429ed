// Package loader reads user records from JSON, JSON Lines, CSV, XLSX and SQLite sources and
// extracts the numeric score field from each one.
//
// A record that lacks the field or holds a non-numeric value fails the whole load; records are
// never skipped and values are never coerced.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/iafilius/ScoreDistribution/src/logging"
	"github.com/iafilius/ScoreDistribution/src/types"
)

var (
	// ErrInput reports a missing or unreadable input.
	ErrInput = errors.New("input not found or unreadable")
	// ErrMalformed reports input that cannot be parsed as the expected format.
	ErrMalformed = errors.New("malformed input")
	// ErrMissingField reports a record without the score field.
	ErrMissingField = errors.New("missing score field")
	// ErrNonNumeric reports a score field holding something other than a number.
	ErrNonNumeric = errors.New("non-numeric score field")
)

// Default option values.
const (
	DefaultPath        = "initial_users.json"
	DefaultField       = "Score"
	DefaultRecordsPath = "$"
	DefaultTable       = "users"
)

// Format names an input format.
type Format string

const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// ParseFormat validates a format name; "" and "auto" select detection by file extension.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "auto":
		return FormatAuto, nil
	case FormatAuto, FormatJSON, FormatJSONL, FormatCSV, FormatXLSX, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("unknown input format %q", s)
}

// Options controls where records come from and which field holds the score.
type Options struct {
	// Path is a file path or a doublestar glob pattern.
	Path   string
	Format Format
	// Field is a plain key or, when it starts with '$' or '@', a JSONPath applied per record.
	Field string
	// RecordsPath is a JSONPath selecting the record array in JSON documents.
	RecordsPath string
	// Table is the SQLite table queried for scores.
	Table string
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.Field == "" {
		o.Field = DefaultField
	}
	if o.RecordsPath == "" {
		o.RecordsPath = DefaultRecordsPath
	}
	if o.Table == "" {
		o.Table = DefaultTable
	}
	return o
}

// RecordError locates a field-level failure. It unwraps to ErrMissingField or ErrNonNumeric.
type RecordError struct {
	Source string
	Index  int
	Field  string
	Err    error
	Detail string
}

func (e *RecordError) Error() string {
	msg := fmt.Sprintf("%s: record %d: field %q: %v", e.Source, e.Index, e.Field, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *RecordError) Unwrap() error { return e.Err }

// Load resolves opts.Path (expanding glob patterns) and reads every matching source in sorted
// path order.
func Load(ctx context.Context, opts Options) ([]types.Record, error) {
	opts = opts.withDefaults()
	paths, err := resolvePaths(opts.Path)
	if err != nil {
		return nil, err
	}
	var all []types.Record
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := loadFile(ctx, p, opts)
		if err != nil {
			return nil, err
		}
		logging.Debugf("[loader] %s: %d records", p, len(recs))
		all = append(all, recs...)
	}
	logging.Infof("[loader] loaded %d records from %d source(s)", len(all), len(paths))
	return all, nil
}

func resolvePaths(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		st, err := os.Stat(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInput, err)
		}
		if st.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrInput, pattern)
		}
		return []string{pattern}, nil
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrInput, pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", ErrInput, pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// DetectFormat picks a format from the file name, ignoring compression suffixes.
// Unknown extensions are treated as JSON.
func DetectFormat(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range []string{".gz", ".bz2", ".xz"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch filepath.Ext(name) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	}
	return FormatJSON
}

func loadFile(ctx context.Context, path string, opts Options) ([]types.Record, error) {
	format := opts.Format
	if format == FormatAuto {
		format = DetectFormat(path)
	}
	if format == FormatSQLite {
		return loadSQLite(ctx, path, opts)
	}
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatJSONL:
		return parseJSONLines(path, data, opts)
	case FormatCSV:
		return parseCSV(path, data, opts)
	case FormatXLSX:
		return parseXLSX(path, data, opts)
	default:
		return parseJSON(path, data, opts)
	}
}
