// Package config holds the run configuration for scoredist and loads it from YAML.
//
// Precedence is defaults, then the YAML file, then command-line flags that were set explicitly
// (see Flags.Resolve).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iafilius/ScoreDistribution/src/analysis"
	"github.com/iafilius/ScoreDistribution/src/loader"
	"github.com/iafilius/ScoreDistribution/src/logging"
	"github.com/iafilius/ScoreDistribution/src/render"
)

// DefaultOutput is the chart file written when none is configured.
const DefaultOutput = "score_distribution.png"

// ErrConfig reports an invalid configuration value or an unreadable config file.
var ErrConfig = errors.New("invalid configuration")

// Config is one run of the report.
type Config struct {
	Input       string `yaml:"input"`
	Format      string `yaml:"format"`
	RecordsPath string `yaml:"records_path"`
	Field       string `yaml:"field"`
	Table       string `yaml:"table"`

	Output           string    `yaml:"output"`
	Bins             int       `yaml:"bins"`
	Percentiles      []float64 `yaml:"percentiles"`
	PercentileMethod string    `yaml:"percentile_method"`

	Title   string  `yaml:"title"`
	BarFill float64 `yaml:"bar_fill"`
	DPI     float64 `yaml:"dpi"`
	Caption bool    `yaml:"caption"`

	SummaryJSON string `yaml:"summary_json"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	r := render.DefaultOptions()
	return Config{
		Input:            loader.DefaultPath,
		Format:           "auto",
		RecordsPath:      loader.DefaultRecordsPath,
		Field:            loader.DefaultField,
		Table:            loader.DefaultTable,
		Output:           DefaultOutput,
		Bins:             analysis.DefaultBinCount,
		Percentiles:      append([]float64(nil), analysis.DefaultPercentiles...),
		PercentileMethod: string(analysis.MethodLinear),
		Title:            r.Title,
		BarFill:          r.BarFill,
		DPI:              r.DPI,
		LogLevel:         "info",
	}
}

// LoadFile reads a YAML file over the defaults. Keys absent from the file keep their default.
func LoadFile(path string) (Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func readFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	// an empty file decodes to io.EOF and leaves the defaults in place
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	return cfg, nil
}

// Validate checks ranges and names that would otherwise fail deep inside the pipeline.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Input) == "" {
		problems = append(problems, "input is empty")
	}
	if strings.TrimSpace(c.Output) == "" {
		problems = append(problems, "output is empty")
	}
	if c.Bins < 1 {
		problems = append(problems, fmt.Sprintf("bins must be >= 1, got %d", c.Bins))
	}
	for _, p := range c.Percentiles {
		if p < 0 || p > 100 || math.IsNaN(p) {
			problems = append(problems, fmt.Sprintf("percentile %v outside [0,100]", p))
		}
	}
	if _, err := analysis.ParsePercentileMethod(c.PercentileMethod); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := loader.ParseFormat(c.Format); err != nil {
		problems = append(problems, err.Error())
	}
	if c.BarFill <= 0 || c.BarFill > 1 {
		problems = append(problems, fmt.Sprintf("bar_fill must be in (0,1], got %v", c.BarFill))
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		problems = append(problems, fmt.Sprintf("unknown log_level %q (want debug|info|warn|error)", c.LogLevel))
	}
	if c.DPI <= 0 {
		problems = append(problems, fmt.Sprintf("dpi must be > 0, got %v", c.DPI))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ParsePercentiles parses a comma separated list such as "25,50,99.9".
func ParsePercentiles(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: percentile %q: %v", ErrConfig, part, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty percentile list %q", ErrConfig, s)
	}
	return out, nil
}

// LoaderOptions maps the input settings onto loader options.
func (c Config) LoaderOptions() loader.Options {
	f, _ := loader.ParseFormat(c.Format)
	return loader.Options{Path: c.Input, Format: f, Field: c.Field, RecordsPath: c.RecordsPath, Table: c.Table}
}

// RenderOptions maps the chart settings onto render options.
func (c Config) RenderOptions() render.Options {
	o := render.DefaultOptions()
	if c.Title != "" {
		o.Title = c.Title
	}
	o.BarFill = c.BarFill
	o.DPI = c.DPI
	return o
}
