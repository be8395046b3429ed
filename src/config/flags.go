package config

import (
	"flag"
	"strconv"
	"strings"
)

// Flags registers one command-line flag per setting. Only flags given on the command line
// override the config file; the rest keep the file's (or the default) value.
type Flags struct {
	fs          *flag.FlagSet
	path        string
	v           Config
	percentiles string
}

// NewFlags registers the settings on fs with the defaults as flag defaults.
func NewFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}
	fs.StringVar(&f.path, "config", "", "Optional YAML config file; explicit flags override its values")
	fs.StringVar(&f.v.Input, "input", d.Input, "Input file or glob (json, jsonl, csv, xlsx, sqlite; .gz/.bz2/.xz accepted)")
	fs.StringVar(&f.v.Format, "format", d.Format, "Input format (auto|json|jsonl|csv|xlsx|sqlite)")
	fs.StringVar(&f.v.RecordsPath, "records-path", d.RecordsPath, "JSONPath selecting the record array in JSON input")
	fs.StringVar(&f.v.Field, "field", d.Field, "Score field name, column name, or per-record JSONPath ($... or @...)")
	fs.StringVar(&f.v.Table, "table", d.Table, "SQLite table holding the scores")
	fs.StringVar(&f.v.Output, "output", d.Output, "Chart PNG path (overwritten atomically)")
	fs.IntVar(&f.v.Bins, "bins", d.Bins, "Number of histogram bins")
	fs.StringVar(&f.percentiles, "percentiles", joinFloats(d.Percentiles), "Comma separated percentiles to report")
	fs.StringVar(&f.v.PercentileMethod, "percentile-method", d.PercentileMethod, "Percentile interpolation (linear|r8)")
	fs.Float64Var(&f.v.BarFill, "bar-fill", d.BarFill, "Bar height as a fraction of the bin width")
	fs.Float64Var(&f.v.DPI, "dpi", d.DPI, "Chart resolution; the canvas is 14x10 inches")
	fs.BoolVar(&f.v.Caption, "caption", d.Caption, "Stamp n, mean and median onto the chart")
	fs.StringVar(&f.v.SummaryJSON, "summary-json", d.SummaryJSON, "Optional path for a JSON summary")
	fs.StringVar(&f.v.LogLevel, "log-level", d.LogLevel, "Log level (debug|info|warn|error)")
	return f
}

// Resolve builds the effective configuration after fs has been parsed.
func (f *Flags) Resolve() (Config, error) {
	cfg := Default()
	if f.path != "" {
		var err error
		if cfg, err = readFile(f.path); err != nil {
			return cfg, err
		}
	}
	var perr error
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "input":
			cfg.Input = f.v.Input
		case "format":
			cfg.Format = f.v.Format
		case "records-path":
			cfg.RecordsPath = f.v.RecordsPath
		case "field":
			cfg.Field = f.v.Field
		case "table":
			cfg.Table = f.v.Table
		case "output":
			cfg.Output = f.v.Output
		case "bins":
			cfg.Bins = f.v.Bins
		case "percentiles":
			cfg.Percentiles, perr = ParsePercentiles(f.percentiles)
		case "percentile-method":
			cfg.PercentileMethod = f.v.PercentileMethod
		case "bar-fill":
			cfg.BarFill = f.v.BarFill
		case "dpi":
			cfg.DPI = f.v.DPI
		case "caption":
			cfg.Caption = f.v.Caption
		case "summary-json":
			cfg.SummaryJSON = f.v.SummaryJSON
		case "log-level":
			cfg.LogLevel = f.v.LogLevel
		}
	})
	if perr != nil {
		return cfg, perr
	}
	return cfg, cfg.Validate()
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
