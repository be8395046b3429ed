// Package pipeline runs the score report end to end: load, summarize, bin, render, write.
//
// Stages run one after another; the first failure aborts the run and nothing further is written.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/iafilius/ScoreDistribution/src/analysis"
	"github.com/iafilius/ScoreDistribution/src/config"
	"github.com/iafilius/ScoreDistribution/src/loader"
	"github.com/iafilius/ScoreDistribution/src/logging"
	"github.com/iafilius/ScoreDistribution/src/output"
	"github.com/iafilius/ScoreDistribution/src/render"
	"github.com/iafilius/ScoreDistribution/src/report"
	"github.com/iafilius/ScoreDistribution/src/types"
)

// Result is what a successful run produced.
type Result struct {
	Summary analysis.Summary
	Bins    *analysis.Bins
	Chart   string
}

// Analyze loads the scores and computes the summary. It is the shared front half of the
// full report and the stats-only reader.
func Analyze(ctx context.Context, cfg config.Config) ([]float64, analysis.Summary, error) {
	defer logging.TimeTrack(time.Now(), "analyze")
	recs, err := loader.Load(ctx, cfg.LoaderOptions())
	if err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("load scores: %w", err)
	}
	scores := types.Scores(recs)
	logging.Debugf("[pipeline] loaded %d scores from %s", len(scores), cfg.Input)

	method, err := analysis.ParsePercentileMethod(cfg.PercentileMethod)
	if err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("summarize scores: %w", err)
	}
	s, err := analysis.Summarize(scores, cfg.Percentiles, method)
	if err != nil {
		return nil, analysis.Summary{}, fmt.Errorf("summarize scores: %w", err)
	}
	return scores, s, nil
}

// Run executes the full report, printing the text summary to stdout.
func Run(ctx context.Context, cfg config.Config, stdout io.Writer) (*Result, error) {
	defer logging.TimeTrack(time.Now(), "pipeline")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scores, s, err := Analyze(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := report.WriteText(stdout, s); err != nil {
		return nil, fmt.Errorf("print summary: %w", err)
	}

	bins, err := analysis.BinScores(scores, cfg.Bins)
	if err != nil {
		return nil, fmt.Errorf("bin scores: %w", err)
	}
	peak := bins.Peak()
	logging.Debugf("[pipeline] %d bins width=%.4g peak=%d (%d scores)", bins.Len(), bins.Width, peak, bins.Count(peak))
	if est := bins.EstimateQuantile(0.5); !math.IsNaN(est) {
		logging.Debugf("[pipeline] binned median estimate %.4g", est)
	}

	opts := cfg.RenderOptions()
	if cfg.Caption {
		opts.Caption = caption(s)
	}
	png, err := render.Render(bins, opts)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	if err := output.WriteFileAtomic(cfg.Output, png, 0o644); err != nil {
		return nil, fmt.Errorf("write chart: %w", err)
	}
	logging.Infof("[pipeline] wrote %s (%d bytes)", cfg.Output, len(png))
	if err := report.WriteSaved(stdout, cfg.Output); err != nil {
		return nil, fmt.Errorf("print summary: %w", err)
	}

	if cfg.SummaryJSON != "" {
		js, err := report.NewSummary(cfg.Input, cfg.Field, scores, s, bins)
		if err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
		if err := report.WriteJSON(cfg.SummaryJSON, js); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
		logging.Infof("[pipeline] wrote summary %s", cfg.SummaryJSON)
	}
	return &Result{Summary: s, Bins: bins, Chart: cfg.Output}, nil
}

// caption summarizes the run for the chart corner; the median appears only when it was computed.
func caption(s analysis.Summary) string {
	c := fmt.Sprintf("n=%d  mean=%.2f", s.Count, s.Mean)
	if median, ok := s.Percentile(50); ok {
		c += "  median=" + report.FormatScore(median)
	}
	return c
}
