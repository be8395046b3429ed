package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iafilius/ScoreDistribution/src/config"
	"github.com/iafilius/ScoreDistribution/src/logging"
	"github.com/iafilius/ScoreDistribution/src/pipeline"
	"github.com/iafilius/ScoreDistribution/src/report"
)

// scorereader prints the score statistics without binning or rendering a chart.
func main() {
	flags := config.NewFlags(flag.CommandLine)
	flag.Parse()
	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogLevel(cfg.LogLevel)
	_, s, err := pipeline.Analyze(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := report.WriteText(os.Stdout, s); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if s.Count > 1 {
		fmt.Printf("Std deviation: %.2f\n", s.StdDev)
	}
}
