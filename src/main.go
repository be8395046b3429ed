// Score distribution report entrypoint (scoredist).
//
// Reads user records (default initial_users.json), prints count, min, max, mean and the
// configured percentiles, then renders a horizontal bar histogram of the scores to a PNG
// (default score_distribution.png).
//
// Design notes:
//   - Settings come from defaults, then an optional -config YAML file, then flags given on the
//     command line. Unset flags never clobber file values.
//   - Stdout carries only the report; logs go to stderr.
//   - The chart is rendered in memory and replaces the output file atomically. A failing run
//     leaves any previous chart untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iafilius/ScoreDistribution/src/config"
	"github.com/iafilius/ScoreDistribution/src/logging"
	"github.com/iafilius/ScoreDistribution/src/pipeline"
)

func main() {
	flags := config.NewFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logging.SetLogLevel(cfg.LogLevel)
	logging.Debugf("[init] input=%s output=%s bins=%d method=%s", cfg.Input, cfg.Output, cfg.Bins, cfg.PercentileMethod)

	if _, err := pipeline.Run(context.Background(), cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
