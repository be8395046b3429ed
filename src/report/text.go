// Package report formats analysis results for people (stdout text) and machines (JSON).
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/iafilius/ScoreDistribution/src/analysis"
)

// FormatScore prints a score without a trailing ".0" when it is integral.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteText prints the count, bounds, mean (two decimals) and each percentile rounded to the
// nearest integer, one per line.
func WriteText(w io.Writer, s analysis.Summary) error {
	lines := []string{
		fmt.Sprintf("Total users: %d", s.Count),
		fmt.Sprintf("Min score: %s", FormatScore(s.Min)),
		fmt.Sprintf("Max score: %s", FormatScore(s.Max)),
		fmt.Sprintf("Mean score: %.2f", s.Mean),
	}
	for _, pv := range s.Percentiles {
		lines = append(lines, fmt.Sprintf("%s%% percentile: %.0f", FormatScore(pv.P), pv.Value))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// WriteSaved prints the confirmation line naming the chart file.
func WriteSaved(w io.Writer, path string) error {
	_, err := fmt.Fprintf(w, "\nChart saved to %s\n", path)
	return err
}
