package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/aclements/go-moremath/stats"
)

// ErrEmptyInput is returned when there are no scores to summarize or bin.
var ErrEmptyInput = errors.New("empty score collection")

// DefaultPercentiles are the percentile points reported when none are configured.
var DefaultPercentiles = []float64{25, 50, 75, 90, 95, 99}

// PercentileMethod selects how percentiles are interpolated between order statistics.
type PercentileMethod string

const (
	// MethodLinear interpolates at rank p/100*(n-1) (Hyndman-Fan type 7).
	MethodLinear PercentileMethod = "linear"
	// MethodR8 uses go-moremath's Sample.Quantile (Hyndman-Fan type 8).
	MethodR8 PercentileMethod = "r8"
)

// ParsePercentileMethod accepts "linear" (or empty) and "r8".
func ParsePercentileMethod(s string) (PercentileMethod, error) {
	switch PercentileMethod(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodLinear:
		return MethodLinear, nil
	case MethodR8:
		return MethodR8, nil
	}
	return "", fmt.Errorf("unknown percentile method %q (want linear|r8)", s)
}

// PercentileValue is one computed percentile point.
type PercentileValue struct {
	P     float64 `json:"p"`
	Value float64 `json:"value"`
}

// Summary holds the descriptive statistics of a score sequence.
type Summary struct {
	Count       int               `json:"count"`
	Min         float64           `json:"min"`
	Max         float64           `json:"max"`
	Mean        float64           `json:"mean"`
	StdDev      float64           `json:"stddev"`
	Method      PercentileMethod  `json:"percentile_method"`
	Percentiles []PercentileValue `json:"percentiles"`
}

// Percentile returns the value computed for p, if it was requested.
func (s Summary) Percentile(p float64) (float64, bool) {
	for _, pv := range s.Percentiles {
		if pv.P == p {
			return pv.Value, true
		}
	}
	return 0, false
}

// Summarize computes count, bounds, mean, standard deviation and the requested percentiles.
// The input slice is not modified. Empty input yields ErrEmptyInput; NaN or infinite scores and
// percentiles outside [0,100] are rejected.
func Summarize(scores []float64, percentiles []float64, method PercentileMethod) (Summary, error) {
	if len(scores) == 0 {
		return Summary{}, ErrEmptyInput
	}
	if method == "" {
		method = MethodLinear
	}
	if method != MethodLinear && method != MethodR8 {
		return Summary{}, fmt.Errorf("unknown percentile method %q", method)
	}
	for i, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Summary{}, fmt.Errorf("score %d is not finite: %v", i, v)
		}
	}
	for _, p := range percentiles {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return Summary{}, fmt.Errorf("percentile %v out of range [0,100]", p)
		}
	}

	sample := stats.Sample{Xs: append([]float64(nil), scores...)}
	sample.Sort()
	min, max := sample.Bounds()
	sum := Summary{
		Count:  len(scores),
		Min:    min,
		Max:    max,
		Mean:   sample.Mean(),
		Method: method,
	}
	if len(scores) > 1 {
		sum.StdDev = sample.StdDev()
	}
	sum.Percentiles = make([]PercentileValue, 0, len(percentiles))
	for _, p := range percentiles {
		var v float64
		switch method {
		case MethodR8:
			v = sample.Quantile(p / 100)
		default:
			v = linearPercentile(sample.Xs, p)
		}
		sum.Percentiles = append(sum.Percentiles, PercentileValue{P: p, Value: v})
	}
	return sum, nil
}

// linearPercentile interpolates between the order statistics around rank p/100*(n-1).
// sorted must be ascending and non-empty.
func linearPercentile(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := p / 100 * float64(len(sorted)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return sorted[l]
	}
	frac := pos - float64(l)
	v := sorted[l] + (sorted[r]-sorted[l])*frac
	// keep the result inside its bracketing order statistics despite rounding
	return math.Min(math.Max(v, sorted[l]), sorted[r])
}
