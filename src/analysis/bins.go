package analysis

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// DefaultBinCount is the number of histogram bins used when none is configured.
const DefaultBinCount = 30

// Bins is an equal-width histogram over the closed range [Min, Max].
//
// Bin i covers [Edges[i], Edges[i+1]) except the last bin, which is closed on both ends so the
// maximum lands in it. When Min == Max there is exactly one zero-width bin holding every value
// equal to Min.
type Bins struct {
	Min, Max float64
	Width    float64
	Edges    []float64
	counts   []uint
	under    uint
	over     uint
}

var _ stats.Histogram = (*Bins)(nil)

// NewBins returns empty bins spanning [min, max]. n must be >= 1; a zero-length range collapses
// to a single bin regardless of n.
func NewBins(min, max float64, n int) (*Bins, error) {
	if n < 1 {
		return nil, fmt.Errorf("bin count must be >= 1, got %d", n)
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("bin range must be finite, got [%v, %v]", min, max)
	}
	if max < min {
		return nil, fmt.Errorf("bin range is inverted: [%v, %v]", min, max)
	}
	if max == min {
		return &Bins{Min: min, Max: max, Edges: []float64{min, max}, counts: make([]uint, 1)}, nil
	}
	if math.IsInf(max-min, 0) {
		return nil, fmt.Errorf("bin range [%v, %v] is too wide to divide", min, max)
	}
	width := (max - min) / float64(n)
	edges := make([]float64, n+1)
	for i := range edges {
		edges[i] = min + float64(i)*width
	}
	edges[n] = max
	return &Bins{Min: min, Max: max, Width: width, Edges: edges, counts: make([]uint, n)}, nil
}

// BinScores bins every score into n equal-width bins spanning the scores' own range.
func BinScores(scores []float64, n int) (*Bins, error) {
	if len(scores) == 0 {
		return nil, ErrEmptyInput
	}
	min, max := stats.Bounds(scores)
	b, err := NewBins(min, max, n)
	if err != nil {
		return nil, err
	}
	for _, v := range scores {
		b.Add(v)
	}
	return b, nil
}

// Len returns the number of bins.
func (b *Bins) Len() int { return len(b.counts) }

// Add counts x into its bin. Values outside [Min, Max] are tallied as under/over.
func (b *Bins) Add(x float64) {
	i := b.locate(x)
	switch {
	case i < 0:
		b.under++
	case i >= len(b.counts):
		b.over++
	default:
		b.counts[i]++
	}
}

// locate returns the bin index for x, -1 below the range and Len() above it.
func (b *Bins) locate(x float64) int {
	if math.IsNaN(x) || x < b.Min {
		return -1
	}
	if x > b.Max {
		return len(b.counts)
	}
	n := len(b.counts)
	if x == b.Max || b.Width == 0 {
		return n - 1
	}
	i := int((x - b.Min) / b.Width)
	if i >= n {
		i = n - 1
	}
	// Correct the estimate against the stored edges so a value on an interior edge always
	// starts the bin above it.
	for i > 0 && x < b.Edges[i] {
		i--
	}
	for i < n-1 && x >= b.Edges[i+1] {
		i++
	}
	return i
}

// Counts returns the samples below the range, the per-bin counts and the samples above it.
// The returned slice must not be modified.
func (b *Bins) Counts() (under uint, counts []uint, over uint) {
	return b.under, b.counts, b.over
}

// Count returns the count of bin i.
func (b *Bins) Count(i int) uint { return b.counts[i] }

// Total returns the number of values that landed in a bin.
func (b *Bins) Total() uint {
	var t uint
	for _, c := range b.counts {
		t += c
	}
	return t
}

// BinToValue maps a fractional bin index to a score: integral values give the bin's lower edge.
func (b *Bins) BinToValue(bin float64) float64 {
	return b.Min + bin*b.Width
}

// Center returns the midpoint of bin i.
func (b *Bins) Center(i int) float64 {
	return (b.Edges[i] + b.Edges[i+1]) / 2
}

// Peak returns the index of the first bin holding the highest count.
func (b *Bins) Peak() int {
	best := 0
	for i, c := range b.counts {
		if c > b.counts[best] {
			best = i
		}
	}
	return best
}

// MaxCount returns the highest per-bin count.
func (b *Bins) MaxCount() uint {
	return b.counts[b.Peak()]
}

// EstimateQuantile estimates the q-quantile from the binned counts, assuming values spread
// evenly inside each bin. q must lie strictly between 0 and 1, otherwise NaN is returned.
func (b *Bins) EstimateQuantile(q float64) float64 {
	if !(q > 0 && q < 1) {
		return math.NaN()
	}
	return stats.HistogramQuantile(b, q)
}
