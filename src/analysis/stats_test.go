package analysis

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestSummarizeScenario(t *testing.T) {
	scores := []float64{10, 20, 30, 30}
	sum, err := Summarize(scores, DefaultPercentiles, MethodLinear)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Count != 4 || sum.Min != 10 || sum.Max != 30 {
		t.Fatalf("unexpected count/min/max: %+v", sum)
	}
	if math.Abs(sum.Mean-22.5) > 1e-12 {
		t.Fatalf("mean=%v want 22.5", sum.Mean)
	}
	// rank for p50 is 1.5 -> halfway between 20 and 30
	if p50, ok := sum.Percentile(50); !ok || p50 != 25 {
		t.Fatalf("p50=%v ok=%v want 25", p50, ok)
	}
	// rank for p25 is 0.75 -> 10 + 0.75*10
	if p25, _ := sum.Percentile(25); math.Abs(p25-17.5) > 1e-12 {
		t.Fatalf("p25=%v want 17.5", p25)
	}
	if len(sum.Percentiles) != len(DefaultPercentiles) {
		t.Fatalf("expected %d percentiles got %d", len(DefaultPercentiles), len(sum.Percentiles))
	}
	if scores[0] != 10 || scores[3] != 30 {
		t.Fatalf("input slice was modified: %v", scores)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := Summarize(nil, DefaultPercentiles, MethodLinear)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput got %v", err)
	}
}

func TestSummarizeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		ps     []float64
		method PercentileMethod
	}{
		{"nan score", []float64{1, math.NaN()}, DefaultPercentiles, MethodLinear},
		{"inf score", []float64{1, math.Inf(1)}, DefaultPercentiles, MethodLinear},
		{"percentile above 100", []float64{1, 2}, []float64{101}, MethodLinear},
		{"negative percentile", []float64{1, 2}, []float64{-1}, MethodLinear},
		{"unknown method", []float64{1, 2}, DefaultPercentiles, PercentileMethod("nearest")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Summarize(tc.scores, tc.ps, tc.method); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	sum, err := Summarize([]float64{7}, DefaultPercentiles, MethodLinear)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.StdDev != 0 || sum.Mean != 7 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	for _, pv := range sum.Percentiles {
		if pv.Value != 7 {
			t.Fatalf("p%v=%v want 7", pv.P, pv.Value)
		}
	}
}

func TestPercentilesMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	scores := make([]float64, 997)
	for i := range scores {
		scores[i] = math.Round(r.NormFloat64()*1500 + 5000)
	}
	ps := []float64{0, 1, 5, 10, 25, 33.3, 50, 66.6, 75, 90, 95, 99, 99.9, 100}
	for _, m := range []PercentileMethod{MethodLinear, MethodR8} {
		sum, err := Summarize(scores, ps, m)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		for i := 1; i < len(sum.Percentiles); i++ {
			if sum.Percentiles[i].Value < sum.Percentiles[i-1].Value {
				t.Fatalf("%s: p%v=%v < p%v=%v", m, sum.Percentiles[i].P, sum.Percentiles[i].Value, sum.Percentiles[i-1].P, sum.Percentiles[i-1].Value)
			}
		}
		first, last := sum.Percentiles[0].Value, sum.Percentiles[len(sum.Percentiles)-1].Value
		if first != sum.Min || last != sum.Max {
			t.Fatalf("%s: p0/p100 = %v/%v want %v/%v", m, first, last, sum.Min, sum.Max)
		}
	}
}

func TestParsePercentileMethod(t *testing.T) {
	for in, want := range map[string]PercentileMethod{"": MethodLinear, "Linear": MethodLinear, " r8 ": MethodR8} {
		got, err := ParsePercentileMethod(in)
		if err != nil || got != want {
			t.Fatalf("ParsePercentileMethod(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := ParsePercentileMethod("nearest"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestSummarizeR8(t *testing.T) {
	sum, err := Summarize([]float64{4, 1, 3, 2}, []float64{25, 50}, MethodR8)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Method != MethodR8 {
		t.Fatalf("method %q", sum.Method)
	}
	if p50, _ := sum.Percentile(50); math.Abs(p50-2.5) > 1e-12 {
		t.Fatalf("r8 p50=%v want 2.5", p50)
	}
	// R8 rank for q=0.25, n=4 is 1/3 + 0.25*(4+1/3)
	if p25, _ := sum.Percentile(25); math.Abs(p25-(1+(1.0/3+0.25*(4+1.0/3)-1))) > 1e-12 {
		t.Fatalf("r8 p25=%v", p25)
	}
}
