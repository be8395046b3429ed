package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/iafilius/ScoreDistribution/src/analysis"
)

func mustBins(t *testing.T, scores []float64, n int) *analysis.Bins {
	t.Helper()
	b, err := analysis.BinScores(scores, n)
	if err != nil {
		t.Fatalf("bin: %v", err)
	}
	return b
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func countReddish(img image.Image) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 > 200 && g>>8 < 80 && bl>>8 < 80 {
				n++
			}
		}
	}
	return n
}

func TestRenderDefaultSize(t *testing.T) {
	scores := make([]float64, 0, 500)
	for i := 0; i < 500; i++ {
		scores = append(scores, float64(1000+(i*i)%4000))
	}
	data, err := Render(mustBins(t, scores, analysis.DefaultBinCount), DefaultOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img := decode(t, data)
	if img.Bounds().Dx() != 2100 || img.Bounds().Dy() != 1500 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	// top-left corner is background
	r, g, b, _ := img.At(1, 1).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Fatalf("expected white background, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
	if countReddish(img) == 0 {
		t.Fatalf("expected the peak bar to carry a red border")
	}
}

func TestRenderScenarioAndDegenerate(t *testing.T) {
	opts := DefaultOptions()
	opts.WidthIn, opts.HeightIn, opts.DPI = 8, 6, 50
	for name, scores := range map[string][]float64{
		"scenario":   {10, 20, 30, 30},
		"degenerate": {5, 5},
		"single":     {42},
		"negative":   {-1500, -20, 0, 3},
	} {
		t.Run(name, func(t *testing.T) {
			data, err := Render(mustBins(t, scores, 2), opts)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			img := decode(t, data)
			if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
				t.Fatalf("unexpected size %v", img.Bounds())
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	b := mustBins(t, []float64{1, 2, 2, 3, 3, 3, 4, 9}, 4)
	opts := DefaultOptions()
	opts.DPI = 40
	a, err := Render(b, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	c, err := Render(b, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(a, c) {
		t.Fatalf("rendering the same bins twice produced different images")
	}
}

func TestRenderRejectsBadOptions(t *testing.T) {
	b := mustBins(t, []float64{1, 2}, 2)
	for _, mut := range []func(*Options){
		func(o *Options) { o.BarFill = 0 },
		func(o *Options) { o.BarFill = 1.5 },
		func(o *Options) { o.DPI = 0 },
		func(o *Options) { o.WidthIn = -1 },
	} {
		opts := DefaultOptions()
		mut(&opts)
		if _, err := Render(b, opts); err == nil {
			t.Fatalf("expected error for options %+v", opts)
		}
	}
	if _, err := Render(nil, DefaultOptions()); err == nil {
		t.Fatalf("expected error for nil bins")
	}
}

func TestRenderCaption(t *testing.T) {
	b := mustBins(t, []float64{1, 2, 3}, 3)
	opts := DefaultOptions()
	opts.DPI = 40
	plain, err := Render(b, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	opts.Caption = "n=3  mean=2.00"
	captioned, err := Render(b, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if bytes.Equal(plain, captioned) {
		t.Fatalf("caption did not change the image")
	}
}

func TestNewLayout(t *testing.T) {
	b := mustBins(t, []float64{10, 20, 30, 30}, 2)
	l := NewLayout(b, 0.9)
	if len(l.Bars) != 2 || l.Peak != 1 || l.MaxCount != 3 {
		t.Fatalf("unexpected layout: %+v", l)
	}
	if !l.Bars[1].Highlight || l.Bars[0].Highlight {
		t.Fatalf("expected only bar 1 highlighted")
	}
	if math.Abs(l.Bars[0].Height-9) > 1e-12 || l.Bars[0].Center != 15 {
		t.Fatalf("bar 0 geometry center=%v height=%v", l.Bars[0].Center, l.Bars[0].Height)
	}
	if l.Bars[0].Color == l.Bars[1].Color {
		t.Fatalf("expected distinct ramp colours")
	}
	lo, hi := l.scoreBounds()
	if math.Abs(lo-10.5) > 1e-12 || math.Abs(hi-29.5) > 1e-12 {
		t.Fatalf("score bounds [%v,%v] want [10.5,29.5]", lo, hi)
	}
}

func TestNewLayoutTiesHighlightFirst(t *testing.T) {
	b := mustBins(t, []float64{0, 0, 10, 10}, 2)
	l := NewLayout(b, 0.9)
	if l.Peak != 0 {
		t.Fatalf("tie should highlight the first bar, got %d", l.Peak)
	}
}

func TestNewLayoutDegenerate(t *testing.T) {
	b := mustBins(t, []float64{5, 5, 5}, 30)
	l := NewLayout(b, 0.9)
	if len(l.Bars) != 1 || l.Bars[0].Count != 3 {
		t.Fatalf("unexpected layout: %+v", l)
	}
	if l.Bars[0].Height != degenerateHeight*0.9 {
		t.Fatalf("degenerate bar height %v", l.Bars[0].Height)
	}
}

func TestFormatThousands(t *testing.T) {
	cases := map[float64]string{
		0:         "0",
		999:       "999",
		1000:      "1,000",
		1234567.8: "1,234,567",
		-1234.9:   "-1,234",
	}
	for in, want := range cases {
		if got := FormatThousands(in); got != want {
			t.Fatalf("FormatThousands(%v)=%q want %q", in, got, want)
		}
	}
	if thousandsFormatter(2500.0) != "2,500" || thousandsFormatter("x") != "" {
		t.Fatalf("unexpected formatter output")
	}
}

func TestNiceTicksCoverRange(t *testing.T) {
	for _, tc := range [][2]float64{{0, 1}, {10.5, 29.5}, {-3, 7}, {4, 4}, {1000, 98765}} {
		ticks := niceTicks(tc[0], tc[1], 8, false)
		if len(ticks) < 2 {
			t.Fatalf("%v: expected >= 2 ticks", tc)
		}
		if ticks[0].Value > tc[0] || ticks[len(ticks)-1].Value < tc[1] {
			t.Fatalf("%v: ticks [%v,%v] do not cover range", tc, ticks[0].Value, ticks[len(ticks)-1].Value)
		}
		for i := 1; i < len(ticks); i++ {
			if ticks[i].Value <= ticks[i-1].Value {
				t.Fatalf("%v: ticks not increasing", tc)
			}
		}
	}
}

func TestNiceTicksLabelsDistinct(t *testing.T) {
	cases := []struct {
		min, max float64
		n        int
		integral bool
	}{
		{0, 3.24, 6, true},
		{0, 1.08, 6, true},
		{0, 12345, 6, true},
		{10.12, 29.88, 8, true},
		{4.55, 5.45, 8, false},
		{0, 1, 8, false},
		{-1500, 3, 8, true},
	}
	for _, tc := range cases {
		ticks := niceTicks(tc.min, tc.max, tc.n, tc.integral)
		if len(ticks) < 2 {
			t.Fatalf("%+v: expected >= 2 ticks", tc)
		}
		seen := map[string]bool{}
		for _, tk := range ticks {
			if seen[tk.Label] {
				t.Fatalf("%+v: repeated label %q in %v", tc, tk.Label, ticks)
			}
			seen[tk.Label] = true
			if tc.integral && tk.Value != math.Trunc(tk.Value) {
				t.Fatalf("%+v: non-integral tick %v", tc, tk.Value)
			}
		}
	}
}

func TestNiceTicksCountAxisScenario(t *testing.T) {
	var labels []string
	for _, tk := range niceTicks(0, 3*1.08, 6, true) {
		labels = append(labels, tk.Label)
	}
	if got := strings.Join(labels, ","); got != "0,1,2,3,4" {
		t.Fatalf("count axis labels %s", got)
	}
}

func TestFormatTick(t *testing.T) {
	cases := []struct {
		v, step float64
		want    string
	}{
		{27.5, 2.5, "27.5"},
		{4.6, 0.2, "4.6"},
		{0.25, 0.25, "0.25"},
		{2500, 500, "2,500"},
		{2.9999999999, 1, "3"},
	}
	for _, tc := range cases {
		if got := formatTick(tc.v, tc.step); got != tc.want {
			t.Fatalf("formatTick(%v, %v)=%q want %q", tc.v, tc.step, got, tc.want)
		}
	}
}

func TestNiceTicksNonFinite(t *testing.T) {
	for _, tc := range [][2]float64{
		{-math.MaxFloat64, math.MaxFloat64},
		{math.Inf(-1), 0},
		{0, math.NaN()},
	} {
		if ticks := niceTicks(tc[0], tc[1], 8, false); ticks != nil {
			t.Fatalf("%v: expected no ticks, got %d", tc, len(ticks))
		}
	}
	if rangeFromTicks(nil) != nil {
		t.Fatalf("expected nil range for no ticks")
	}
}

func TestHighlightIsPureRed(t *testing.T) {
	if highlightColor.R != 255 || highlightColor.G != 0 || highlightColor.B != 0 {
		t.Fatalf("highlight colour %+v is not red", highlightColor)
	}
	opts := DefaultOptions()
	opts.WidthIn, opts.HeightIn, opts.DPI = 8, 6, 50
	data, err := Render(mustBins(t, []float64{10, 20, 30, 30}, 2), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if countReddish(decode(t, data)) == 0 {
		t.Fatalf("expected the peak bar to carry a red border")
	}
}

func TestDrawCaptionMarksCorner(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 60))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	out := drawCaption(img, "n=10")
	changed := false
	for y := 40; y < 60 && !changed; y++ {
		for x := 0; x < 60; x++ {
			if out.At(x, y) != (color.RGBA{255, 255, 255, 255}) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Fatalf("caption left the corner untouched")
	}
	if drawCaption(img, "  ") != image.Image(img) {
		t.Fatalf("blank caption should return the input image")
	}
}

// darkColumns reports, for each x, whether any pixel in rows [y0, y1) is dark.
func darkColumns(img image.Image, y0, y1 int) []bool {
	b := img.Bounds()
	cols := make([]bool, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		for y := y0; y < y1; y++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r>>8 < 128 && g>>8 < 128 && bl>>8 < 128 {
				cols[x-b.Min.X] = true
				break
			}
		}
	}
	return cols
}

func TestScoreAxisNameClearOfTickLabels(t *testing.T) {
	b := mustBins(t, []float64{10, 20, 30, 30}, 2)
	data, err := Render(b, DefaultOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img := decode(t, data)
	h := img.Bounds().Dy()
	cols := darkColumns(img, h/4, 3*h/4)
	// expect: blank margin, the rotated name, a blank gap, then the tick labels
	x := 0
	for x < len(cols) && !cols[x] {
		x++
	}
	if x < 5 {
		t.Fatalf("axis name starts at column %d, clipped against the edge", x)
	}
	for x < len(cols) && cols[x] {
		x++
	}
	gap := 0
	for x < len(cols) && !cols[x] {
		gap++
		x++
	}
	if gap < 3 || x >= len(cols) {
		t.Fatalf("no clear gap between axis name and tick labels (gap=%d at column %d)", gap, x)
	}
	if nameRoom(axisNameSize, 150) != 40 {
		t.Fatalf("nameRoom=%d want 40", nameRoom(axisNameSize, 150))
	}
}
