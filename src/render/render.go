// Package render draws the score histogram as a horizontal bar chart PNG.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/ScoreDistribution/src/analysis"
)

// Options controls chart appearance. Width and height are in inches; the pixel size is
// inches x DPI.
type Options struct {
	Title    string
	XLabel   string
	YLabel   string
	WidthIn  float64
	HeightIn float64
	DPI      float64
	// BarFill is the fraction of the bin width a bar occupies; the rest is the gap between bars.
	BarFill float64
	// Caption, when non-empty, is stamped onto the bottom-left corner of the image.
	Caption string
}

// DefaultOptions returns a 14x10 inch, 150 DPI chart with 90% bar fill.
func DefaultOptions() Options {
	return Options{
		Title:    "User Score Distribution",
		XLabel:   "Users",
		YLabel:   "Score",
		WidthIn:  14,
		HeightIn: 10,
		DPI:      150,
		BarFill:  0.9,
	}
}

// PixelSize returns the image dimensions for opts.
func (o Options) PixelSize() (int, int) {
	return int(o.WidthIn * o.DPI), int(o.HeightIn * o.DPI)
}

func (o Options) validate() error {
	if o.WidthIn <= 0 || o.HeightIn <= 0 {
		return fmt.Errorf("canvas must be positive, got %vx%v", o.WidthIn, o.HeightIn)
	}
	if o.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %v", o.DPI)
	}
	if o.BarFill <= 0 || o.BarFill > 1 {
		return fmt.Errorf("bar fill must be in (0,1], got %v", o.BarFill)
	}
	return nil
}

var gridColor = drawing.ColorFromHex("c8c8c8")

const (
	axisNameSize   = 14
	scoreTickCount = 8
)

// Render draws the histogram and returns the encoded PNG. Nothing is written to disk.
func Render(b *analysis.Bins, opts Options) ([]byte, error) {
	if b == nil || b.Len() == 0 {
		return nil, errors.New("no bins to render")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	layout := NewLayout(b, opts.BarFill)
	w, h := opts.PixelSize()

	lo, hi := layout.scoreBounds()
	pad := (hi - lo) * 0.02
	// whole-number score ticks whenever the range is wide enough to carry them
	yTicks := niceTicks(lo-pad, hi+pad, scoreTickCount, hi-lo >= scoreTickCount-1)
	maxCount := float64(layout.MaxCount)
	// leave room right of the longest bar for its annotation
	xTicks := niceTicks(0, maxCount*1.08, 6, true)
	if len(yTicks) == 0 || len(xTicks) == 0 {
		return nil, fmt.Errorf("cannot place axis ticks for scores [%v, %v]", lo, hi)
	}
	yRange, xRange := rangeFromTicks(yTicks), rangeFromTicks(xTicks)

	scoreAxis := chart.YAxis{
		Range:          yRange,
		Ticks:          yTicks,
		ValueFormatter: thousandsFormatter,
	}
	ch := chart.Chart{
		Title:      opts.Title,
		TitleStyle: chart.Style{FontSize: 16},
		Width:      w,
		Height:     h,
		DPI:        opts.DPI,
		Background: chart.Style{FillColor: chart.ColorWhite, Padding: chart.Box{Top: 30, Left: 20 + nameRoom(axisNameSize, opts.DPI), Right: 30, Bottom: 20}},
		Canvas:     chart.Style{FillColor: chart.ColorWhite},
		XAxis: chart.XAxis{
			Name:           opts.XLabel,
			NameStyle:      chart.Style{FontSize: axisNameSize},
			Range:          xRange,
			Ticks:          xTicks,
			ValueFormatter: thousandsFormatter,
			GridMajorStyle: chart.Style{StrokeColor: gridColor, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}},
		},
		// score axis on the left; the right-hand primary axis shares its range but is not drawn
		YAxis: chart.YAxis{
			Style: chart.Style{Hidden: true},
			Range: &chart.ContinuousRange{Min: yRange.Min, Max: yRange.Max},
			Ticks: yTicks,
		},
		YAxisSecondary: scoreAxis,
		Elements:       []chart.Renderable{leftAxisName(opts.YLabel, yTicks, axisNameSize)},
		Series: []chart.Series{
			barSeries{
				Name:        "scores",
				Bars:        layout.Bars,
				LabelOffset: maxCount * 0.01,
				FontSize:    8,
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if opts.Caption == "" {
		return buf.Bytes(), nil
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode rendered chart: %w", err)
	}
	var out bytes.Buffer
	if err := png.Encode(&out, drawCaption(img, opts.Caption)); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return out.Bytes(), nil
}
