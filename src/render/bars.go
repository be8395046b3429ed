package render

import (
	"errors"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/ScoreDistribution/src/analysis"
)

// The colour ramp is sampled over the middle of viridis so neither end is too dark or too pale.
const (
	rampLow  = 0.2
	rampHigh = 0.8
)

// degenerateHeight is the score span drawn for a zero-width bin.
const degenerateHeight = 1.0

var (
	borderColor    = chart.ColorWhite
	highlightColor = drawing.ColorRed
)

// Bar is one horizontal bar: a score band and its count.
type Bar struct {
	Center    float64
	Height    float64
	Count     uint
	Color     drawing.Color
	Highlight bool
}

// Layout is the chart geometry derived from histogram bins.
type Layout struct {
	Bars     []Bar
	Peak     int
	MaxCount uint
}

// NewLayout places one bar per bin. Bar height is the bin width times fill; the first bin with
// the highest count is highlighted.
func NewLayout(b *analysis.Bins, fill float64) Layout {
	n := b.Len()
	width := b.Width
	if width == 0 {
		width = degenerateHeight
	}
	peak := b.Peak()
	l := Layout{Bars: make([]Bar, n), Peak: peak, MaxCount: b.MaxCount()}
	for i := 0; i < n; i++ {
		l.Bars[i] = Bar{
			Center:    b.Center(i),
			Height:    width * fill,
			Count:     b.Count(i),
			Color:     rampColor(i, n),
			Highlight: i == peak,
		}
	}
	return l
}

// rampColor samples viridis evenly between rampLow and rampHigh by bin position.
func rampColor(i, n int) drawing.Color {
	t := rampLow
	if n > 1 {
		t = rampLow + (rampHigh-rampLow)*float64(i)/float64(n-1)
	}
	return chart.Viridis(t, 0, 1)
}

// scoreBounds returns the score extent covered by the bars.
func (l Layout) scoreBounds() (lo, hi float64) {
	first, last := l.Bars[0], l.Bars[len(l.Bars)-1]
	return first.Center - first.Height/2, last.Center + last.Height/2
}

// barSeries draws Layout bars against the secondary (left) y axis.
type barSeries struct {
	Name  string
	Style chart.Style
	Bars  []Bar
	// LabelOffset is the gap, in count units, between a bar end and its annotation.
	LabelOffset float64
	FontSize    float64
}

func (bs barSeries) GetName() string           { return bs.Name }
func (bs barSeries) GetStyle() chart.Style     { return bs.Style }
func (bs barSeries) GetYAxis() chart.YAxisType { return chart.YAxisSecondary }

func (bs barSeries) Validate() error {
	if len(bs.Bars) == 0 {
		return errors.New("bar series has no bars")
	}
	return nil
}

func (bs barSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := bs.Style.InheritFrom(defaults)
	left := canvasBox.Left + xrange.Translate(0)
	// normal bars first so the highlighted border is never painted over by a neighbour
	for pass := 0; pass < 2; pass++ {
		for _, bar := range bs.Bars {
			if bar.Count == 0 || bar.Highlight != (pass == 1) {
				continue
			}
			box := chart.Box{
				Top:    canvasBox.Bottom - yrange.Translate(bar.Center+bar.Height/2),
				Left:   left,
				Right:  canvasBox.Left + xrange.Translate(float64(bar.Count)),
				Bottom: canvasBox.Bottom - yrange.Translate(bar.Center-bar.Height/2),
			}
			bstyle := chart.Style{FillColor: bar.Color, StrokeColor: borderColor, StrokeWidth: 0.5}
			if bar.Highlight {
				bstyle.StrokeColor = highlightColor
				bstyle.StrokeWidth = 2
			}
			chart.Draw.Box(r, box, bstyle)
		}
	}
	for _, bar := range bs.Bars {
		if bar.Count == 0 {
			continue
		}
		label := FormatThousands(float64(bar.Count))
		tstyle := chart.Style{Font: style.Font, FontSize: bs.FontSize, FontColor: bar.Color}
		tstyle.WriteTextOptionsToRenderer(r)
		tb := r.MeasureText(label)
		x := canvasBox.Left + xrange.Translate(float64(bar.Count)+bs.LabelOffset)
		y := canvasBox.Bottom - yrange.Translate(bar.Center) + tb.Height()/2
		chart.Draw.Text(r, label, x, y, tstyle)
	}
}
