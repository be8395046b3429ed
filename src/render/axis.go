package render

import (
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatThousands truncates v toward zero and groups thousands: 1234567.8 -> "1,234,567".
func FormatThousands(v float64) string {
	return printer.Sprintf("%d", int64(v))
}

// thousandsFormatter adapts FormatThousands to go-chart's ValueFormatter.
func thousandsFormatter(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return FormatThousands(n)
	case int:
		return FormatThousands(float64(n))
	}
	return ""
}

// formatTick labels v with as many decimals as step needs, grouping thousands.
func formatTick(v, step float64) string {
	d := stepDecimals(step)
	if d == 0 {
		return FormatThousands(math.Round(v))
	}
	return printer.Sprintf("%."+strconv.Itoa(d)+"f", v)
}

func stepDecimals(step float64) int {
	d := 0
	for s := step; d < 6 && math.Abs(s-math.Round(s)) > 1e-9*math.Max(1, math.Abs(s)); s *= 10 {
		d++
	}
	return d
}

func isWhole(v float64) bool { return v >= 1 && stepDecimals(v) == 0 }

// niceTicks generates roughly n tick marks covering [min, max] on 1/2/2.5/5 x 10^k steps.
// The first tick is <= min and the last >= max. With integral set only whole steps of at least
// 1 are used. A range that is not finite yields no ticks.
func niceTicks(min, max float64, n int, integral bool) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	if math.IsInf(span, 0) {
		return nil
	}
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := 0.0
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		if integral && !isWhole(step) {
			continue
		}
		count := math.Ceil(span / step)
		if count < 2 {
			count = 2
		}
		score := math.Abs(count - float64(n))
		if score < bestScore {
			bestScore = score
			bestStep = step
		}
	}
	if bestStep == 0 {
		bestStep = mag
		if integral {
			bestStep = 1
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	if math.IsInf(start, 0) || math.IsInf(end, 0) || math.IsInf(end-start, 0) {
		return nil
	}
	steps := int(math.Round((end - start) / bestStep))
	if steps < 1 {
		steps = 1
	}
	ticks := make([]chart.Tick, 0, steps+1)
	for i := 0; i <= steps; i++ {
		v := start + float64(i)*bestStep
		if i == steps {
			v = end
		}
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v, bestStep)})
	}
	return ticks
}

// rangeFromTicks spans exactly the first and last tick; go-chart does the same when ticks are
// supplied, so keeping them equal avoids surprises in Translate. It is nil for no ticks.
func rangeFromTicks(ticks []chart.Tick) *chart.ContinuousRange {
	if len(ticks) == 0 {
		return nil
	}
	return &chart.ContinuousRange{Min: ticks[0].Value, Max: ticks[len(ticks)-1].Value}
}

// leftAxisName draws a y-axis name reading top-down, clear of the widest tick label. go-chart
// reserves only the tick font height for its own axis name, which the name font overruns.
func leftAxisName(name string, ticks []chart.Tick, fontSize float64) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		tickStyle := chart.Style{Font: defaults.Font, FontSize: chart.DefaultAxisFontSize}
		maxw := 0
		for _, t := range ticks {
			if w := chart.Draw.MeasureText(r, t.Label, tickStyle).Width(); w > maxw {
				maxw = w
			}
		}
		nameStyle := chart.Style{Font: defaults.Font, FontSize: fontSize, FontColor: chart.DefaultTextColor}
		tb := chart.Draw.MeasureText(r, name, nameStyle)
		x := canvasBox.Left - 2*chart.DefaultYAxisMargin - maxw - tb.Height()
		y := canvasBox.Top + canvasBox.Height()/2 - tb.Width()/2
		nameStyle.TextRotationDegrees = 90
		chart.Draw.Text(r, name, x, y, nameStyle)
	}
}

// nameRoom is the pixel width kept left of the tick labels for a rotated axis name.
func nameRoom(fontSize, dpi float64) int {
	return int(math.Ceil(fontSize*dpi/72)) + chart.DefaultYAxisMargin
}
