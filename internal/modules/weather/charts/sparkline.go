package charts

import (
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"weatherdash/internal/modules/weather/types"
)

const (
	SparklineWidth  = 320
	SparklineHeight = 56
)

// Sparkline draws values as a small line without axes, in the colour of col.
// NaN values are skipped.
func Sparkline(w io.Writer, col types.Column, values []float64) error {
	var xs, ys []float64
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
	}
	if len(ys) == 0 {
		return ErrNoData
	}
	if len(ys) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}

	lo, hi := ys[0], ys[0]
	for _, v := range ys {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	lo, hi = paddedBounds(lo, hi, false)

	ch := chart.Chart{
		Width:      SparklineWidth,
		Height:     SparklineHeight,
		Background: chart.Style{Padding: chart.Box{Top: 4, Left: 4, Right: 4, Bottom: 4}},
		XAxis:      chart.XAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]}},
		YAxis:      chart.YAxis{Style: chart.Hidden(), Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: []chart.Series{chart.ContinuousSeries{
			Name:    col.Header(),
			Style:   chart.Style{StrokeColor: ColumnColor(col), StrokeWidth: 1.5},
			XValues: xs,
			YValues: ys,
		}},
	}
	return render(w, ch)
}
