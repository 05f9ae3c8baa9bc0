package charts

import (
	"errors"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/types"
)

const arrowLength = 18

// All plots weekly statistics for wind gusts, wind speed and temperature
// together with daily precipitation and the weekly mean wind direction.
func All(w io.Writer, t types.Table, opts Options) error {
	opts = opts.withDefaults()
	weeks := dataset.Weekly(t)
	if len(weeks) == 0 {
		return ErrNoData
	}
	sums := dataset.DailySums(t, types.ColumnPrecipitation)
	from, to := t[0].Time, t[len(t)-1].Time

	lo, hi := 0.0, 0.0
	var series []chart.Series
	for _, col := range []types.Column{types.ColumnWindGusts, types.ColumnWindSpeed, types.ColumnTemperature} {
		s := weeklyStatSeries(weeks, col)
		if s.Len() == 0 {
			continue
		}
		for i := range s.x {
			lo = math.Min(lo, s.lo[i])
			hi = math.Max(hi, s.hi[i])
		}
		series = append(series, s)
	}
	if len(sums) > 0 {
		_, top := pointsRange(sums)
		hi = math.Max(hi, top)
		series = append(series, precipitationBars("Precipitation (mm/day)", sums))
	}
	if arrows := weeklyArrows(weeks); arrows.Len() > 0 {
		series = append(series, arrows)
	}

	ch := baseChart("Weekly Weather Statistics with Daily Precipitation", opts)
	ch.XAxis = timeAxis("Time", from, to, true)
	ch.YAxis = valueAxis("Temperature (°C), Wind Speed/Gusts (m/s), Precipitation (mm)", lo, hi, false)
	ch.YAxis.Zero = chart.GridLine{Value: 0, Style: dashedStyle(colorReference)}
	ch.Series = series
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return render(w, ch)
}

// statSeries draws a weekly mean line over a translucent min/max band. It
// reports the band as its bounds so the y range covers it.
type statSeries struct {
	name  string
	color drawing.Color
	x     []float64
	mean  []float64
	lo    []float64
	hi    []float64
}

func weeklyStatSeries(weeks []dataset.WeeklyStats, col types.Column) statSeries {
	s := statSeries{name: col.Header(), color: ColumnColor(col)}
	for _, wk := range weeks {
		st := wk.Columns[col]
		if st.Count == 0 {
			continue
		}
		s.x = append(s.x, chart.TimeToFloat64(wk.Week))
		s.mean = append(s.mean, st.Mean)
		s.lo = append(s.lo, st.Min)
		s.hi = append(s.hi, st.Max)
	}
	return s
}

func (s statSeries) GetName() string                { return s.name }
func (s statSeries) GetYAxis() chart.YAxisType      { return chart.YAxisPrimary }
func (s statSeries) GetStyle() chart.Style          { return lineStyle(s.color) }
func (s statSeries) Len() int                       { return len(s.x) }
func (s statSeries) GetValues(i int) (x, y float64) { return s.x[i], s.mean[i] }

func (s statSeries) GetBoundedValues(i int) (x, y1, y2 float64) {
	return s.x[i], s.hi[i], s.lo[i]
}

func (s statSeries) Validate() error {
	if len(s.x) == 0 {
		return errors.New("stat series has no values")
	}
	return nil
}

func (s statSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	band := chart.Style{
		StrokeColor: chart.ColorTransparent,
		FillColor:   s.color.WithAlpha(51),
	}
	chart.Draw.BoundedSeries(r, canvasBox, xrange, yrange, band, s)
	chart.Draw.LineSeries(r, canvasBox, xrange, yrange, s.GetStyle().InheritFrom(defaults), meanValues{s})
}

// meanValues exposes only the mean line of a statSeries, so LineSeries does
// not pick up the band bounds.
type meanValues struct{ s statSeries }

func (m meanValues) Len() int                       { return m.s.Len() }
func (m meanValues) GetValues(i int) (x, y float64) { return m.s.GetValues(i) }

// arrowSeries draws one arrow per week along the top edge of the canvas,
// pointing along the weekly mean wind direction.
type arrowSeries struct {
	x   []float64
	dir []float64
}

func weeklyArrows(weeks []dataset.WeeklyStats) arrowSeries {
	var a arrowSeries
	for _, wk := range weeks {
		mean := wk.Columns[types.ColumnWindDirection].Mean
		if math.IsNaN(mean) {
			continue
		}
		a.x = append(a.x, chart.TimeToFloat64(wk.Week))
		a.dir = append(a.dir, mean)
	}
	return a
}

func (a arrowSeries) GetName() string           { return "Wind Direction" }
func (a arrowSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (a arrowSeries) Len() int                  { return len(a.x) }

func (a arrowSeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: colorArrow, StrokeWidth: 1.5}
}

func (a arrowSeries) Validate() error {
	if len(a.x) == 0 || len(a.x) != len(a.dir) {
		return errors.New("arrow series needs one direction per x value")
	}
	return nil
}

// Render treats each direction as a mathematical angle, so 0° points right
// and 90° points up.
func (a arrowSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, _ chart.Range, _ chart.Style) {
	r.SetStrokeColor(colorArrow)
	r.SetFillColor(colorArrow)
	r.SetStrokeWidth(1.5)
	r.SetStrokeDashArray(nil)
	top := float64(canvasBox.Top) + arrowLength/2
	for i := range a.x {
		rad := a.dir[i] * math.Pi / 180
		dx, dy := math.Cos(rad), -math.Sin(rad)
		x0 := float64(canvasBox.Left + xrange.Translate(a.x[i]))
		tipX, tipY := x0+dx*arrowLength/2, top+dy*arrowLength/2
		tailX, tailY := x0-dx*arrowLength/2, top-dy*arrowLength/2

		r.MoveTo(int(tailX), int(tailY))
		r.LineTo(int(tipX), int(tipY))
		r.Stroke()

		// head: a small triangle behind the tip
		bx, by := tipX-dx*6, tipY-dy*6
		r.MoveTo(int(tipX), int(tipY))
		r.LineTo(int(bx-dy*4), int(by+dx*4))
		r.LineTo(int(bx+dy*4), int(by-dx*4))
		r.Close()
		r.Fill()
	}
}
