package charts

import (
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/types"
)

// Temperature plots temperature over time with a dashed freezing line.
func Temperature(w io.Writer, t types.Table, opts Options) error {
	opts = opts.withDefaults()
	pts := dataset.Series(t, types.ColumnTemperature)
	if len(pts) == 0 {
		return ErrNoData
	}
	from, to := pts[0].Time, pts[len(pts)-1].Time.Add(week)
	lo, hi := pointsRange(pts)

	ch := baseChart("Temperature over time with freezing point", opts)
	ch.XAxis = timeAxis("Time", from, to, true)
	ch.YAxis = valueAxis("Temperature (°C)", min(lo, 0), max(hi, 0), false)
	ch.Series = []chart.Series{
		timeSeries("Temperature (°C)", lineStyle(colorTemperature), pts),
		chart.TimeSeries{
			Name:    "Freezing Point (0°C)",
			Style:   dashedStyle(colorReference),
			XValues: []time.Time{from, to},
			YValues: []float64{0, 0},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return render(w, ch)
}

// WindSpeed plots wind speed over time on a y axis starting at zero.
func WindSpeed(w io.Writer, t types.Table, opts Options) error {
	return windLine(w, t, opts, windLineSpec{
		column: types.ColumnWindSpeed,
		title:  "Wind speed in m/s over time",
		yName:  "Wind Speed (m/s)",
		color:  colorWindSpeed,
		extend: week,
	})
}

// WindGusts plots wind gusts over time on a y axis starting at zero.
func WindGusts(w io.Writer, t types.Table, opts Options) error {
	return windLine(w, t, opts, windLineSpec{
		column: types.ColumnWindGusts,
		title:  "Wind gusts in m/s over time",
		yName:  "Wind gusts (m/s)",
		color:  colorWindGusts,
	})
}

type windLineSpec struct {
	column types.Column
	title  string
	yName  string
	color  drawing.Color
	extend time.Duration
}

func windLine(w io.Writer, t types.Table, opts Options, spec windLineSpec) error {
	opts = opts.withDefaults()
	pts := dataset.Series(t, spec.column)
	if len(pts) == 0 {
		return ErrNoData
	}
	_, hi := pointsRange(pts)

	ch := baseChart(spec.title, opts)
	ch.XAxis = timeAxis("Time", pts[0].Time, pts[len(pts)-1].Time.Add(spec.extend), true)
	ch.YAxis = valueAxis(spec.yName, 0, hi, true)
	ch.Series = []chart.Series{timeSeries(spec.column.Header(), lineStyle(spec.color), pts)}
	return render(w, ch)
}
