package charts

import (
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/types"
)

// Precipitation plots daily precipitation totals as bars.
func Precipitation(w io.Writer, t types.Table, opts Options) error {
	opts = opts.withDefaults()
	sums := dataset.DailySums(t, types.ColumnPrecipitation)
	if len(sums) == 0 {
		return ErrNoData
	}
	_, hi := pointsRange(sums)

	ch := baseChart("Daily Total Precipitation (mm)", opts)
	ch.XAxis = timeAxis("Date", sums[0].Time.Add(-day), sums[len(sums)-1].Time.Add(day), false)
	ch.YAxis = valueAxis("Total Precipitation (mm)", 0, hi, true)
	ch.Series = []chart.Series{precipitationBars("Total Precipitation (mm)", sums)}
	return render(w, ch)
}

func precipitationBars(name string, sums []dataset.Point) chart.HistogramSeries {
	style := chart.Style{
		StrokeColor: colorPrecipitation,
		StrokeWidth: 1,
		FillColor:   colorPrecipitation,
	}
	return chart.HistogramSeries{
		Name:        name,
		Style:       style,
		InnerSeries: timeSeries(name, style, sums),
	}
}
