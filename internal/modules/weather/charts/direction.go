package charts

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	chart "github.com/wcharczuk/go-chart/v2"

	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/types"
)

// WindDirection stacks a scatter of wind direction over time above a wind
// rose of speed by direction.
func WindDirection(w io.Writer, t types.Table, opts Options) error {
	opts = opts.withDefaults()
	pts := dataset.Series(t, types.ColumnWindDirection)
	if len(pts) == 0 {
		return ErrNoData
	}
	r, err := windRose(t, roseSectors, roseBins)
	if err != nil {
		return err
	}

	topH := opts.Height * 45 / 100
	top, err := directionScatter(pts, Options{Width: opts.Width, Height: topH})
	if err != nil {
		return err
	}
	bottom := drawRose(r, opts.Width, opts.Height-topH)

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(top, 0, 0)
	dc.DrawImage(bottom, 0, topH)
	return dc.EncodePNG(w)
}

func directionScatter(pts []dataset.Point, opts Options) (image.Image, error) {
	ch := baseChart("Wind Direction Over Time", opts)
	ch.XAxis = timeAxis("Time", pts[0].Time, pts[len(pts)-1].Time, true)
	ch.YAxis = chart.YAxis{
		Name:           "Wind Direction (°)",
		Range:          &chart.ContinuousRange{Min: 0, Max: 360},
		Ticks:          []chart.Tick{{Value: 0, Label: "0"}, {Value: 90, Label: "90"}, {Value: 180, Label: "180"}, {Value: 270, Label: "270"}, {Value: 360, Label: "360"}},
		GridMajorStyle: gridStyle,
		GridMinorStyle: gridStyle,
	}
	ch.Series = []chart.Series{timeSeries(types.ColumnWindDirection.Header(), chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    2.5,
		DotColor:    colorWindDirection,
	}, pts)}
	return renderImage(ch)
}
