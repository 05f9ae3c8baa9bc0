// Package charts renders the dashboard charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/types"
)

var (
	// ErrNoData is returned when a table has nothing plottable for a chart.
	ErrNoData = errors.New("no data to plot")
	// ErrUnknownVariable is returned by Render for an unsupported variable.
	ErrUnknownVariable = errors.New("unknown variable")
)

const (
	DefaultWidth  = 1200
	DefaultHeight = 700

	week = 7 * 24 * time.Hour
	day  = 24 * time.Hour
)

var (
	colorTemperature   = drawing.ColorFromHex("C4611A")
	colorPrecipitation = drawing.ColorFromHex("3173EE")
	colorWindSpeed     = drawing.ColorFromHex("AD4DE0")
	colorWindGusts     = drawing.ColorFromHex("3C1053")
	colorWindDirection = drawing.ColorFromHex("477B65")
	colorReference     = drawing.ColorFromHex("542F2F")
	colorGrid          = drawing.ColorFromHex("DDDDDD")
	colorArrow         = drawing.ColorFromHex("000000")
)

// ColumnColor is the series colour used for col.
func ColumnColor(col types.Column) drawing.Color {
	switch col {
	case types.ColumnTemperature:
		return colorTemperature
	case types.ColumnPrecipitation:
		return colorPrecipitation
	case types.ColumnWindSpeed:
		return colorWindSpeed
	case types.ColumnWindGusts:
		return colorWindGusts
	case types.ColumnWindDirection:
		return colorWindDirection
	}
	return chart.ColorBlack
}

// Options sizes a chart in pixels. Zero fields fall back to 1200x700.
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Render writes the PNG chart for v built from t.
func Render(w io.Writer, v types.Variable, t types.Table, opts Options) error {
	switch v {
	case types.VariableTemperature:
		return Temperature(w, t, opts)
	case types.VariablePrecipitation:
		return Precipitation(w, t, opts)
	case types.VariableWindSpeed:
		return WindSpeed(w, t, opts)
	case types.VariableWindGusts:
		return WindGusts(w, t, opts)
	case types.VariableWindDirection:
		return WindDirection(w, t, opts)
	case types.VariableAll:
		return All(w, t, opts)
	}
	return fmt.Errorf("%w: %q", ErrUnknownVariable, v)
}

var gridStyle = chart.Style{StrokeColor: colorGrid, StrokeWidth: 1}

func baseChart(title string, opts Options) chart.Chart {
	return chart.Chart{
		Title:      title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
	}
}

// timeAxis spans [from, to]; an empty span is widened to one day so the
// chart still has a usable x range.
func timeAxis(name string, from, to time.Time, grid bool) chart.XAxis {
	if !to.After(from) {
		to = from.Add(day)
	}
	xa := chart.XAxis{
		Name:           name,
		ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(from), Max: chart.TimeToFloat64(to)},
		GridMajorStyle: chart.Hidden(),
		GridMinorStyle: chart.Hidden(),
	}
	if grid {
		xa.GridMajorStyle, xa.GridMinorStyle = gridStyle, gridStyle
	}
	return xa
}

func valueAxis(name string, lo, hi float64, floorZero bool) chart.YAxis {
	lo, hi = paddedBounds(lo, hi, floorZero)
	return chart.YAxis{
		Name:           name,
		ValueFormatter: oneDecimal,
		Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		GridMajorStyle: gridStyle,
		GridMinorStyle: gridStyle,
	}
}

func oneDecimal(v interface{}) string {
	return chart.FloatValueFormatterWithFormat(v, "%.1f")
}

// paddedBounds widens [lo, hi] by 5% on each side, keeping lo at 0 when
// floorZero is set. A flat range is opened up by one unit.
func paddedBounds(lo, hi float64, floorZero bool) (float64, float64) {
	if floorZero {
		lo = 0
	}
	if hi <= lo {
		hi = lo + 1
		if !floorZero {
			lo--
		}
	}
	pad := (hi - lo) * 0.05
	if !floorZero {
		lo -= pad
	}
	return lo, hi + pad
}

func pointsRange(pts []dataset.Point) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	return lo, hi
}

func timeSeries(name string, style chart.Style, pts []dataset.Point) chart.TimeSeries {
	ts := chart.TimeSeries{
		Name:    name,
		Style:   style,
		XValues: make([]time.Time, len(pts)),
		YValues: make([]float64, len(pts)),
	}
	for i, p := range pts {
		ts.XValues[i] = p.Time
		ts.YValues[i] = p.Value
	}
	return ts
}

func lineStyle(c drawing.Color) chart.Style {
	return chart.Style{StrokeColor: c, StrokeWidth: 1.5}
}

func dashedStyle(c drawing.Color) chart.Style {
	return chart.Style{StrokeColor: c, StrokeWidth: 1.5, StrokeDashArray: []float64{6, 4}}
}

func render(w io.Writer, ch chart.Chart) error {
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %q: %w", ch.Title, err)
	}
	return nil
}

func renderImage(ch chart.Chart) (image.Image, error) {
	var buf bytes.Buffer
	if err := render(&buf, ch); err != nil {
		return nil, err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", ch.Title, err)
	}
	return img, nil
}
