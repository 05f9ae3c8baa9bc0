package charts

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"weatherdash/internal/modules/weather/types"
)

const (
	roseSectors = 16
	roseBins    = 6
	roseOpening = 0.8
	roseLegendW = 190

	roseTitle       = "Windrose - Wind Speed and Wind Direction"
	roseLegendTitle = "Wind speed (m/s)"
)

var compassLabels = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// rose is a wind speed by direction histogram. Bins holds the lower edge of
// each speed bin; the last bin is open ended. Table[bin][sector] is the share
// of observations in percent.
type rose struct {
	Sectors int
	Bins    []float64
	Table   [][]float64
}

// sectorTotal is the stacked height of sector s.
func (r rose) sectorTotal(s int) float64 {
	var total float64
	for _, row := range r.Table {
		total += row[s]
	}
	return total
}

func (r rose) binLabel(i int) string {
	if i == len(r.Bins)-1 {
		return fmt.Sprintf("[%.1f : inf)", r.Bins[i])
	}
	return fmt.Sprintf("[%.1f : %.1f)", r.Bins[i], r.Bins[i+1])
}

// windRose bins rows that have both a speed and a direction. Sector 0 is
// centred on north; speed bins are spread linearly between the minimum and
// maximum speed.
func windRose(t types.Table, sectors, bins int) (rose, error) {
	type pair struct{ speed, dir float64 }
	pairs := make([]pair, 0, len(t))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, o := range t {
		if math.IsNaN(o.WindSpeed) || math.IsNaN(o.WindDirection) {
			continue
		}
		pairs = append(pairs, pair{speed: o.WindSpeed, dir: o.WindDirection})
		lo = math.Min(lo, o.WindSpeed)
		hi = math.Max(hi, o.WindSpeed)
	}
	if len(pairs) == 0 {
		return rose{}, ErrNoData
	}
	if bins < 1 {
		bins = 1
	}

	r := rose{Sectors: sectors, Bins: make([]float64, bins), Table: make([][]float64, bins)}
	for i := range r.Bins {
		r.Bins[i] = lo
		if bins > 1 {
			r.Bins[i] += (hi - lo) * float64(i) / float64(bins-1)
		}
		r.Table[i] = make([]float64, sectors)
	}
	// The open bin starts exactly at the maximum speed.
	r.Bins[bins-1] = hi

	width := 360 / float64(sectors)
	share := 100 / float64(len(pairs))
	for _, p := range pairs {
		dir := math.Mod(p.dir, 360)
		if dir < 0 {
			dir += 360
		}
		sector := int(math.Floor((dir+width/2)/width)) % sectors
		r.Table[speedBin(r.Bins, p.speed)][sector] += share
	}
	return r, nil
}

// speedBin returns the last bin whose lower edge is <= v.
func speedBin(edges []float64, v float64) int {
	bin := 0
	for i, e := range edges {
		if v >= e {
			bin = i
		}
	}
	return bin
}

func fontFace(size float64) font.Face {
	f, err := chart.GetDefaultFont()
	if err != nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// compassAngle converts a compass bearing in degrees to a screen angle in
// radians, with north up and bearings running clockwise.
func compassAngle(deg float64) float64 {
	return gg.Radians(deg - 90)
}

// drawRose paints r onto a w by h image.
func drawRose(r rose, w, h int) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetFontFace(fontFace(14))
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(roseTitle, float64(w)/2, 22, 0.5, 0.5)

	plotW := float64(w - roseLegendW)
	cx, cy := plotW/2, 40+float64(h-50)/2
	radius := math.Max(10, math.Min(plotW/2, float64(h-50)/2)-24)

	var peak float64
	for s := 0; s < r.Sectors; s++ {
		peak = math.Max(peak, r.sectorTotal(s))
	}
	step := niceStep(peak / 4)
	scale := math.Ceil(peak/step) * step

	dc.SetFontFace(fontFace(10))
	dc.SetHexColor("#CCCCCC")
	dc.SetLineWidth(1)
	for v := step; v <= scale+1e-9; v += step {
		rr := v / scale * radius
		dc.DrawCircle(cx, cy, rr)
		dc.Stroke()
	}
	for i, label := range compassLabels {
		a := compassAngle(float64(i) * 45)
		dc.SetHexColor("#CCCCCC")
		dc.DrawLine(cx, cy, cx+radius*math.Cos(a), cy+radius*math.Sin(a))
		dc.Stroke()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(label, cx+(radius+12)*math.Cos(a), cy+(radius+12)*math.Sin(a), 0.5, 0.5)
	}

	width := 360 / float64(r.Sectors)
	half := width * roseOpening / 2
	for s := 0; s < r.Sectors; s++ {
		centre := float64(s) * width
		a1, a2 := compassAngle(centre-half), compassAngle(centre+half)
		var offset float64
		for b, row := range r.Table {
			if row[s] <= 0 {
				continue
			}
			r0 := offset / scale * radius
			r1 := (offset + row[s]) / scale * radius
			offset += row[s]

			dc.NewSubPath()
			dc.DrawArc(cx, cy, r1, a1, a2)
			if r0 > 0 {
				dc.DrawArc(cx, cy, r0, a2, a1)
			} else {
				dc.LineTo(cx, cy)
			}
			dc.ClosePath()
			dc.SetColor(binColor(b, len(r.Bins)))
			dc.FillPreserve()
			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(0.8)
			dc.Stroke()
		}
	}

	dc.SetRGB(0.3, 0.3, 0.3)
	for v := step; v <= scale+1e-9; v += step {
		rr := v / scale * radius
		a := compassAngle(22.5)
		dc.DrawStringAnchored(fmt.Sprintf("%g%%", v), cx+rr*math.Cos(a), cy+rr*math.Sin(a), 0, 1)
	}

	drawRoseLegend(dc, r, plotW+10, cy-float64(len(r.Bins)*20+24)/2)
	return dc.Image()
}

func drawRoseLegend(dc *gg.Context, r rose, x, y float64) {
	dc.SetFontFace(fontFace(12))
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(roseLegendTitle, x, y, 0, 0.5)
	dc.SetFontFace(fontFace(11))
	for i := range r.Bins {
		row := y + 24 + float64(i)*20
		dc.DrawRectangle(x, row-7, 14, 14)
		dc.SetColor(binColor(i, len(r.Bins)))
		dc.Fill()
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(r.binLabel(i), x+22, row, 0, 0.5)
	}
}

func binColor(i, n int) drawing.Color {
	if n < 2 {
		return chart.Viridis(0, 0, 1)
	}
	return chart.Viridis(float64(i), 0, float64(n-1))
}

// niceStep rounds x up to 1, 2 or 5 times a power of ten.
func niceStep(x float64) float64 {
	if x <= 0 || math.IsNaN(x) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(x)))
	switch f := x / exp; {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 5:
		return 5 * exp
	}
	return 10 * exp
}
