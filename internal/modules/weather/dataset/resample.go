package dataset

import (
	"math"
	"time"

	"weatherdash/internal/modules/weather/types"
)

// Point is a single timestamped value.
type Point struct {
	Time  time.Time
	Value float64
}

// Stats aggregates one column over a bucket. Count is the number of
// non-NaN values; the other fields are NaN when Count is zero.
type Stats struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// WeeklyStats holds one weekly bucket, labelled by its last day.
type WeeklyStats struct {
	Week    time.Time
	Columns map[types.Column]Stats
}

// Series returns the non-NaN values of col with their timestamps.
func Series(t types.Table, col types.Column) []Point {
	out := make([]Point, 0, len(t))
	for _, o := range t {
		v := o.Value(col)
		if math.IsNaN(v) {
			continue
		}
		out = append(out, Point{Time: o.Time, Value: v})
	}
	return out
}

// DailySums sums col per calendar day. Days whose values are all NaN sum to 0.
func DailySums(t types.Table, col types.Column) []Point {
	var out []Point
	for _, o := range t {
		day := truncateDay(o.Time)
		if len(out) == 0 || !out[len(out)-1].Time.Equal(day) {
			out = append(out, Point{Time: day})
		}
		if v := o.Value(col); !math.IsNaN(v) {
			out[len(out)-1].Value += v
		}
	}
	return out
}

// Weekly buckets the table into weeks ending on the weekday of the first row.
// Each bucket spans whole days and is labelled by its final day. Buckets with
// no rows are omitted. Every column, wind direction included, uses the
// arithmetic mean.
func Weekly(t types.Table) []WeeklyStats {
	if len(t) == 0 {
		return nil
	}
	anchor := t[0].Time.Weekday()

	var out []WeeklyStats
	var bucket types.Table
	var label time.Time
	flush := func() {
		if len(bucket) == 0 {
			return
		}
		ws := WeeklyStats{Week: label, Columns: make(map[types.Column]Stats, len(types.Columns))}
		for _, c := range types.Columns {
			ws.Columns[c] = columnStats(bucket, c)
		}
		out = append(out, ws)
		bucket = nil
	}

	for _, o := range t {
		l := weekLabel(o.Time, anchor)
		if !l.Equal(label) {
			flush()
			label = l
		}
		bucket = append(bucket, o)
	}
	flush()
	return out
}

// weekLabel returns the day, on or after ts, that falls on anchor.
func weekLabel(ts time.Time, anchor time.Weekday) time.Time {
	offset := (int(anchor) - int(ts.Weekday()) + 7) % 7
	return truncateDay(ts).AddDate(0, 0, offset)
}

func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

func columnStats(t types.Table, col types.Column) Stats {
	s := Stats{Mean: math.NaN(), Min: math.NaN(), Max: math.NaN()}
	var sum float64
	for _, o := range t {
		v := o.Value(col)
		if math.IsNaN(v) {
			continue
		}
		if s.Count == 0 {
			s.Min, s.Max = v, v
		}
		s.Count++
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	if s.Count > 0 {
		s.Mean = sum / float64(s.Count)
	}
	return s
}
