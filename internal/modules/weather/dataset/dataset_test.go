package dataset

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherdash/internal/modules/weather/types"
)

const header = "time,temperature_2m (°C),precipitation (mm),wind_speed_10m (m/s),wind_gusts_10m (m/s),wind_direction_10m (°)\n"

func day(m time.Month, d int) time.Time {
	return time.Date(2020, m, d, 0, 0, 0, 0, time.UTC)
}

func loadSample(t *testing.T) types.Table {
	t.Helper()
	tbl, err := LoadFile("testdata/sample.csv")
	require.NoError(t, err)
	return tbl
}

func TestLoadFile_Sample(t *testing.T) {
	tbl := loadSample(t)

	require.Len(t, tbl, 6)
	assert.Equal(t, day(time.January, 1), tbl[0].Time)
	assert.InDelta(t, -2.2, tbl[0].Temperature, 1e-9)
	assert.InDelta(t, 21.3, tbl[0].WindGusts, 1e-9)
	assert.InDelta(t, 284, tbl[0].WindDirection, 1e-9)
	assert.True(t, math.IsNaN(tbl[2].Precipitation), "empty cell should load as NaN")
}

func TestLoad_ColumnsInAnyOrder(t *testing.T) {
	csv := "wind_direction_10m (°),time,extra,precipitation (mm),temperature_2m (°C),wind_gusts_10m (m/s),wind_speed_10m (m/s)\n" +
		"90,2021-03-04T05:00,x,1.5,7.25,12,6\n"

	tbl, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, tbl, 1)

	o := tbl[0]
	assert.Equal(t, time.Date(2021, 3, 4, 5, 0, 0, 0, time.UTC), o.Time)
	assert.InDelta(t, 7.25, o.Temperature, 1e-9)
	assert.InDelta(t, 1.5, o.Precipitation, 1e-9)
	assert.InDelta(t, 6, o.WindSpeed, 1e-9)
	assert.InDelta(t, 12, o.WindGusts, 1e-9)
	assert.InDelta(t, 90, o.WindDirection, 1e-9)
}

func TestLoad_StripsByteOrderMark(t *testing.T) {
	csv := "\uFEFF" + header + "2020-01-01T00:00,-2.2,0.1,9.6,21.3,284\n"

	tbl, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, tbl, 1)
	assert.Equal(t, day(time.January, 1), tbl[0].Time)
	assert.InDelta(t, -2.2, tbl[0].Temperature, 1e-9)
}

func TestLoad_SortsByTime(t *testing.T) {
	csv := header +
		"2020-01-02T00:00,2,0,1,1,1\n" +
		"2020-01-01T00:00,1,0,1,1,1\n"

	tbl, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, tbl, 2)
	assert.True(t, tbl[0].Time.Before(tbl[1].Time))
	assert.InDelta(t, 1, tbl[0].Temperature, 1e-9)
}

func TestLoad_AcceptsOtherTimeLayouts(t *testing.T) {
	csv := header +
		"2020-01-01 06:30:00,1,0,1,1,1\n" +
		"2020-01-02T00:00:00Z,1,0,1,1,1\n" +
		"2020-01-03,1,0,1,1,1\n"

	tbl, err := Load(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, tbl, 3)
	assert.Equal(t, time.Date(2020, 1, 1, 6, 30, 0, 0, time.UTC), tbl[0].Time)
	assert.Equal(t, day(time.January, 3), tbl[2].Time)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIs  error
		wantMsg string
	}{
		{name: "empty input", input: "", wantIs: ErrEmptyDataset},
		{name: "header only", input: header, wantIs: ErrEmptyDataset},
		{name: "missing time column", input: "temperature_2m (°C)\n1\n", wantIs: ErrMissingColumn, wantMsg: `"time"`},
		{
			name:    "missing data column",
			input:   "time,temperature_2m (°C),precipitation (mm)\n2020-01-01T00:00,1,2\n",
			wantIs:  ErrMissingColumn,
			wantMsg: "wind_speed_10m (m/s)",
		},
		{name: "bad timestamp", input: header + "yesterday,1,0,1,1,1\n", wantMsg: `line 2: invalid timestamp "yesterday"`},
		{name: "bad number", input: header + "2020-01-01T00:00,warm,0,1,1,1\n", wantMsg: `invalid number "warm"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open dataset")
}

func TestSeries_DropsNaN(t *testing.T) {
	tbl := loadSample(t)

	pts := Series(tbl, types.ColumnPrecipitation)
	assert.Len(t, pts, 5)
	for _, p := range pts {
		assert.False(t, math.IsNaN(p.Value))
	}
}

func TestDailySums(t *testing.T) {
	tbl := loadSample(t)

	sums := DailySums(tbl, types.ColumnPrecipitation)
	require.Len(t, sums, 5)

	assert.Equal(t, day(time.January, 1), sums[0].Time)
	assert.InDelta(t, 0.3, sums[0].Value, 1e-9)
	assert.Equal(t, day(time.January, 2), sums[1].Time)
	assert.InDelta(t, 0, sums[1].Value, 1e-9, "all-NaN day sums to zero")
	assert.InDelta(t, 1.0, sums[2].Value, 1e-9)
	assert.Equal(t, day(time.February, 1), sums[4].Time)
}

func TestDailySums_Empty(t *testing.T) {
	assert.Empty(t, DailySums(nil, types.ColumnPrecipitation))
}

func TestWeekly_AnchorsOnFirstWeekday(t *testing.T) {
	tbl := loadSample(t) // 2020-01-01 is a Wednesday

	weeks := Weekly(tbl)
	require.Len(t, weeks, 4)

	wantLabels := []time.Time{
		day(time.January, 1),
		day(time.January, 8),
		day(time.January, 15),
		day(time.February, 5),
	}
	for i, w := range weeks {
		assert.Equal(t, wantLabels[i], w.Week, "week %d", i)
		assert.Equal(t, time.Wednesday, w.Week.Weekday())
	}

	temp := weeks[0].Columns[types.ColumnTemperature]
	assert.Equal(t, 2, temp.Count)
	assert.InDelta(t, -1.6, temp.Mean, 1e-9)
	assert.InDelta(t, -2.2, temp.Min, 1e-9)
	assert.InDelta(t, -1.0, temp.Max, 1e-9)

	precip := weeks[1].Columns[types.ColumnPrecipitation]
	assert.Equal(t, 1, precip.Count, "NaN cells are skipped")
	assert.InDelta(t, 1.0, precip.Mean, 1e-9)

	dir := weeks[1].Columns[types.ColumnWindDirection]
	assert.InDelta(t, 180, dir.Mean, 1e-9)
	assert.InDelta(t, 90, dir.Min, 1e-9)
	assert.InDelta(t, 270, dir.Max, 1e-9)
}

func TestWeekly_Empty(t *testing.T) {
	assert.Nil(t, Weekly(nil))
}

func TestWeekLabel(t *testing.T) {
	tests := []struct {
		name   string
		ts     time.Time
		anchor time.Weekday
		want   time.Time
	}{
		{name: "same weekday", ts: time.Date(2020, 1, 1, 23, 0, 0, 0, time.UTC), anchor: time.Wednesday, want: day(time.January, 1)},
		{name: "next day", ts: day(time.January, 2), anchor: time.Wednesday, want: day(time.January, 8)},
		{name: "sunday anchor", ts: day(time.January, 1), anchor: time.Sunday, want: day(time.January, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekLabel(tt.ts, tt.anchor))
		})
	}
}

func TestWeekly_DirectionMeanIsArithmetic(t *testing.T) {
	tbl := types.Table{
		{Time: day(time.January, 1), WindDirection: 350},
		{Time: time.Date(2020, time.January, 1, 6, 0, 0, 0, time.UTC), WindDirection: 30},
	}

	weeks := Weekly(tbl)
	require.Len(t, weeks, 1)
	assert.InDelta(t, 190, weeks[0].Columns[types.ColumnWindDirection].Mean, 1e-9)
}

func TestPreview(t *testing.T) {
	tbl := loadSample(t)[:3]

	rows := Preview(tbl)
	require.Len(t, rows, len(types.Columns))
	for i, r := range rows {
		assert.Equal(t, types.Columns[i], r.Column)
		assert.Len(t, r.Values, 3)
	}
	assert.InDelta(t, -1.0, rows[0].Values[1], 1e-9)
	assert.True(t, math.IsNaN(rows[1].Values[2]))
	assert.Equal(t, 2, rows[1].Stats.Count)
}

func TestSummarize(t *testing.T) {
	tbl := loadSample(t)

	sum := Summarize(tbl)
	require.Len(t, sum, len(types.Columns))

	temp := sum[0]
	assert.Equal(t, types.ColumnTemperature, temp.Column)
	assert.Equal(t, 6, temp.Count)
	assert.InDelta(t, -2.2, temp.Min, 1e-9)
	assert.InDelta(t, 3.0, temp.Max, 1e-9)
	assert.InDelta(t, 3.8/6, temp.Mean, 1e-9)
}
