package dataset

import (
	"weatherdash/internal/modules/weather/types"
)

// PreviewRow is one column of the dataset laid out as a row.
type PreviewRow struct {
	Column types.Column
	Values []float64
	Stats  Stats
}

// ColumnSummary describes one column over a table.
type ColumnSummary struct {
	Column types.Column
	Stats
}

// Preview transposes the table so that each column becomes a row holding its
// values in time order (NaN preserved).
func Preview(t types.Table) []PreviewRow {
	rows := make([]PreviewRow, 0, len(types.Columns))
	for _, c := range types.Columns {
		values := make([]float64, len(t))
		for i, o := range t {
			values[i] = o.Value(c)
		}
		rows = append(rows, PreviewRow{Column: c, Values: values, Stats: columnStats(t, c)})
	}
	return rows
}

// Summarize returns count, min, max and mean for every column.
func Summarize(t types.Table) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(types.Columns))
	for _, c := range types.Columns {
		out = append(out, ColumnSummary{Column: c, Stats: columnStats(t, c)})
	}
	return out
}
