// Package dataset parses the weather CSV and computes the derived views
// (daily sums, weekly statistics, previews) used by the charts.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"weatherdash/internal/modules/weather/types"
)

// TimeHeader is the header of the index column.
const TimeHeader = "time"

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyDataset  = errors.New("dataset has no rows")
)

var timeLayouts = []string{
	"2006-01-02T15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoadFile reads the CSV at path.
func LoadFile(path string) (types.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Load parses a CSV with a "time" index column and the five weather columns,
// located by header. Extra columns are ignored. Rows are returned sorted by time.
func Load(r io.Reader) (types.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	timeIdx, colIdx, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	var out types.Table
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		obs, err := parseRecord(rec, timeIdx, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, obs)
	}

	if len(out) == 0 {
		return nil, ErrEmptyDataset
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func indexHeader(header []string) (int, map[types.Column]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\uFEFF")
		pos[strings.TrimSpace(h)] = i
	}

	timeIdx, ok := pos[TimeHeader]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %q", ErrMissingColumn, TimeHeader)
	}

	colIdx := make(map[types.Column]int, len(types.Columns))
	var missing []string
	for _, c := range types.Columns {
		i, ok := pos[c.Header()]
		if !ok {
			missing = append(missing, strconv.Quote(c.Header()))
			continue
		}
		colIdx[c] = i
	}
	if len(missing) > 0 {
		return 0, nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return timeIdx, colIdx, nil
}

func parseRecord(rec []string, timeIdx int, colIdx map[types.Column]int) (types.Observation, error) {
	var obs types.Observation
	if timeIdx >= len(rec) {
		return obs, errors.New("missing time value")
	}
	ts, err := parseTime(rec[timeIdx])
	if err != nil {
		return obs, err
	}
	obs.Time = ts

	for _, c := range types.Columns {
		i := colIdx[c]
		v := math.NaN()
		if i < len(rec) {
			if s := strings.TrimSpace(rec[i]); s != "" {
				v, err = strconv.ParseFloat(s, 64)
				if err != nil {
					return obs, fmt.Errorf("column %q: invalid number %q", c.Header(), s)
				}
			}
		}
		obs.Set(c, v)
	}
	return obs, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
