package types

import (
	"fmt"
	"math"
	"time"
)

// Observation is one row of the dataset. Missing cells are NaN.
type Observation struct {
	Time          time.Time
	Temperature   float64
	Precipitation float64
	WindSpeed     float64
	WindGusts     float64
	WindDirection float64
}

// Value returns the observation's value for col.
func (o Observation) Value(col Column) float64 {
	switch col {
	case ColumnTemperature:
		return o.Temperature
	case ColumnPrecipitation:
		return o.Precipitation
	case ColumnWindSpeed:
		return o.WindSpeed
	case ColumnWindGusts:
		return o.WindGusts
	case ColumnWindDirection:
		return o.WindDirection
	}
	return math.NaN()
}

// Set stores v in the field backing col.
func (o *Observation) Set(col Column, v float64) {
	switch col {
	case ColumnTemperature:
		o.Temperature = v
	case ColumnPrecipitation:
		o.Precipitation = v
	case ColumnWindSpeed:
		o.WindSpeed = v
	case ColumnWindGusts:
		o.WindGusts = v
	case ColumnWindDirection:
		o.WindDirection = v
	}
}

// Table is the dataset: observations ordered by time.
type Table []Observation

// Column identifies one measured variable of the dataset.
type Column int

const (
	ColumnTemperature Column = iota
	ColumnPrecipitation
	ColumnWindSpeed
	ColumnWindGusts
	ColumnWindDirection
)

// Columns lists every column in CSV order.
var Columns = []Column{
	ColumnTemperature,
	ColumnPrecipitation,
	ColumnWindSpeed,
	ColumnWindGusts,
	ColumnWindDirection,
}

type columnInfo struct {
	key    string
	header string
	label  string
	unit   string
}

var columnInfos = map[Column]columnInfo{
	ColumnTemperature:   {key: "temperature", header: "temperature_2m (°C)", label: "Temperature", unit: "°C"},
	ColumnPrecipitation: {key: "precipitation", header: "precipitation (mm)", label: "Precipitation", unit: "mm"},
	ColumnWindSpeed:     {key: "wind-speed", header: "wind_speed_10m (m/s)", label: "Wind speed", unit: "m/s"},
	ColumnWindGusts:     {key: "wind-gusts", header: "wind_gusts_10m (m/s)", label: "Wind gusts", unit: "m/s"},
	ColumnWindDirection: {key: "wind-direction", header: "wind_direction_10m (°)", label: "Wind direction", unit: "°"},
}

// Key is the URL-safe identifier of the column.
func (c Column) Key() string { return columnInfos[c].key }

// Header is the CSV header of the column.
func (c Column) Header() string { return columnInfos[c].header }

func (c Column) Label() string { return columnInfos[c].label }

func (c Column) Unit() string { return columnInfos[c].unit }

func (c Column) String() string { return c.Header() }

// ParseColumn resolves a column from its key.
func ParseColumn(key string) (Column, bool) {
	for _, c := range Columns {
		if c.Key() == key {
			return c, true
		}
	}
	return 0, false
}

// Variable is a chart selection on the Visualization page.
type Variable string

const (
	VariableTemperature   Variable = "temperature"
	VariablePrecipitation Variable = "precipitation"
	VariableWindSpeed     Variable = "wind-speed"
	VariableWindGusts     Variable = "wind-gusts"
	VariableWindDirection Variable = "wind-direction"
	VariableAll           Variable = "all"
)

// Variables lists the selectable variables in menu order.
var Variables = []Variable{
	VariableTemperature,
	VariablePrecipitation,
	VariableWindSpeed,
	VariableWindGusts,
	VariableWindDirection,
	VariableAll,
}

var variableLabels = map[Variable]string{
	VariableTemperature:   "temperature",
	VariablePrecipitation: "precipitation",
	VariableWindSpeed:     "wind speed",
	VariableWindGusts:     "wind gusts",
	VariableWindDirection: "wind direction",
	VariableAll:           "All variables",
}

func (v Variable) Label() string { return variableLabels[v] }

func (v Variable) Valid() bool {
	_, ok := variableLabels[v]
	return ok
}

// ParseVariable resolves a variable from its key.
func ParseVariable(s string) (Variable, bool) {
	v := Variable(s)
	return v, v.Valid()
}

// MonthRange is an inclusive range of calendar months. Years are ignored.
type MonthRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// FullYear selects every month.
var FullYear = MonthRange{From: 1, To: 12}

func (r MonthRange) Validate() error {
	if r.From < 1 || r.From > 12 {
		return fmt.Errorf("'from' must be between 1 and 12, got %d", r.From)
	}
	if r.To < 1 || r.To > 12 {
		return fmt.Errorf("'to' must be between 1 and 12, got %d", r.To)
	}
	if r.From > r.To {
		return fmt.Errorf("'from' must be <= 'to' (%d > %d)", r.From, r.To)
	}
	return nil
}

func (r MonthRange) String() string {
	return fmt.Sprintf("%02d-%02d", r.From, r.To)
}

// DatasetInfo describes the currently loaded dataset.
type DatasetInfo struct {
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	First      time.Time `json:"first"`
	Last       time.Time `json:"last"`
	ImportedAt time.Time `json:"importedAt"`
}
