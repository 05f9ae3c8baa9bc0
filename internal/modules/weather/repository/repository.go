package repository

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"weatherdash/internal/modules/weather/types"
)

//go:embed sql/delete-observations.sql
var deleteObservationsSQL string

//go:embed sql/insert-observation.sql
var insertObservationSQL string

//go:embed sql/get-observations.sql
var getObservationsSQL string

//go:embed sql/count-observations.sql
var countObservationsSQL string

//go:embed sql/get-first-month.sql
var getFirstMonthSQL string

//go:embed sql/upsert-meta.sql
var upsertMetaSQL string

//go:embed sql/get-dataset-info.sql
var getDatasetInfoSQL string

// ErrNotLoaded is returned when no dataset has been imported yet.
var ErrNotLoaded = errors.New("dataset not loaded")

const tsLayout = time.RFC3339

type WeatherRepository interface {
	ReplaceObservations(source string, t types.Table) error
	GetObservations(rng types.MonthRange, limit int, offset int) (types.Table, error)
	CountObservations(rng types.MonthRange) (int, error)
	GetFirstMonth() (types.Table, error)
	GetInfo() (types.DatasetInfo, error)
}

type repositoryImpl struct {
	db    *sql.DB
	clock clockwork.Clock
}

func NewRepository(db *sql.DB) WeatherRepository {
	return newRepositoryWithClock(db, clockwork.NewRealClock())
}

func newRepositoryWithClock(db *sql.DB, clock clockwork.Clock) *repositoryImpl {
	return &repositoryImpl{db: db, clock: clock}
}

// ReplaceObservations swaps the stored dataset for t in one transaction.
func (r *repositoryImpl) ReplaceObservations(source string, t types.Table) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback replace observations", "error", err)
		}
	}()

	if _, err := tx.Exec(deleteObservationsSQL); err != nil {
		return fmt.Errorf("delete observations: %w", err)
	}

	stmt, err := tx.Prepare(insertObservationSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("close insert statement", "error", err)
		}
	}()

	for _, o := range t {
		ts := o.Time.UTC()
		_, err := stmt.Exec(
			ts.Format(tsLayout),
			int(ts.Month()),
			nullable(o.Temperature),
			nullable(o.Precipitation),
			nullable(o.WindSpeed),
			nullable(o.WindGusts),
			nullable(o.WindDirection),
		)
		if err != nil {
			return fmt.Errorf("insert observation %s: %w", ts.Format(tsLayout), err)
		}
	}

	meta := map[string]string{
		"source":      source,
		"imported_at": r.clock.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.Exec(upsertMetaSQL, k, v); err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetObservations returns rows whose month lies within rng, ordered by time.
// A limit <= 0 returns every matching row.
func (r *repositoryImpl) GetObservations(rng types.MonthRange, limit int, offset int) (types.Table, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(getObservationsSQL, rng.From, rng.To, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close observations rows", "error", err)
		}
	}()
	return scanObservations(rows)
}

func (r *repositoryImpl) CountObservations(rng types.MonthRange) (int, error) {
	var n int
	err := r.db.QueryRow(countObservationsSQL, rng.From, rng.To).Scan(&n)
	return n, err
}

// GetFirstMonth returns the rows sharing the calendar month of the earliest row.
func (r *repositoryImpl) GetFirstMonth() (types.Table, error) {
	rows, err := r.db.Query(getFirstMonthSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close first month rows", "error", err)
		}
	}()
	return scanObservations(rows)
}

func (r *repositoryImpl) GetInfo() (types.DatasetInfo, error) {
	var (
		info                         types.DatasetInfo
		first, last, importedAt, src string
	)
	err := r.db.QueryRow(getDatasetInfoSQL).Scan(&info.Rows, &first, &last, &src, &importedAt)
	if err != nil {
		return info, err
	}
	if info.Rows == 0 {
		return info, ErrNotLoaded
	}
	info.Source = src
	if info.First, err = time.Parse(tsLayout, first); err != nil {
		return info, fmt.Errorf("parse first timestamp %q: %w", first, err)
	}
	if info.Last, err = time.Parse(tsLayout, last); err != nil {
		return info, fmt.Errorf("parse last timestamp %q: %w", last, err)
	}
	if importedAt != "" {
		if info.ImportedAt, err = time.Parse(time.RFC3339Nano, importedAt); err != nil {
			return info, fmt.Errorf("parse import time %q: %w", importedAt, err)
		}
	}
	return info, nil
}

func scanObservations(rows *sql.Rows) (types.Table, error) {
	var out types.Table
	for rows.Next() {
		var (
			ts                  string
			temp, precip, speed sql.NullFloat64
			gusts, direction    sql.NullFloat64
		)
		if err := rows.Scan(&ts, &temp, &precip, &speed, &gusts, &direction); err != nil {
			return nil, err
		}
		t, err := time.Parse(tsLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		out = append(out, types.Observation{
			Time:          t,
			Temperature:   orNaN(temp),
			Precipitation: orNaN(precip),
			WindSpeed:     orNaN(speed),
			WindGusts:     orNaN(gusts),
			WindDirection: orNaN(direction),
		})
	}
	return out, rows.Err()
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
