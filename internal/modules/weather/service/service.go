package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"weatherdash/internal/cache"
	"weatherdash/internal/modules/weather/charts"
	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/repository"
	"weatherdash/internal/modules/weather/types"
	"weatherdash/internal/observability"
)

// Options tunes chart rendering. A zero CacheTTL disables the render cache.
type Options struct {
	Chart    charts.Options
	CacheTTL time.Duration
	Clock    clockwork.Clock
}

// chartKey identifies a rendered PNG. Previews use the column key as name.
type chartKey struct {
	name string
	rng  types.MonthRange
}

type Service struct {
	repository repository.WeatherRepository
	metrics    *observability.Metrics
	renders    *cache.Cache[chartKey, []byte]
	chartOpts  charts.Options
	clock      clockwork.Clock
}

func NewService(repository repository.WeatherRepository, metrics *observability.Metrics, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	s := &Service{
		repository: repository,
		metrics:    metrics,
		chartOpts:  opts.Chart,
		clock:      opts.Clock,
	}
	if opts.CacheTTL > 0 {
		s.renders = cache.New[chartKey, []byte](opts.CacheTTL, opts.Clock)
	}
	return s
}

// Import loads the CSV at path and replaces the stored dataset with it.
func (s *Service) Import(path string) (types.DatasetInfo, error) {
	info, err := s.importFile(path)
	if err != nil {
		s.metrics.Imports.WithLabelValues("error").Inc()
		return types.DatasetInfo{}, err
	}
	s.metrics.Imports.WithLabelValues("success").Inc()
	s.metrics.DatasetRows.Set(float64(info.Rows))
	slog.Info("dataset imported",
		"source", info.Source,
		"rows", info.Rows,
		"first", info.First,
		"last", info.Last,
	)
	return info, nil
}

func (s *Service) importFile(path string) (types.DatasetInfo, error) {
	t, err := dataset.LoadFile(path)
	if err != nil {
		return types.DatasetInfo{}, fmt.Errorf("import %s: %w", path, err)
	}
	if err := s.repository.ReplaceObservations(filepath.Base(path), t); err != nil {
		return types.DatasetInfo{}, fmt.Errorf("import %s: %w", path, err)
	}
	if s.renders != nil {
		s.renders.Purge()
	}
	return s.repository.GetInfo()
}

func (s *Service) Observations(rng types.MonthRange, limit, offset int) (types.Table, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return s.repository.GetObservations(rng, limit, offset)
}

func (s *Service) Count(rng types.MonthRange) (int, error) {
	if err := rng.Validate(); err != nil {
		return 0, err
	}
	return s.repository.CountObservations(rng)
}

func (s *Service) Info() (types.DatasetInfo, error) {
	return s.repository.GetInfo()
}

// Summary returns per-column statistics over the months in rng.
func (s *Service) Summary(rng types.MonthRange) ([]dataset.ColumnSummary, error) {
	t, err := s.Observations(rng, 0, 0)
	if err != nil {
		return nil, err
	}
	return dataset.Summarize(t), nil
}

// Preview returns the first month of the dataset, one row per column.
func (s *Service) Preview() ([]dataset.PreviewRow, error) {
	t, err := s.repository.GetFirstMonth()
	if err != nil {
		return nil, err
	}
	return dataset.Preview(t), nil
}

// RenderChart returns the PNG chart of v over the months in rng.
func (s *Service) RenderChart(v types.Variable, rng types.MonthRange) ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %q", charts.ErrUnknownVariable, v)
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return s.cached(chartKey{name: string(v), rng: rng}, string(v), func() ([]byte, error) {
		t, err := s.repository.GetObservations(rng, 0, 0)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := charts.Render(&buf, v, t, s.chartOpts); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// RenderPreview returns a sparkline PNG of col over the first month.
func (s *Service) RenderPreview(col types.Column) ([]byte, error) {
	return s.cached(chartKey{name: "preview:" + col.Key()}, "preview", func() ([]byte, error) {
		t, err := s.repository.GetFirstMonth()
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(t))
		for i, o := range t {
			values[i] = o.Value(col)
		}
		var buf bytes.Buffer
		if err := charts.Sparkline(&buf, col, values); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// cached serves key from the render cache or calls render and records the
// outcome under label.
func (s *Service) cached(key chartKey, label string, render func() ([]byte, error)) ([]byte, error) {
	if s.renders != nil {
		if png, ok := s.renders.Get(key); ok {
			s.metrics.ChartCache.WithLabelValues("hit").Inc()
			return png, nil
		}
		s.metrics.ChartCache.WithLabelValues("miss").Inc()
	}

	start := s.clock.Now()
	png, err := render()
	s.metrics.ChartRenderDuration.WithLabelValues(label).Observe(s.clock.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, charts.ErrNoData) {
			outcome = "empty"
		}
		s.metrics.ChartRenders.WithLabelValues(label, outcome).Inc()
		return nil, err
	}
	s.metrics.ChartRenders.WithLabelValues(label, "success").Inc()

	if s.renders != nil {
		s.renders.Set(key, png)
	}
	return png, nil
}

// CheckReadiness reports whether a dataset has been loaded.
func (s *Service) CheckReadiness(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.repository.GetInfo()
	return err
}
