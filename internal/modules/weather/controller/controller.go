package controller

import (
	"net/http"

	"weatherdash/internal/modules/weather/dataset"
	"weatherdash/internal/modules/weather/types"
)

// WeatherService is what the controller needs from the service layer.
type WeatherService interface {
	Info() (types.DatasetInfo, error)
	Observations(rng types.MonthRange, limit, offset int) (types.Table, error)
	Count(rng types.MonthRange) (int, error)
	Summary(rng types.MonthRange) ([]dataset.ColumnSummary, error)
	Preview() ([]dataset.PreviewRow, error)
	RenderChart(v types.Variable, rng types.MonthRange) ([]byte, error)
	RenderPreview(col types.Column) ([]byte, error)
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service WeatherService
}

func NewWeatherController(service WeatherService) WeatherController {
	return &weatherControllerImpl{service: service}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleHome)
	mux.HandleFunc("GET /data", c.handleData)
	mux.HandleFunc("GET /visualization", c.handleVisualization)
	mux.HandleFunc("GET /fun", c.handleFun)
	mux.HandleFunc("GET /partials/chart", c.handleChartPartial)

	mux.HandleFunc("GET /charts/{variable}", c.handleChart)
	mux.HandleFunc("GET /charts/preview/{column}", c.handlePreviewChart)

	mux.HandleFunc("GET /api/v1/variables", c.handleVariables)
	mux.HandleFunc("GET /api/v1/dataset", c.handleDataset)
	mux.HandleFunc("GET /api/v1/observations", c.handleObservations)
	mux.HandleFunc("GET /api/v1/summary", c.handleSummary)
}
