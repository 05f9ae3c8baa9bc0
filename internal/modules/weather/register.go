package weather

import (
	"database/sql"
	"net/http"

	"weatherdash/internal/config"
	"weatherdash/internal/modules/weather/charts"
	"weatherdash/internal/modules/weather/controller"
	"weatherdash/internal/modules/weather/repository"
	"weatherdash/internal/modules/weather/service"
	"weatherdash/internal/observability"
)

// NewService builds the dashboard service over db using the chart settings
// from cfg.
func NewService(db *sql.DB, metrics *observability.Metrics, cfg config.Config) *service.Service {
	weatherRepository := repository.NewRepository(db)
	return service.NewService(weatherRepository, metrics, service.Options{
		Chart:    charts.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight},
		CacheTTL: cfg.ChartCacheTTL,
	})
}

func RegisterFeature(mux *http.ServeMux, weatherService *service.Service) {
	weatherController := controller.NewWeatherController(weatherService)
	weatherController.RegisterRoutes(mux)
}
