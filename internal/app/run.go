package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"weatherdash/internal/config"
	"weatherdash/internal/db"
	"weatherdash/internal/httpapi"
	"weatherdash/internal/migrate"
	"weatherdash/internal/modules/weather"
	weatherviews "weatherdash/internal/modules/weather/views"
	"weatherdash/internal/observability"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dataPath", cfg.DataPath,
		"dataImportOnStart", cfg.DataImportOnStart,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"chartWidth", cfg.ChartWidth,
		"chartHeight", cfg.ChartHeight,
		"chartCacheTTL", cfg.ChartCacheTTL,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(dbConn); err != nil {
		return err
	}

	var ok int
	err = dbConn.QueryRow(`SELECT 1`).Scan(&ok)
	if err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	slog.Info("database connection successful")

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}

	metrics := observability.NewMetrics()
	weatherService := weather.NewService(dbConn, metrics, cfg)
	mux := httpapi.NewMux(dbConn, weatherService, httpapi.MetricsHandler())
	weather.RegisterFeature(mux, weatherService)

	if cfg.DataImportOnStart {
		if _, err := weatherService.Import(cfg.DataPath); err != nil {
			// The dashboard still serves its pages and /readyz reports 503.
			slog.Warn("dataset import failed (continuing without data)", "path", cfg.DataPath, "error", err)
		}
	}

	srv := httpapi.NewServer(cfg, mux, metrics)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
