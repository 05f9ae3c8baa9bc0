package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kkyr/fig"
)

// FileName is the optional config file looked up in the working directory.
const FileName = "weatherdash.yaml"

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// DataPath is the CSV imported at startup when DataImportOnStart is set.
	DataPath          string
	DataImportOnStart bool

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	DBLogSQL              bool

	ChartWidth    int
	ChartHeight   int
	ChartCacheTTL time.Duration

	ShutdownTimeout time.Duration
}

// fileConfig is what fig fills from the config file and the environment.
// Env keys are the upper-cased tag names (APP_ENV, HTTP_ADDR, ...).
type fileConfig struct {
	AppEnv   string `fig:"app_env" default:"dev"`
	LogLevel string `fig:"log_level" default:"info"`
	HTTPAddr string `fig:"http_addr" default:":8080"`

	DataPath          string `fig:"data_path" default:"data/open-meteo-subset.csv"`
	DataImportOnStart string `fig:"data_import_on_start" default:"true"`

	DBDriver          string        `fig:"db_driver" default:"sqlite3"`
	SQLiteDSN         string        `fig:"sqlite_dsn"`
	SQLitePath        string        `fig:"sqlite_path" default:"file:weatherdash?mode=memory&cache=shared"`
	DBMaxOpenConns    int           `fig:"db_max_open_conns" default:"1"`
	DBMaxIdleConns    int           `fig:"db_max_idle_conns" default:"1"`
	DBConnMaxLifetime time.Duration `fig:"db_conn_max_lifetime"`
	DBLogSQL          string        `fig:"db_log_sql" default:"false"`

	ChartWidth    int           `fig:"chart_width" default:"1200"`
	ChartHeight   int           `fig:"chart_height" default:"700"`
	ChartCacheTTL time.Duration `fig:"chart_cache_ttl" default:"10m"`

	ShutdownTimeout time.Duration `fig:"shutdown_timeout" default:"10s"`
}

// LoadFromEnv reads the environment and, when present, weatherdash.yaml in
// the working directory. Environment variables win over the file.
func LoadFromEnv() (Config, error) {
	return LoadFrom(".", FileName)
}

// LoadFrom is LoadFromEnv with an explicit config file location.
func LoadFrom(dir, file string) (Config, error) {
	var fc fileConfig
	err := fig.Load(&fc,
		fig.Dirs(dir),
		fig.File(file),
		fig.AllowNoFile(),
		fig.UseEnv(""),
	)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return fc.resolve()
}

func (fc fileConfig) resolve() (Config, error) {
	appEnv := strings.TrimSpace(fc.AppEnv)
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(fc.LogLevel)
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(fc.HTTPAddr)
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	dataPath := strings.TrimSpace(fc.DataPath)
	if dataPath == "" {
		dataPath = filepath.Join("data", "open-meteo-subset.csv")
	}
	importOnStart, err := parseBool("DATA_IMPORT_ON_START", fc.DataImportOnStart, true)
	if err != nil {
		return Config{}, err
	}

	driver := strings.TrimSpace(fc.DBDriver)
	if driver == "" {
		driver = "sqlite3"
	}
	path := strings.TrimSpace(fc.SQLitePath)
	if path == "" {
		path = "file:weatherdash?mode=memory&cache=shared"
	}

	if fc.DBMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %d (must be >= 1)", fc.DBMaxOpenConns)
	}
	if fc.DBMaxIdleConns < 1 {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %d (must be >= 1)", fc.DBMaxIdleConns)
	}
	if fc.DBConnMaxLifetime < 0 {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %s (must not be negative)", fc.DBConnMaxLifetime)
	}
	logSQL, err := parseBool("DB_LOG_SQL", fc.DBLogSQL, false)
	if err != nil {
		return Config{}, err
	}

	if fc.ChartWidth < 200 || fc.ChartWidth > 4000 {
		return Config{}, fmt.Errorf("invalid CHART_WIDTH %d (allowed: 200-4000)", fc.ChartWidth)
	}
	if fc.ChartHeight < 200 || fc.ChartHeight > 4000 {
		return Config{}, fmt.Errorf("invalid CHART_HEIGHT %d (allowed: 200-4000)", fc.ChartHeight)
	}
	if fc.ChartCacheTTL < 0 {
		return Config{}, fmt.Errorf("invalid CHART_CACHE_TTL %s (must not be negative)", fc.ChartCacheTTL)
	}
	if fc.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %s (must be positive)", fc.ShutdownTimeout)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		DataPath:              dataPath,
		DataImportOnStart:     importOnStart,
		SQLiteDriver:          driver,
		SQLiteDSN:             strings.TrimSpace(fc.SQLiteDSN),
		SQLitePath:            path,
		SQLiteMaxOpenConns:    fc.DBMaxOpenConns,
		SQLiteMaxIdleConns:    fc.DBMaxIdleConns,
		SQLiteConnMaxLifetime: fc.DBConnMaxLifetime,
		DBLogSQL:              logSQL,
		ChartWidth:            fc.ChartWidth,
		ChartHeight:           fc.ChartHeight,
		ChartCacheTTL:         fc.ChartCacheTTL,
		ShutdownTimeout:       fc.ShutdownTimeout,
	}, nil
}

// IsMemoryDB reports whether the configured database lives only in memory.
func (c Config) IsMemoryDB() bool {
	target := c.SQLiteDSN
	if target == "" {
		target = c.SQLitePath
	}
	return target == ":memory:" || strings.Contains(target, "mode=memory")
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func parseBool(key, s string, def bool) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

