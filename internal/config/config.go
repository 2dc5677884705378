package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxForecastDays bounds FORECAST_DAYS.
const MaxForecastDays = 30

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port string
	Env  string

	GeoJSONPath     string
	BaselineCSVPath string
	DatabaseURL     string

	FloodAPIURL     string
	FloodAPITimeout time.Duration
	ForecastDays    int

	SessionExpiration time.Duration
	ShutdownTimeout   time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, applying defaults where unset.
func Load() (*Config, error) {
	floodTimeout, err := parseDuration("FLOOD_API_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	sessionExpiration, err := parseDuration("SESSION_EXPIRATION", "24h")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	forecastDays, err := strconv.Atoi(getEnv("FORECAST_DAYS", "7"))
	if err != nil || forecastDays < 1 || forecastDays > MaxForecastDays {
		return nil, fmt.Errorf("invalid FORECAST_DAYS: must be an integer between 1 and %d", MaxForecastDays)
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("GO_ENV", "development"),
		GeoJSONPath:       getEnv("GEOJSON_PATH", "attached_assets/gadm41_NGA_2.geojson"),
		BaselineCSVPath:   getEnv("BASELINE_CSV_PATH", "attached_assets/baseline_20220914.csv"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		FloodAPIURL:       strings.TrimRight(getEnv("FLOOD_API_URL", "https://flood-api.open-meteo.com"), "/"),
		FloodAPITimeout:   floodTimeout,
		ForecastDays:      forecastDays,
		SessionExpiration: sessionExpiration,
		ShutdownTimeout:   shutdownTimeout,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", cfg.LogFormat)
	}

	return cfg, nil
}

// IsProduction reports whether GO_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}
