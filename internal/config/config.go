package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"openweather-exporter/internal/weather"
)

var validate = validator.New()

// AppConfig is the validated startup configuration. Everything here is
// immutable after Load; there are no runtime configuration changes.
type AppConfig struct {
	APIKey string `validate:"required"`
	Coords weather.Coordinates
	Units  weather.Units

	// Interval controls the fetch cadence; fixed, no backoff or jitter.
	Interval time.Duration `validate:"gt=0"`

	// HTTPTimeout bounds each outbound request to the provider.
	HTTPTimeout time.Duration `validate:"gt=0"`

	Port string `validate:"required"`

	// Location, if set, is added as a location="..." label to every
	// exported metric.
	Location string
}

// Load reads configuration from the environment. Any violation is a fatal
// startup error; nothing is re-validated at runtime.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("OWM_API_KEY")

	coordsStr := os.Getenv("OWM_COORDS")
	if coordsStr == "" {
		return nil, fmt.Errorf("OWM_COORDS is required (\"lat,lon\")")
	}
	coords, err := weather.ParseCoordinates(coordsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid OWM_COORDS: %w", err)
	}
	cfg.Coords = coords

	units, err := weather.ParseUnits(getenvDefault("OWM_UNITS", "standard"))
	if err != nil {
		return nil, fmt.Errorf("invalid OWM_UNITS: %w", err)
	}
	cfg.Units = units

	interval, err := time.ParseDuration(getenvDefault("OWM_INTERVAL", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid OWM_INTERVAL: %w", err)
	}
	cfg.Interval = interval

	timeout, err := time.ParseDuration(getenvDefault("OWM_HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid OWM_HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("OWM_PORT", "8081")
	cfg.Location = os.Getenv("OWM_LOCATION")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
