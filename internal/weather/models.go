package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Units selects the measurement system requested from OpenWeatherMap.
// The provider performs the conversion; readings are never re-converted here.
type Units string

const (
	// UnitsStandard is the OWM default (Kelvin, m/s). It maps to no
	// "units" query parameter on the wire.
	UnitsStandard Units = "standard"
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits parses a unit system name. "kelvin" is accepted as an alias
// for standard.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(s) {
	case "standard", "kelvin", "":
		return UnitsStandard, nil
	case "metric":
		return UnitsMetric, nil
	case "imperial":
		return UnitsImperial, nil
	default:
		return "", fmt.Errorf("invalid units %q, must be one of: standard, metric, imperial", s)
	}
}

// APIParam returns the value for the "units" query parameter, or "" when
// the default (standard) needs no parameter.
func (u Units) APIParam() string {
	switch u {
	case UnitsMetric, UnitsImperial:
		return string(u)
	default:
		return ""
	}
}

// TempUnit returns the temperature unit label for exported metrics.
func (u Units) TempUnit() string {
	switch u {
	case UnitsMetric:
		return "c"
	case UnitsImperial:
		return "f"
	default:
		return "k"
	}
}

// SpeedUnit returns the wind speed unit label for exported metrics.
func (u Units) SpeedUnit() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// PressureUnit returns the pressure unit label for exported metrics.
// OWM reports hPa regardless of the requested unit system.
func (u Units) PressureUnit() string {
	return "hPa"
}

// Coordinates is the geographic point weather is fetched for. Validated
// once at startup and immutable afterwards.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// ParseCoordinates parses a "lat,lon" pair, e.g. "52.52,13.405".
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("invalid coordinates %q, expected \"lat,lon\"", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

// Condition is one entry of the OWM weather condition list.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Reading is one complete current-weather observation. Immutable once
// constructed; the store replaces it wholesale, never field by field.
type Reading struct {
	ObservedAt time.Time `json:"observedAt"` // always UTC

	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feelsLike"`
	TempMin   float64 `json:"tempMin"`
	TempMax   float64 `json:"tempMax"`
	Humidity  float64 `json:"humidityPercent"`
	Pressure  float64 `json:"pressureHpa"`

	WindSpeed float64 `json:"windSpeed"`
	WindDeg   float64 `json:"windDeg"`
	CloudsPct float64 `json:"cloudsPercent"`

	// Precipitation volumes are only reported by OWM when there is any.
	Rain1h *float64 `json:"rain1hMm,omitempty"`
	Rain3h *float64 `json:"rain3hMm,omitempty"`
	Snow1h *float64 `json:"snow1hMm,omitempty"`
	Snow3h *float64 `json:"snow3hMm,omitempty"`

	// Visibility in meters; does not honor the units parameter.
	Visibility *float64 `json:"visibilityMeters,omitempty"`

	Conditions []Condition `json:"conditions,omitempty"`
}
