package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Client fetches current weather from OpenWeatherMap for a fixed location.
// Each Fetch issues at most one outbound request; there are no internal
// retries (the poll interval is the retry policy). A circuit breaker guards
// the upstream when the transport is persistently failing.
type Client struct {
	httpClient *http.Client
	apiKey     string
	coords     Coordinates
	units      Units
	baseURL    string
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a Client. The injected http.Client bounds the request
// timeout; callers additionally pass a per-fetch context.
func NewClient(httpClient *http.Client, apiKey string, coords Coordinates, units Units) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		coords:     coords,
		units:      units,
		baseURL:    defaultBaseURL,
		circuit:    cb,
	}
}

// Fetch performs one request and maps everything that can go wrong into a
// Failure outcome. It never returns a partially populated reading.
func (c *Client) Fetch(ctx context.Context) FetchOutcome {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", c.coords.Lat))
	values.Set("lon", fmt.Sprintf("%f", c.coords.Lon))
	values.Set("appid", c.apiKey)
	if p := c.units.APIParam(); p != "" {
		values.Set("units", p)
	}

	u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Failure(&FetchError{Kind: ErrorTransport, Cause: err.Error()})
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		return Failure(&FetchError{Kind: ErrorTransport, Cause: err.Error()})
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failure(&FetchError{
			Kind:       ErrorUpstream,
			StatusCode: resp.StatusCode,
			Cause:      upstreamCause(resp),
		})
	}

	reading, err := decodeReading(resp.Body)
	if err != nil {
		return Failure(&FetchError{Kind: ErrorParse, Cause: err.Error()})
	}

	return Success(reading)
}

// upstreamCause derives a human-readable cause from an error response,
// preferring the body (OWM returns {"cod":..,"message":".."}) over the
// status text.
func upstreamCause(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if err == nil {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			return payload.Message
		}
		if s := strings.TrimSpace(string(body)); s != "" {
			return s
		}
	}
	return http.StatusText(resp.StatusCode)
}

// owmPayload mirrors the OWM current-weather response. Required numeric
// fields are pointers so that a missing field is distinguishable from zero.
type owmPayload struct {
	Dt   int64 `json:"dt"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  *float64 `json:"pressure"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Rain struct {
		OneH   *float64 `json:"1h"`
		ThreeH *float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		OneH   *float64 `json:"1h"`
		ThreeH *float64 `json:"3h"`
	} `json:"snow"`
	Visibility *float64 `json:"visibility"`
	Weather    []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func decodeReading(body io.Reader) (Reading, error) {
	var payload owmPayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return Reading{}, fmt.Errorf("decoding response body: %w", err)
	}

	if payload.Main == nil {
		return Reading{}, fmt.Errorf("response is missing required object %q", "main")
	}
	required := map[string]*float64{
		"main.temp":       payload.Main.Temp,
		"main.feels_like": payload.Main.FeelsLike,
		"main.temp_min":   payload.Main.TempMin,
		"main.temp_max":   payload.Main.TempMax,
		"main.pressure":   payload.Main.Pressure,
		"main.humidity":   payload.Main.Humidity,
	}
	for name, v := range required {
		if v == nil {
			return Reading{}, fmt.Errorf("response is missing required field %q", name)
		}
	}

	ts := time.Unix(payload.Dt, 0).UTC()
	if payload.Dt == 0 {
		ts = time.Now().UTC()
	}

	conditions := make([]Condition, 0, len(payload.Weather))
	for _, w := range payload.Weather {
		conditions = append(conditions, Condition{
			ID:          w.ID,
			Main:        w.Main,
			Description: w.Description,
		})
	}

	return Reading{
		ObservedAt: ts,
		Temp:       *payload.Main.Temp,
		FeelsLike:  *payload.Main.FeelsLike,
		TempMin:    *payload.Main.TempMin,
		TempMax:    *payload.Main.TempMax,
		Humidity:   *payload.Main.Humidity,
		Pressure:   *payload.Main.Pressure,
		WindSpeed:  payload.Wind.Speed,
		WindDeg:    payload.Wind.Deg,
		CloudsPct:  payload.Clouds.All,
		Rain1h:     payload.Rain.OneH,
		Rain3h:     payload.Rain.ThreeH,
		Snow1h:     payload.Snow.OneH,
		Snow3h:     payload.Snow.ThreeH,
		Visibility: payload.Visibility,
		Conditions: conditions,
	}, nil
}
