package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const fullBody = `{
	"coord": {"lat": 52.52, "lon": 13.405},
	"weather": [{"id": 500, "main": "Rain", "description": "light rain", "icon": "10d"}],
	"main": {"temp": 72.5, "feels_like": 74.1, "temp_min": 70.0, "temp_max": 75.2, "pressure": 1013, "humidity": 40},
	"visibility": 10000,
	"wind": {"speed": 4.6, "deg": 250},
	"rain": {"1h": 0.25},
	"clouds": {"all": 75},
	"dt": 1700000000
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), "test-key", Coordinates{Lat: 52.52, Lon: 13.405}, UnitsImperial)
	c.baseURL = srv.URL
	return c, srv
}

func TestFetchSuccess(t *testing.T) {
	var gotQuery map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fullBody))
	})

	outcome := c.Fetch(context.Background())
	if !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err)
	}

	r := outcome.Reading
	if r.Temp != 72.5 {
		t.Errorf("temp = %v, want 72.5", r.Temp)
	}
	if r.Humidity != 40 {
		t.Errorf("humidity = %v, want 40", r.Humidity)
	}
	if r.Pressure != 1013 {
		t.Errorf("pressure = %v, want 1013", r.Pressure)
	}
	if r.WindSpeed != 4.6 {
		t.Errorf("wind speed = %v, want 4.6", r.WindSpeed)
	}
	if r.Rain1h == nil || *r.Rain1h != 0.25 {
		t.Errorf("rain 1h = %v, want 0.25", r.Rain1h)
	}
	if r.Snow1h != nil {
		t.Errorf("snow 1h = %v, want nil", r.Snow1h)
	}
	if r.Visibility == nil || *r.Visibility != 10000 {
		t.Errorf("visibility = %v, want 10000", r.Visibility)
	}
	if len(r.Conditions) != 1 || r.Conditions[0].Description != "light rain" {
		t.Errorf("conditions = %+v, want one light rain entry", r.Conditions)
	}
	if want := time.Unix(1700000000, 0).UTC(); !r.ObservedAt.Equal(want) {
		t.Errorf("observed at = %v, want %v", r.ObservedAt, want)
	}

	if got := gotQuery["appid"]; len(got) != 1 || got[0] != "test-key" {
		t.Errorf("appid query = %v, want test-key", got)
	}
	if got := gotQuery["units"]; len(got) != 1 || got[0] != "imperial" {
		t.Errorf("units query = %v, want imperial", got)
	}
}

func TestFetchStandardUnitsSendsNoUnitsParam(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(fullBody))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), "test-key", Coordinates{}, UnitsStandard)
	c.baseURL = srv.URL

	if outcome := c.Fetch(context.Background()); !outcome.OK() {
		t.Fatalf("expected success, got %v", outcome.Err)
	}
	if _, ok := gotQuery["units"]; ok {
		t.Errorf("standard units must not send a units parameter, got %v", gotQuery["units"])
	}
}

func TestFetchUpstreamError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod": 401, "message": "Invalid API key"}`))
	})

	outcome := c.Fetch(context.Background())
	if outcome.OK() {
		t.Fatal("expected failure on 401")
	}
	if outcome.Err.Kind != ErrorUpstream {
		t.Fatalf("kind = %q, want %q", outcome.Err.Kind, ErrorUpstream)
	}
	if outcome.Err.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", outcome.Err.StatusCode)
	}
	if outcome.Err.Cause != "Invalid API key" {
		t.Fatalf("cause = %q, want upstream message", outcome.Err.Cause)
	}
}

func TestFetchMissingRequiredFieldIsParseError(t *testing.T) {
	// Temperature removed; everything else present.
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"weather": [{"id": 800, "main": "Clear", "description": "clear sky"}],
			"main": {"feels_like": 20.0, "temp_min": 18.0, "temp_max": 22.0, "pressure": 1013, "humidity": 40},
			"wind": {"speed": 1.0, "deg": 90},
			"dt": 1700000000
		}`))
	})

	outcome := c.Fetch(context.Background())
	if outcome.OK() {
		t.Fatal("expected parse failure, got a reading")
	}
	if outcome.Err.Kind != ErrorParse {
		t.Fatalf("kind = %q, want %q", outcome.Err.Kind, ErrorParse)
	}
	if outcome.Err.StatusCode != 0 {
		t.Fatalf("parse errors carry no status code, got %d", outcome.Err.StatusCode)
	}
}

func TestFetchMalformedBodyIsParseError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main": `))
	})

	outcome := c.Fetch(context.Background())
	if outcome.OK() {
		t.Fatal("expected parse failure")
	}
	if outcome.Err.Kind != ErrorParse {
		t.Fatalf("kind = %q, want %q", outcome.Err.Kind, ErrorParse)
	}
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := srv.Client()
	url := srv.URL
	srv.Close()

	c := NewClient(client, "test-key", Coordinates{}, UnitsMetric)
	c.baseURL = url

	outcome := c.Fetch(context.Background())
	if outcome.OK() {
		t.Fatal("expected transport failure")
	}
	if outcome.Err.Kind != ErrorTransport {
		t.Fatalf("kind = %q, want %q", outcome.Err.Kind, ErrorTransport)
	}
	if outcome.Err.StatusCode != 0 {
		t.Fatalf("transport errors carry no status code, got %d", outcome.Err.StatusCode)
	}
}

func TestFetchTimeoutIsTransportError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(fullBody))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	outcome := c.Fetch(ctx)
	if outcome.OK() {
		t.Fatal("expected timeout failure")
	}
	if outcome.Err.Kind != ErrorTransport {
		t.Fatalf("kind = %q, want %q", outcome.Err.Kind, ErrorTransport)
	}
}
