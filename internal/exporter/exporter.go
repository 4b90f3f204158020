package exporter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"openweather-exporter/internal/store"
	"openweather-exporter/internal/weather"
)

// Exporter renders the latest fetch outcome as Prometheus metrics. It is a
// pure reader of the store: Collect performs no network I/O and completes
// in bounded time regardless of upstream health, so any number of scrapes
// can run while a fetch is in flight.
//
// On success it emits one gauge per reading attribute plus owm_error 0.
// On failure it emits owm_error 1 (and the upstream status code, when
// known) and none of the weather gauges; a stale reading is never served
// as current.
type Exporter struct {
	store *store.LatestStore
	units weather.Units

	errDesc        *prometheus.Desc
	errCodeDesc    *prometheus.Desc
	ageDesc        *prometheus.Desc
	tempDesc       *prometheus.Desc
	tempMinDesc    *prometheus.Desc
	tempMaxDesc    *prometheus.Desc
	feelsLikeDesc  *prometheus.Desc
	humidityDesc   *prometheus.Desc
	pressureDesc   *prometheus.Desc
	cloudsDesc     *prometheus.Desc
	rainDesc       *prometheus.Desc
	snowDesc       *prometheus.Desc
	windDirDesc    *prometheus.Desc
	windSpeedDesc  *prometheus.Desc
	conditionDesc  *prometheus.Desc
	visibilityDesc *prometheus.Desc
}

// New creates an Exporter. If location is non-empty, every metric carries a
// location="..." label.
func New(st *store.LatestStore, units weather.Units, location string) *Exporter {
	var constLabels prometheus.Labels
	if location != "" {
		constLabels = prometheus.Labels{"location": location}
	}

	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(name, help, labels, constLabels)
	}

	return &Exporter{
		store: st,
		units: units,

		errDesc:        desc("owm_error", "Whether the most recent weather fetch failed (1) or succeeded (0)."),
		errCodeDesc:    desc("owm_error_code", "HTTP status code of the most recent failed fetch, if the upstream responded."),
		ageDesc:        desc("owm_last_update_age_seconds", "Seconds since the most recent successful reading was stored."),
		tempDesc:       desc("owm_temp", "Current temperature.", "unit"),
		tempMinDesc:    desc("owm_temp_min", "Minimum current temperature in the area.", "unit"),
		tempMaxDesc:    desc("owm_temp_max", "Maximum current temperature in the area.", "unit"),
		feelsLikeDesc:  desc("owm_feels_like", "Perceived temperature.", "unit"),
		humidityDesc:   desc("owm_humidity", "Relative humidity.", "unit"),
		pressureDesc:   desc("owm_pressure", "Atmospheric pressure.", "unit"),
		cloudsDesc:     desc("owm_clouds_all", "Cloud cover.", "unit"),
		rainDesc:       desc("owm_rain_volume", "Rain volume over the reported period.", "period", "unit"),
		snowDesc:       desc("owm_snow_volume", "Snow volume over the reported period.", "period", "unit"),
		windDirDesc:    desc("owm_wind_direction", "Wind direction.", "unit"),
		windSpeedDesc:  desc("owm_wind_speed", "Wind speed.", "unit"),
		conditionDesc:  desc("owm_condition", "Reported weather condition; one series per condition entry.", "kind"),
		visibilityDesc: desc("owm_visibility", "Visibility.", "unit"),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.errDesc
	ch <- e.errCodeDesc
	ch <- e.ageDesc
	ch <- e.tempDesc
	ch <- e.tempMinDesc
	ch <- e.tempMaxDesc
	ch <- e.feelsLikeDesc
	ch <- e.humidityDesc
	ch <- e.pressureDesc
	ch <- e.cloudsDesc
	ch <- e.rainDesc
	ch <- e.snowDesc
	ch <- e.windDirDesc
	ch <- e.windSpeedDesc
	ch <- e.conditionDesc
	ch <- e.visibilityDesc
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	outcome := e.store.Read()

	if last := e.store.LastSuccess(); !last.IsZero() {
		ch <- prometheus.MustNewConstMetric(e.ageDesc, prometheus.GaugeValue, time.Since(last).Seconds())
	}

	if !outcome.OK() {
		ch <- prometheus.MustNewConstMetric(e.errDesc, prometheus.GaugeValue, 1)
		if outcome.Err.Kind == weather.ErrorUpstream {
			ch <- prometheus.MustNewConstMetric(e.errCodeDesc, prometheus.GaugeValue, float64(outcome.Err.StatusCode))
		}
		return
	}

	r := outcome.Reading

	ch <- prometheus.MustNewConstMetric(e.errDesc, prometheus.GaugeValue, 0)

	tempUnit := e.units.TempUnit()
	ch <- prometheus.MustNewConstMetric(e.tempDesc, prometheus.GaugeValue, r.Temp, tempUnit)
	ch <- prometheus.MustNewConstMetric(e.tempMinDesc, prometheus.GaugeValue, r.TempMin, tempUnit)
	ch <- prometheus.MustNewConstMetric(e.tempMaxDesc, prometheus.GaugeValue, r.TempMax, tempUnit)
	ch <- prometheus.MustNewConstMetric(e.feelsLikeDesc, prometheus.GaugeValue, r.FeelsLike, tempUnit)
	ch <- prometheus.MustNewConstMetric(e.humidityDesc, prometheus.GaugeValue, r.Humidity, "percent")
	ch <- prometheus.MustNewConstMetric(e.pressureDesc, prometheus.GaugeValue, r.Pressure, e.units.PressureUnit())
	ch <- prometheus.MustNewConstMetric(e.cloudsDesc, prometheus.GaugeValue, r.CloudsPct, "percent")

	if r.Rain1h != nil {
		ch <- prometheus.MustNewConstMetric(e.rainDesc, prometheus.GaugeValue, *r.Rain1h, "1h", "mm")
	}
	if r.Rain3h != nil {
		ch <- prometheus.MustNewConstMetric(e.rainDesc, prometheus.GaugeValue, *r.Rain3h, "3h", "mm")
	}
	if r.Snow1h != nil {
		ch <- prometheus.MustNewConstMetric(e.snowDesc, prometheus.GaugeValue, *r.Snow1h, "1h", "mm")
	}
	if r.Snow3h != nil {
		ch <- prometheus.MustNewConstMetric(e.snowDesc, prometheus.GaugeValue, *r.Snow3h, "3h", "mm")
	}

	ch <- prometheus.MustNewConstMetric(e.windDirDesc, prometheus.GaugeValue, r.WindDeg, "degrees")
	ch <- prometheus.MustNewConstMetric(e.windSpeedDesc, prometheus.GaugeValue, r.WindSpeed, e.units.SpeedUnit())

	for _, cond := range r.Conditions {
		ch <- prometheus.MustNewConstMetric(e.conditionDesc, prometheus.GaugeValue, 1, cond.Description)
	}

	if r.Visibility != nil {
		ch <- prometheus.MustNewConstMetric(e.visibilityDesc, prometheus.GaugeValue, *r.Visibility, "meters")
	}
}
