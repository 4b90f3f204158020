package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"openweather-exporter/internal/store"
	"openweather-exporter/internal/weather"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app. Both handlers
// only read local state; neither ever waits on an in-flight fetch.
func RegisterRoutes(app *fiber.App, st *store.LatestStore, reg *prometheus.Registry) {
	metricsHandler := adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	app.Get("/metrics", metricsHandler)

	// Debug view of the raw latest outcome.
	app.Get("/json", func(c *fiber.Ctx) error {
		outcome := st.Read()

		switch {
		case outcome.OK():
			return c.JSON(outcome.Reading)
		case outcome.Err.Kind == weather.ErrorNoData:
			return c.JSON(nil)
		default:
			return c.JSON(fiber.Map{
				"error": outcome.Err,
			})
		}
	})
}
