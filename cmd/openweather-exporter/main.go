package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "openweather-exporter/internal/api/http"
	"openweather-exporter/internal/config"
	"openweather-exporter/internal/exporter"
	"openweather-exporter/internal/poller"
	"openweather-exporter/internal/store"
	"openweather-exporter/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration. Invalid coordinates or a missing API key are
	// fatal; every error after this point is recoverable.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// HTTP client for outbound provider calls, with a bounded timeout so
	// a hung upstream surfaces as a failure instead of a stall.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	latest := store.NewLatestStore()

	client := weather.NewClient(httpClient, cfg.APIKey, cfg.Coords, cfg.Units)

	// Poller that periodically fetches and stores the outcome.
	p := poller.New(client, latest, cfg.Interval, cfg.HTTPTimeout)
	if err := p.Start(); err != nil {
		log.Fatalf("failed to start poller: %v", err)
	}
	defer p.Stop()

	// Dedicated registry; only this exporter's metrics are served.
	reg := prometheus.NewRegistry()
	reg.MustRegister(exporter.New(latest, cfg.Units, cfg.Location))

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "openweather-exporter",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "openweather-exporter",
		})
	})

	// Metrics and debug routes.
	httpapi.RegisterRoutes(app, latest, reg)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
