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

	httpapi "github.com/i474232898/weather-destinations/internal/api/http"
	"github.com/i474232898/weather-destinations/internal/config"
	"github.com/i474232898/weather-destinations/internal/destination"
	"github.com/i474232898/weather-destinations/internal/geocode"
	"github.com/i474232898/weather-destinations/internal/pipeline"
	"github.com/i474232898/weather-destinations/internal/scheduler"
	"github.com/i474232898/weather-destinations/internal/store"
	"github.com/i474232898/weather-destinations/internal/weather"
	"github.com/i474232898/weather-destinations/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory weather store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Place catalog.
	places, err := store.NewPlaceStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open place catalog: %v", err)
	}
	defer places.Close()

	if cfg.SeedFile != "" {
		seed, err := store.LoadPlaces(cfg.SeedFile)
		if err != nil {
			log.Fatalf("failed to load seed places: %v", err)
		}
		n, err := places.Upsert(context.Background(), seed)
		if err != nil {
			log.Fatalf("failed to seed places: %v", err)
		}
		log.Printf("INFO: seeded %d places from %s", n, cfg.SeedFile)
	}

	// Providers with resilience (backoff + circuit breaker). Open-Meteo needs
	// no key and is the only source of daily snowfall.
	provs := []weather.Provider{providers.NewOpenMeteoProvider(httpClient)}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}

	weatherSvc := weather.NewService(memStore, provs)
	source := destination.NewSource(places, weatherSvc)
	markers := pipeline.NewService(cfg.Pipeline, source, weatherSvc)

	// Scheduler that periodically refreshes weather for every place.
	sched := scheduler.New(cfg.Locations, places, cfg.FetchInterval, cfg.FetchConcurrency, weatherSvc)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-destinations",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-destinations",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:  weatherSvc,
		Markers:  markers,
		Places:   places,
		Geocoder: geocode.NewGoogle(cfg.GeocoderAPIKey),
	})

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
