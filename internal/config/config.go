package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-destinations/internal/pipeline"
	"github.com/i474232898/weather-destinations/internal/weather"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// FetchInterval controls how often we refresh weather for every place.
	FetchInterval    time.Duration
	FetchConcurrency int
	HTTPTimeout      time.Duration

	// Origins whose weather is kept warm in addition to catalog places.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// Place catalog.
	DBPath       string
	SeedFile     string
	PipelineFile string

	Pipeline pipeline.Config

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval
	cfg.FetchConcurrency = getenvInt("FETCH_CONCURRENCY", 8)

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.DBPath = getenvDefault("PLACES_DB_PATH", "places.db")
	cfg.SeedFile = os.Getenv("PLACES_SEED_FILE")
	cfg.PipelineFile = os.Getenv("PIPELINE_CONFIG_FILE")
	cfg.Port = getenvDefault("PORT", "8080")

	locs, err := loadPrimaryLocation()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs

	pcfg := pipeline.DefaultConfig()
	if cfg.PipelineFile != "" {
		pcfg, err = pipeline.LoadConfigFile(cfg.PipelineFile)
		if err != nil {
			return nil, err
		}
	}
	cfg.Pipeline = ApplyPipelineEnv(pcfg)

	return cfg, nil
}

// ApplyPipelineEnv overrides the most commonly tuned pipeline limits from
// the environment.
func ApplyPipelineEnv(p pipeline.Config) pipeline.Config {
	b := &p.Badges
	b.WorthTheDrive.Cap = getenvInt("BADGE_WTD_CAP", b.WorthTheDrive.Cap)
	b.WorthTheDrive.MinSpacingKm = getenvFloat("BADGE_WTD_SPACING_KM", b.WorthTheDrive.MinSpacingKm)
	b.WorthTheDrive.MinValue = getenvFloat("BADGE_WTD_MIN_VALUE", b.WorthTheDrive.MinValue)
	b.Travel.AvgSpeedKmh = getenvFloat("BADGE_AVG_SPEED_KMH", b.Travel.AvgSpeedKmh)
	b.Beach.Cap = getenvInt("BADGE_BEACH_CAP", b.Beach.Cap)
	b.SunnyStreak.Cap = getenvInt("BADGE_STREAK_CAP", b.SunnyStreak.Cap)
	b.SunnyStreak.MinSpacingKm = getenvFloat("BADGE_STREAK_SPACING_KM", b.SunnyStreak.MinSpacingKm)
	b.SnowKing.Cap = getenvInt("BADGE_SNOW_CAP", b.SnowKing.Cap)
	b.SnowKing.PerCountryCap = getenvInt("BADGE_SNOW_PER_COUNTRY", b.SnowKing.PerCountryCap)
	b.WarmAndDry.Cap = getenvInt("BADGE_WARM_DRY_CAP", b.WarmAndDry.Cap)
	b.GlyphLimit = getenvInt("BADGE_GLYPH_LIMIT", b.GlyphLimit)

	d := &p.Declutter
	d.MinMarkers = getenvInt("DECLUTTER_MIN_MARKERS", d.MinMarkers)
	d.MarkerCeiling = getenvInt("DECLUTTER_MAX_MARKERS", d.MarkerCeiling)
	d.GridCellSizeKm = getenvFloat("DECLUTTER_GRID_CELL_KM", d.GridCellSizeKm)
	d.CellQuota = getenvInt("DECLUTTER_CELL_QUOTA", d.CellQuota)
	d.Phase1Share = getenvFloat("DECLUTTER_PHASE1_SHARE", d.Phase1Share)
	return p
}

func loadPrimaryLocation() ([]weather.Location, error) {
	city := os.Getenv("WEATHER_LOCATION_CITY")
	country := os.Getenv("WEATHER_LOCATION_COUNTRY")
	if city == "" && country == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []weather.Location
	for i := range cities {
		locs = append(locs, weather.Location{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}

	return locs, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Printf("INFO: ignoring invalid %s=%q", key, v)
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
		log.Printf("INFO: ignoring invalid %s=%q", key, v)
	}
	return def
}
