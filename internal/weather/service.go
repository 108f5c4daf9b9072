package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// ForecastDays is the forecast window the destination badges look at
// (today, tomorrow, day after).
const ForecastDays = 3

// ErrNoReadings is returned when no provider produced a usable reading.
var ErrNoReadings = errors.New("no successful provider readings")

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store     Store
	providers []Provider
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider) *Service {
	return &Service{
		store:     store,
		providers: providers,
	}
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot together with the
// short forecast when any provider supports it.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return fmt.Errorf("no weather providers configured")
	}

	snapshot, err := s.fetchCurrent(ctx, loc)
	if err != nil {
		if errors.Is(err, ErrNoReadings) {
			// Do not overwrite last good snapshot.
			log.Printf("no successful provider readings for %s; keeping last good snapshot if any", loc.Key())
			return nil
		}
		return err
	}
	s.store.SaveSnapshot(loc, snapshot)

	forecast, err := s.GetForecast(ctx, loc, ForecastDays)
	if err != nil {
		log.Printf("INFO: forecast unavailable for %s: %v", loc.Key(), err)
		return nil
	}
	s.store.SaveForecast(loc, forecast)
	return nil
}

func (s *Service) fetchCurrent(ctx context.Context, loc Location) (WeatherSnapshot, error) {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings = make([]*ProviderReading, len(s.providers))
	)

	for i, p := range s.providers {
		i, p := i, p // per-iteration copy (go < 1.22 loop semantics)
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Log and continue; we want partial success when possible.
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				return
			}

			mu.Lock()
			readings[i] = &r
			mu.Unlock()
		}()
	}

	wg.Wait()

	// Keep provider order so aggregation is stable across runs.
	ok := make([]ProviderReading, 0, len(readings))
	for _, r := range readings {
		if r != nil {
			ok = append(ok, *r)
		}
	}
	if len(ok) == 0 {
		return WeatherSnapshot{}, ErrNoReadings
	}

	snapshot := AggregateReadings(loc, ok)
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	return snapshot, nil
}

// GetForecast fetches multi-day forecasts from providers that support it,
// aggregates them per day, and returns a normalized Forecast.
func (s *Service) GetForecast(ctx context.Context, loc Location, days int) (Forecast, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	log.Printf("DEBUG: GetForecast called for %s for %d days", loc.Key(), days)

	// Use a bounded context for outbound provider calls.
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	type dayKey string

	var (
		wg            sync.WaitGroup
		mu            sync.Mutex
		dayReadings   = make(map[dayKey][]ProviderReading)
		dayTimestamps = make(map[dayKey]time.Time)
	)

	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}

		providerName := p.Name()

		wg.Add(1)
		go func(fp ForecastProvider, providerName string) {
			defer wg.Done()

			readings, err := fp.FetchForecast(ctx, loc, days)
			if err != nil {
				log.Printf("provider %s forecast failed for %s: %v", providerName, loc.Key(), err)
				return
			}

			if len(readings) == 0 {
				return
			}

			mu.Lock()
			defer mu.Unlock()

			for _, r := range readings {
				ts := r.Timestamp.UTC()
				k := dayKey(ts.Format("2006-01-02"))

				dayReadings[k] = append(dayReadings[k], r)

				if _, exists := dayTimestamps[k]; !exists {
					dayTimestamps[k] = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
				}
			}
		}(fp, providerName)
	}

	wg.Wait()

	if len(dayReadings) == 0 {
		log.Printf("no successful forecast readings for %s", loc.Key())
		return nil, fmt.Errorf("no forecast data available")
	}

	// Collect and sort all date keys.
	keys := make([]string, 0, len(dayReadings))
	for k := range dayReadings {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	forecast := make(Forecast, 0, days)

	for _, k := range keys {
		if len(forecast) >= days {
			break
		}

		dk := dayKey(k)
		readings := dayReadings[dk]
		if len(readings) == 0 {
			continue
		}
		// Providers finish in any order; aggregate them by name.
		sort.SliceStable(readings, func(i, j int) bool {
			return readings[i].ProviderName < readings[j].ProviderName
		})

		snapshot := AggregateReadings(loc, readings)
		if ts, ok := dayTimestamps[dk]; ok {
			snapshot.Timestamp = ts
		}

		forecast = append(forecast, snapshot)
	}

	if len(forecast) == 0 {
		log.Printf("forecast aggregation produced no entries for %s", loc.Key())
		return nil, fmt.Errorf("no forecast data available")
	}

	return forecast, nil
}

// Origin returns the baseline weather for loc: the stored snapshot when
// present, otherwise a fresh fetch. The forecast is best effort.
func (s *Service) Origin(ctx context.Context, loc Location) (WeatherSnapshot, Forecast, error) {
	snapshot, err := s.store.GetLatest(loc)
	if err != nil {
		if len(s.providers) == 0 {
			return WeatherSnapshot{}, nil, err
		}
		snapshot, err = s.fetchCurrent(ctx, loc)
		if err != nil {
			return WeatherSnapshot{}, nil, fmt.Errorf("fetch origin weather: %w", err)
		}
		s.store.SaveSnapshot(loc, snapshot)
	}

	forecast, err := s.store.GetForecast(loc)
	if err != nil && len(s.providers) > 0 {
		forecast, err = s.GetForecast(ctx, loc, ForecastDays)
		if err == nil {
			s.store.SaveForecast(loc, forecast)
		}
	}
	return snapshot, forecast, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetStoredForecast delegates to the underlying store.
func (s *Service) GetStoredForecast(loc Location) (Forecast, error) {
	return s.store.GetForecast(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}
