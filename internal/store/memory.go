package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-destinations/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// placeWeather is everything kept for one location: snapshots ordered by
// timestamp and the last daily forecast.
type placeWeather struct {
	snapshots []weather.WeatherSnapshot
	forecast  weather.Forecast
}

// prune applies the retention limits. The newest snapshot always survives so
// a place keeps serving its last known weather between refreshes.
func (p *placeWeather) prune(maxHistory int, maxAge time.Duration, now time.Time) {
	if maxHistory > 0 && len(p.snapshots) > maxHistory {
		p.snapshots = p.snapshots[len(p.snapshots)-maxHistory:]
	}
	if maxAge <= 0 || len(p.snapshots) < 2 {
		return
	}
	cutoff := now.Add(-maxAge)
	i := sort.Search(len(p.snapshots), func(i int) bool {
		return !p.snapshots[i].Timestamp.Before(cutoff)
	})
	if i >= len(p.snapshots) {
		i = len(p.snapshots) - 1
	}
	p.snapshots = p.snapshots[i:]
}

// MemoryStore is a concurrency-safe in-memory weather store for origins and
// catalog places.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*placeWeather // by weather.Location.Key()

	maxHistory int           // 0 = unlimited
	maxAge     time.Duration // 0 = unlimited
}

// NewMemoryStore creates a new MemoryStore with optional limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*placeWeather),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

func (s *MemoryStore) entry(loc weather.Location) *placeWeather {
	key := loc.Key()
	e, ok := s.data[key]
	if !ok {
		e = &placeWeather{}
		s.data[key] = e
	}
	return e
}

// SaveSnapshot records a snapshot and enforces retention. Snapshots arriving
// out of order are inserted at their timestamp.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(loc)
	i := sort.Search(len(e.snapshots), func(i int) bool {
		return e.snapshots[i].Timestamp.After(snapshot.Timestamp)
	})
	e.snapshots = append(e.snapshots, weather.WeatherSnapshot{})
	copy(e.snapshots[i+1:], e.snapshots[i:])
	e.snapshots[i] = snapshot

	e.prune(s.maxHistory, s.maxAge, time.Now())
}

// SaveForecast replaces the forecast kept for a location.
func (s *MemoryStore) SaveForecast(loc weather.Location, forecast weather.Forecast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(loc).forecast = append(weather.Forecast(nil), forecast...)
}

// GetForecast returns a copy of the last stored forecast for a location.
func (s *MemoryStore) GetForecast(loc weather.Location) (weather.Forecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[loc.Key()]
	if !ok || len(e.forecast) == 0 {
		return nil, ErrNotFound
	}
	return append(weather.Forecast(nil), e.forecast...), nil
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[loc.Key()]
	if !ok || len(e.snapshots) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return e.snapshots[len(e.snapshots)-1], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[loc.Key()]
	if !ok || len(e.snapshots) == 0 {
		return nil, ErrNotFound
	}

	lo := sort.Search(len(e.snapshots), func(i int) bool {
		return !e.snapshots[i].Timestamp.Before(from)
	})
	hi := sort.Search(len(e.snapshots), func(i int) bool {
		return e.snapshots[i].Timestamp.After(to)
	})
	if lo >= hi {
		return nil, ErrNotFound
	}
	return append([]weather.WeatherSnapshot(nil), e.snapshots[lo:hi]...), nil
}
