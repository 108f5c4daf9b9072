package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-destinations/internal/destination"
	"github.com/i474232898/weather-destinations/internal/weather"
)

// PlaceLister lists the catalog places whose weather is kept fresh.
type PlaceLister interface {
	All(ctx context.Context) ([]destination.Place, error)
}

// Fetcher refreshes the stored weather of one location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) error
}

// Scheduler periodically refreshes weather for the configured origins and
// every catalog place.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	fetcher     Fetcher
	places      PlaceLister
	locations   []weather.Location
	interval    time.Duration
	concurrency int
}

// New creates a new Scheduler. concurrency bounds the number of locations
// fetched at once.
func New(locations []weather.Location, places PlaceLister, interval time.Duration, concurrency int, fetcher Fetcher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Scheduler{
		scheduler:   s,
		fetcher:     fetcher,
		places:      places,
		locations:   locations,
		interval:    interval,
		concurrency: concurrency,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 && s.places == nil {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every tracked location once.
func (s *Scheduler) RunOnce() {
	log.Println("scheduler: running weather fetch job")

	locs := append([]weather.Location(nil), s.locations...)
	if s.places != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		places, err := s.places.All(ctx)
		cancel()
		if err != nil {
			log.Printf("scheduler: listing places failed: %v", err)
		}
		for _, p := range places {
			locs = append(locs, p.Location())
		}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.concurrency)
	for _, loc := range locs {
		loc := loc // per-iteration copy (go < 1.22 loop semantics)
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.fetcher.FetchAndStore(ctx, loc); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
			}
		}()
	}
	wg.Wait()
	log.Printf("scheduler: completed weather fetch job for %d locations", len(locs))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
