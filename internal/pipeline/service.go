package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/i474232898/weather-destinations/internal/declutter"
	"github.com/i474232898/weather-destinations/internal/destination"
	"github.com/i474232898/weather-destinations/internal/weather"
)

// CandidateSource lists the destinations around a point.
type CandidateSource interface {
	Candidates(ctx context.Context, center destination.Position, radiusKm float64) ([]destination.Candidate, error)
}

// OriginProvider supplies the baseline weather.
type OriginProvider interface {
	Origin(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, weather.Forecast, error)
}

// Request describes one search.
type Request struct {
	Session  string
	Center   destination.Position
	City     string
	Country  string
	Viewport declutter.Viewport
}

// Response is a committed run.
type Response struct {
	Token Token `json:"run"`
	Output
}

// MaxSessions bounds the number of sessions whose latest run is tracked.
// The least recently used session is forgotten first.
const MaxSessions = 4096

// Service feeds the pipeline from the catalog and weather providers.
type Service struct {
	cfg     Config
	source  CandidateSource
	origins OriginProvider

	mu      sync.Mutex
	runners *lru.Cache[string, *Runner]
}

// NewService creates a new Service.
func NewService(cfg Config, source CandidateSource, origins OriginProvider) *Service {
	return newService(cfg, source, origins, MaxSessions)
}

func newService(cfg Config, source CandidateSource, origins OriginProvider, sessions int) *Service {
	runners, err := lru.New[string, *Runner](sessions)
	if err != nil {
		panic(fmt.Sprintf("session cache: %v", err))
	}
	return &Service{
		cfg:     cfg,
		source:  source,
		origins: origins,
		runners: runners,
	}
}

// Config returns the pipeline settings in use.
func (s *Service) Config() Config {
	return s.cfg
}

// runner returns the session's runner. Requests without a session never
// compete with each other.
func (s *Service) runner(session string) *Runner {
	if session == "" {
		return &Runner{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runners.Get(session)
	if !ok {
		r = &Runner{}
		s.runners.Add(session, r)
	}
	return r
}

// Latest returns the last committed run of a session.
func (s *Service) Latest(session string) (Response, bool) {
	s.mu.Lock()
	r, ok := s.runners.Get(session)
	s.mu.Unlock()
	if !ok {
		return Response{}, false
	}
	out, tok, ok := r.Latest()
	if !ok {
		return Response{}, false
	}
	return Response{Token: tok, Output: out}, true
}

// Markers runs a search. A request overtaken by a newer one from the same
// session returns ErrSuperseded.
func (s *Service) Markers(ctx context.Context, req Request) (Response, error) {
	runner := s.runner(req.Session)
	tok := runner.Begin()

	candidates, err := s.source.Candidates(ctx, req.Center, req.Viewport.RadiusKm)
	if err != nil {
		return Response{}, fmt.Errorf("load candidates: %w", err)
	}

	var origin *destination.Candidate
	lat, lon := req.Center.Lat, req.Center.Lon
	loc := weather.Location{City: req.City, Country: req.Country, Lat: &lat, Lon: &lon}
	snapshot, forecast, err := s.origins.Origin(ctx, loc)
	if err != nil {
		log.Printf("INFO: origin weather unavailable for %s, using synthetic origin: %v", loc.Key(), err)
		o := destination.SyntheticOrigin(req.Center, candidates)
		origin = &o
	} else {
		o := destination.OriginFromWeather(req.Center, snapshot, forecast)
		origin = &o
	}

	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	out := Run(s.cfg, origin, candidates, req.Viewport)
	if err := runner.Commit(tok, out); err != nil {
		log.Printf("DEBUG: dropping run %s (generation %d): %v", tok.ID, tok.Generation, err)
		return Response{}, err
	}

	log.Printf("DEBUG: run %s selected %d of %d candidates", tok.ID, len(out.Markers), out.Candidates)
	return Response{Token: tok, Output: out}, nil
}

// Evaluate runs the pipeline on caller-supplied data without any I/O.
func (s *Service) Evaluate(origin *destination.Candidate, candidates []destination.Candidate, vp declutter.Viewport) Output {
	return Run(s.cfg, origin, candidates, vp)
}
