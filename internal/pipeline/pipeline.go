// Package pipeline runs scoring, badge arbitration and marker selection over
// one search's candidates.
package pipeline

import (
	"github.com/i474232898/weather-destinations/internal/badge"
	"github.com/i474232898/weather-destinations/internal/declutter"
	"github.com/i474232898/weather-destinations/internal/destination"
)

// Output is the result of one run.
type Output struct {
	Origin        *destination.Candidate `json:"origin,omitempty"`
	Markers       []declutter.Marker     `json:"markers"`
	Candidates    int                    `json:"candidates"`
	MaxMarkers    int                    `json:"maxMarkers"`
	MinDistanceKm float64                `json:"minDistanceKm"`
}

// Run is pure: the same inputs always produce the same output. A nil origin
// is replaced by a synthetic one built from the candidates. No candidates
// means no markers.
func Run(cfg Config, origin *destination.Candidate, candidates []destination.Candidate, vp declutter.Viewport) Output {
	out := Output{
		Markers:       []declutter.Marker{},
		MaxMarkers:    cfg.Declutter.MaxMarkers(vp.Zoom, vp.RadiusKm),
		MinDistanceKm: cfg.Declutter.MinMarkerDistanceKm(vp.Zoom),
	}
	// A candidate flagged as origin stands in for a missing origin and is
	// never scored as a destination.
	dests := make([]destination.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Origin {
			if origin == nil {
				c := c
				origin = &c
			}
			continue
		}
		dests = append(dests, c)
	}
	candidates = dests
	out.Candidates = len(candidates)
	if len(candidates) == 0 {
		return out
	}

	var o destination.Candidate
	if origin != nil {
		o = destination.AsOrigin(*origin)
	} else {
		o = destination.SyntheticOrigin(centroid(candidates), candidates)
	}
	out.Origin = &o

	evals := badge.EvaluateAll(cfg.Badges, candidates, o)
	results := badge.Arbitrate(cfg.Badges, evals)

	sel := declutter.NewSelector(cfg.Declutter, cfg.Badges.DetailOnlySet())
	out.Markers = sel.Select(&o, results, vp)
	return out
}

func centroid(cs []destination.Candidate) destination.Position {
	var lat, lon float64
	for _, c := range cs {
		lat += c.Position.Lat
		lon += c.Position.Lon
	}
	n := float64(len(cs))
	return destination.Position{Lat: lat / n, Lon: lon / n}
}
