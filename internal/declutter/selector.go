package declutter

import (
	"math"
	"sort"

	"github.com/i474232898/weather-destinations/internal/badge"
	"github.com/i474232898/weather-destinations/internal/destination"
)

// Viewport is the part of the map state that drives selection.
type Viewport struct {
	Zoom     int     `json:"zoom" validate:"gte=1,lte=22"`
	RadiusKm float64 `json:"radiusKm" validate:"gt=0"`
}

// Phase records why a marker made it onto the map.
type Phase string

const (
	PhaseOrigin  Phase = "origin"
	PhasePinned  Phase = "pinned"
	PhaseAlways  Phase = "always"
	PhaseSpacing Phase = "spacing"
	PhaseGrid    Phase = "grid"
)

// Marker is one selected destination with its final badges and metrics.
type Marker struct {
	Candidate destination.Candidate `json:"candidate"`
	Badges    []badge.Type          `json:"badges"`
	MapBadges []badge.Type          `json:"mapBadges"`
	Metrics   badge.Evaluation      `json:"metrics"`
	Phase     Phase                 `json:"phase"`
}

func markerOf(r badge.Result, phase Phase) Marker {
	badges := r.Badges
	if badges == nil {
		badges = []badge.Type{}
	}
	mapBadges := r.MapBadges
	if mapBadges == nil {
		mapBadges = []badge.Type{}
	}
	return Marker{
		Candidate: r.Candidate,
		Badges:    badges,
		MapBadges: mapBadges,
		Metrics:   r.Evaluation,
		Phase:     phase,
	}
}

// Selector picks the markers to draw.
type Selector struct {
	cfg        Config
	detailOnly map[badge.Type]bool
}

// NewSelector creates a selector. detailOnly badges are ignored when
// deciding whether a candidate "has badges".
func NewSelector(cfg Config, detailOnly map[badge.Type]bool) *Selector {
	return &Selector{cfg: cfg, detailOnly: detailOnly}
}

// selection is the state of one Select call.
type selection struct {
	markers []Marker
	spaced  []destination.Position
	cells   map[CellKey]int
}

func (s *selection) accept(m Marker, cell CellKey) {
	s.markers = append(s.markers, m)
	s.spaced = append(s.spaced, m.Candidate.Position)
	s.cells[cell]++
}

func (s *selection) clear(pos destination.Position, minKm float64) bool {
	for _, p := range s.spaced {
		if destination.DistanceKm(pos, p) < minKm {
			return false
		}
	}
	return true
}

// Select returns origin first, then pinned markers and holders of the
// always-shown badges, then the spaced remainder. The mandatory markers
// count toward the marker budget for vp and the remainder only fills what
// they leave; mandatory markers alone can exceed it.
func (s *Selector) Select(origin *destination.Candidate, results []badge.Result, vp Viewport) []Marker {
	maxMarkers := s.cfg.MaxMarkers(vp.Zoom, vp.RadiusKm)
	minKm := s.cfg.MinMarkerDistanceKm(vp.Zoom)
	phase1 := s.cfg.Phase1Slots(maxMarkers)

	sel := &selection{cells: make(map[CellKey]int)}

	if origin != nil {
		sel.markers = append(sel.markers, markerOf(badge.Result{
			Evaluation: badge.Evaluation{Candidate: *origin},
		}, PhaseOrigin))
	}

	// Pinned markers ignore spacing and do not block others.
	var rest []badge.Result
	for _, r := range results {
		if r.Candidate.Pinned() {
			sel.markers = append(sel.markers, markerOf(r, PhasePinned))
			continue
		}
		rest = append(rest, r)
	}

	var remainder []badge.Result
	for _, r := range rest {
		if s.alwaysShown(r) {
			sel.accept(markerOf(r, PhaseAlways), s.cfg.CellOf(r.Candidate.Position))
			continue
		}
		remainder = append(remainder, r)
	}

	for _, r := range s.sorted(remainder) {
		if len(sel.markers) >= maxMarkers {
			break
		}
		pos := r.Candidate.Position
		if !sel.clear(pos, minKm) {
			continue
		}
		cell := s.cfg.CellOf(pos)
		phase := PhaseSpacing
		if len(sel.markers) >= phase1 {
			phase = PhaseGrid
			if r.VisibleCount(s.detailOnly) == 0 && sel.cells[cell] >= s.cfg.CellQuota {
				continue
			}
		}
		sel.accept(markerOf(r, phase), cell)
	}

	return sel.markers
}

func (s *Selector) alwaysShown(r badge.Result) bool {
	for _, t := range s.cfg.AlwaysShow {
		if r.Has(t) {
			return true
		}
	}
	return false
}

// within reports whether a and b are close enough to count as a tie.
func within(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// sorted orders by visible badge count, then attractiveness and temperature
// descending where values inside the tolerance tie and fall through to the
// next key, then distance ascending. Remaining ties keep input order.
func (s *Selector) sorted(rs []badge.Result) []badge.Result {
	type ranked struct {
		r      badge.Result
		badges int
	}
	items := make([]ranked, len(rs))
	for i, r := range rs {
		items[i] = ranked{r: r, badges: r.VisibleCount(s.detailOnly)}
	}

	attrTol, tempTol := s.cfg.AttractivenessTolerance, s.cfg.TempToleranceC
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ca, cb := a.r.Candidate, b.r.Candidate
		switch {
		case a.badges != b.badges:
			return a.badges > b.badges
		case !within(ca.Attractiveness, cb.Attractiveness, attrTol):
			return ca.Attractiveness > cb.Attractiveness
		case !within(ca.Temperature, cb.Temperature, tempTol):
			return ca.Temperature > cb.Temperature
		default:
			return ca.DistanceKm < cb.DistanceKm
		}
	})

	out := make([]badge.Result, len(items))
	for i, it := range items {
		out[i] = it.r
	}
	return out
}
