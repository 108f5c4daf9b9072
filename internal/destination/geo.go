package destination

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Point converts the position to an orb point (lon, lat order).
func (p Position) Point() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b Position) float64 {
	return geo.DistanceHaversine(a.Point(), b.Point()) / 1000
}

// BoundAround returns the lat/lon box enclosing a circle of radiusKm around
// center. Callers still need an exact distance check for the corners.
func BoundAround(center Position, radiusKm float64) orb.Bound {
	return geo.NewBoundAroundPoint(center.Point(), radiusKm*1000)
}
