package declutter

import (
	"math"

	"github.com/i474232898/weather-destinations/internal/destination"
)

// CellKey identifies a fixed geographic grid cell.
type CellKey struct {
	Row int
	Col int
}

// CellOf returns the grid cell containing pos. Cells are square in degrees,
// GridCellSizeKm wide at the equator.
func (c Config) CellOf(pos destination.Position) CellKey {
	size := c.GridCellSizeKm / c.KmPerDegree
	return CellKey{
		Row: int(math.Floor(pos.Lat / size)),
		Col: int(math.Floor(pos.Lon / size)),
	}
}
