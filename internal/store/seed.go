package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/i474232898/weather-destinations/internal/destination"
)

// LoadPlaces reads a JSON array of places, used to seed the catalog.
func LoadPlaces(path string) ([]destination.Place, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read places file: %w", err)
	}
	var places []destination.Place
	if err := json.Unmarshal(b, &places); err != nil {
		return nil, fmt.Errorf("unmarshal places: %w", err)
	}
	return places, nil
}
