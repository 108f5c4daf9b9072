package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/i474232898/weather-destinations/internal/badge"
	"github.com/i474232898/weather-destinations/internal/declutter"
)

// Config bundles every tunable of the pipeline.
type Config struct {
	Badges    badge.Config     `json:"badges"`
	Declutter declutter.Config `json:"declutter"`
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		Badges:    badge.DefaultConfig(),
		Declutter: declutter.DefaultConfig(),
	}
}

// LoadConfigFile overlays the JSON file at path onto the defaults. Keys
// missing from the file keep their default values.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read pipeline config: %w", err)
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal pipeline config: %w", err)
	}
	return cfg, nil
}
