package catalog

import (
	"fmt"

	"github.com/matthieukhl/storefront/internal/config"
)

// NewSource creates a catalog source based on configuration
func NewSource(cfg *config.CatalogConfig) (Source, error) {
	switch cfg.Source {
	case "http":
		return NewHTTPSource(cfg.URL, cfg.Timeout), nil
	case "fixture":
		return NewFixtureSource()
	default:
		return nil, fmt.Errorf("unsupported catalog source: %s", cfg.Source)
	}
}
