package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/matthieukhl/storefront/internal/models"
)

//go:embed fixtures/products.json
var fixtureJSON []byte

// FixtureJSON returns the embedded demo catalog in wire format.
func FixtureJSON() []byte {
	return fixtureJSON
}

// FixtureSource serves the embedded demo catalog, for offline use
type FixtureSource struct {
	products []models.Product
}

func NewFixtureSource() (*FixtureSource, error) {
	var products []models.Product
	if err := json.Unmarshal(fixtureJSON, &products); err != nil {
		return nil, fmt.Errorf("failed to decode fixture catalog: %w", err)
	}
	if err := Validate(products); err != nil {
		return nil, err
	}
	return &FixtureSource{products: products}, nil
}

func (s *FixtureSource) Products(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *FixtureSource) Name() string {
	return "fixture"
}

// Compile-time interface check
var _ Source = (*FixtureSource)(nil)
