// Package catalog fetches the product list from the remote catalog service.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/matthieukhl/storefront/internal/models"
)

// Source produces the full product catalog
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
	Name() string
}

var (
	// ErrUnavailable marks transport failures and non-success responses.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrMalformed marks responses that could not be decoded or validated.
	ErrMalformed = errors.New("malformed catalog response")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every product of a decoded catalog.
func Validate(products []models.Product) error {
	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("%w: product %d: %v", ErrMalformed, i, err)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("%w: product %d: negative price %s", ErrMalformed, p.ID, p.Price)
		}
	}
	return nil
}
