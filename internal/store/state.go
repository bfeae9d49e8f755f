package store

import (
	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// State is an immutable snapshot of the client. Reducers never modify a
// published State or the slices it references; callers must not either.
type State struct {
	// Version increases with every committed change.
	Version uint64 `json:"version"`

	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`

	// IsLoading is true while any login or catalog fetch is in flight.
	IsLoading bool `json:"isLoading"`

	Products        []models.Product `json:"products"`
	SelectedProduct *models.Product  `json:"selectedProduct"`

	CartItems []models.CartItem `json:"cartItems"`
	CartTotal decimal.Decimal   `json:"cartTotal"`
}

// CartCount is the number of units in the cart.
func (s State) CartCount() int {
	return models.CartCount(s.CartItems)
}

// CartItem returns the cart entry for productID.
func (s State) CartItem(productID int64) (models.CartItem, bool) {
	for _, item := range s.CartItems {
		if item.Product.ID == productID {
			return item, true
		}
	}
	return models.CartItem{}, false
}

func (s State) withCart(items []models.CartItem) State {
	s.CartItems = items
	s.CartTotal = models.CartTotal(items)
	return s
}
