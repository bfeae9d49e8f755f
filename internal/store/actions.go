package store

import (
	"github.com/matthieukhl/storefront/internal/models"
)

// Action is a state transition applied by Reduce or Store.Dispatch.
type Action interface {
	reduce(State) State
	name() string
}

// Reduce applies a to s and returns the new state. It is pure: s and every
// slice it references are left untouched.
func Reduce(s State, a Action) State {
	return a.reduce(s)
}

// AddToCart increments the quantity of Product, appending it with quantity 1
// if it is not in the cart yet.
type AddToCart struct {
	Product models.Product
}

func (a AddToCart) reduce(s State) State {
	items := make([]models.CartItem, 0, len(s.CartItems)+1)
	found := false
	for _, item := range s.CartItems {
		if item.Product.ID == a.Product.ID {
			item.Quantity++
			found = true
		}
		items = append(items, item)
	}
	if !found {
		items = append(items, models.CartItem{Product: a.Product, Quantity: 1})
	}
	return s.withCart(items)
}

func (AddToCart) name() string { return "add_to_cart" }

// RemoveFromCart drops the item for ProductID. Absent ids are a no-op.
type RemoveFromCart struct {
	ProductID int64
}

func (a RemoveFromCart) reduce(s State) State {
	items := make([]models.CartItem, 0, len(s.CartItems))
	for _, item := range s.CartItems {
		if item.Product.ID != a.ProductID {
			items = append(items, item)
		}
	}
	return s.withCart(items)
}

func (RemoveFromCart) name() string { return "remove_from_cart" }

// UpdateCartItemQuantity sets the quantity of ProductID in place. A quantity
// of zero or less removes the item.
type UpdateCartItemQuantity struct {
	ProductID int64
	Quantity  int
}

func (a UpdateCartItemQuantity) reduce(s State) State {
	if a.Quantity <= 0 {
		return RemoveFromCart{ProductID: a.ProductID}.reduce(s)
	}
	items := make([]models.CartItem, len(s.CartItems))
	for i, item := range s.CartItems {
		if item.Product.ID == a.ProductID {
			item.Quantity = a.Quantity
		}
		items[i] = item
	}
	return s.withCart(items)
}

func (UpdateCartItemQuantity) name() string { return "update_cart_item_quantity" }

// ClearCart empties the cart.
type ClearCart struct{}

func (ClearCart) reduce(s State) State {
	return s.withCart(nil)
}

func (ClearCart) name() string { return "clear_cart" }

// SelectProduct sets or, with a nil Product, clears the selected product.
type SelectProduct struct {
	Product *models.Product
}

func (a SelectProduct) reduce(s State) State {
	if a.Product == nil {
		s.SelectedProduct = nil
		return s
	}
	p := *a.Product
	s.SelectedProduct = &p
	return s
}

func (SelectProduct) name() string { return "set_selected_product" }

// CalculateCartTotal recomputes the cached cart total.
type CalculateCartTotal struct{}

func (CalculateCartTotal) reduce(s State) State {
	return s.withCart(s.CartItems)
}

func (CalculateCartTotal) name() string { return "calculate_cart_total" }

// Transitions below are committed by the store's I/O operations only.

type loggedIn struct {
	user models.User
}

func (a loggedIn) reduce(s State) State {
	u := a.user
	s.User = &u
	s.IsAuthenticated = true
	return s
}

func (loggedIn) name() string { return "login" }

type loggedOut struct{}

func (loggedOut) reduce(s State) State {
	s.User = nil
	s.IsAuthenticated = false
	s.SelectedProduct = nil
	return s.withCart(nil)
}

func (loggedOut) name() string { return "logout" }

type productsLoaded struct {
	products []models.Product
}

func (a productsLoaded) reduce(s State) State {
	s.Products = a.products
	return s
}

func (productsLoaded) name() string { return "fetch_products" }

type restored struct {
	user  *models.User
	items []models.CartItem
}

func (a restored) reduce(s State) State {
	if a.user != nil {
		s = loggedIn{user: *a.user}.reduce(s)
	}
	if a.items != nil {
		s = s.withCart(a.items)
	}
	return s
}

func (restored) name() string { return "restore" }
