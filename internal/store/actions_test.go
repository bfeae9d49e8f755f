package store

import (
	"testing"

	"github.com/matthieukhl/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func product(id int64, price string) models.Product {
	return models.Product{ID: id, Title: "product", Price: decimal.RequireFromString(price)}
}

func TestReduceAddToCartAccumulates(t *testing.T) {
	a, b, c := product(1, "1.50"), product(2, "2.25"), product(3, "10")
	calls := []models.Product{a, b, a, c, a, b}

	var s State
	for _, p := range calls {
		s = Reduce(s, AddToCart{Product: p})
	}

	want := map[int64]int{1: 3, 2: 2, 3: 1}
	if len(s.CartItems) != len(want) {
		t.Fatalf("cart has %d items, want %d", len(s.CartItems), len(want))
	}
	for _, item := range s.CartItems {
		if item.Quantity != want[item.Product.ID] {
			t.Errorf("product %d quantity = %d, want %d", item.Product.ID, item.Quantity, want[item.Product.ID])
		}
	}
	// insertion order
	if s.CartItems[0].Product.ID != 1 || s.CartItems[1].Product.ID != 2 || s.CartItems[2].Product.ID != 3 {
		t.Errorf("order = %v", s.CartItems)
	}
	if !s.CartTotal.Equal(decimal.RequireFromString("19")) {
		t.Errorf("total = %s, want 19", s.CartTotal)
	}
}

func TestReduceIsPure(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: product(1, "3")})
	before := s.CartItems

	next := Reduce(s, AddToCart{Product: product(1, "3")})
	next = Reduce(next, UpdateCartItemQuantity{ProductID: 1, Quantity: 7})

	if before[0].Quantity != 1 {
		t.Fatalf("earlier snapshot mutated: quantity %d", before[0].Quantity)
	}
	if !s.CartTotal.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("earlier total mutated: %s", s.CartTotal)
	}
	if next.CartItems[0].Quantity != 7 {
		t.Fatalf("next quantity = %d", next.CartItems[0].Quantity)
	}
}

func TestReduceUpdateQuantity(t *testing.T) {
	var s State
	s = Reduce(s, AddToCart{Product: product(1, "4")})
	s = Reduce(s, AddToCart{Product: product(2, "1")})

	s = Reduce(s, UpdateCartItemQuantity{ProductID: 1, Quantity: 5})
	if item, _ := s.CartItem(1); item.Quantity != 5 {
		t.Fatalf("quantity = %d", item.Quantity)
	}
	if s.CartItems[0].Product.ID != 1 {
		t.Fatal("update moved the item")
	}
	if !s.CartTotal.Equal(decimal.NewFromInt(21)) {
		t.Fatalf("total = %s", s.CartTotal)
	}

	// unknown id leaves the cart as is
	s = Reduce(s, UpdateCartItemQuantity{ProductID: 99, Quantity: 2})
	if len(s.CartItems) != 2 || s.CartCount() != 6 {
		t.Fatalf("cart = %+v", s.CartItems)
	}
}

func TestReduceNonPositiveQuantityRemoves(t *testing.T) {
	for _, q := range []int{0, -3} {
		var s State
		s = Reduce(s, AddToCart{Product: product(1, "4")})
		s = Reduce(s, AddToCart{Product: product(2, "1")})

		updated := Reduce(s, UpdateCartItemQuantity{ProductID: 1, Quantity: q})
		removed := Reduce(s, RemoveFromCart{ProductID: 1})

		if _, ok := updated.CartItem(1); ok {
			t.Fatalf("quantity %d kept the item", q)
		}
		if len(updated.CartItems) != len(removed.CartItems) || !updated.CartTotal.Equal(removed.CartTotal) {
			t.Fatalf("quantity %d differs from RemoveFromCart: %+v vs %+v", q, updated, removed)
		}
	}
}

func TestReduceRemoveAbsentIsNoop(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: product(1, "2")})
	s = Reduce(s, RemoveFromCart{ProductID: 42})
	if len(s.CartItems) != 1 || !s.CartTotal.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("state = %+v", s)
	}
}

func TestReduceClearCartThenTotal(t *testing.T) {
	s := Reduce(State{}, AddToCart{Product: product(1, "2")})
	s = Reduce(s, ClearCart{})
	s = Reduce(s, CalculateCartTotal{})
	if len(s.CartItems) != 0 || !s.CartTotal.IsZero() {
		t.Fatalf("state = %+v", s)
	}
}

func TestReduceCalculateCartTotalRepairsStaleTotal(t *testing.T) {
	s := State{CartItems: []models.CartItem{{Product: product(1, "2.50"), Quantity: 2}}}
	s = Reduce(s, CalculateCartTotal{})
	s = Reduce(s, CalculateCartTotal{})
	if !s.CartTotal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("total = %s", s.CartTotal)
	}
}

func TestReduceSelectProduct(t *testing.T) {
	p := product(3, "1")
	s := Reduce(State{}, SelectProduct{Product: &p})
	p.Title = "changed later"
	if s.SelectedProduct == nil || s.SelectedProduct.Title != "product" {
		t.Fatalf("selected = %+v", s.SelectedProduct)
	}
	s = Reduce(s, SelectProduct{})
	if s.SelectedProduct != nil {
		t.Fatal("selection not cleared")
	}
}

func TestReduceLoggedOutClearsSession(t *testing.T) {
	p := product(1, "1")
	s := Reduce(State{}, loggedIn{user: models.User{Username: "demo"}})
	s = Reduce(s, AddToCart{Product: p})
	s = Reduce(s, SelectProduct{Product: &p})
	s.Products = []models.Product{p}

	s = Reduce(s, loggedOut{})
	if s.User != nil || s.IsAuthenticated || s.SelectedProduct != nil {
		t.Fatalf("session left behind: %+v", s)
	}
	if len(s.CartItems) != 0 || !s.CartTotal.IsZero() {
		t.Fatalf("cart left behind: %+v", s.CartItems)
	}
	if len(s.Products) != 1 {
		t.Fatal("logout should keep the catalog")
	}
}
