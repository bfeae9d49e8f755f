package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// The catalog wire format and the persisted cart both carry prices as
	// bare JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry as served by the remote catalog
type Product struct {
	ID          int64           `json:"id" validate:"gt=0"`
	Title       string          `json:"title" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

type Rating struct {
	Rate  float64 `json:"rate" validate:"gte=0,lte=5"`
	Count int     `json:"count" validate:"gte=0"`
}

// FindProduct returns the product with the given id from a catalog slice.
func FindProduct(products []Product, id int64) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Product categories served by the demo catalog
const (
	CategoryElectronics = "electronics"
	CategoryJewelery    = "jewelery"
	CategoryMens        = "men's clothing"
	CategoryWomens      = "women's clothing"
)
