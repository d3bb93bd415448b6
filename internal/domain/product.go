package domain

import "github.com/shopspring/decimal"

// Product is the catalog entry as last fetched from the remote API.
// StockQuantity is only authoritative at fetch time.
type Product struct {
	ID            int64
	Name          string
	SalePrice     decimal.Decimal
	StockQuantity int
}

type Category struct {
	ID   int64
	Name string
}

// FindProduct returns the product with the given id from a catalog snapshot.
func FindProduct(products []Product, id int64) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindProductByName matches on the exact display name, first hit wins.
func FindProductByName(products []Product, name string) (Product, bool) {
	for _, p := range products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
