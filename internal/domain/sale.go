package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Sale is the aggregated order sent to the remote API on checkout.
type Sale struct {
	Items []SaleItem
}

func SaleFromLines(lines []CartLine) Sale {
	items := make([]SaleItem, len(lines))
	for i, line := range lines {
		items[i] = SaleItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return Sale{Items: items}
}

// Receipt describes a sale accepted by the remote API.
type Receipt struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Lines       []CartLine      `json:"lines"`
	Total       decimal.Decimal `json:"total"`
	CompletedAt time.Time       `json:"completed_at"`
}

type NewProduct struct {
	Name         string
	CategoryName string
	CostPrice    decimal.Decimal
	SalePrice    decimal.Decimal
}

type StockEntry struct {
	ProductID int64
	Quantity  int
}
