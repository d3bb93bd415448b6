package http

import (
	"encoding/json"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/sales"
	"github.com/shopspring/decimal"
)

// money renders amounts as JSON numbers with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type ProductDTO struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	SalePrice     json.Number `json:"sale_price"`
	StockQuantity int         `json:"stock_quantity"`
}

type SelectionDTO struct {
	ProductID     int64       `json:"product_id"`
	ProductName   string      `json:"product_name"`
	UnitPrice     json.Number `json:"unit_price"`
	StockQuantity int         `json:"stock_quantity"`
}

type CartLineDTO struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	Subtotal    json.Number `json:"subtotal"`
	AddedAt     time.Time   `json:"added_at"`
}

type CartDTO struct {
	Lines []CartLineDTO `json:"lines"`
	Total json.Number   `json:"total"`
	State string        `json:"state"`
}

type RemoveLineResponseDTO struct {
	Removed int     `json:"removed"`
	Cart    CartDTO `json:"cart"`
}

type ReceiptDTO struct {
	ID          string        `json:"id"`
	Lines       []CartLineDTO `json:"lines"`
	Total       json.Number   `json:"total"`
	CompletedAt time.Time     `json:"completed_at"`
}

type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreatedProductDTO struct {
	Name         string      `json:"nome"`
	CategoryName string      `json:"nome_categoria"`
	CostPrice    json.Number `json:"preco_custo"`
	SalePrice    json.Number `json:"preco_venda"`
}

type StockEntryDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	out := make([]ProductDTO, len(products))
	for i, p := range products {
		out[i] = ProductDTO{ID: p.ID, Name: p.Name, SalePrice: money(p.SalePrice), StockQuantity: p.StockQuantity}
	}
	return out
}

func toSelectionDTO(s sales.Selection) SelectionDTO {
	return SelectionDTO{
		ProductID:     s.ProductID,
		ProductName:   s.ProductName,
		UnitPrice:     money(s.UnitPrice),
		StockQuantity: s.StockQuantity,
	}
}

func toLineDTO(l domain.CartLine) CartLineDTO {
	return CartLineDTO{
		ProductID:   l.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Quantity,
		UnitPrice:   money(l.UnitPrice),
		Subtotal:    money(l.Subtotal),
		AddedAt:     l.AddedAt,
	}
}

func toLineDTOs(lines []domain.CartLine) []CartLineDTO {
	out := make([]CartLineDTO, len(lines))
	for i, l := range lines {
		out[i] = toLineDTO(l)
	}
	return out
}

func toCartDTO(m *sales.Manager) CartDTO {
	lines := m.Lines()
	return CartDTO{
		Lines: toLineDTOs(lines),
		Total: money(domain.NewCart(lines).Total()),
		State: m.State().String(),
	}
}

func toReceiptDTO(r domain.Receipt) ReceiptDTO {
	return ReceiptDTO{
		ID:          r.ID,
		Lines:       toLineDTOs(r.Lines),
		Total:       money(r.Total),
		CompletedAt: r.CompletedAt,
	}
}
