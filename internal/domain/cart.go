package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one product-selection event. ProductID doubles as the line
// identifier, so two additions of the same product share it.
type CartLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	AddedAt     time.Time       `json:"added_at"`
}

// NewCartLine snapshots the product name and freezes the subtotal.
func NewCartLine(product Product, quantity int, unitPrice decimal.Decimal, addedAt time.Time) CartLine {
	return CartLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		AddedAt:     addedAt,
	}
}

// Cart keeps lines in insertion order. The total is never stored.
type Cart struct {
	lines []CartLine
}

func NewCart(lines []CartLine) *Cart {
	c := &Cart{}
	c.lines = append(c.lines, lines...)
	return c
}

func (c *Cart) Append(line CartLine) {
	c.lines = append(c.lines, line)
}

// RemoveProduct drops every line carrying productID and reports how many
// were removed. The remaining lines keep their relative order.
func (c *Cart) RemoveProduct(productID int64) int {
	kept := c.lines[:0]
	removed := 0
	for _, line := range c.lines {
		if line.ProductID == productID {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	// zero the tail so dropped lines are not retained by the backing array
	for i := len(kept); i < len(c.lines); i++ {
		c.lines[i] = CartLine{}
	}
	c.lines = kept
	return removed
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy, callers cannot mutate the cart through it.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal)
	}
	return total
}
