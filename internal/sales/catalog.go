package sales

import (
	"context"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"golang.org/x/sync/singleflight"
)

// SharedCatalog coalesces concurrent catalog fetches from many sessions
// into one remote call.
type SharedCatalog struct {
	source Catalog
	sfg    singleflight.Group
}

func NewSharedCatalog(source Catalog) *SharedCatalog {
	return &SharedCatalog{source: source}
}

func (c *SharedCatalog) Products(ctx context.Context) ([]domain.Product, error) {
	ch := c.sfg.DoChan("products", func() (interface{}, error) {
		// detached so one caller giving up does not fail the others
		return c.source.Products(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		products := res.Val.([]domain.Product)
		out := make([]domain.Product, len(products))
		copy(out, products)
		return out, nil
	}
}
