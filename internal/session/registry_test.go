package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/cache"
	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	m     sync.Mutex
	carts map[string][]domain.CartLine
	err   error
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string][]domain.CartLine)}
}

func (c *mockCache) Get(_ context.Context, id string) ([]domain.CartLine, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	lines, ok := c.carts[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return lines, nil
}

func (c *mockCache) Set(_ context.Context, id string, lines []domain.CartLine) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.carts[id] = lines
	return c.err
}

func (c *mockCache) Delete(_ context.Context, id string) error {
	c.m.Lock()
	defer c.m.Unlock()
	delete(c.carts, id)
	return c.err
}

func (c *mockCache) get(id string) ([]domain.CartLine, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	lines, ok := c.carts[id]
	return lines, ok
}

type stubCatalog struct{}

func (stubCatalog) Products(context.Context) ([]domain.Product, error) {
	return []domain.Product{{ID: 1, Name: "Mouse", SalePrice: decimal.NewFromInt(50), StockQuantity: 10}}, nil
}

type stubOrders struct{}

func (stubOrders) SubmitSale(context.Context, domain.Sale) error { return nil }

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }

func newTestRegistry(c cache.CartCache) *Registry {
	return NewRegistry(Deps{Catalog: stubCatalog{}, Orders: stubOrders{}, Cache: c}, time.Minute)
}

func TestGet_ReturnsSameSessionForSameID(t *testing.T) {
	r := newTestRegistry(newMockCache())
	ctx := context.Background()

	a := r.Get(ctx, "s1")
	b := r.Get(ctx, "s1")
	c := r.Get(ctx, "s2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, r.Len())
}

func TestGet_ConcurrentCreationYieldsOneSession(t *testing.T) {
	r := newTestRegistry(newMockCache())

	var wg sync.WaitGroup
	got := make([]*Session, 10)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.Get(context.Background(), "s1")
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
}

func TestCartMutationsAreWrittenThrough(t *testing.T) {
	c := newMockCache()
	r := newTestRegistry(c)
	ctx := context.Background()

	s := r.Get(ctx, "s1")
	_, err := s.Cart.LoadCatalog(ctx)
	require.NoError(t, err)

	_, err = s.Cart.AddLine(ctx, domain.AddLineForm{ProductID: int64Ptr(1), Quantity: intPtr(2), UnitPrice: floatPtr(50)})
	require.NoError(t, err)

	lines, ok := c.get("s1")
	require.True(t, ok)
	assert.Len(t, lines, 1)

	_, err = s.Cart.Checkout(ctx)
	require.NoError(t, err)

	_, ok = c.get("s1")
	assert.False(t, ok, "checked out cart should be removed from the cache")
}

func TestGet_RestoresCartFromCache(t *testing.T) {
	c := newMockCache()
	c.carts["s1"] = []domain.CartLine{
		domain.NewCartLine(domain.Product{ID: 1, Name: "Mouse"}, 2, decimal.NewFromInt(50), time.Now()),
	}
	r := newTestRegistry(c)

	s := r.Get(context.Background(), "s1")
	assert.Len(t, s.Cart.Lines(), 1)
	assert.Equal(t, "100", s.Cart.Total().String())
	assert.Equal(t, domain.CartStateBuilding, s.Cart.State())
}

func TestGet_CacheErrorStartsEmpty(t *testing.T) {
	c := newMockCache()
	c.err = errors.New("redis down")
	r := newTestRegistry(c)

	s := r.Get(context.Background(), "s1")
	assert.Empty(t, s.Cart.Lines())
}

func TestSessionNotificationsLandInInbox(t *testing.T) {
	r := newTestRegistry(newMockCache())
	ctx := context.Background()

	s := r.Get(ctx, "s1")
	_, err := s.Cart.Checkout(ctx)
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	toasts := s.Inbox.Drain()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Carrinho vazio", toasts[0].Title)
	assert.Empty(t, r.Get(ctx, "s2").Inbox.Drain())
}

func TestSweep_EvictsIdleSessions(t *testing.T) {
	r := newTestRegistry(newMockCache())
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	r.Get(ctx, "old")
	now = now.Add(45 * time.Second)
	r.Get(ctx, "fresh")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Zero(t, r.Len())
}

func TestSweep_EvictedCartComesBackFromCache(t *testing.T) {
	c := newMockCache()
	r := newTestRegistry(c)
	now := time.Now()
	r.now = func() time.Time { return now }
	ctx := context.Background()

	s := r.Get(ctx, "s1")
	_, _ = s.Cart.LoadCatalog(ctx)
	_, err := s.Cart.AddLine(ctx, domain.AddLineForm{ProductID: int64Ptr(1), Quantity: intPtr(1), UnitPrice: floatPtr(50)})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, r.Sweep())

	again := r.Get(ctx, "s1")
	assert.NotSame(t, s, again)
	assert.Len(t, again.Cart.Lines(), 1)
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := newTestRegistry(newMockCache())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
