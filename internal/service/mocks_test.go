package service

import (
	"context"
	"errors"

	"github.com/daSkciN/estoque-app-front/internal/domain"
)

var errUpstream = errors.New("connection refused")

type mockAPI struct {
	categories    []domain.Category
	categoriesErr error
	created       []domain.NewProduct
	createErr     error

	products    []domain.Product
	productsErr error
	entries     []domain.StockEntry
	entryErr    error
}

func (m *mockAPI) Categories(context.Context) ([]domain.Category, error) {
	return m.categories, m.categoriesErr
}

func (m *mockAPI) CreateProduct(_ context.Context, p domain.NewProduct) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, p)
	return nil
}

func (m *mockAPI) Products(context.Context) ([]domain.Product, error) {
	return m.products, m.productsErr
}

func (m *mockAPI) RegisterStockEntry(_ context.Context, e domain.StockEntry) error {
	if m.entryErr != nil {
		return m.entryErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func ptr[T any](v T) *T { return &v }
