package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/notify"
	"github.com/shopspring/decimal"
)

type ProductAPI interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CreateProduct(ctx context.Context, p domain.NewProduct) error
}

// ProductService backs the "add product" form. It is stateless, the
// session's notifier is passed per call.
type ProductService struct {
	api    ProductAPI
	logger *slog.Logger
}

func NewProductService(api ProductAPI, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{api: api, logger: logger}
}

func (s *ProductService) Categories(ctx context.Context, n notify.Notifier) ([]domain.Category, error) {
	categories, err := s.api.Categories(ctx)
	if err != nil {
		n.Notify(ctx, domain.Failure("Erro ao carregar categorias", "Não foi possível carregar a lista de categorias."))
		return nil, asNetworkError("list categories", err)
	}
	return categories, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, n notify.Notifier, form domain.ProductForm) (domain.NewProduct, error) {
	if err := domain.ValidateForm(form); err != nil {
		n.Notify(ctx, domain.Failure("Campos obrigatórios", "Preencha todos os campos antes de cadastrar."))
		return domain.NewProduct{}, err
	}

	product := domain.NewProduct{
		Name:         form.Name,
		CategoryName: form.CategoryName,
		CostPrice:    decimal.NewFromFloat(*form.CostPrice),
		SalePrice:    decimal.NewFromFloat(*form.SalePrice),
	}
	if err := s.api.CreateProduct(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "product creation failed", "name", product.Name, "error", err)
		n.Notify(ctx, domain.Failure("Erro ao cadastrar produto", "Tente novamente mais tarde."))
		return domain.NewProduct{}, asNetworkError("create product", err)
	}

	n.Notify(ctx, domain.Info("Produto cadastrado", fmt.Sprintf("%s foi adicionado ao sistema.", product.Name)))
	return product, nil
}

func asNetworkError(op string, err error) error {
	if domain.IsNetwork(err) {
		return err
	}
	return &domain.NetworkError{Op: op, Err: err}
}
