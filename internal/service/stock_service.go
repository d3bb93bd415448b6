package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/notify"
)

type StockAPI interface {
	Products(ctx context.Context) ([]domain.Product, error)
	RegisterStockEntry(ctx context.Context, e domain.StockEntry) error
}

// StockService backs the stock intake form.
type StockService struct {
	api    StockAPI
	logger *slog.Logger
}

func NewStockService(api StockAPI, logger *slog.Logger) *StockService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StockService{api: api, logger: logger}
}

func (s *StockService) Products(ctx context.Context, n notify.Notifier) ([]domain.Product, error) {
	products, err := s.api.Products(ctx)
	if err != nil {
		n.Notify(ctx, domain.Failure("Erro ao carregar produtos", ""))
		return nil, asNetworkError("list products", err)
	}
	return products, nil
}

// Search keeps the products whose name contains query, ignoring case. An
// empty query matches everything.
func Search(products []domain.Product, query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

func (s *StockService) RegisterIntake(ctx context.Context, n notify.Notifier, form domain.StockIntakeForm) (domain.StockEntry, error) {
	if form.ProductID == nil || *form.ProductID <= 0 {
		n.Notify(ctx, domain.Failure("Selecione um produto", "É necessário escolher um produto da lista."))
		return domain.StockEntry{}, domain.NewValidationError("product_id", "select a product")
	}
	if err := domain.ValidateForm(form); err != nil {
		n.Notify(ctx, domain.Failure("Quantidade inválida", "Informe uma quantidade maior que zero."))
		return domain.StockEntry{}, err
	}

	entry := domain.StockEntry{ProductID: *form.ProductID, Quantity: *form.Quantity}
	if err := s.api.RegisterStockEntry(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "stock entry failed", "product_id", entry.ProductID, "error", err)
		n.Notify(ctx, domain.Failure("Erro ao registrar entrada", "Tente novamente mais tarde."))
		return domain.StockEntry{}, asNetworkError("register stock entry", err)
	}

	n.Notify(ctx, domain.Info("Entrada registrada", fmt.Sprintf("%d unidades adicionadas ao estoque.", entry.Quantity)))
	return entry, nil
}
