package sales

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

type OrderSubmitter interface {
	SubmitSale(ctx context.Context, sale domain.Sale) error
}

// Recorder keeps a local copy of accepted sales.
type Recorder interface {
	RecordSale(ctx context.Context, receipt domain.Receipt) error
}

// Selection is the form prefill produced when the user picks a product.
type Selection struct {
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockQuantity int             `json:"stock_quantity"`
}

// Manager owns the cart of one in-progress sale. Add and remove are
// rejected while a submission is in flight so a successful checkout never
// clears lines it did not send.
type Manager struct {
	mu       sync.Mutex
	cart     *domain.Cart
	state    domain.CartState
	products []domain.Product

	sessionID string
	catalog   Catalog
	orders    OrderSubmitter
	notifier  notify.Notifier
	recorder  Recorder
	onChange  func(lines []domain.CartLine)
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Manager)

func WithSessionID(id string) Option {
	return func(m *Manager) { m.sessionID = id }
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithLines restores a previously persisted cart.
func WithLines(lines []domain.CartLine) Option {
	return func(m *Manager) { m.cart = domain.NewCart(lines) }
}

// OnChange is called with a copy of the lines after every mutation, while
// the manager lock is held.
func OnChange(fn func(lines []domain.CartLine)) Option {
	return func(m *Manager) { m.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(catalog Catalog, orders OrderSubmitter, notifier notify.Notifier, opts ...Option) *Manager {
	m := &Manager{
		cart:     domain.NewCart(nil),
		catalog:  catalog,
		orders:   orders,
		notifier: notifier,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.state = domain.CartStateEmpty
	if !m.cart.IsEmpty() {
		m.state = domain.CartStateBuilding
	}
	return m
}

// LoadCatalog replaces the catalog snapshot. On failure the previous
// snapshot is kept.
func (m *Manager) LoadCatalog(ctx context.Context) ([]domain.Product, error) {
	products, err := m.catalog.Products(ctx)
	if err != nil {
		m.notifier.Notify(ctx, domain.Failure("Erro ao carregar produtos", "Não foi possível obter a lista de produtos."))
		return nil, asNetworkError("load catalog", err)
	}

	snapshot := make([]domain.Product, len(products))
	copy(snapshot, products)

	m.mu.Lock()
	m.products = snapshot
	m.mu.Unlock()

	out := make([]domain.Product, len(snapshot))
	copy(out, snapshot)
	return out, nil
}

func (m *Manager) Catalog() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out
}

func (m *Manager) SelectProduct(name string) (Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := domain.FindProductByName(m.products, name)
	if !ok {
		return Selection{}, domain.NewValidationError("name", "unknown product")
	}
	return Selection{
		ProductID:     p.ID,
		ProductName:   p.Name,
		UnitPrice:     p.SalePrice,
		StockQuantity: p.StockQuantity,
	}, nil
}

func (m *Manager) AddLine(ctx context.Context, form domain.AddLineForm) (domain.CartLine, error) {
	if err := domain.ValidateForm(form); err != nil {
		m.notifier.Notify(ctx, domain.Failure("Erro", "Preencha todos os campos antes de adicionar."))
		return domain.CartLine{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == domain.CartStateSubmitting {
		m.notifier.Notify(ctx, domain.Failure("Venda em andamento", "Aguarde a finalização da venda atual."))
		return domain.CartLine{}, domain.ErrCheckoutInProgress
	}

	product, ok := domain.FindProduct(m.products, *form.ProductID)
	if !ok {
		m.notifier.Notify(ctx, domain.Failure("Produto não encontrado", "Selecione um produto da lista."))
		return domain.CartLine{}, domain.NewValidationError("product_id", "unknown product")
	}

	line := domain.NewCartLine(product, *form.Quantity, decimal.NewFromFloat(*form.UnitPrice), m.now())
	m.cart.Append(line)
	m.setState(domain.CartStateBuilding)
	m.changed()

	m.notifier.Notify(ctx, domain.Info("Item adicionado!",
		fmt.Sprintf("%dx %s adicionado ao carrinho.", line.Quantity, line.ProductName)))
	return line, nil
}

// RemoveLine drops every line for productID and returns how many went.
// An unknown id is a no-op.
func (m *Manager) RemoveLine(ctx context.Context, productID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == domain.CartStateSubmitting {
		m.notifier.Notify(ctx, domain.Failure("Venda em andamento", "Aguarde a finalização da venda atual."))
		return 0, domain.ErrCheckoutInProgress
	}

	removed := m.cart.RemoveProduct(productID)
	if removed == 0 {
		return 0, nil
	}
	if m.cart.IsEmpty() {
		m.setState(domain.CartStateEmpty)
	} else {
		m.setState(domain.CartStateBuilding)
	}
	m.changed()

	m.notifier.Notify(ctx, domain.Info("Item removido", "O item foi removido do carrinho."))
	return removed, nil
}

func (m *Manager) Lines() []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Lines()
}

func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Total()
}

func (m *Manager) State() domain.CartState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Checkout validates the cart against the catalog snapshot and submits it
// as one sale. The cart is cleared only when the remote API accepts it.
func (m *Manager) Checkout(ctx context.Context) (domain.Receipt, error) {
	m.mu.Lock()

	if m.state == domain.CartStateSubmitting {
		m.mu.Unlock()
		m.notifier.Notify(ctx, domain.Failure("Venda em andamento", "Aguarde a finalização da venda atual."))
		return domain.Receipt{}, domain.ErrCheckoutInProgress
	}
	if m.cart.IsEmpty() {
		m.mu.Unlock()
		m.notifier.Notify(ctx, domain.Failure("Carrinho vazio", "Adicione produtos antes de finalizar a venda."))
		return domain.Receipt{}, domain.ErrEmptyCart
	}

	m.setState(domain.CartStateValidating)
	lines := m.cart.Lines()
	if err := checkStock(lines, m.products); err != nil {
		m.setState(domain.CartStateBuilding)
		m.mu.Unlock()
		m.notifier.Notify(ctx, domain.Failure("Estoque insuficiente",
			fmt.Sprintf("O produto %s possui apenas %d unidade(s) disponível(is).", err.ProductName, err.Available)))
		return domain.Receipt{}, err
	}

	total := m.cart.Total()
	m.setState(domain.CartStateSubmitting)
	m.mu.Unlock()

	submitErr := m.orders.SubmitSale(ctx, domain.SaleFromLines(lines))

	m.mu.Lock()
	if submitErr != nil {
		m.setState(domain.CartStateBuilding)
		m.mu.Unlock()
		m.logger.WarnContext(ctx, "sale submission failed", "session_id", m.sessionID, "error", submitErr)
		m.notifier.Notify(ctx, domain.Failure("Erro ao finalizar venda", "Ocorreu um erro ao registrar a venda no servidor."))
		return domain.Receipt{}, asNetworkError("submit sale", submitErr)
	}
	m.cart.Clear()
	m.setState(domain.CartStateEmpty)
	m.changed()
	m.mu.Unlock()

	receipt := domain.Receipt{
		ID:          uuid.NewString(),
		SessionID:   m.sessionID,
		Lines:       lines,
		Total:       total,
		CompletedAt: m.now(),
	}
	if m.recorder != nil {
		if err := m.recorder.RecordSale(context.WithoutCancel(ctx), receipt); err != nil {
			// the remote API already accepted the sale, only the local copy is lost
			m.logger.ErrorContext(ctx, "failed to record sale", "receipt_id", receipt.ID, "error", err)
		}
	}

	m.notifier.Notify(ctx, domain.Info("Venda finalizada com sucesso!",
		fmt.Sprintf("Total: R$ %s", total.StringFixed(2))))
	return receipt, nil
}

// checkStock walks lines in order and stops at the first one asking for
// more than the snapshot holds. Lines without a catalog match are skipped.
func checkStock(lines []domain.CartLine, products []domain.Product) *domain.InsufficientStockError {
	for _, line := range lines {
		p, ok := domain.FindProduct(products, line.ProductID)
		if !ok {
			continue
		}
		if line.Quantity > p.StockQuantity {
			return &domain.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Available:   p.StockQuantity,
				Requested:   line.Quantity,
			}
		}
	}
	return nil
}

func (m *Manager) setState(to domain.CartState) {
	if m.state != to && !domain.CanTransitionTo(m.state, to) {
		m.logger.Warn("unexpected cart state transition", "session_id", m.sessionID, "from", m.state, "to", to)
	}
	m.state = to
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange(m.cart.Lines())
	}
}

func asNetworkError(op string, err error) error {
	if domain.IsNetwork(err) {
		return err
	}
	return &domain.NetworkError{Op: op, Err: err}
}
