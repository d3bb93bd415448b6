package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/notify"
	"github.com/daSkciN/estoque-app-front/internal/service"
)

type StockService interface {
	Products(ctx context.Context, n notify.Notifier) ([]domain.Product, error)
	RegisterIntake(ctx context.Context, n notify.Notifier, form domain.StockIntakeForm) (domain.StockEntry, error)
}

type StockHandler struct {
	service StockService
	timeout time.Duration
}

func NewStockHandler(service StockService, timeout time.Duration) *StockHandler {
	return &StockHandler{
		service: service,
		timeout: timeout,
	}
}

// GetProducts lists products for the intake selector, filtered by ?q=.
func (h *StockHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	products, err := h.service.Products(ctx, sess.Notices)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTOs(service.Search(products, r.URL.Query().Get("q"))))
}

func (h *StockHandler) RegisterEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var form domain.StockIntakeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	entry, err := h.service.RegisterIntake(ctx, sess.Notices, form)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, StockEntryDTO{ProductID: entry.ProductID, Quantity: entry.Quantity})
}
