package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type SalesHistory interface {
	RecentSales(ctx context.Context, limit int) ([]domain.Receipt, error)
}

type SalesHandler struct {
	history SalesHistory
	timeout time.Duration
}

func NewSalesHandler(history SalesHistory, timeout time.Duration) *SalesHandler {
	return &SalesHandler{
		history: history,
		timeout: timeout,
	}
}

func (h *SalesHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	products, err := sess.Cart.LoadCatalog(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductDTOs(products))
}

func (h *SalesHandler) SelectProduct(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name query parameter is required")
		return
	}

	selection, err := sess.Cart.SelectProduct(name)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSelectionDTO(selection))
}

func (h *SalesHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(sess.Cart))
}

func (h *SalesHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var form domain.AddLineForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	line, err := sess.Cart.AddLine(ctx, form)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toLineDTO(line))
}

func (h *SalesHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	removed, err := sess.Cart.RemoveLine(ctx, productID)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RemoveLineResponseDTO{Removed: removed, Cart: toCartDTO(sess.Cart)})
}

func (h *SalesHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	receipt, err := sess.Cart.Checkout(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toReceiptDTO(receipt))
}

func (h *SalesHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	if h.history == nil {
		respondJSON(w, http.StatusOK, []ReceiptDTO{})
		return
	}

	receipts, err := h.history.RecentSales(ctx, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	out := make([]ReceiptDTO, len(receipts))
	for i, rec := range receipts {
		out[i] = toReceiptDTO(rec)
	}
	respondJSON(w, http.StatusOK, out)
}
