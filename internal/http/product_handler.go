package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/notify"
)

type ProductService interface {
	Categories(ctx context.Context, n notify.Notifier) ([]domain.Category, error)
	CreateProduct(ctx context.Context, n notify.Notifier, form domain.ProductForm) (domain.NewProduct, error)
}

type ProductHandler struct {
	service ProductService
	timeout time.Duration
}

func NewProductHandler(service ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		service: service,
		timeout: timeout,
	}
}

func (h *ProductHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	categories, err := h.service.Categories(ctx, sess.Notices)
	if err != nil {
		handleError(w, err)
		return
	}

	out := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		out[i] = CategoryDTO{ID: c.ID, Name: c.Name}
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return
	}

	var form domain.ProductForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := h.service.CreateProduct(ctx, sess.Notices, form)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CreatedProductDTO{
		Name:         p.Name,
		CategoryName: p.CategoryName,
		CostPrice:    money(p.CostPrice),
		SalePrice:    money(p.SalePrice),
	})
}
