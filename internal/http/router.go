package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Sessions       SessionStore
	SessionTTL     time.Duration
	Sales          *SalesHandler
	Products       *ProductHandler
	Stock          *StockHandler
	RequestTimeout time.Duration
	// UpstreamState reports the remote API circuit breaker state.
	UpstreamState func() string
}

func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			body := map[string]string{"status": "ok"}
			if cfg.UpstreamState != nil {
				body["upstream"] = cfg.UpstreamState()
			}
			respondJSON(w, http.StatusOK, body)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Sessions, cfg.SessionTTL))

			r.Route("/sales", func(r chi.Router) {
				r.Get("/catalog", cfg.Sales.GetCatalog)
				r.Get("/catalog/select", cfg.Sales.SelectProduct)
				r.Get("/cart", cfg.Sales.GetCart)
				r.Post("/cart/lines", cfg.Sales.AddLine)
				r.Delete("/cart/lines/{product_id}", cfg.Sales.RemoveLine)
				r.Post("/checkout", cfg.Sales.Checkout)
				r.Get("/history", cfg.Sales.History)
			})

			r.Get("/products/categories", cfg.Products.GetCategories)
			r.Post("/products", cfg.Products.CreateProduct)

			r.Get("/stock/products", cfg.Stock.GetProducts)
			r.Post("/stock/entries", cfg.Stock.RegisterEntry)

			r.Get("/notifications", GetNotifications)
		})
	})

	return r
}
