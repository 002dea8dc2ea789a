package http

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/shop"
)

type CatalogHandler struct {
	shop    *shop.Shop
	timeout time.Duration
}

func NewCatalogHandler(s *shop.Shop, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		shop:    s,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []shop.ProductView `json:"products"`
}

// Get serves the catalog view. Search and sort come straight from the UI
// controls; unknown sort keys fall back to catalog order.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	products, err := h.shop.Catalog(ctx, q.Get("search"), q.Get("sort"))
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}
