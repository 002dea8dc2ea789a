package http

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/domain"
	"storefront/internal/shop"
)

type OrdersHandler struct {
	shop    *shop.Shop
	timeout time.Duration
}

func NewOrdersHandler(s *shop.Shop, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		shop:    s,
		timeout: timeout,
	}
}

type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.shop.Orders(ctx)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &OrdersResponse{Orders: list})
}

// Checkout finalizes the cart. The confirmation itself happens out of band;
// the response carries the recorded order.
func (h *OrdersHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.shop.Checkout(ctx)
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
