package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/shop"
)

type AdminHandler struct {
	shop    *shop.Shop
	timeout time.Duration
}

func NewAdminHandler(s *shop.Shop, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		shop:    s,
		timeout: timeout,
	}
}

type AddProductRequestDTO struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
	Category string  `json:"category"`
}

// EditProductRequestDTO uses pointers so absent fields keep their current
// values.
type EditProductRequestDTO struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	ImageURL *string  `json:"image_url"`
	Category *string  `json:"category"`
}

func (h *AdminHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, err := h.shop.AddProduct(ctx, catalog.AddInput{
		Name:     req.Name,
		Price:    req.Price,
		ImageURL: req.ImageURL,
		Category: req.Category,
	})
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req EditProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := h.shop.EditProduct(ctx, productID, catalog.Patch{
		Name:     req.Name,
		Price:    req.Price,
		ImageURL: req.ImageURL,
		Category: req.Category,
	})
	if err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.shop.DeleteProduct(ctx, productID); err != nil {
		handleCoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
