package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/orders"
	"storefront/internal/outbox"
	"storefront/internal/shop"
	"storefront/internal/storage"
)

func newTestShop() *shop.Shop {
	kv := storage.NewMemoryKV()
	catalogStore := catalog.NewStore(kv, cache.Noop{}, nil)
	cartStore := cart.NewStore(kv, catalogStore)
	return shop.New(catalogStore, cartStore, orders.NewLedger(kv), outbox.NewStore(kv))
}

func withProductID(request *http.Request, id string) *http.Request {
	// Mock chi.URLParam by using chi's context
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("product_id", id)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, rctx))
}

func TestCatalogGet_Success(t *testing.T) {
	handler := NewCatalogHandler(newTestShop(), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/products", nil)

	handler.Get(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response ProductsResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Products) != 3 {
		t.Fatalf("Expected 3 seeded products, got %d", len(response.Products))
	}
	if response.Products[0].Name != "Baklawa" {
		t.Errorf("Expected first product 'Baklawa', got '%s'", response.Products[0].Name)
	}
}

func TestCatalogGet_SearchAndSort(t *testing.T) {
	handler := NewCatalogHandler(newTestShop(), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/products?search=mak&sort=price-asc", nil)

	handler.Get(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response ProductsResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Products) != 1 {
		t.Fatalf("Expected 1 matching product, got %d", len(response.Products))
	}
	if response.Products[0].Name != "Makroud" {
		t.Errorf("Expected 'Makroud', got '%s'", response.Products[0].Name)
	}
}

func TestAddItem_Success(t *testing.T) {
	handler := NewCartHandler(newTestShop(), 5*time.Second)

	reqBytes, _ := json.Marshal(&AddItemRequestDTO{ProductID: 1})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/cart/items", bytes.NewReader(reqBytes))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response shop.CartView
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Lines) != 1 {
		t.Fatalf("Expected 1 cart line, got %d", len(response.Lines))
	}
	if response.FormattedTotal != "5,00 TND" {
		t.Errorf("Expected formatted total '5,00 TND', got '%s'", response.FormattedTotal)
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler := NewCartHandler(newTestShop(), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/cart/items", bytes.NewReader([]byte("{not json")))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_request" {
		t.Errorf("Expected error code 'invalid_request', got '%s'", response.Code)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	handler := NewCartHandler(newTestShop(), 5*time.Second)

	reqBytes, _ := json.Marshal(&AddItemRequestDTO{ProductID: 999})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/cart/items", bytes.NewReader(reqBytes))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "product_not_found" {
		t.Errorf("Expected error code 'product_not_found', got '%s'", response.Code)
	}
}

func TestUpdateQuantity_ClampsInvalidInput(t *testing.T) {
	s := newTestShop()
	if _, err := s.AddToCart(context.Background(), 1); err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}
	handler := NewCartHandler(s, 5*time.Second)

	reqBytes, _ := json.Marshal(&UpdateQuantityRequestDTO{Quantity: "-5"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/cart/items/1", bytes.NewReader(reqBytes))
	request = withProductID(request, "1")

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response shop.CartView
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Lines) != 1 {
		t.Fatalf("Expected line to survive, got %d lines", len(response.Lines))
	}
	if response.Lines[0].Quantity != 1 {
		t.Errorf("Expected quantity clamped to 1, got %d", response.Lines[0].Quantity)
	}
}

func TestRemoveItem_BadParam(t *testing.T) {
	handler := NewCartHandler(newTestShop(), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("DELETE", "/cart/items/abc", nil)
	request = withProductID(request, "abc")

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_product_id" {
		t.Errorf("Expected error code 'invalid_product_id', got '%s'", response.Code)
	}
}

func TestCheckout_Success(t *testing.T) {
	s := newTestShop()
	if _, err := s.AddToCart(context.Background(), 2); err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}
	handler := NewOrdersHandler(s, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", nil)

	handler.Checkout(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response struct {
		Total  float64 `json:"total"`
		Status string  `json:"status"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Total != 8.0 {
		t.Errorf("Expected total 8.0, got %v", response.Total)
	}
	if response.Status != "PLACED" {
		t.Errorf("Expected status 'PLACED', got '%s'", response.Status)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	handler := NewOrdersHandler(newTestShop(), 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/checkout", nil)

	handler.Checkout(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected status code %d, got %d", http.StatusConflict, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "empty_cart" {
		t.Errorf("Expected error code 'empty_cart', got '%s'", response.Code)
	}
}

func TestOrdersList_Success(t *testing.T) {
	s := newTestShop()
	ctx := context.Background()
	if _, err := s.AddToCart(ctx, 1); err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}
	if _, err := s.Checkout(ctx); err != nil {
		t.Fatalf("Failed to checkout: %v", err)
	}
	handler := NewOrdersHandler(s, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/orders", nil)

	handler.List(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	var response OrdersResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Orders) != 1 {
		t.Fatalf("Expected 1 order, got %d", len(response.Orders))
	}
}

func TestAddProduct_Success(t *testing.T) {
	handler := NewAdminHandler(newTestShop(), 5*time.Second)

	reqBytes, _ := json.Marshal(&AddProductRequestDTO{Name: "Zlabia", Price: 3.456, Category: "sweets"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/products", bytes.NewReader(reqBytes))

	handler.AddProduct(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Name != "Zlabia" {
		t.Errorf("Expected name 'Zlabia', got '%s'", response.Name)
	}
	if response.Price != 3.46 {
		t.Errorf("Expected price rounded to 3.46, got %v", response.Price)
	}
}

func TestAddProduct_InvalidInput(t *testing.T) {
	handler := NewAdminHandler(newTestShop(), 5*time.Second)

	reqBytes, _ := json.Marshal(&AddProductRequestDTO{Name: "", Price: -1})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/admin/products", bytes.NewReader(reqBytes))

	handler.AddProduct(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_input" {
		t.Errorf("Expected error code 'invalid_input', got '%s'", response.Code)
	}
}

func TestEditProduct_Success(t *testing.T) {
	handler := NewAdminHandler(newTestShop(), 5*time.Second)

	price := 6.5
	reqBytes, _ := json.Marshal(&EditProductRequestDTO{Price: &price})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("PUT", "/admin/products/1", bytes.NewReader(reqBytes))
	request = withProductID(request, "1")

	handler.EditProduct(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestDeleteProduct_Success(t *testing.T) {
	s := newTestShop()
	handler := NewAdminHandler(s, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("DELETE", "/admin/products/3", nil)
	request = withProductID(request, "3")

	handler.DeleteProduct(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	view, err := s.Catalog(context.Background(), "", "default")
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if len(view) != 2 {
		t.Errorf("Expected 2 products after delete, got %d", len(view))
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	protected := AdminAuthMiddleware("toutouadmin")(next)

	tests := []struct {
		name     string
		secret   string
		expected int
	}{
		{"correct secret", "toutouadmin", http.StatusNoContent},
		{"wrong secret", "guess", http.StatusUnauthorized},
		{"missing secret", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest("POST", "/admin/products", nil)
			if tt.secret != "" {
				request.Header.Set(AdminSecretHeader, tt.secret)
			}

			protected.ServeHTTP(recorder, request)

			if recorder.Code != tt.expected {
				t.Errorf("Expected status code %d, got %d", tt.expected, recorder.Code)
			}
		})
	}
}
