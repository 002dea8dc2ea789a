package shop

import (
	"context"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/orders"
	"storefront/internal/outbox"
)

// Shop is the operation surface the presentation layer calls. A single mutex
// serializes operations: every mutation runs to completion before the next
// one starts, so compound invariants hold after each call even under a
// concurrent HTTP host.
type Shop struct {
	mu      sync.Mutex
	catalog *catalog.Store
	cart    *cart.Store
	ledger  *orders.Ledger
	outbox  *outbox.Store
}

func New(catalogStore *catalog.Store, cartStore *cart.Store, ledger *orders.Ledger, outboxStore *outbox.Store) *Shop {
	return &Shop{
		catalog: catalogStore,
		cart:    cartStore,
		ledger:  ledger,
		outbox:  outboxStore,
	}
}

// Catalog returns the filtered, sorted product view for display.
func (s *Shop) Catalog(ctx context.Context, search, sortKey string) ([]ProductView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	view := catalog.Query(products, search, catalog.ParseSortKey(sortKey))
	return newProductViews(view), nil
}

// Cart returns the current cart with per-line and grand totals.
func (s *Shop) Cart(ctx context.Context) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cart.Load(ctx)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c), nil
}

func (s *Shop) AddToCart(ctx context.Context, productID int64) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cart.AddItem(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c), nil
}

func (s *Shop) RemoveFromCart(ctx context.Context, productID int64) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cart.RemoveItem(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c), nil
}

// SetCartQuantity updates a line from raw UI input; invalid values clamp to
// 1 and never fail the call.
func (s *Shop) SetCartQuantity(ctx context.Context, productID int64, raw string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cart.SetQuantity(ctx, productID, raw)
	if err != nil {
		return CartView{}, err
	}
	return newCartView(c), nil
}

// Checkout freezes the cart into an order and records it. The ledger append,
// the cart clear and the order-placed outbox event go into one atomic write
// through the outbox store, so a failure can never leave the order recorded
// with the cart still full.
func (s *Shop) Checkout(ctx context.Context) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.cart.Load(ctx)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := orders.NewOrder(c)
	if err != nil {
		return domain.Order{}, err
	}

	ledgerEntry, err := s.ledger.AppendEntry(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	event, err := outbox.NewOrderPlacedEvent(order)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.outbox.Append(ctx, event, ledgerEntry, s.cart.ClearEntry()); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

// Orders lists the finalized order history in append order.
func (s *Shop) Orders(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.List(ctx)
}

// AddProduct is part of the admin surface; gating happens at the caller.
func (s *Shop) AddProduct(ctx context.Context, input catalog.AddInput) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Add(ctx, input)
}

func (s *Shop) EditProduct(ctx context.Context, id int64, patch catalog.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Update(ctx, id, patch)
}

func (s *Shop) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.catalog.Delete(ctx, id)
}
