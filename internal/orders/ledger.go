package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

// Key is the logical storage key owned by the order ledger.
const Key = "orders"

var ErrEmptyCart = errors.New("cart is empty")

// NewOrder freezes a cart into an order: fresh id, current timestamp, a deep
// copy of the lines and the rounded total. Pure; nothing is persisted.
func NewOrder(cart domain.Cart) (domain.Order, error) {
	if cart.IsEmpty() {
		return domain.Order{}, ErrEmptyCart
	}
	return domain.Order{
		ID:        uuid.New(),
		Items:     cart.CopyItems(),
		Total:     cart.Total(),
		Currency:  domain.DefaultCurrency,
		Status:    domain.OrderStatusPlaced,
		CreatedAt: time.Now(),
	}, nil
}

// Ledger is the append-only history of finalized orders. No operation here
// removes or mutates an entry.
type Ledger struct {
	kv storage.KV
}

func NewLedger(kv storage.KV) *Ledger {
	return &Ledger{kv: kv}
}

// List returns all orders in append order. Missing or corrupt data recovers
// to the empty ledger.
func (l *Ledger) List(ctx context.Context) ([]domain.Order, error) {
	raw, err := l.kv.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var orders []domain.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, nil
	}
	return orders, nil
}

// AppendEntry returns the ledger write that records order after the current
// history, for composition into a multi-key transaction.
func (l *Ledger) AppendEntry(ctx context.Context, order domain.Order) (storage.Entry, error) {
	orders, err := l.List(ctx)
	if err != nil {
		return storage.Entry{}, err
	}

	data, err := json.Marshal(append(orders, order))
	if err != nil {
		return storage.Entry{}, fmt.Errorf("marshal orders: %w", err)
	}
	return storage.Entry{Key: Key, Value: string(data)}, nil
}

// Append freezes cart into a new order and persists it at the end of the
// ledger. Fails with ErrEmptyCart when the cart has no lines.
func (l *Ledger) Append(ctx context.Context, cart domain.Cart) (domain.Order, error) {
	order, err := NewOrder(cart)
	if err != nil {
		return domain.Order{}, err
	}

	entry, err := l.AppendEntry(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}
	if err := l.kv.Set(ctx, entry.Key, entry.Value); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}
