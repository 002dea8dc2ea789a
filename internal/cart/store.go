package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

// Key is the logical storage key owned by the cart store.
const Key = "cart"

// ProductSource is the catalog lookup the cart needs when adding items.
// Consumers define this interface, not the catalog implementation.
type ProductSource interface {
	Get(ctx context.Context, id int64) (domain.Product, error)
}

// Store holds the active session's cart. Every mutation writes through to
// storage immediately; there is no batching.
type Store struct {
	kv       storage.KV
	products ProductSource
}

func NewStore(kv storage.KV, products ProductSource) *Store {
	return &Store{
		kv:       kv,
		products: products,
	}
}

// Load reconstructs the cart from storage. A missing key or data that does
// not parse as a line sequence resets to the empty cart; corruption is never
// surfaced to the caller.
func (s *Store) Load(ctx context.Context) (domain.Cart, error) {
	raw, err := s.kv.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return domain.Cart{}, nil
		}
		return domain.Cart{}, err
	}

	var items []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return domain.Cart{}, nil
	}
	return domain.Cart{Items: items}, nil
}

// AddItem puts one unit of the product into the cart, snapshotting its name
// and price. A repeat add increments the existing line instead of creating a
// second one.
func (s *Store) AddItem(ctx context.Context, productID int64) (domain.Cart, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	if line := cart.Find(productID); line != nil {
		line.Quantity++
	} else {
		cart.Items = append(cart.Items, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: domain.Round2(product.Price),
			Quantity:  1,
			AddedAt:   time.Now(),
		})
	}

	if err := s.persist(ctx, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// SetQuantity updates a line's quantity from untrusted raw input. Anything
// that does not parse to an integer >= 1 clamps to 1; this is a lenient UI
// policy, not an error. Unknown products are a no-op.
func (s *Store) SetQuantity(ctx context.Context, productID int64, raw string) (domain.Cart, error) {
	cart, err := s.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	line := cart.Find(productID)
	if line == nil {
		return cart, nil
	}
	line.Quantity = parseQuantity(raw)

	if err := s.persist(ctx, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// RemoveItem deletes the matching line. No-op when absent.
func (s *Store) RemoveItem(ctx context.Context, productID int64) (domain.Cart, error) {
	cart, err := s.Load(ctx)
	if err != nil {
		return domain.Cart{}, err
	}

	kept := make([]domain.CartLine, 0, len(cart.Items))
	for _, l := range cart.Items {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(cart.Items) {
		return cart, nil
	}
	cart.Items = kept

	if err := s.persist(ctx, cart); err != nil {
		return domain.Cart{}, err
	}
	return cart, nil
}

// Total returns the current grand total, rounded per line and again at the
// sum.
func (s *Store) Total(ctx context.Context) (float64, error) {
	cart, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return cart.Total(), nil
}

// Clear empties the cart and persists.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Set(ctx, Key, emptyValue)
}

const emptyValue = "[]"

// ClearEntry is the cart-clear write as a storage entry, so checkout can
// combine it with the ledger append in one transaction.
func (s *Store) ClearEntry() storage.Entry {
	return storage.Entry{Key: Key, Value: emptyValue}
}

func (s *Store) persist(ctx context.Context, cart domain.Cart) error {
	if len(cart.Items) == 0 {
		return s.kv.Set(ctx, Key, emptyValue)
	}
	data, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	return s.kv.Set(ctx, Key, string(data))
}

func parseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if q, err := strconv.Atoi(raw); err == nil {
		if q < 1 {
			return 1
		}
		return q
	}
	// UI number inputs sometimes submit "3.0"; take the integer part.
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 1 {
		return int(f)
	}
	return 1
}
