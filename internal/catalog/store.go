package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/storage"
)

// Key is the logical storage key owned by the catalog store.
const Key = "products"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidInput    = errors.New("invalid product input")
)

// Store holds the purchasable product list. Reads go cache-first; a missing
// or corrupt persisted list falls back to the seed set and is never surfaced
// as an error.
type Store struct {
	kv       storage.KV
	cache    cache.ProductCache
	sfg      singleflight.Group // Prevents cache stampede
	seed     []domain.Product
	validate *validator.Validate
}

// NewStore creates a catalog store. An empty seed means the built-in default
// catalog; variants ship their own seed through configuration, not code.
func NewStore(kv storage.KV, productCache cache.ProductCache, seed []domain.Product) *Store {
	if len(seed) == 0 {
		seed = DefaultSeed()
	}
	return &Store{
		kv:       kv,
		cache:    productCache,
		seed:     seed,
		validate: validator.New(),
	}
}

// DefaultSeed is the catalog the storefront starts with on first run.
func DefaultSeed() []domain.Product {
	now := time.Now()
	return []domain.Product{
		{ID: 1, Name: "Baklawa", Price: 5.0, Category: "sweets", CreatedAt: now},
		{ID: 2, Name: "Makroud", Price: 8.0, Category: "sweets", CreatedAt: now},
		{ID: 3, Name: "Mekroud", Price: 4.0, Category: "sweets", CreatedAt: now},
	}
}

// Load returns the persisted product list, seeding storage on first run and
// recovering to the seed set when the persisted data does not parse as a
// product list. Repeated calls after a successful load do not rewrite
// storage.
func (s *Store) Load(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do(Key, func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			slog.Warn("catalog cache get failed", "error", err)
		}

		raw, errGet := s.kv.Get(ctx, Key)
		if errGet != nil {
			if errors.Is(errGet, storage.ErrKeyNotFound) {
				return s.reset(ctx)
			}
			return nil, errGet
		}

		if errParse := json.Unmarshal([]byte(raw), &products); errParse != nil || products == nil {
			return s.reset(ctx)
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), products); errSet != nil {
				slog.Warn("catalog cache set failed", "error", errSet)
			}
		}()

		return products, nil
	})
	if err != nil {
		return nil, err
	}

	// The slice inside the singleflight result is shared with the cache and
	// with every concurrent caller; callers mutate what Load hands them, so
	// each gets its own copy.
	shared := v.([]domain.Product)
	products := make([]domain.Product, len(shared))
	copy(products, shared)
	return products, nil
}

// reset writes the seed set and returns a copy of it, so later admin edits
// never alias the configured seed.
func (s *Store) reset(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, len(s.seed))
	copy(products, s.seed)

	data, err := json.Marshal(products)
	if err != nil {
		return nil, fmt.Errorf("marshal seed catalog: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return nil, err
	}
	return products, nil
}

// Save replaces the full persisted product list. Total overwrite, no merge.
func (s *Store) Save(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return err
	}
	s.invalidateCache()
	return nil
}

// AddInput is the admin surface's new-product payload.
type AddInput struct {
	Name     string  `validate:"required"`
	Price    float64 `validate:"gte=0"`
	ImageURL string
	Category string
}

// Add validates and appends a new product. Invalid names and prices are
// rejected, never coerced. The id is time-based and bumped past any existing
// id so it stays unique within the store.
func (s *Store) Add(ctx context.Context, input AddInput) (domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)

	if math.IsNaN(input.Price) || math.IsInf(input.Price, 0) {
		return domain.Product{}, fmt.Errorf("%w: price must be a finite number", ErrInvalidInput)
	}
	if err := s.validate.Struct(input); err != nil {
		return domain.Product{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	products, err := s.Load(ctx)
	if err != nil {
		return domain.Product{}, err
	}

	id := time.Now().UnixMilli()
	for _, p := range products {
		if p.ID >= id {
			id = p.ID + 1
		}
	}

	product := domain.Product{
		ID:        id,
		Name:      input.Name,
		Price:     domain.Round2(input.Price),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		Category:  input.Category,
		CreatedAt: time.Now(),
	}

	if err := s.Save(ctx, append(products, product)); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// Patch carries partial field changes for Update. Nil fields keep the
// current value.
type Patch struct {
	Name     *string
	Price    *float64
	ImageURL *string
	Category *string
}

// Update applies a partial change to one product and persists. Unknown ids
// are a silent no-op.
func (s *Store) Update(ctx context.Context, id int64, patch Patch) error {
	products, err := s.Load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range products {
		if products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	if patch.Name != nil {
		if name := strings.TrimSpace(*patch.Name); name != "" {
			products[idx].Name = name
		}
	}
	if patch.Price != nil {
		price := *patch.Price
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return fmt.Errorf("%w: price must be a finite number >= 0", ErrInvalidInput)
		}
		products[idx].Price = domain.Round2(price)
	}
	if patch.ImageURL != nil {
		products[idx].ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Category != nil {
		products[idx].Category = *patch.Category
	}

	return s.Save(ctx, products)
}

// Delete removes one product. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	products, err := s.Load(ctx)
	if err != nil {
		return err
	}

	kept := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return nil
	}

	return s.Save(ctx, kept)
}

// Get looks up one product by id.
func (s *Store) Get(ctx context.Context, id int64) (domain.Product, error) {
	products, err := s.Load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, ErrProductNotFound
}

func (s *Store) invalidateCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx); err != nil {
		slog.Warn("catalog cache invalidate failed", "error", err)
	}
}
