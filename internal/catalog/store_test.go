package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/storage"
)

type mockCache struct {
	mu       sync.Mutex
	products []domain.Product
	deletes  int
}

func (m *mockCache) Get(context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.products, nil
}

func (m *mockCache) Set(_ context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
	return nil
}

func (m *mockCache) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = nil
	m.deletes++
	return nil
}

func newTestStore(t *testing.T) (*Store, *storage.MemoryKV) {
	kv := storage.NewMemoryKV()
	return NewStore(kv, cache.Noop{}, nil), kv
}

func TestLoad_SeedsOnFirstRun(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	products, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Baklawa", products[0].Name)

	// Seed must have been persisted
	_, err = kv.Get(ctx, Key)
	assert.NoError(t, err)
}

func TestLoad_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Load(ctx)
	require.NoError(t, err)

	second, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.Equal(t, first[i].Price, second[i].Price)
	}
}

func TestLoad_CorruptDataFallsBackToSeed(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, Key, "{not a product list"))

	products, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	// Storage was rewritten with the seed
	raw, err := kv.Get(ctx, Key)
	require.NoError(t, err)
	assert.Contains(t, raw, "Baklawa")
}

func TestLoad_CustomSeed(t *testing.T) {
	kv := storage.NewMemoryKV()
	seed := []domain.Product{{ID: 10, Name: "Zlabia", Price: 3.5}}
	store := NewStore(kv, cache.Noop{}, seed)

	products, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Zlabia", products[0].Name)
}

func TestAdd_AppendsWithUniqueID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p1, err := store.Add(ctx, AddInput{Name: "Zlabia", Price: 3.456})
	require.NoError(t, err)
	assert.Equal(t, 3.46, p1.Price) // rounded to cents

	p2, err := store.Add(ctx, AddInput{Name: "Samsa", Price: 6})
	require.NoError(t, err)
	assert.Greater(t, p2.ID, p1.ID)

	products, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 5)
}

func TestAdd_RejectsEmptyName(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Add(context.Background(), AddInput{Name: "   ", Price: 5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdd_RejectsInvalidPrice(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Add(ctx, AddInput{Name: "Zlabia", Price: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	nan := 0.0
	nan = nan / nan
	_, err = store.Add(ctx, AddInput{Name: "Zlabia", Price: nan})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_UnknownIDIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, 999, Patch{Name: strPtr("Ghost")}))

	products, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
	for _, p := range products {
		assert.NotEqual(t, "Ghost", p.Name)
	}
}

func TestUpdate_AppliesPartialPatch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// 9.995 sits just below the half in binary, so it rounds down to 9.99
	price := 9.995
	require.NoError(t, store.Update(ctx, 1, Patch{Price: &price}))

	p, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Baklawa", p.Name) // untouched
	assert.Equal(t, 9.99, p.Price)
}

func TestUpdate_RejectsNegativePrice(t *testing.T) {
	store, _ := newTestStore(t)

	price := -5.0
	err := store.Update(context.Background(), 1, Patch{Price: &price})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_RemovesProduct(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, 2))

	_, err := store.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrProductNotFound)

	products, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestDelete_UnknownIDIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, 999))

	products, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestGet_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func waitForCache(t *testing.T, mc *mockCache) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mc.mu.Lock()
		warmed := mc.products != nil
		mc.mu.Unlock()
		if warmed {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("cache was never warmed")
}

func TestLoad_CachedResultIsNotAliased(t *testing.T) {
	kv := storage.NewMemoryKV()
	mc := &mockCache{}
	store := NewStore(kv, mc, nil)
	ctx := context.Background()

	// First load seeds storage; the second parses it and warms the cache in
	// the background.
	_, err := store.Load(ctx)
	require.NoError(t, err)
	_, err = store.Load(ctx)
	require.NoError(t, err)
	waitForCache(t, mc)

	// Served from cache now. Mutating the result must not reach the cached
	// slice or any later caller.
	first, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	first[0].Name = "Mutated"

	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Baklawa", second[0].Name)
}

func TestSave_InvalidatesCache(t *testing.T) {
	kv := storage.NewMemoryKV()
	mc := &mockCache{}
	store := NewStore(kv, mc, nil)
	ctx := context.Background()

	_, err := store.Load(ctx)
	require.NoError(t, err)

	_, err = store.Add(ctx, AddInput{Name: "Zlabia", Price: 3})
	require.NoError(t, err)

	mc.mu.Lock()
	defer mc.mu.Unlock()
	assert.GreaterOrEqual(t, mc.deletes, 1)
}

func strPtr(s string) *string { return &s }
