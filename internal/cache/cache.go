package cache

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ProductCache fronts the catalog's persisted product list. The catalog is
// read on every page render, so cache hits spare the durable medium.
type ProductCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop satisfies ProductCache when no cache backend is configured.
type Noop struct{}

func (Noop) Get(context.Context) ([]domain.Product, error) {
	return nil, ErrCacheMiss
}

func (Noop) Set(context.Context, []domain.Product) error {
	return nil
}

func (Noop) Delete(context.Context) error {
	return nil
}
