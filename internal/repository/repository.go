package repository

import (
	"context"
	"errors"

	"github.com/iyhunko/product-catalog/internal/model"
)

var (
	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ProductRepository persists and retrieves catalog products.
type ProductRepository interface {
	// Create stores a new product, assigns its ID and returns the stored record.
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	// List returns every stored product in insertion order.
	List(ctx context.Context) ([]*model.Product, error)
}

// Store is a product repository with a connection lifecycle.
type Store interface {
	ProductRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
