package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/sqs"
)

// Publisher sends product notifications.
type Publisher interface {
	PublishProductMessage(ctx context.Context, msg sqs.ProductMessage) error
}

type ProductService struct {
	repo      repository.ProductRepository
	publisher Publisher
}

// NewProductService creates a ProductService. publisher may be nil to disable notifications.
func NewProductService(repo repository.ProductRepository, publisher Publisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// CreateProduct validates the input and stores a new product.
// Invalid input yields a *model.ValidationError and never reaches the store.
func (ps *ProductService) CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	createdProduct, err := ps.repo.Create(ctx, input.ToProduct())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("create").Inc()
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.ProductsCreated.Inc()

	if ps.publisher != nil {
		if err := ps.publisher.PublishProductMessage(ctx, sqs.NewProductCreatedMessage(createdProduct)); err != nil {
			// Log error but don't fail the request
			metrics.NotificationFailures.Inc()
			slog.Error("Failed to send SQS message", slog.Any("err", err), slog.String("action", sqs.ActionCreated), slog.String("product_id", createdProduct.ID))
		}
	}

	return createdProduct, nil
}

// ListProducts returns every product in store order.
func (ps *ProductService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := ps.repo.List(ctx)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}
