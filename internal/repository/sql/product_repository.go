package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

// ProductRepository implements repository.Store on a PostgreSQL table.
type ProductRepository struct {
	db *sql.DB
}

var _ repository.Store = (*ProductRepository)(nil)

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	product.InitMeta()
	created := *product
	created.ID = uuid.New().String()

	query := `INSERT INTO products (id, name, price, description, image, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, created.ID, created.Name, created.Price, created.Description, created.Image, created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return &created, nil
}

// List retrieves all products in insertion order.
func (r *ProductRepository) List(ctx context.Context) ([]*model.Product, error) {
	query := `SELECT id, name, price, description, image, created_at FROM products ORDER BY seq`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		var product model.Product
		err := rows.Scan(&product.ID, &product.Name, &product.Price, &product.Description, &product.Image, &product.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		// pgx returns timestamptz in the local zone; creation responses are UTC.
		product.CreatedAt = product.CreatedAt.UTC()
		products = append(products, &product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// Ping checks the database connection.
func (r *ProductRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database handle.
func (r *ProductRepository) Close(_ context.Context) error {
	return r.db.Close()
}
