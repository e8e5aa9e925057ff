package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// productDocument is the stored shape of a product.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       float64            `bson:"price"`
	Description string             `bson:"description"`
	Image       string             `bson:"image,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d productDocument) toModel() *model.Product {
	return &model.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
	}
}

// ProductRepository implements repository.Store on a MongoDB collection.
type ProductRepository struct {
	coll *mongo.Collection
}

var _ repository.Store = (*ProductRepository)(nil)

// NewProductRepository creates a ProductRepository backed by the given collection.
func NewProductRepository(coll *mongo.Collection) *ProductRepository {
	return &ProductRepository{coll: coll}
}

// NewProductRepositoryFromClient creates a ProductRepository for database.collection on client.
func NewProductRepositoryFromClient(client *mongo.Client, database, collection string) *ProductRepository {
	return NewProductRepository(client.Database(database).Collection(collection))
}

// Create inserts a new product document with a fresh ObjectID.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	product.InitMeta()

	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		Image:       product.Image,
		CreatedAt:   product.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return doc.toModel(), nil
}

// List returns all product documents in the collection's natural order.
func (r *ProductRepository) List(ctx context.Context) ([]*model.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]*model.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toModel())
	}
	return products, nil
}

// Ping checks that the primary is reachable.
func (r *ProductRepository) Ping(ctx context.Context) error {
	if err := r.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (r *ProductRepository) Close(ctx context.Context) error {
	if err := r.coll.Database().Client().Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo client: %w", err)
	}
	return nil
}
