package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/repository/mongo"
	"github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/iyhunko/product-catalog/internal/service"
	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
)

// OpenStore connects the product store selected by conf.StoreDriver.
// A store that cannot be reached within its connect timeout yields an error
// wrapping repository.ErrStoreUnavailable.
func OpenStore(ctx context.Context, conf *config.Config) (repository.Store, error) {
	switch conf.StoreDriver {
	case config.StoreDriverMongo:
		client, err := mongo.Connect(ctx, conf.Mongo)
		if err != nil {
			return nil, err
		}
		slog.Info("store connected",
			slog.String("driver", conf.StoreDriver),
			slog.String("database", conf.Mongo.Database),
			slog.String("collection", conf.Mongo.Collection),
		)
		return mongo.NewProductRepositoryFromClient(client, conf.Mongo.Database, conf.Mongo.Collection), nil
	case config.StoreDriverPostgres:
		db, err := sql.StartDB(ctx, conf.Database)
		if err != nil {
			return nil, err
		}
		slog.Info("store connected",
			slog.String("driver", conf.StoreDriver),
			slog.String("host", conf.Database.Host),
			slog.String("database", conf.Database.Name),
		)
		return sql.NewProductRepository(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreDriver, conf.StoreDriver)
	}
}

// NewPublisher returns an SQS-backed publisher, or nil when no queue is configured.
func NewPublisher(ctx context.Context, conf *config.Config) (service.Publisher, error) {
	if !conf.PublishingEnabled() {
		slog.Info("product notifications disabled, no queue configured")
		return nil, nil
	}

	client, err := sqspkg.NewClient(ctx, conf.AWS)
	if err != nil {
		return nil, err
	}
	slog.Info("product notifications enabled", slog.String("queueURL", conf.AWS.SQSQueueURL))
	return sqspkg.NewPublisher(client, conf.AWS.SQSQueueURL), nil
}
