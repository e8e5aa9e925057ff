package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/repository"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a MongoDB client and verifies the deployment is reachable.
// Server selection and the initial ping are bounded by conf.ConnectTimeout.
func Connect(ctx context.Context, conf config.Mongo) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(conf.URI).
		SetServerSelectionTimeout(conf.ConnectTimeout).
		SetConnectTimeout(conf.ConnectTimeout).
		SetServerMonitor(newServerMonitor())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create mongo client: %w", repository.ErrStoreUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, conf.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		if dErr := client.Disconnect(context.Background()); dErr != nil {
			slog.Warn("failed to disconnect mongo client", slog.Any("err", dErr))
		}
		return nil, fmt.Errorf("%w: failed to ping mongo: %w", repository.ErrStoreUnavailable, err)
	}

	return client, nil
}

// newServerMonitor logs connectivity problems that happen after the initial connect.
// They are reported only; the driver keeps reconnecting on its own.
func newServerMonitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			slog.Error("mongo heartbeat failed",
				slog.String("connection_id", e.ConnectionID),
				slog.Duration("duration", e.Duration),
				slog.Any("err", e.Failure),
			)
		},
		ServerDescriptionChanged: func(e *event.ServerDescriptionChangedEvent) {
			if e.NewDescription.LastError == nil {
				return
			}
			slog.Warn("mongo server state changed",
				slog.String("address", e.Address.String()),
				slog.String("kind", e.NewDescription.Kind.String()),
				slog.Any("err", e.NewDescription.LastError),
			)
		},
	}
}
