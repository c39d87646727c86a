package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/codecrest/codecrest_backend/config"
)

// NewMongoClient creates a client from central config
func NewMongoClient(cfg config.MongoConfig) (*mongo.Client, error) {
	return NewMongoClientFromConfig(FromCentralConfig(cfg))
}

// NewMongoClientFromConfig creates a client from package Config. The driver
// dials lazily, so an unreachable server is not an error here; use Ping.
func NewMongoClientFromConfig(cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout()).
		SetServerSelectionTimeout(cfg.ConnectTimeout())
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}

// Ping checks the primary answers within the connect timeout.
func Ping(ctx context.Context, client *mongo.Client, cfg Config) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout())
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// Collection returns the configured contacts collection.
func Collection(client *mongo.Client, cfg Config) *mongo.Collection {
	return client.Database(cfg.Database).Collection(cfg.Collection)
}
