package database

import (
	"time"

	"github.com/codecrest/codecrest_backend/config"
)

// Config holds MongoDB connection and behavior settings
type Config struct {
	URI        string
	Database   string
	Collection string

	ConnectTimeoutSec   int
	OperationTimeoutSec int
	MaxPoolSize         uint64
}

// ConnectTimeout returns the dial/handshake budget as a duration
func (c Config) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ConnectTimeoutSec) * time.Second
}

// OperationTimeout bounds every single storage call
func (c Config) OperationTimeout() time.Duration {
	if c.OperationTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.OperationTimeoutSec) * time.Second
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		URI:                 "mongodb://localhost:27017",
		Database:            "codecrest",
		Collection:          "contacts",
		ConnectTimeoutSec:   10,
		OperationTimeoutSec: 10,
		MaxPoolSize:         20,
	}
}

// FromCentralConfig converts central config.MongoConfig to package Config
func FromCentralConfig(c config.MongoConfig) Config {
	return Config{
		URI:                 c.URI,
		Database:            c.Database,
		Collection:          c.Collection,
		ConnectTimeoutSec:   c.ConnectTimeoutSeconds,
		OperationTimeoutSec: c.OperationTimeoutSeconds,
		MaxPoolSize:         c.MaxPoolSize,
	}
}
