// Package storage defines the common interface for storage backends.
//
// Every storage client (MongoDB, Milvus, Redis) implements the Client
// interface so the Manager can register, health check and close them
// uniformly during startup and shutdown.
package storage

import (
	"context"
	"time"
)

// Client is the base interface every storage client implements.
type Client interface {
	// Name returns the storage type identifier, e.g. "mongodb".
	Name() string

	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error

	// Close releases the connection. Must be idempotent.
	Close() error
}

// HealthChecker is a bound health probe for a single client.
type HealthChecker func() error

// HealthStatus is the result of a health check.
type HealthStatus struct {
	// Name is the registered client name.
	Name string

	// Healthy is true when the ping succeeded.
	Healthy bool

	// Latency is how long the ping took.
	Latency time.Duration

	// Error holds the ping failure, nil when healthy.
	Error error
}
