// Package storage provides a unified interface for storage backends.
//
// The interfaces here let services treat Postgres, Redis, and MongoDB clients
// uniformly for lifecycle management and health checking.
package storage

import "context"

// HealthChecker is a function that checks the health of a storage client.
type HealthChecker func() error

// Client is the base interface all storage clients implement.
type Client interface {
	// Name returns the name of the storage client.
	Name() string

	// Ping verifies the connection to the storage backend.
	Ping(ctx context.Context) error

	// Close closes the connection and releases resources.
	Close() error

	// Health returns a HealthChecker for the client.
	Health() HealthChecker
}
