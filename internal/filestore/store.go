// Package filestore defines the interface for exporting introspected
// configuration snapshots to object storage.
//
// All providers (MinIO, S3-compatible services, …) implement the Store
// interface. Callers depend only on this package — never on a specific
// provider package.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.PutSnapshot(ctx, "connector-config", "configuration.json", data)
package filestore

import (
	"context"
	"time"
)

// Store is the interface all snapshot storage providers must implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// PutSnapshot uploads a serialized configuration snapshot to bucket
	// under key.
	PutSnapshot(ctx context.Context, bucket, key string, data []byte) error

	// GetSnapshot downloads the configuration snapshot stored in bucket
	// under key.
	GetSnapshot(ctx context.Context, bucket, key string) ([]byte, error)

	// PresignGetURL returns a time-limited URL that allows anyone to
	// download the snapshot at key inside bucket without credentials.
	PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}
