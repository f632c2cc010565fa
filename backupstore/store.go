// Package backupstore defines the interface for shipping rqlite database
// backups to object storage.
//
// All providers implement the Store interface; callers depend only on this
// package, never on a specific provider package.
//
// Usage:
//
//	cfg := backupstore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	data, err := conn.Backup(ctx)
//	if err != nil { ... }
//	err = backupstore.Upload(ctx, store, "backups", "cluster-a/latest.sqlite", data)
package backupstore

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// Store is the interface a backup target must implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// EnsureBucket creates the bucket if it does not already exist.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject writes size bytes from r to key inside bucket.
	PutObject(ctx context.Context, bucket, key string, r *bytes.Reader, size int64) error
}

// Config holds the settings needed to reach an object storage backend.
type Config struct {
	// Endpoint is the host:port of the storage server,
	// e.g. "localhost:9000" for local MinIO.
	Endpoint string

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string

	// SecretKey is the secret access key.
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string
}

// DefaultConfig returns a sensible local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
	}
}

// Upload writes one backup snapshot to the store, creating the bucket when
// missing.
func Upload(ctx context.Context, store Store, bucket, key string, data []byte) error {
	if err := store.EnsureBucket(ctx, bucket); err != nil {
		return err
	}
	return store.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)))
}

// TimestampKey builds an object key of the form <prefix>/<RFC3339 time>.sqlite,
// useful for keeping multiple snapshots side by side.
func TimestampKey(prefix string, t time.Time) string {
	return fmt.Sprintf("%s/%s.sqlite", prefix, t.UTC().Format(time.RFC3339))
}
