package backupstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store used to test the Upload orchestration.
type memStore struct {
	buckets map[string]map[string][]byte

	ensureErr error
	putErr    error
}

func newMemStore() *memStore {
	return &memStore{buckets: make(map[string]map[string][]byte)}
}

func (m *memStore) Ping(ctx context.Context) error { return nil }
func (m *memStore) Close() error                   { return nil }

func (m *memStore) EnsureBucket(ctx context.Context, bucket string) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string][]byte)
	}
	return nil
}

func (m *memStore) PutObject(ctx context.Context, bucket, key string, r *bytes.Reader, size int64) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errors.New("size mismatch")
	}
	m.buckets[bucket][key] = data
	return nil
}

func TestUpload(t *testing.T) {
	store := newMemStore()
	data := []byte("SQLite format 3\x00")

	err := Upload(context.Background(), store, "backups", "cluster-a/latest.sqlite", data)
	require.NoError(t, err)

	assert.Equal(t, data, store.buckets["backups"]["cluster-a/latest.sqlite"])
}

func TestUploadBucketFailure(t *testing.T) {
	store := newMemStore()
	store.ensureErr = errors.New("access denied")

	err := Upload(context.Background(), store, "backups", "k", []byte("x"))
	require.Error(t, err)
	assert.Empty(t, store.buckets)
}

func TestUploadPutFailure(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("disk full")

	err := Upload(context.Background(), store, "backups", "k", []byte("x"))
	require.Error(t, err)
	assert.Empty(t, store.buckets["backups"])
}

func TestTimestampKey(t *testing.T) {
	at := time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, "cluster-a/2026-08-29T12:30:00Z.sqlite", TimestampKey("cluster-a", at))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
	assert.Equal(t, "localhost:9000", cfg.Endpoint)
	assert.False(t, cfg.UseSSL)
	assert.Empty(t, cfg.Region)
}
