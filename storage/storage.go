package storage

import "context"

// BlobStore persists opaque values under string keys. A missing key
// yields a nil value and no error.
type BlobStore interface {
	GetBlob(ctx context.Context, key string) ([]byte, error)
	SetBlob(ctx context.Context, key string, value []byte) error
}
