package repository

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for object storage operations.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Upload stores an object in the storage, overwriting any existing object at key.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download retrieves an object from the storage.
	// Returns ErrObjectNotFound if the key does not exist.
	// Caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks if an object exists in the storage.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping reports whether the storage is reachable.
	Ping(ctx context.Context) error
}
