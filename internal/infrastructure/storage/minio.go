// Package storage holds the MinIO-backed object store used by the object cache backend.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
)

const codeNoSuchKey = "NoSuchKey"

// objectReader is the part of *minio.Object the store relies on.
type objectReader interface {
	io.ReadCloser
	Stat() (minio.ObjectInfo, error)
}

// minioClient is the subset of the MinIO API used by Client.
type minioClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// minioAdapter narrows *minio.Client.GetObject to objectReader.
type minioAdapter struct {
	*minio.Client
}

func (a minioAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (objectReader, error) {
	return a.Client.GetObject(ctx, bucketName, objectName, opts)
}

// ClientConfig holds configuration for the MinIO client.
type ClientConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// CreateBucket makes the bucket on startup when it is missing
	// instead of failing with ErrBucketNotFound.
	CreateBucket bool
}

// Client implements repository.ObjectStorage on a single MinIO bucket.
type Client struct {
	client minioClient
	bucket string
}

var _ repository.ObjectStorage = (*Client)(nil)

// NewClient connects to MinIO and checks the configured bucket.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return newClient(ctx, minioAdapter{client}, cfg.Bucket, cfg.CreateBucket)
}

func newClient(ctx context.Context, client minioClient, bucket string, create bool) (*Client, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: check bucket %s: %w", repository.ErrBackendUnavailable, bucket, err)
	}
	if !exists {
		if !create {
			return nil, fmt.Errorf("%w: %s", repository.ErrBucketNotFound, bucket)
		}
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: make bucket %s: %w", repository.ErrBackendUnavailable, bucket, err)
		}
	}

	return &Client{client: client, bucket: bucket}, nil
}

// Upload stores an object, replacing any existing object at key.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Download opens an object for reading. The caller closes the reader.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == codeNoSuchKey {
			return nil, fmt.Errorf("%w: %s", repository.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}

	return obj, nil
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == codeNoSuchKey {
			return false, nil
		}
		return false, fmt.Errorf("stat object %s: %w", key, err)
	}
	return true, nil
}

// Ping checks that the bucket is still reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.BucketExists(ctx, c.bucket); err != nil {
		return fmt.Errorf("%w: ping minio: %w", repository.ErrBackendUnavailable, err)
	}
	return nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}
