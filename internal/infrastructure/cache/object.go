package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/metrics"
)

const (
	// videoObjectPrefix namespaces video objects inside a shared bucket.
	videoObjectPrefix = "ytpodcast/videos"

	jsonContentType = "application/json"
)

// ObjectVideoCache implements VideoCache on top of object storage (e.g., MinIO).
// Each record is one JSON object.
type ObjectVideoCache struct {
	storage repository.ObjectStorage
}

// Compile-time verification that ObjectVideoCache implements VideoCache.
var _ VideoCache = (*ObjectVideoCache)(nil)

// NewObjectVideoCache creates a video cache stored in the given object storage.
func NewObjectVideoCache(storage repository.ObjectStorage) *ObjectVideoCache {
	return &ObjectVideoCache{storage: storage}
}

func (c *ObjectVideoCache) IsCached(ctx context.Context, videoID string) (bool, error) {
	exists, err := c.storage.Exists(ctx, c.buildKey(videoID))
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpIsCached, metrics.CacheStatusError)
		return false, fmt.Errorf("%w: %w", repository.ErrBackendUnavailable, err)
	}

	if exists {
		metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpIsCached, metrics.CacheStatusHit)
	} else {
		metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpIsCached, metrics.CacheStatusMiss)
	}
	return exists, nil
}

func (c *ObjectVideoCache) Save(ctx context.Context, video *model.Video) error {
	data, err := video.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize video: %w", err)
	}

	if err := c.storage.Upload(ctx, c.buildKey(video.ID), bytes.NewReader(data), jsonContentType); err != nil {
		metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpSave, metrics.CacheStatusError)
		return fmt.Errorf("%w: %w", repository.ErrBackendUnavailable, err)
	}

	metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpSave, metrics.CacheStatusSuccess)
	return nil
}

func (c *ObjectVideoCache) Load(ctx context.Context, videoID string) (*model.Video, error) {
	obj, err := c.storage.Download(ctx, c.buildKey(videoID))
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpLoad, metrics.CacheStatusMiss)
			return nil, fmt.Errorf("%w: %s", repository.ErrCacheMiss, videoID)
		}
		metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("%w: %w", repository.ErrBackendUnavailable, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("%w: read object: %w", repository.ErrBackendUnavailable, err)
	}

	video, err := model.VideoFromJSON(data)
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("deserialize video %s: %w", videoID, err)
	}

	metrics.ObserveCache(metrics.CacheTypeObject, metrics.CacheOpLoad, metrics.CacheStatusHit)
	return video, nil
}

// Ping reports whether the object storage is reachable.
func (c *ObjectVideoCache) Ping(ctx context.Context) error {
	if err := c.storage.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrBackendUnavailable, err)
	}
	return nil
}

// buildKey constructs the object key for a video.
// Format: ytpodcast/videos/{escaped video_id}.json
// The id is escaped so that slashes and dot segments cannot alias another key.
func (c *ObjectVideoCache) buildKey(videoID string) string {
	return videoObjectPrefix + "/" + url.PathEscape(videoID) + ".json"
}
