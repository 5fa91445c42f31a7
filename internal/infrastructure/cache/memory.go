package cache

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/metrics"
)

// MemoryVideoCache implements VideoCache in process memory.
// Records are kept serialized so every Load returns a fresh copy.
type MemoryVideoCache struct {
	cache *gocache.Cache
}

// Compile-time verification that MemoryVideoCache implements VideoCache.
var _ VideoCache = (*MemoryVideoCache)(nil)

// NewMemoryVideoCache creates an empty in-memory cache. Entries never expire.
func NewMemoryVideoCache() *MemoryVideoCache {
	return &MemoryVideoCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

func (c *MemoryVideoCache) IsCached(_ context.Context, videoID string) (bool, error) {
	_, found := c.cache.Get(videoID)
	if found {
		metrics.ObserveCache(metrics.CacheTypeMemory, metrics.CacheOpIsCached, metrics.CacheStatusHit)
	} else {
		metrics.ObserveCache(metrics.CacheTypeMemory, metrics.CacheOpIsCached, metrics.CacheStatusMiss)
	}
	return found, nil
}

func (c *MemoryVideoCache) Save(_ context.Context, video *model.Video) error {
	data, err := video.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize video: %w", err)
	}

	c.cache.Set(video.ID, data, gocache.NoExpiration)
	metrics.ObserveCache(metrics.CacheTypeMemory, metrics.CacheOpSave, metrics.CacheStatusSuccess)
	return nil
}

func (c *MemoryVideoCache) Load(_ context.Context, videoID string) (*model.Video, error) {
	item, found := c.cache.Get(videoID)
	if !found {
		metrics.ObserveCache(metrics.CacheTypeMemory, metrics.CacheOpLoad, metrics.CacheStatusMiss)
		return nil, fmt.Errorf("%w: %s", repository.ErrCacheMiss, videoID)
	}

	data, ok := item.([]byte)
	if !ok {
		metrics.ObserveCache(metrics.CacheTypeMemory, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("%w: unexpected entry type %T for %s", model.ErrMalformedRecord, item, videoID)
	}

	video, err := model.VideoFromJSON(data)
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeMemory, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("deserialize video %s: %w", videoID, err)
	}

	metrics.ObserveCache(metrics.CacheTypeMemory, metrics.CacheOpLoad, metrics.CacheStatusHit)
	return video, nil
}

// Len returns the number of cached records.
func (c *MemoryVideoCache) Len() int {
	return c.cache.ItemCount()
}
