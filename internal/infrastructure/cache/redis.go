package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/metrics"
)

const (
	// videoCacheKeyPrefix namespaces video keys so the Redis database can be
	// shared with unrelated data.
	videoCacheKeyPrefix = "ytpodcast:video:"
)

// RedisClientConfig holds connection settings for the Redis client.
type RedisClientConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address of the server.
func (c RedisClientConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewRedisClient creates a Redis client and verifies the server is reachable.
// The returned client is meant to live for the whole process and be closed by the caller.
func NewRedisClient(ctx context.Context, cfg RedisClientConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %w", repository.ErrBackendUnavailable, cfg.Addr(), err)
	}

	return client, nil
}

// RedisVideoCache implements VideoCache using Redis as the backing store.
// Records never expire.
type RedisVideoCache struct {
	client *redis.Client
}

// Compile-time verification that RedisVideoCache implements VideoCache.
var _ VideoCache = (*RedisVideoCache)(nil)

// NewRedisVideoCache creates a new Redis-backed video cache.
func NewRedisVideoCache(client *redis.Client) *RedisVideoCache {
	return &RedisVideoCache{
		client: client,
	}
}

// Ping reports whether the Redis server is reachable.
func (c *RedisVideoCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", repository.ErrBackendUnavailable, err)
	}
	return nil
}

// IsCached checks key existence without reading the value.
func (c *RedisVideoCache) IsCached(ctx context.Context, videoID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.buildKey(videoID)).Result()
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpIsCached, metrics.CacheStatusError)
		return false, fmt.Errorf("%w: redis exists: %w", repository.ErrBackendUnavailable, err)
	}

	if n == 0 {
		metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpIsCached, metrics.CacheStatusMiss)
		return false, nil
	}
	metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpIsCached, metrics.CacheStatusHit)
	return true, nil
}

// Save stores a video in Redis without expiration.
func (c *RedisVideoCache) Save(ctx context.Context, video *model.Video) error {
	data, err := video.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize video: %w", err)
	}

	if err := c.client.Set(ctx, c.buildKey(video.ID), data, 0).Err(); err != nil {
		metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpSave, metrics.CacheStatusError)
		return fmt.Errorf("%w: redis set: %w", repository.ErrBackendUnavailable, err)
	}

	metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpSave, metrics.CacheStatusSuccess)
	return nil
}

// Load retrieves a video from Redis.
func (c *RedisVideoCache) Load(ctx context.Context, videoID string) (*model.Video, error) {
	data, err := c.client.Get(ctx, c.buildKey(videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpLoad, metrics.CacheStatusMiss)
			return nil, fmt.Errorf("%w: %s", repository.ErrCacheMiss, videoID)
		}
		metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("%w: redis get: %w", repository.ErrBackendUnavailable, err)
	}

	video, err := model.VideoFromJSON(data)
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("deserialize video %s: %w", videoID, err)
	}

	metrics.ObserveCache(metrics.CacheTypeRedis, metrics.CacheOpLoad, metrics.CacheStatusHit)
	return video, nil
}

// buildKey constructs the Redis key for a video.
func (c *RedisVideoCache) buildKey(videoID string) string {
	return videoCacheKeyPrefix + videoID
}
