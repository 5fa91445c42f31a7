// Package app wires configuration into the cache, source and provider shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/ytpodcast/internal/config"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/cache"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/postgres"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/storage"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/youtube"
	"github.com/hszk-dev/ytpodcast/internal/usecase"
)

func noopClose() error { return nil }

// OpenVideoCache opens the backend named by cfg.Cache.Backend.
// The returned close function releases the backend and must always be called.
// For the "none" backend the cache is nil.
func OpenVideoCache(ctx context.Context, cfg *config.Config) (cache.VideoCache, func() error, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(ctx, cache.RedisClientConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, noopClose, err
		}
		slog.Info("video cache ready", "backend", "redis", "addr", client.Options().Addr)
		return cache.NewRedisVideoCache(client), client.Close, nil

	case config.CacheBackendFile:
		fc, err := cache.OpenFileVideoCache(cfg.Cache.FilePath)
		if err != nil {
			return nil, noopClose, err
		}
		slog.Info("video cache ready", "backend", "file", "path", fc.Path())
		return fc, fc.Close, nil

	case config.CacheBackendMemory:
		slog.Info("video cache ready", "backend", "memory")
		return cache.NewMemoryVideoCache(), noopClose, nil

	case config.CacheBackendPostgres:
		client, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
		if err != nil {
			return nil, noopClose, err
		}
		pc := postgres.NewVideoCache(client.Pool())
		if err := pc.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, noopClose, err
		}
		slog.Info("video cache ready", "backend", "postgres", "host", cfg.Database.Host)
		return pc, client.Close, nil

	case config.CacheBackendObject:
		client, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:     cfg.MinIO.Endpoint,
			AccessKey:    cfg.MinIO.AccessKey,
			SecretKey:    cfg.MinIO.SecretKey,
			Bucket:       cfg.MinIO.Bucket,
			UseSSL:       cfg.MinIO.UseSSL,
			CreateBucket: cfg.MinIO.CreateBucket,
		})
		if err != nil {
			return nil, noopClose, err
		}
		slog.Info("video cache ready", "backend", "object", "bucket", client.Bucket())
		return cache.NewObjectVideoCache(client), noopClose, nil

	case config.CacheBackendNone:
		slog.Warn("video cache disabled, every request reaches the source")
		return nil, noopClose, nil
	}

	return nil, noopClose, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// NewYouTubeSource creates the YouTube metadata source.
func NewYouTubeSource(cfg *config.Config) repository.MetadataSource {
	return youtube.NewClient(youtube.ClientConfig{
		HTTPTimeout: cfg.YouTube.HTTPTimeout,
		VideoTTL:    cfg.YouTube.VideoTTL,
	})
}

// NewInfoProvider creates the provider over source, caching in videoCache when it is non-nil.
func NewInfoProvider(cfg *config.Config, source repository.MetadataSource, videoCache cache.VideoCache) usecase.InfoProvider {
	return usecase.NewInfoProvider(source, videoCache, usecase.InfoProviderConfig{
		DefaultDescription:   cfg.Provider.DefaultDescription,
		DefaultCollectionURL: CollectionURL,
	})
}

// CollectionURL returns the public page URL of a playlist or channel.
func CollectionURL(kind repository.CollectionKind, id string) string {
	if kind == repository.KindChannel {
		return youtube.ChannelURL(id)
	}
	return youtube.PlaylistURL(id)
}
