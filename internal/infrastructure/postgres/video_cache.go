package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/cache"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/metrics"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VideoCache implements cache.VideoCache using a PostgreSQL table.
// The payload column holds the canonical JSON text as written.
type VideoCache struct {
	db  DBTX
	now func() time.Time
}

// Compile-time verification that VideoCache implements cache.VideoCache.
var _ cache.VideoCache = (*VideoCache)(nil)

// NewVideoCache creates a new VideoCache instance.
func NewVideoCache(db DBTX) *VideoCache {
	return &VideoCache{db: db, now: time.Now}
}

// EnsureSchema creates the cache table if it does not exist.
func (c *VideoCache) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS cached_videos (
			id         TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := c.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: create cached_videos: %w", repository.ErrBackendUnavailable, err)
	}
	return nil
}

// IsCached checks for a row without reading its payload.
func (c *VideoCache) IsCached(ctx context.Context, videoID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM cached_videos WHERE id = $1)`

	var exists bool
	if err := c.db.QueryRow(ctx, query, videoID).Scan(&exists); err != nil {
		metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpIsCached, metrics.CacheStatusError)
		return false, fmt.Errorf("%w: check cached video: %w", repository.ErrBackendUnavailable, err)
	}

	if exists {
		metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpIsCached, metrics.CacheStatusHit)
	} else {
		metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpIsCached, metrics.CacheStatusMiss)
	}
	return exists, nil
}

// Save upserts the video record.
func (c *VideoCache) Save(ctx context.Context, video *model.Video) error {
	const query = `
		INSERT INTO cached_videos (id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	data, err := video.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize video: %w", err)
	}

	if _, err := c.db.Exec(ctx, query, video.ID, string(data), c.now()); err != nil {
		metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpSave, metrics.CacheStatusError)
		return fmt.Errorf("%w: save cached video: %w", repository.ErrBackendUnavailable, err)
	}

	metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpSave, metrics.CacheStatusSuccess)
	return nil
}

// Load reads and decodes the video record.
func (c *VideoCache) Load(ctx context.Context, videoID string) (*model.Video, error) {
	const query = `SELECT payload FROM cached_videos WHERE id = $1`

	var payload string
	if err := c.db.QueryRow(ctx, query, videoID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpLoad, metrics.CacheStatusMiss)
			return nil, fmt.Errorf("%w: %s", repository.ErrCacheMiss, videoID)
		}
		metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("%w: load cached video: %w", repository.ErrBackendUnavailable, err)
	}

	video, err := model.VideoFromJSON([]byte(payload))
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("deserialize video %s: %w", videoID, err)
	}

	metrics.ObserveCache(metrics.CacheTypePostgres, metrics.CacheOpLoad, metrics.CacheStatusHit)
	return video, nil
}
