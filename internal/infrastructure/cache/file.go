package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/metrics"
)

// FileVideoCache implements VideoCache as a persistent map in a single
// SQLite file. One handle serves every operation until Close.
//
// Opening the same path from several processes at once is not supported:
// the cache adds no locking of its own and the outcome is undefined.
type FileVideoCache struct {
	db   *sql.DB
	path string
}

// Compile-time verification that FileVideoCache implements VideoCache.
var _ VideoCache = (*FileVideoCache)(nil)

// OpenFileVideoCache opens (or creates) the cache file at path.
// Callers must Close the cache to release the file handle.
func OpenFileVideoCache(path string) (*FileVideoCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("%w: mkdir %s: %w", repository.ErrBackendUnavailable, dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", repository.ErrBackendUnavailable, path, err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS videos (
		id      TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init schema %s: %w", repository.ErrBackendUnavailable, path, err)
	}

	return &FileVideoCache{db: db, path: path}, nil
}

// IsCached checks for a row without reading its payload.
func (c *FileVideoCache) IsCached(ctx context.Context, videoID string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM videos WHERE id = ?)`, videoID).Scan(&exists)
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpIsCached, metrics.CacheStatusError)
		return false, fmt.Errorf("%w: file exists: %w", repository.ErrBackendUnavailable, err)
	}

	if exists {
		metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpIsCached, metrics.CacheStatusHit)
	} else {
		metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpIsCached, metrics.CacheStatusMiss)
	}
	return exists, nil
}

// Save upserts the video record.
func (c *FileVideoCache) Save(ctx context.Context, video *model.Video) error {
	data, err := video.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize video: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO videos (id, payload) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		video.ID, string(data),
	)
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpSave, metrics.CacheStatusError)
		return fmt.Errorf("%w: file save: %w", repository.ErrBackendUnavailable, err)
	}

	metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpSave, metrics.CacheStatusSuccess)
	return nil
}

// Load reads and decodes the video record.
func (c *FileVideoCache) Load(ctx context.Context, videoID string) (*model.Video, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM videos WHERE id = ?`, videoID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpLoad, metrics.CacheStatusMiss)
			return nil, fmt.Errorf("%w: %s", repository.ErrCacheMiss, videoID)
		}
		metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("%w: file load: %w", repository.ErrBackendUnavailable, err)
	}

	video, err := model.VideoFromJSON([]byte(payload))
	if err != nil {
		metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpLoad, metrics.CacheStatusError)
		return nil, fmt.Errorf("deserialize video %s: %w", videoID, err)
	}

	metrics.ObserveCache(metrics.CacheTypeFile, metrics.CacheOpLoad, metrics.CacheStatusHit)
	return video, nil
}

// Path returns the file backing the cache.
func (c *FileVideoCache) Path() string {
	return c.path
}

// Close releases the file handle. Later operations fail with ErrBackendUnavailable.
func (c *FileVideoCache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.path, err)
	}
	return nil
}
