package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
)

func openTestFileCache(t *testing.T) *FileVideoCache {
	t.Helper()

	cache, err := OpenFileVideoCache(filepath.Join(t.TempDir(), "videos.db"))
	if err != nil {
		t.Fatalf("OpenFileVideoCache failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestFileVideoCache_Contract(t *testing.T) {
	runVideoCacheContract(t, openTestFileCache(t))
}

func TestFileVideoCache_PersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "videos.db")
	ctx := context.Background()
	video := testVideo("persisted")

	first, err := OpenFileVideoCache(path)
	if err != nil {
		t.Fatalf("OpenFileVideoCache failed: %v", err)
	}
	if err := first.Save(ctx, video); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := OpenFileVideoCache(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	cached, err := second.IsCached(ctx, video.ID)
	if err != nil {
		t.Fatalf("IsCached failed: %v", err)
	}
	if !cached {
		t.Fatal("record did not survive closing the handle")
	}

	got, err := second.Load(ctx, video.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *video {
		t.Errorf("Load = %+v, want %+v", *got, *video)
	}
}

func TestFileVideoCache_Load_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.db")
	cache, err := OpenFileVideoCache(path)
	if err != nil {
		t.Fatalf("OpenFileVideoCache failed: %v", err)
	}
	defer cache.Close()

	// Write a payload directly, bypassing Save.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := raw.Exec(`INSERT INTO videos (id, payload) VALUES ('broken', '{"id":"broken"}')`); err != nil {
		t.Fatalf("insert raw payload: %v", err)
	}
	raw.Close()

	cached, err := cache.IsCached(context.Background(), "broken")
	if err != nil || !cached {
		t.Fatalf("IsCached = %v, %v; want true, nil", cached, err)
	}

	_, err = cache.Load(context.Background(), "broken")
	if !errors.Is(err, model.ErrMalformedRecord) {
		t.Errorf("Load error = %v, want ErrMalformedRecord", err)
	}
}

func TestFileVideoCache_ClosedHandle(t *testing.T) {
	cache, err := OpenFileVideoCache(filepath.Join(t.TempDir(), "videos.db"))
	if err != nil {
		t.Fatalf("OpenFileVideoCache failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ctx := context.Background()
	if _, err := cache.IsCached(ctx, "abc123"); !errors.Is(err, repository.ErrBackendUnavailable) {
		t.Errorf("IsCached error = %v, want ErrBackendUnavailable", err)
	}
	if err := cache.Save(ctx, testVideo("abc123")); !errors.Is(err, repository.ErrBackendUnavailable) {
		t.Errorf("Save error = %v, want ErrBackendUnavailable", err)
	}
	if _, err := cache.Load(ctx, "abc123"); !errors.Is(err, repository.ErrBackendUnavailable) {
		t.Errorf("Load error = %v, want ErrBackendUnavailable", err)
	}
}
