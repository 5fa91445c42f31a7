package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
)

// runVideoCacheContract exercises the behavior every VideoCache backend shares.
func runVideoCacheContract(t *testing.T, cache VideoCache) {
	t.Helper()
	ctx := context.Background()

	t.Run("not cached before save", func(t *testing.T) {
		cached, err := cache.IsCached(ctx, "never-saved")
		if err != nil {
			t.Fatalf("IsCached failed: %v", err)
		}
		if cached {
			t.Error("IsCached = true before any save, want false")
		}
	})

	t.Run("load miss", func(t *testing.T) {
		got, err := cache.Load(ctx, "never-saved")
		if !errors.Is(err, repository.ErrCacheMiss) {
			t.Errorf("Load error = %v, want ErrCacheMiss", err)
		}
		if got != nil {
			t.Errorf("Load = %+v, want nil", got)
		}
	})

	t.Run("save then load", func(t *testing.T) {
		video := testVideo("saved-1")
		if err := cache.Save(ctx, video); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		cached, err := cache.IsCached(ctx, video.ID)
		if err != nil {
			t.Fatalf("IsCached failed: %v", err)
		}
		if !cached {
			t.Error("IsCached = false right after Save, want true")
		}

		got, err := cache.Load(ctx, video.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if *got != *video {
			t.Errorf("Load = %+v, want %+v", *got, *video)
		}
	})

	t.Run("save twice overwrites", func(t *testing.T) {
		video := testVideo("saved-2")
		if err := cache.Save(ctx, video); err != nil {
			t.Fatalf("first Save failed: %v", err)
		}
		if err := cache.Save(ctx, video); err != nil {
			t.Fatalf("second Save failed: %v", err)
		}

		got, err := cache.Load(ctx, video.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if *got != *video {
			t.Errorf("Load = %+v, want %+v", *got, *video)
		}

		replaced := *video
		replaced.URL = "https://rr2---sn.googlevideo.com/videoplayback?id=fresh"
		if err := cache.Save(ctx, &replaced); err != nil {
			t.Fatalf("replacing Save failed: %v", err)
		}
		got, err = cache.Load(ctx, video.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got.URL != replaced.URL {
			t.Errorf("URL = %q, want %q (last write wins)", got.URL, replaced.URL)
		}
	})

	t.Run("path-like ids stay distinct", func(t *testing.T) {
		plain := testVideo("dotted")
		if err := cache.Save(ctx, plain); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		for _, id := range []string{"a/../dotted", "../dotted", "./dotted"} {
			cached, err := cache.IsCached(ctx, id)
			if err != nil {
				t.Fatalf("IsCached(%q) failed: %v", id, err)
			}
			if cached {
				t.Errorf("IsCached(%q) = true after saving only %q", id, plain.ID)
			}
			if _, err := cache.Load(ctx, id); !errors.Is(err, repository.ErrCacheMiss) {
				t.Errorf("Load(%q) error = %v, want ErrCacheMiss", id, err)
			}
		}

		dotted := testVideo("a/../dotted")
		dotted.Title = "Dotted twin"
		if err := cache.Save(ctx, dotted); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		got, err := cache.Load(ctx, plain.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if *got != *plain {
			t.Errorf("Load(%q) = %+v, want %+v", plain.ID, *got, *plain)
		}
		got, err = cache.Load(ctx, dotted.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if *got != *dotted {
			t.Errorf("Load(%q) = %+v, want %+v", dotted.ID, *got, *dotted)
		}
	})
}

func atoiPort(t *testing.T, s string) int {
	t.Helper()
	port, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("invalid port %q: %v", s, err)
	}
	return port
}
