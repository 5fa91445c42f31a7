package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
)

// mockMetadataSource provides a configurable mock for MetadataSource.
// Without overrides it knows every video ID.
type mockMetadataSource struct {
	videoMetadataFn func(ctx context.Context, videoID string) (*repository.VideoMetadata, error)
	streamURLFn     func(ctx context.Context, videoID string) (string, error)
	playlistFn      func(ctx context.Context, playlistID string) (repository.Collection, error)
	channelFn       func(ctx context.Context, channelID string) (repository.Collection, error)

	metadataCalls atomic.Int32
	streamCalls   atomic.Int32
}

func (m *mockMetadataSource) Name() string { return "mock" }

func (m *mockMetadataSource) VideoMetadata(ctx context.Context, videoID string) (*repository.VideoMetadata, error) {
	m.metadataCalls.Add(1)
	if m.videoMetadataFn != nil {
		return m.videoMetadataFn(ctx, videoID)
	}
	return &repository.VideoMetadata{
		ID:              videoID,
		Title:           "Title " + videoID,
		Description:     "Description " + videoID,
		ThumbnailURL:    "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg",
		DurationSeconds: 600,
	}, nil
}

func (m *mockMetadataSource) StreamURL(ctx context.Context, videoID string) (string, error) {
	m.streamCalls.Add(1)
	if m.streamURLFn != nil {
		return m.streamURLFn(ctx, videoID)
	}
	return "https://stream.example/" + videoID, nil
}

func (m *mockMetadataSource) Playlist(ctx context.Context, playlistID string) (repository.Collection, error) {
	if m.playlistFn != nil {
		return m.playlistFn(ctx, playlistID)
	}
	return nil, repository.ErrCollectionNotFound
}

func (m *mockMetadataSource) Channel(ctx context.Context, channelID string) (repository.Collection, error) {
	if m.channelFn != nil {
		return m.channelFn(ctx, channelID)
	}
	return nil, repository.ErrCollectionNotFound
}

var errTooManyPulls = errors.New("enumerated past the requested limit")

// stubCollection is a Collection over fixed member IDs. When maxPulls is set,
// asking for more members than that records an overrun and yields an error.
type stubCollection struct {
	id       string
	kind     repository.CollectionKind
	members  []string
	maxPulls int

	title, description, url, thumbnail string
	fieldErr                           error

	pulls   int
	overrun bool
}

func newStubCollection(id string, kind repository.CollectionKind, members ...string) *stubCollection {
	return &stubCollection{
		id:          id,
		kind:        kind,
		members:     members,
		title:       "Collection " + id,
		description: "About " + id,
		url:         "https://example.com/" + id,
		thumbnail:   "https://example.com/" + id + ".jpg",
	}
}

func (c *stubCollection) ID() string                      { return c.id }
func (c *stubCollection) Kind() repository.CollectionKind { return c.kind }

func (c *stubCollection) field(value string) (string, error) {
	if c.fieldErr != nil {
		return "", c.fieldErr
	}
	return value, nil
}

func (c *stubCollection) Title() (string, error)       { return c.field(c.title) }
func (c *stubCollection) Description() (string, error) { return c.field(c.description) }
func (c *stubCollection) URL() (string, error)         { return c.field(c.url) }
func (c *stubCollection) Thumbnail() (string, error)   { return c.field(c.thumbnail) }

func (c *stubCollection) Members(context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for i, id := range c.members {
			c.pulls++
			if c.maxPulls > 0 && i >= c.maxPulls {
				c.overrun = true
				yield("", fmt.Errorf("%w: member %d", errTooManyPulls, i+1))
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// mockVideoCache is an in-memory VideoCache with optional failure overrides.
type mockVideoCache struct {
	mu   sync.RWMutex
	data map[string]*model.Video

	isCachedFn func(ctx context.Context, videoID string) (bool, error)
	saveFn     func(ctx context.Context, video *model.Video) error
	loadFn     func(ctx context.Context, videoID string) (*model.Video, error)

	saves atomic.Int32
}

func newMockVideoCache() *mockVideoCache {
	return &mockVideoCache{data: make(map[string]*model.Video)}
}

func (m *mockVideoCache) IsCached(ctx context.Context, videoID string) (bool, error) {
	if m.isCachedFn != nil {
		return m.isCachedFn(ctx, videoID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[videoID]
	return ok, nil
}

func (m *mockVideoCache) Save(ctx context.Context, video *model.Video) error {
	m.saves.Add(1)
	if m.saveFn != nil {
		return m.saveFn(ctx, video)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[video.ID] = video
	return nil
}

func (m *mockVideoCache) Load(ctx context.Context, videoID string) (*model.Video, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx, videoID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	video, ok := m.data[videoID]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return video, nil
}

// mockMessageQueue records published tasks.
type mockMessageQueue struct {
	publishFn func(ctx context.Context, task repository.WarmupTask) error
	published []repository.WarmupTask
}

func (m *mockMessageQueue) PublishWarmupTask(ctx context.Context, task repository.WarmupTask) error {
	if m.publishFn != nil {
		if err := m.publishFn(ctx, task); err != nil {
			return err
		}
	}
	m.published = append(m.published, task)
	return nil
}

func (m *mockMessageQueue) ConsumeWarmupTasks(ctx context.Context, _ func(task repository.WarmupTask) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockMessageQueue) Close() error { return nil }
