// Package usecase resolves video, playlist and channel IDs into records.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/cache"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/metrics"
)

// DefaultDescription is used for collections whose description cannot be read.
const DefaultDescription = "No description available."

// InfoProvider resolves IDs against an external source, optionally memoizing
// single videos in a cache.
type InfoProvider interface {
	// Name identifies the backing source.
	Name() string

	// VideoFromID resolves a single video.
	// Returns repository.ErrVideoNotFound or repository.ErrStreamResolution
	// when the source cannot provide it.
	VideoFromID(ctx context.Context, videoID string) (*model.Video, error)

	// PlaylistFromID resolves a playlist and at most limit of its videos.
	// A limit of zero or less means all videos.
	// Returns repository.ErrCollectionNotFound for unknown IDs.
	PlaylistFromID(ctx context.Context, playlistID string, limit int) (*model.Playlist, error)

	// ChannelFromID resolves a channel's uploads like PlaylistFromID.
	ChannelFromID(ctx context.Context, channelID string, limit int) (*model.Channel, error)
}

// InfoProviderConfig holds the defaults applied to collection fields the
// source fails to provide.
type InfoProviderConfig struct {
	DefaultDescription string

	// DefaultCollectionURL builds a page URL for a collection. May be nil.
	DefaultCollectionURL func(kind repository.CollectionKind, id string) string
}

// DefaultInfoProviderConfig returns the default configuration.
func DefaultInfoProviderConfig() InfoProviderConfig {
	return InfoProviderConfig{
		DefaultDescription: DefaultDescription,
	}
}

type infoProvider struct {
	source repository.MetadataSource
	cache  cache.VideoCache
	cfg    InfoProviderConfig
}

// NewInfoProvider creates an InfoProvider. videoCache may be nil to disable caching.
func NewInfoProvider(
	source repository.MetadataSource,
	videoCache cache.VideoCache,
	cfg InfoProviderConfig,
) InfoProvider {
	return &infoProvider{
		source: source,
		cache:  videoCache,
		cfg:    cfg,
	}
}

func (p *infoProvider) Name() string {
	return p.source.Name()
}

func (p *infoProvider) VideoFromID(ctx context.Context, videoID string) (*model.Video, error) {
	if p.cache != nil {
		video, err := p.loadCached(ctx, videoID)
		if err != nil {
			return nil, err
		}
		if video != nil {
			return video, nil
		}
	}

	video, err := p.fetchVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Save(ctx, video); err != nil {
			return nil, fmt.Errorf("cache video %s: %w", videoID, err)
		}
	}

	return video, nil
}

// loadCached returns nil without error when the video is not cached.
func (p *infoProvider) loadCached(ctx context.Context, videoID string) (*model.Video, error) {
	cached, err := p.cache.IsCached(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("check cache for %s: %w", videoID, err)
	}
	if !cached {
		return nil, nil
	}

	video, err := p.cache.Load(ctx, videoID)
	if err != nil {
		// Another writer may have replaced the entry between the two calls.
		if errors.Is(err, repository.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cached %s: %w", videoID, err)
	}
	return video, nil
}

func (p *infoProvider) fetchVideo(ctx context.Context, videoID string) (*model.Video, error) {
	meta, err := p.source.VideoMetadata(ctx, videoID)
	metrics.ObserveSource(metrics.SourceOpMetadata, err)
	if err != nil {
		return nil, err
	}

	streamURL, err := p.source.StreamURL(ctx, videoID)
	metrics.ObserveSource(metrics.SourceOpStream, err)
	if err != nil {
		return nil, err
	}

	// Records are keyed by the requested id.
	if meta.ID != "" && meta.ID != videoID {
		slog.Debug("source returned a different video id",
			"video_id", videoID,
			"source_id", meta.ID,
		)
	}

	video, err := model.NewVideo(videoID, meta.Title, meta.Description, meta.ThumbnailURL, streamURL, meta.DurationSeconds)
	if err != nil {
		return nil, fmt.Errorf("build video %s: %w", videoID, err)
	}

	slog.Debug("video fetched from source",
		"video_id", videoID,
		"source", p.source.Name(),
	)
	return video, nil
}

func (p *infoProvider) PlaylistFromID(ctx context.Context, playlistID string, limit int) (*model.Playlist, error) {
	coll, err := p.source.Playlist(ctx, playlistID)
	metrics.ObserveSource(metrics.SourceOpPlaylist, err)
	if err != nil {
		return nil, err
	}

	return p.resolveCollection(ctx, coll, limit)
}

func (p *infoProvider) ChannelFromID(ctx context.Context, channelID string, limit int) (*model.Channel, error) {
	coll, err := p.source.Channel(ctx, channelID)
	metrics.ObserveSource(metrics.SourceOpChannel, err)
	if err != nil {
		return nil, err
	}

	playlist, err := p.resolveCollection(ctx, coll, limit)
	if err != nil {
		return nil, err
	}
	return &model.Channel{Playlist: *playlist}, nil
}

func (p *infoProvider) resolveCollection(ctx context.Context, coll repository.Collection, limit int) (*model.Playlist, error) {
	videos, err := p.resolveMembers(ctx, coll, limit)
	if err != nil {
		return nil, err
	}

	id := coll.ID()
	title := p.fieldOr(coll, "title", coll.Title, id)
	description := p.fieldOr(coll, "description", coll.Description, p.cfg.DefaultDescription)
	url := p.fieldOr(coll, "url", coll.URL, p.defaultURL(coll.Kind(), id))
	thumbnail := p.fieldOr(coll, "thumbnail", coll.Thumbnail, "")

	return model.NewPlaylist(id, title, description, thumbnail, url, videos), nil
}

// resolveMembers resolves member videos in order, stopping after limit members.
// The first failing member aborts the whole collection.
func (p *infoProvider) resolveMembers(ctx context.Context, coll repository.Collection, limit int) ([]*model.Video, error) {
	var videos []*model.Video
	if limit > 0 {
		videos = make([]*model.Video, 0, limit)
	}

	for videoID, err := range coll.Members(ctx) {
		if err != nil {
			return nil, fmt.Errorf("enumerate %s %s: %w", coll.Kind(), coll.ID(), err)
		}

		video, err := p.VideoFromID(ctx, videoID)
		if err != nil {
			return nil, fmt.Errorf("resolve %s %s member %s: %w", coll.Kind(), coll.ID(), videoID, err)
		}
		videos = append(videos, video)

		if limit > 0 && len(videos) >= limit {
			break
		}
	}

	return videos, nil
}

// fieldOr reads an optional collection field, returning fallback when the source fails.
func (p *infoProvider) fieldOr(coll repository.Collection, field string, get func() (string, error), fallback string) string {
	value, err := get()
	if err != nil {
		slog.Debug("collection field unavailable, using default",
			"kind", coll.Kind(),
			"collection_id", coll.ID(),
			"field", field,
			"error", err,
		)
		return fallback
	}
	return value
}

func (p *infoProvider) defaultURL(kind repository.CollectionKind, id string) string {
	if p.cfg.DefaultCollectionURL == nil {
		return ""
	}
	return p.cfg.DefaultCollectionURL(kind, id)
}
