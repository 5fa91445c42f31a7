// Package youtube adapts github.com/kkdai/youtube/v2 to repository.MetadataSource.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
)

const sourceName = "youtube"

// youtubeClient is the subset of *youtube.Client used by Client.
type youtubeClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

// ClientConfig holds configuration for the YouTube source.
type ClientConfig struct {
	HTTPTimeout time.Duration

	// VideoTTL bounds how long a fetched video page is reused between the
	// metadata and stream lookups of one resolution. Zero disables reuse.
	VideoTTL time.Duration
}

// DefaultClientConfig returns the configuration used when nothing is set.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HTTPTimeout: 30 * time.Second,
		VideoTTL:    time.Minute,
	}
}

// Client implements repository.MetadataSource on top of kkdai/youtube.
type Client struct {
	yt     youtubeClient
	videos *gocache.Cache
	ttl    time.Duration
}

var _ repository.MetadataSource = (*Client)(nil)

// NewClient creates a YouTube source with its own HTTP client.
func NewClient(cfg ClientConfig) *Client {
	return newClient(&youtube.Client{
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}, cfg.VideoTTL)
}

func newClient(yt youtubeClient, ttl time.Duration) *Client {
	return &Client{
		yt:     yt,
		videos: gocache.New(ttl, 2*ttl),
		ttl:    ttl,
	}
}

func (c *Client) Name() string {
	return sourceName
}

// VideoMetadata fetches the descriptive fields of a video.
func (c *Client) VideoMetadata(ctx context.Context, videoID string) (*repository.VideoMetadata, error) {
	video, err := c.video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	return &repository.VideoMetadata{
		ID:              videoID,
		Title:           video.Title,
		Description:     video.Description,
		ThumbnailURL:    largestThumbnail(video.Thumbnails),
		DurationSeconds: int(video.Duration / time.Second),
	}, nil
}

// StreamURL resolves a playable URL for the best audio-bearing format.
func (c *Client) StreamURL(ctx context.Context, videoID string) (string, error) {
	video, err := c.video(ctx, videoID)
	if err != nil {
		return "", err
	}

	format := bestAudioFormat(video.Formats)
	if format == nil {
		return "", fmt.Errorf("%w: %s: no audio formats", repository.ErrStreamResolution, videoID)
	}

	streamURL, err := c.yt.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", repository.ErrStreamResolution, videoID, err)
	}
	if streamURL == "" {
		return "", fmt.Errorf("%w: %s: empty url", repository.ErrStreamResolution, videoID)
	}
	return streamURL, nil
}

// Playlist fetches a playlist and its member list.
func (c *Client) Playlist(ctx context.Context, playlistID string) (repository.Collection, error) {
	playlist, err := c.playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	return &collection{
		id:       playlistID,
		kind:     repository.KindPlaylist,
		url:      PlaylistURL(playlistID),
		playlist: playlist,
	}, nil
}

// Channel resolves a channel through its uploads playlist.
func (c *Client) Channel(ctx context.Context, channelID string) (repository.Collection, error) {
	uploadsID, ok := uploadsPlaylistID(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a channel id", repository.ErrCollectionNotFound, channelID)
	}

	playlist, err := c.playlist(ctx, uploadsID)
	if err != nil {
		return nil, err
	}

	return &collection{
		id:       channelID,
		kind:     repository.KindChannel,
		url:      ChannelURL(channelID),
		playlist: playlist,
	}, nil
}

func (c *Client) video(ctx context.Context, videoID string) (*youtube.Video, error) {
	if c.ttl > 0 {
		if v, ok := c.videos.Get(videoID); ok {
			return v.(*youtube.Video), nil
		}
	}

	video, err := c.yt.GetVideoContext(ctx, VideoURL(videoID))
	if err != nil {
		if isVideoNotFound(err) {
			return nil, fmt.Errorf("%w: %s: %w", repository.ErrVideoNotFound, videoID, err)
		}
		return nil, fmt.Errorf("fetch video %s: %w", videoID, err)
	}

	if c.ttl > 0 {
		c.videos.SetDefault(videoID, video)
	}
	return video, nil
}

func (c *Client) playlist(ctx context.Context, playlistID string) (*youtube.Playlist, error) {
	playlist, err := c.yt.GetPlaylistContext(ctx, PlaylistURL(playlistID))
	if err != nil {
		if errors.Is(err, youtube.ErrInvalidPlaylist) {
			return nil, fmt.Errorf("%w: %s: %w", repository.ErrCollectionNotFound, playlistID, err)
		}
		return nil, fmt.Errorf("fetch playlist %s: %w", playlistID, err)
	}
	return playlist, nil
}

func isVideoNotFound(err error) bool {
	var status *youtube.ErrPlayabiltyStatus
	if errors.As(err, &status) {
		return true
	}
	return errors.Is(err, youtube.ErrVideoPrivate) ||
		errors.Is(err, youtube.ErrInvalidCharactersInVideoID) ||
		errors.Is(err, youtube.ErrVideoIDMinLength)
}

// uploadsPlaylistID maps a channel ID (UC...) to its uploads playlist (UU...).
func uploadsPlaylistID(channelID string) (string, bool) {
	rest, ok := strings.CutPrefix(channelID, "UC")
	if !ok || rest == "" {
		return "", false
	}
	return "UU" + rest, true
}

// bestAudioFormat prefers audio-only formats, then the highest bitrate.
func bestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	bestAudioOnly := false

	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 {
			continue
		}
		audioOnly := strings.HasPrefix(f.MimeType, "audio/")
		switch {
		case best == nil,
			audioOnly && !bestAudioOnly,
			audioOnly == bestAudioOnly && f.Bitrate > best.Bitrate:
			best, bestAudioOnly = f, audioOnly
		}
	}
	return best
}

func largestThumbnail(thumbnails youtube.Thumbnails) string {
	var (
		best string
		area uint64
	)
	for _, th := range thumbnails {
		if a := uint64(th.Width) * uint64(th.Height); best == "" || a > area {
			best, area = th.URL, a
		}
	}
	return best
}

// collection is a fetched playlist seen as a playlist or a channel.
//
// kkdai/youtube follows every continuation page inside GetPlaylistContext, so
// the full member list is downloaded when the collection is resolved. Members
// only stops early in memory; a small limit on a large channel still pays for
// the whole upload list.
type collection struct {
	id       string
	kind     repository.CollectionKind
	url      string
	playlist *youtube.Playlist
}

func (c *collection) ID() string                      { return c.id }
func (c *collection) Kind() repository.CollectionKind { return c.kind }
func (c *collection) URL() (string, error)            { return c.url, nil }

func (c *collection) Title() (string, error) {
	title := c.playlist.Title
	if c.kind == repository.KindChannel && c.playlist.Author != "" {
		title = c.playlist.Author
	}
	if title == "" {
		return "", fmt.Errorf("%w: title of %s", repository.ErrFieldUnavailable, c.id)
	}
	return title, nil
}

func (c *collection) Description() (string, error) {
	if c.playlist.Description == "" {
		return "", fmt.Errorf("%w: description of %s", repository.ErrFieldUnavailable, c.id)
	}
	return c.playlist.Description, nil
}

func (c *collection) Thumbnail() (string, error) {
	for _, entry := range c.playlist.Videos {
		if th := largestThumbnail(entry.Thumbnails); th != "" {
			return th, nil
		}
	}
	return "", fmt.Errorf("%w: thumbnail of %s", repository.ErrFieldUnavailable, c.id)
}

// Members iterates the already fetched entries without further requests.
func (c *collection) Members(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, entry := range c.playlist.Videos {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if entry == nil || entry.ID == "" {
				continue
			}
			if !yield(entry.ID, nil) {
				return
			}
		}
	}
}
