package repository

import (
	"context"
	"iter"
)

// VideoMetadata is the descriptive data the source returns for one video.
type VideoMetadata struct {
	ID              string
	Title           string
	Description     string
	ThumbnailURL    string
	DurationSeconds int
}

// CollectionKind distinguishes playlists from channels.
type CollectionKind string

const (
	KindPlaylist CollectionKind = "playlist"
	KindChannel  CollectionKind = "channel"
)

// Collection is a playlist or channel as exposed by the source.
// Descriptive accessors may fail independently of each other; callers are
// expected to fall back to defaults rather than abort.
type Collection interface {
	ID() string
	Kind() CollectionKind
	Title() (string, error)
	Description() (string, error)
	URL() (string, error)
	Thumbnail() (string, error)

	// Members yields member video IDs in platform order. Enumeration stops as
	// soon as the consumer stops ranging over it, and each call starts from the
	// beginning. Whether the sequence is also lazy over the network depends on
	// the implementation; see the MetadataSource in use.
	Members(ctx context.Context) iter.Seq2[string, error]
}

// MetadataSource is the external platform the provider resolves IDs against.
// Implementations should be provided by the infrastructure layer (e.g., kkdai/youtube).
type MetadataSource interface {
	// Name identifies the implementation, e.g. for logs and metrics.
	Name() string

	// VideoMetadata returns metadata for a single video.
	// Returns ErrVideoNotFound if the video does not exist.
	VideoMetadata(ctx context.Context, videoID string) (*VideoMetadata, error)

	// StreamURL returns the current playable stream URL of a video.
	// Returns ErrStreamResolution if no URL can be determined.
	StreamURL(ctx context.Context, videoID string) (string, error)

	// Playlist resolves a playlist by ID.
	// Returns ErrCollectionNotFound if the ID is not a valid playlist.
	Playlist(ctx context.Context, playlistID string) (Collection, error)

	// Channel resolves a channel's uploads by channel ID.
	// Returns ErrCollectionNotFound if the ID is not a valid channel.
	Channel(ctx context.Context, channelID string) (Collection, error)
}
