package cache

import (
	"context"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
)

// VideoCache defines the interface for caching video records by video ID.
// Implementations store the canonical JSON form of each video.
//
// No operation is atomic with another: two callers that both miss may both
// Save, and the later write wins.
type VideoCache interface {
	// IsCached reports whether a record is stored for videoID.
	// It never deserializes the stored value.
	IsCached(ctx context.Context, videoID string) (bool, error)

	// Save stores the video under its own ID, overwriting any previous record.
	Save(ctx context.Context, video *model.Video) error

	// Load retrieves a video by ID.
	// Returns repository.ErrCacheMiss if nothing is stored for videoID and
	// model.ErrMalformedRecord if the stored payload is corrupt.
	Load(ctx context.Context, videoID string) (*model.Video, error)
}
