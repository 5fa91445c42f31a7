package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Playlist is an ordered set of videos plus descriptive metadata.
// Videos keep the order in which the platform enumerates them.
type Playlist struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	URL         string   `json:"url"`
	Videos      []*Video `json:"videos"`
}

// Channel is a Playlist made of a channel's uploads. It has the same shape.
type Channel struct {
	Playlist
}

// NewPlaylist creates a Playlist. When thumbnail is empty the first video's
// thumbnail is used instead.
func NewPlaylist(id, title, description, thumbnail, url string, videos []*Video) *Playlist {
	if thumbnail == "" && len(videos) > 0 {
		thumbnail = videos[0].Thumbnail
	}
	if videos == nil {
		videos = []*Video{}
	}

	return &Playlist{
		ID:          id,
		Title:       title,
		Description: description,
		Thumbnail:   thumbnail,
		URL:         url,
		Videos:      videos,
	}
}

// NewChannel creates a Channel with the same defaults as NewPlaylist.
func NewChannel(id, title, description, thumbnail, url string, videos []*Video) *Channel {
	return &Channel{Playlist: *NewPlaylist(id, title, description, thumbnail, url, videos)}
}

// ToJSON returns the canonical serialized form of the playlist.
func (p Playlist) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// PlaylistFromJSON parses a canonical playlist payload. Nested videos are
// decoded with the same rules as VideoFromJSON.
func PlaylistFromJSON(data []byte) (*Playlist, error) {
	var raw struct {
		ID          *string  `json:"id"`
		Title       *string  `json:"title"`
		Description *string  `json:"description"`
		Thumbnail   *string  `json:"thumbnail"`
		URL         *string  `json:"url"`
		Videos      []*Video `json:"videos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		if errors.Is(err, ErrMalformedRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	required := map[string]*string{
		"id":          raw.ID,
		"title":       raw.Title,
		"description": raw.Description,
		"thumbnail":   raw.Thumbnail,
		"url":         raw.URL,
	}
	for name, value := range required {
		if value == nil {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, name)
		}
	}
	if raw.Videos == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, "videos")
	}
	for i, v := range raw.Videos {
		if v == nil {
			return nil, fmt.Errorf("%w: videos[%d] is null", ErrMalformedRecord, i)
		}
	}

	return &Playlist{
		ID:          *raw.ID,
		Title:       *raw.Title,
		Description: *raw.Description,
		Thumbnail:   *raw.Thumbnail,
		URL:         *raw.URL,
		Videos:      raw.Videos,
	}, nil
}
