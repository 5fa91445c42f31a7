package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrEmptyVideoID   = errors.New("video ID cannot be empty")
	ErrNegativeLength = errors.New("video length cannot be negative")

	// ErrMalformedRecord is returned when a payload does not match the record shape.
	ErrMalformedRecord = errors.New("malformed record")
)

// Video is a single playable item.
// A Video is never modified after construction; updates replace the whole record.
type Video struct {
	ID          string
	Title       string
	Description string
	Thumbnail   string
	// URL is the resolved playable stream URL. Stream URLs typically expire.
	URL string
	// Length is the duration in seconds.
	Length int
}

// NewVideo creates a Video, validating the invariants shared by every record.
func NewVideo(id, title, description, thumbnail, url string, length int) (*Video, error) {
	if id == "" {
		return nil, ErrEmptyVideoID
	}
	if length < 0 {
		return nil, ErrNegativeLength
	}

	return &Video{
		ID:          id,
		Title:       title,
		Description: description,
		Thumbnail:   thumbnail,
		URL:         url,
		Length:      length,
	}, nil
}

// videoJSON is the canonical JSON shape of a Video.
type videoJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	URL         string `json:"url"`
	Length      int    `json:"length"`
}

// ToJSON returns the canonical serialized form of the video.
func (v Video) ToJSON() ([]byte, error) {
	return json.Marshal(v)
}

// VideoFromJSON parses a canonical video payload.
// Every field is required; failures wrap ErrMalformedRecord.
func VideoFromJSON(data []byte) (*Video, error) {
	var v Video
	if err := json.Unmarshal(data, &v); err != nil {
		if errors.Is(err, ErrMalformedRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &v, nil
}

// MarshalJSON implements json.Marshaler.
func (v Video) MarshalJSON() ([]byte, error) {
	return json.Marshal(videoJSON{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Thumbnail:   v.Thumbnail,
		URL:         v.URL,
		Length:      v.Length,
	})
}

// UnmarshalJSON implements json.Unmarshaler with strict field checks.
func (v *Video) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: expected object, got null", ErrMalformedRecord)
	}

	var out videoJSON
	stringFields := []struct {
		name string
		dst  *string
	}{
		{"id", &out.ID},
		{"title", &out.Title},
		{"description", &out.Description},
		{"thumbnail", &out.Thumbnail},
		{"url", &out.URL},
	}
	for _, f := range stringFields {
		if err := decodeString(fields, f.name, f.dst); err != nil {
			return err
		}
	}

	length, err := decodeLength(fields)
	if err != nil {
		return err
	}
	out.Length = length

	video, err := NewVideo(out.ID, out.Title, out.Description, out.Thumbnail, out.URL, out.Length)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	*v = *video
	return nil
}

func decodeString(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok {
		return fmt.Errorf("%w: missing field %q", ErrMalformedRecord, name)
	}
	if err := json.Unmarshal(raw, dst); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%w: field %q must be a string", ErrMalformedRecord, name)
	}
	return nil
}

// decodeLength accepts an integral JSON number or a string holding a base-10 integer.
func decodeLength(fields map[string]json.RawMessage) (int, error) {
	raw, ok := fields["length"]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrMalformedRecord, "length")
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var anyValue any
	if err := dec.Decode(&anyValue); err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrMalformedRecord, "length", err)
	}

	switch val := anyValue.(type) {
	case json.Number:
		n = val
	case string:
		n = json.Number(val)
	default:
		return 0, fmt.Errorf("%w: field %q must be an integer", ErrMalformedRecord, "length")
	}

	if i, err := strconv.ParseInt(string(n), 10, 0); err == nil {
		return int(i), nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("%w: field %q is not coercible to an integer", ErrMalformedRecord, "length")
	}
	return int(f), nil
}
