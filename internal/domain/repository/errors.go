package repository

import "errors"

var (
	// ErrCacheMiss is returned when no cache entry exists for the requested ID.
	// Callers treat it as a signal to fetch from the source.
	ErrCacheMiss = errors.New("cache miss")

	// ErrBackendUnavailable is returned when a cache backend connection or storage operation fails.
	ErrBackendUnavailable = errors.New("cache backend unavailable")

	// ErrVideoNotFound is returned when the source has no video with the given ID.
	ErrVideoNotFound = errors.New("video not found")

	// ErrCollectionNotFound is returned when an ID does not resolve to a playlist or channel.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrStreamResolution is returned when metadata resolves but no playable URL can be determined.
	ErrStreamResolution = errors.New("stream URL could not be resolved")

	// ErrFieldUnavailable is returned by collection accessors when a field cannot be read.
	ErrFieldUnavailable = errors.New("field unavailable")

	// ErrObjectNotFound is returned when an object does not exist in object storage.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)
