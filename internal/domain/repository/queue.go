package repository

import (
	"context"

	"github.com/google/uuid"
)

// WarmupTask asks a worker to resolve a target so its videos land in the cache.
type WarmupTask struct {
	TaskID   uuid.UUID `json:"task_id"`
	Kind     string    `json:"kind"`
	TargetID string    `json:"target_id"`
	Limit    int       `json:"limit,omitempty"`
}

// Warmup task kinds.
const (
	WarmupKindVideo    = "video"
	WarmupKindPlaylist = "playlist"
	WarmupKindChannel  = "channel"
)

// MessageQueue defines the interface for message queue operations.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishWarmupTask sends a warm-up task to the queue.
	// Used by the API server to pre-populate the cache asynchronously.
	PublishWarmupTask(ctx context.Context, task WarmupTask) error

	// ConsumeWarmupTasks consumes warm-up tasks until ctx is cancelled.
	// The handler function is called for each received task.
	// Used by the worker service.
	ConsumeWarmupTasks(ctx context.Context, handler func(task WarmupTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
