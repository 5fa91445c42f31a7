package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/infrastructure/metrics"
)

// ErrInvalidWarmupTask is returned for tasks with an unknown kind or no target.
var ErrInvalidWarmupTask = errors.New("invalid warmup task")

// WarmupService pre-populates the video cache in the background.
type WarmupService interface {
	// Enqueue publishes a warm-up task and returns it with its assigned ID.
	Enqueue(ctx context.Context, kind, targetID string, limit int) (*repository.WarmupTask, error)

	// ProcessTask resolves the task's target through the provider so that
	// every resolved video ends up in the cache.
	ProcessTask(ctx context.Context, task repository.WarmupTask) error
}

type warmupService struct {
	provider InfoProvider
	queue    repository.MessageQueue
}

// NewWarmupService creates a WarmupService. queue may be nil on workers that only process tasks.
func NewWarmupService(provider InfoProvider, queue repository.MessageQueue) WarmupService {
	return &warmupService{
		provider: provider,
		queue:    queue,
	}
}

func (s *warmupService) Enqueue(ctx context.Context, kind, targetID string, limit int) (*repository.WarmupTask, error) {
	task := repository.WarmupTask{
		TaskID:   uuid.New(),
		Kind:     kind,
		TargetID: targetID,
		Limit:    limit,
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	if s.queue == nil {
		return nil, errors.New("warmup queue not configured")
	}

	if err := s.queue.PublishWarmupTask(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue warmup %s %s: %w", kind, targetID, err)
	}

	slog.Info("warmup task enqueued",
		"task_id", task.TaskID,
		"kind", kind,
		"target_id", targetID,
		"limit", limit,
	)
	return &task, nil
}

func (s *warmupService) ProcessTask(ctx context.Context, task repository.WarmupTask) error {
	if err := validateTask(task); err != nil {
		metrics.WarmupTasksTotal.WithLabelValues("unknown", metrics.StatusInvalid).Inc()
		return err
	}

	logger := slog.With(
		"task_id", task.TaskID,
		"kind", task.Kind,
		"target_id", task.TargetID,
	)
	logger.Info("processing warmup task")

	var (
		count int
		err   error
	)
	switch task.Kind {
	case repository.WarmupKindVideo:
		if _, err = s.provider.VideoFromID(ctx, task.TargetID); err == nil {
			count = 1
		}
	case repository.WarmupKindPlaylist:
		var playlist *model.Playlist
		if playlist, err = s.provider.PlaylistFromID(ctx, task.TargetID, task.Limit); err == nil {
			count = len(playlist.Videos)
		}
	case repository.WarmupKindChannel:
		var channel *model.Channel
		if channel, err = s.provider.ChannelFromID(ctx, task.TargetID, task.Limit); err == nil {
			count = len(channel.Videos)
		}
	}

	if err != nil {
		metrics.WarmupTasksTotal.WithLabelValues(task.Kind, metrics.StatusError).Inc()
		return fmt.Errorf("warmup %s %s: %w", task.Kind, task.TargetID, err)
	}

	metrics.WarmupTasksTotal.WithLabelValues(task.Kind, metrics.StatusSuccess).Inc()
	logger.Info("warmup task completed", "videos", count)
	return nil
}

func validateTask(task repository.WarmupTask) error {
	switch task.Kind {
	case repository.WarmupKindVideo, repository.WarmupKindPlaylist, repository.WarmupKindChannel:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidWarmupTask, task.Kind)
	}
	if task.TargetID == "" {
		return fmt.Errorf("%w: empty target id", ErrInvalidWarmupTask)
	}
	return nil
}
