package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
)

func TestWarmupService_Enqueue(t *testing.T) {
	queue := &mockMessageQueue{}
	svc := NewWarmupService(NewInfoProvider(&mockMetadataSource{}, nil, testProviderConfig()), queue)

	task, err := svc.Enqueue(context.Background(), repository.WarmupKindPlaylist, "PL1", 25)
	if err != nil {
		t.Fatalf("Enqueue() unexpected error: %v", err)
	}

	if task.TaskID == uuid.Nil {
		t.Error("TaskID should be assigned")
	}
	if len(queue.published) != 1 {
		t.Fatalf("published = %d, want 1", len(queue.published))
	}
	if queue.published[0] != *task {
		t.Errorf("published %+v, want %+v", queue.published[0], *task)
	}
	if task.Kind != repository.WarmupKindPlaylist || task.TargetID != "PL1" || task.Limit != 25 {
		t.Errorf("task = %+v", *task)
	}
}

func TestWarmupService_Enqueue_Errors(t *testing.T) {
	publishErr := errors.New("broker unavailable")

	tests := []struct {
		name     string
		kind     string
		targetID string
		queue    repository.MessageQueue
		wantErr  error
	}{
		{"unknown kind", "podcast", "PL1", &mockMessageQueue{}, ErrInvalidWarmupTask},
		{"empty target", repository.WarmupKindVideo, "", &mockMessageQueue{}, ErrInvalidWarmupTask},
		{
			"publish failure", repository.WarmupKindVideo, "abc",
			&mockMessageQueue{publishFn: func(context.Context, repository.WarmupTask) error { return publishErr }},
			publishErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewWarmupService(NewInfoProvider(&mockMetadataSource{}, nil, testProviderConfig()), tt.queue)
			task, err := svc.Enqueue(context.Background(), tt.kind, tt.targetID, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Enqueue() error = %v, want %v", err, tt.wantErr)
			}
			if task != nil {
				t.Errorf("Enqueue() = %+v, want nil", task)
			}
		})
	}
}

func TestWarmupService_Enqueue_NoQueue(t *testing.T) {
	svc := NewWarmupService(NewInfoProvider(&mockMetadataSource{}, nil, testProviderConfig()), nil)
	if _, err := svc.Enqueue(context.Background(), repository.WarmupKindVideo, "abc", 0); err == nil {
		t.Error("Enqueue() without a queue should fail")
	}
}

func TestWarmupService_ProcessTask_FillsCache(t *testing.T) {
	coll := newStubCollection("PL1", repository.KindPlaylist, "v1", "v2", "v3", "v4")
	coll.maxPulls = 3
	chann := newStubCollection("UC1", repository.KindChannel, "c1", "c2")
	source := &mockMetadataSource{
		playlistFn: func(context.Context, string) (repository.Collection, error) { return coll, nil },
		channelFn:  func(context.Context, string) (repository.Collection, error) { return chann, nil },
	}
	videoCache := newMockVideoCache()
	svc := NewWarmupService(NewInfoProvider(source, videoCache, testProviderConfig()), nil)
	ctx := context.Background()

	tasks := []repository.WarmupTask{
		{TaskID: uuid.New(), Kind: repository.WarmupKindPlaylist, TargetID: "PL1", Limit: 3},
		{TaskID: uuid.New(), Kind: repository.WarmupKindChannel, TargetID: "UC1"},
		{TaskID: uuid.New(), Kind: repository.WarmupKindVideo, TargetID: "solo"},
	}
	for _, task := range tasks {
		if err := svc.ProcessTask(ctx, task); err != nil {
			t.Fatalf("ProcessTask(%s) unexpected error: %v", task.Kind, err)
		}
	}

	for _, id := range []string{"v1", "v2", "v3", "c1", "c2", "solo"} {
		if cached, _ := videoCache.IsCached(ctx, id); !cached {
			t.Errorf("%s should be cached", id)
		}
	}
	if cached, _ := videoCache.IsCached(ctx, "v4"); cached {
		t.Error("v4 is past the limit and should not be cached")
	}
}

func TestWarmupService_ProcessTask_Errors(t *testing.T) {
	tests := []struct {
		name    string
		task    repository.WarmupTask
		wantErr error
	}{
		{"invalid kind", repository.WarmupTask{Kind: "nope", TargetID: "x"}, ErrInvalidWarmupTask},
		{"missing target", repository.WarmupTask{Kind: repository.WarmupKindVideo}, ErrInvalidWarmupTask},
		{"unknown playlist", repository.WarmupTask{Kind: repository.WarmupKindPlaylist, TargetID: "PLx"}, repository.ErrCollectionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewWarmupService(NewInfoProvider(&mockMetadataSource{}, newMockVideoCache(), testProviderConfig()), nil)
			if err := svc.ProcessTask(context.Background(), tt.task); !errors.Is(err, tt.wantErr) {
				t.Errorf("ProcessTask() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
