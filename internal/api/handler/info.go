package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/ytpodcast/internal/domain/model"
	"github.com/hszk-dev/ytpodcast/internal/domain/repository"
	"github.com/hszk-dev/ytpodcast/internal/usecase"
)

// InfoHandler serves video, playlist and channel records.
type InfoHandler struct {
	provider usecase.InfoProvider
	warmup   usecase.WarmupService
	maxLimit int
}

// NewInfoHandler creates an InfoHandler. warmup may be nil, which disables
// the warm-up endpoints. maxLimit caps the limit query parameter; zero means no cap.
func NewInfoHandler(provider usecase.InfoProvider, warmup usecase.WarmupService, maxLimit int) *InfoHandler {
	return &InfoHandler{
		provider: provider,
		warmup:   warmup,
		maxLimit: maxLimit,
	}
}

// Routes mounts the handler's endpoints on r.
func (h *InfoHandler) Routes(r chi.Router) {
	r.Get("/videos/{id}", h.GetVideo)
	r.Get("/playlists/{id}", h.GetPlaylist)
	r.Get("/channels/{id}", h.GetChannel)
	r.Get("/stream/{id}", h.Stream)

	r.Post("/videos/{id}/warm", h.warm(repository.WarmupKindVideo))
	r.Post("/playlists/{id}/warm", h.warm(repository.WarmupKindPlaylist))
	r.Post("/channels/{id}/warm", h.warm(repository.WarmupKindChannel))
}

type WarmupResponse struct {
	TaskID   string `json:"task_id"`
	Kind     string `json:"kind"`
	TargetID string `json:"target_id"`
	Limit    int    `json:"limit,omitempty"`
}

// GetVideo handles GET /v1/videos/{id}.
func (h *InfoHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	video, err := h.provider.VideoFromID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, video)
}

// GetPlaylist handles GET /v1/playlists/{id}?limit=N.
func (h *InfoHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	playlist, err := h.provider.PlaylistFromID(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, playlist)
}

// GetChannel handles GET /v1/channels/{id}?limit=N.
func (h *InfoHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	channel, err := h.provider.ChannelFromID(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, channel)
}

// Stream handles GET /v1/stream/{id} by redirecting to the video's stream URL.
func (h *InfoHandler) Stream(w http.ResponseWriter, r *http.Request) {
	video, err := h.provider.VideoFromID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if video.URL == "" {
		Error(w, http.StatusBadGateway, "stream_unavailable", "no stream URL for video")
		return
	}
	http.Redirect(w, r, video.URL, http.StatusFound)
}

func (h *InfoHandler) warm(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.warmup == nil {
			Error(w, http.StatusServiceUnavailable, "warmup_disabled", "cache warm-up is not configured")
			return
		}

		limit, ok := h.parseLimit(w, r)
		if !ok {
			return
		}

		task, err := h.warmup.Enqueue(r.Context(), kind, chi.URLParam(r, "id"), limit)
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidWarmupTask) {
				Error(w, http.StatusBadRequest, "invalid_request", err.Error())
				return
			}
			slog.Error("failed to enqueue warmup task",
				"kind", kind,
				"target_id", chi.URLParam(r, "id"),
				"error", err,
			)
			Error(w, http.StatusServiceUnavailable, "queue_unavailable", "failed to enqueue warm-up task")
			return
		}

		JSON(w, http.StatusAccepted, WarmupResponse{
			TaskID:   task.TaskID.String(),
			Kind:     task.Kind,
			TargetID: task.TargetID,
			Limit:    task.Limit,
		})
	}
}

// parseLimit reads the optional limit parameter and applies the configured cap.
// An absent or non-positive limit means all members, subject to the cap.
func (h *InfoHandler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_request", "limit must be an integer")
			return 0, false
		}
		limit = n
	}

	if h.maxLimit > 0 && (limit <= 0 || limit > h.maxLimit) {
		limit = h.maxLimit
	}
	return limit, true
}

// handleServiceError maps provider errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "not_found", "video not found")
	case errors.Is(err, repository.ErrCollectionNotFound):
		Error(w, http.StatusNotFound, "not_found", "playlist or channel not found")
	case errors.Is(err, repository.ErrStreamResolution):
		Error(w, http.StatusBadGateway, "stream_unavailable", "stream URL could not be resolved")
	case errors.Is(err, model.ErrMalformedRecord):
		slog.Error("malformed cached record", "path", r.URL.Path, "error", err)
		Error(w, http.StatusBadGateway, "malformed_record", "stored record is malformed")
	case errors.Is(err, repository.ErrBackendUnavailable):
		slog.Error("cache backend unavailable", "path", r.URL.Path, "error", err)
		Error(w, http.StatusServiceUnavailable, "cache_unavailable", "cache backend unavailable")
	default:
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
