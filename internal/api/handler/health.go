package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger is implemented by cache backends that can report whether they are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
	Cache  string `json:"cache"`
}

// Health reports the active source and cache backend. When cache is non-nil
// it is pinged, and an unreachable backend turns the response into a 503.
func Health(source, cacheBackend string, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "ok",
			Source: source,
			Cache:  cacheBackend,
		}

		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				slog.Warn("cache backend health check failed", "cache", cacheBackend, "error", err)
				resp.Status = "unavailable"
				JSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}

		JSON(w, http.StatusOK, resp)
	}
}
