// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ytpodcast"

var (
	// CacheOperationsTotal tracks cache operations.
	// Labels:
	//   - operation: is_cached, save, load
	//   - status: hit, miss, success, error
	//   - cache_type: redis, file, memory, postgres, object
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations",
		},
		[]string{"operation", "status", "cache_type"},
	)

	// SourceRequestsTotal tracks calls to the external metadata source.
	// Labels:
	//   - operation: metadata, stream, playlist, channel
	//   - status: success, error
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of requests to the external metadata source",
		},
		[]string{"operation", "status"},
	)

	// HTTPRequestsTotal tracks served API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// WarmupTasksTotal tracks processed warm-up tasks.
	// Labels:
	//   - kind: video, playlist, channel
	//   - status: success, error, invalid
	WarmupTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmup_tasks_total",
			Help:      "Total number of processed cache warm-up tasks",
		},
		[]string{"kind", "status"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpIsCached = "is_cached"
	CacheOpSave     = "save"
	CacheOpLoad     = "load"
)

// Cache type constants.
const (
	CacheTypeRedis    = "redis"
	CacheTypeFile     = "file"
	CacheTypeMemory   = "memory"
	CacheTypePostgres = "postgres"
	CacheTypeObject   = "object"
)

// Source operation constants.
const (
	SourceOpMetadata = "metadata"
	SourceOpStream   = "stream"
	SourceOpPlaylist = "playlist"
	SourceOpChannel  = "channel"
)

// Generic result constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusInvalid = "invalid"
)

// ObserveCache records one cache operation.
func ObserveCache(cacheType, operation, status string) {
	CacheOperationsTotal.WithLabelValues(operation, status, cacheType).Inc()
}

// ObserveSource records one source request; err decides the status label.
func ObserveSource(operation string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	SourceRequestsTotal.WithLabelValues(operation, status).Inc()
}
