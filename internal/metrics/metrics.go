package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstorm_http_requests_total",
			Help: "HTTP 请求总数",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "picstorm_http_request_duration_seconds",
			Help:    "HTTP 请求耗时（秒）",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	PublicationsUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstorm_publications_uploaded_total",
			Help: "发布上传次数",
		},
		[]string{"status"},
	)

	ReactionUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstorm_reaction_updates_total",
			Help: "Reaction 变更次数",
		},
		[]string{"result"},
	)

	ReactionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "picstorm_reaction_retries_total",
			Help: "Reaction 因唯一约束冲突而重试的次数",
		},
	)

	StorageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstorm_storage_failures_total",
			Help: "对象存储操作失败次数",
		},
		[]string{"operation"},
	)

	RoleCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "picstorm_role_cache_lookups_total",
			Help: "角色缓存查询次数",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordUpload(status string) {
	PublicationsUploaded.WithLabelValues(status).Inc()
}

func RecordReaction(result string) {
	ReactionUpdates.WithLabelValues(result).Inc()
}

func RecordReactionRetry() {
	ReactionRetries.Inc()
}

// RecordStorageFailure operation 取 save / get / delete
func RecordStorageFailure(operation string) {
	StorageFailures.WithLabelValues(operation).Inc()
}

func RecordRoleCacheHit() {
	RoleCacheLookups.WithLabelValues("hit").Inc()
}

func RecordRoleCacheMiss() {
	RoleCacheLookups.WithLabelValues("miss").Inc()
}
