package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_builder"

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Exports by format and result.",
	}, []string{"format", "result"})

	exportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Time spent rendering an export.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"format"})

	cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups by tier and result.",
	}, []string{"tier", "result"})

	versionSaves = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "version_saves_total",
		Help:      "Version snapshots written.",
	})

	writeConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "write_conflicts_total",
		Help:      "Optimistic write retries caused by a concurrent update.",
	})

	shareViews = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "share_requests_total",
		Help:      "Anonymous share requests by outcome.",
	}, []string{"outcome"})

	decryptionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decryption_failures_total",
		Help:      "Encrypted fields that failed to decrypt and were nulled.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		exportsTotal, exportDuration, cacheRequests, versionSaves, writeConflicts,
		shareViews, decryptionFailures, httpRequests, httpDuration,
	)
}

// ObserveExport records one export attempt.
func ObserveExport(format, result string, elapsed time.Duration) {
	exportsTotal.WithLabelValues(format, result).Inc()
	exportDuration.WithLabelValues(format).Observe(elapsed.Seconds())
}

// IncCache records a cache lookup. tier is "durable" or "memory"; result is
// "hit", "miss" or "error".
func IncCache(tier, result string) {
	cacheRequests.WithLabelValues(tier, result).Inc()
}

// IncVersionSaved increments the snapshot counter.
func IncVersionSaved() {
	versionSaves.Inc()
}

// IncWriteConflict increments the optimistic retry counter.
func IncWriteConflict() {
	writeConflicts.Inc()
}

// IncShare records a share request outcome ("allowed" or a denial reason).
func IncShare(outcome string) {
	shareViews.WithLabelValues(outcome).Inc()
}

// IncDecryptionFailure increments the nulled-field counter.
func IncDecryptionFailure() {
	decryptionFailures.Inc()
}

// ObserveHTTP records a finished request. route is the matched gin path template.
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
