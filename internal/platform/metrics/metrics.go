package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EventsPublished      *prometheus.CounterVec
	NotificationsCreated prometheus.Counter
	DigestsGenerated     prometheus.Counter
	AuditEntries         prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "amdesk_events_published_total",
			Help: "Total number of events published on the dashboard bus, by type",
		}, []string{"type"}),
		NotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amdesk_notifications_created_total",
			Help: "Total number of notifications written by the notifier",
		}),
		DigestsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amdesk_digests_generated_total",
			Help: "Total number of digests produced by digest runs",
		}),
		AuditEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "amdesk_audit_entries_total",
			Help: "Total number of audit log entries appended",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// NewForTest creates metrics on a private registry so parallel test packages
// never trip duplicate-registration panics.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "amdesk_events_published_total",
		}, []string{"type"}),
		NotificationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "amdesk_notifications_created_total",
		}),
		DigestsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "amdesk_digests_generated_total",
		}),
		AuditEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "amdesk_audit_entries_total",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "amdesk_http_request_duration_seconds",
		}, []string{"method", "status"}),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LatencyMiddleware observes request duration for every route it wraps.
func LatencyMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			m.RequestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
