package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	notificationsPublishedTotal *prometheus.CounterVec
	sseClientsActive            prometheus.Gauge
	liveConnectionsActive       prometheus.Gauge
	liveMessagesTotal           *prometheus.CounterVec

	uploadLatencySeconds prometheus.Histogram
	uploadRejectedTotal  *prometheus.CounterVec

	checkinsTotal       prometheus.Counter
	wellnessAlertsTotal *prometheus.CounterVec
	circleMatchesTotal  *prometheus.CounterVec
	pointsAwardedTotal  *prometheus.CounterVec
	badgesAwardedTotal  *prometheus.CounterVec
	cacheLookupsTotal   *prometheus.CounterVec
	mailDeliveriesTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exported by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sprint_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		notificationsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_notifications_published_total",
			Help: "Notifications persisted and fanned out, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sprint_sse_clients_active",
			Help: "Open notification streams.",
		})

		liveConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sprint_live_connections_active",
			Help: "Open websocket connections to circle live rooms.",
		})

		liveMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_live_messages_total",
			Help: "Messages broadcast in circle live rooms, by type.",
		}, []string{"type"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sprint_upload_latency_seconds",
			Help:    "Time spent storing uploaded circle resources.",
			Buckets: prometheus.DefBuckets,
		})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_upload_rejected_total",
			Help: "Rejected uploads, by reason.",
		}, []string{"reason"})

		checkinsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sprint_wellness_checkins_total",
			Help: "Wellness check-ins recorded.",
		})

		wellnessAlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_wellness_alerts_total",
			Help: "Wellness alerts raised, by level.",
		}, []string{"level"})

		circleMatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_circle_matches_total",
			Help: "Circle match requests, by outcome.",
		}, []string{"outcome"})

		pointsAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_points_awarded_total",
			Help: "Points awarded, by action.",
		}, []string{"action"})

		badgesAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_badges_awarded_total",
			Help: "Badges awarded, by badge code.",
		}, []string{"badge"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_cache_lookups_total",
			Help: "Redis cache lookups, by cache and result.",
		}, []string{"cache", "result"})

		mailDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sprint_mail_deliveries_total",
			Help: "Outgoing emails, by template and status.",
		}, []string{"template", "status"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			notificationsPublishedTotal, sseClientsActive,
			liveConnectionsActive, liveMessagesTotal,
			uploadLatencySeconds, uploadRejectedTotal,
			checkinsTotal, wellnessAlertsTotal, circleMatchesTotal,
			pointsAwardedTotal, badgesAwardedTotal,
			cacheLookupsTotal, mailDeliveriesTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublishedTotal
}

func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

func LiveConnectionsActive() prometheus.Gauge {
	RegisterMetrics()
	return liveConnectionsActive
}

func LiveMessagesTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return liveMessagesTotal
}

func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

func CheckinsTotal() prometheus.Counter {
	RegisterMetrics()
	return checkinsTotal
}

func WellnessAlerts() *prometheus.CounterVec {
	RegisterMetrics()
	return wellnessAlertsTotal
}

func CircleMatches() *prometheus.CounterVec {
	RegisterMetrics()
	return circleMatchesTotal
}

func PointsAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return pointsAwardedTotal
}

func BadgesAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return badgesAwardedTotal
}

// CacheLookups is labelled with the cache name and "hit" or "miss".
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}

func MailDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return mailDeliveriesTotal
}
