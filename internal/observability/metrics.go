package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	chatMessagesSent     *prometheus.CounterVec
	chatReadReceipts     prometheus.Counter
	chatTypingUpdates    *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram
	uploadRejectedTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		chatMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Total number of chat messages persisted.",
		}, []string{"listing_present"})

		chatReadReceipts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_read_receipts_total",
			Help: "Total number of messages transitioned to read.",
		})

		chatTypingUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_typing_updates_total",
			Help: "Total number of typing indicator writes.",
		}, []string{"state"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Latency distribution for file uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Total number of uploads rejected during validation.",
		}, []string{"reason"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			chatMessagesSent,
			chatReadReceipts,
			chatTypingUpdates,
			uploadLatencySeconds,
			uploadRejectedTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// ChatMessagesSent exposes the counter for persisted chat messages.
func ChatMessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return chatMessagesSent
}

// ChatReadReceipts exposes the counter for read transitions.
func ChatReadReceipts() prometheus.Counter {
	RegisterMetrics()
	return chatReadReceipts
}

// ChatTypingUpdates exposes the counter for typing indicator writes.
func ChatTypingUpdates() *prometheus.CounterVec {
	RegisterMetrics()
	return chatTypingUpdates
}

// UploadLatency exposes the latency histogram for uploads.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}
