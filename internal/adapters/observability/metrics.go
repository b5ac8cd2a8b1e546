package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tourbot", Name: "chat_updates_total", Help: "Incoming chat updates."},
		[]string{"kind"}, // kind: command|text|callback
	)
	SearchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tourbot", Name: "search_outcomes_total", Help: "Completed search outcomes."},
		[]string{"flow", "outcome"}, // outcome: ok|empty|filtered_out
	)
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tourbot", Name: "deliveries_total", Help: "Result deliveries by mode."},
		[]string{"mode"}, // mode: text|group|fallback
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tourbot", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tourbot", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tourbot", Name: "http_requests_total", Help: "Admin HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tourbot", Name: "http_request_duration_seconds",
			Help:    "Admin HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(ChatUpdates, SearchOutcomes, Deliveries, ExternalRequests, ExternalLatency, HTTPRequests, HTTPLatency)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveUpdate(kind string) { ChatUpdates.WithLabelValues(kind).Inc() }

func ObserveSearch(flow, outcome string) { SearchOutcomes.WithLabelValues(flow, outcome).Inc() }

func ObserveDelivery(mode string) { Deliveries.WithLabelValues(mode).Inc() }

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}
