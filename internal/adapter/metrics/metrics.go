package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OrdersCreated        prometheus.Counter
	StatusTransitions    *prometheus.CounterVec
	NotificationAttempts *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPLatencyMS        *prometheus.HistogramVec
}

func New(service string) *Metrics {
	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrdine",
			Subsystem: service,
			Name:      "orders_created_total",
			Help:      "Total number of orders created.",
		}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrdine",
			Subsystem: service,
			Name:      "status_transitions_total",
			Help:      "Total number of committed status transitions.",
		}, []string{"status"}),
		NotificationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrdine",
			Subsystem: service,
			Name:      "notification_attempts_total",
			Help:      "Notification delivery attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrdine",
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		HTTPLatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qrdine",
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
	}

	prometheus.MustRegister(
		m.OrdersCreated,
		m.StatusTransitions,
		m.NotificationAttempts,
		m.HTTPRequests,
		m.HTTPLatencyMS,
	)
	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}
