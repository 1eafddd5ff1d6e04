package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the server's Prometheus collectors.
type metrics struct {
	StoreOperations   *prometheus.CounterVec
	LiveSubscriptions prometheus.Gauge
	RequestDuration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		StoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jotter_store_operations_total",
				Help: "Store operations served, by operation and result.",
			},
			[]string{"op", "result"},
		),
		LiveSubscriptions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "jotter_live_subscriptions",
				Help: "Open live websocket subscriptions.",
			},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jotter_http_request_duration_seconds",
				Help:    "HTTP request latency by route template and method.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"route", "method"},
		),
	}
}

func (m *metrics) observeOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOperations.WithLabelValues(op, result).Inc()
}

// instrument is a mux middleware recording request latency per route template.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
