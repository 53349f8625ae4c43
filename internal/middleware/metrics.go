package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for RPC traffic.
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight *prometheus.GaugeVec
}

// NewMetrics registers the RPC collectors with reg.
// Pass prometheus.DefaultRegisterer to expose them on /metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "circles",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total number of RPC requests",
			},
			[]string{"procedure", "code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "circles",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "RPC duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
		RequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "circles",
				Subsystem: "rpc",
				Name:      "requests_in_flight",
				Help:      "Number of RPCs currently being processed",
			},
			[]string{"procedure"},
		),
	}
}

// MetricsInterceptor records count, latency and concurrency of every unary RPC.
func MetricsInterceptor(m *Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure

			m.RequestsInFlight.WithLabelValues(procedure).Inc()
			defer m.RequestsInFlight.WithLabelValues(procedure).Dec()

			start := time.Now()
			resp, err := next(ctx, req)
			m.RequestDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.RequestCounter.WithLabelValues(procedure, code).Inc()

			return resp, err
		}
	}
}
