package grpc

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics counts and times unary calls:
//   - paperswipe_rpc_requests_total{method,code}
//   - paperswipe_rpc_duration_seconds{method}
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paperswipe_rpc_requests_total",
				Help: "Total number of library RPCs by method and status code",
			},
			[]string{"method", "code"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paperswipe_rpc_duration_seconds",
				Help:    "Duration of library RPCs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (m *Metrics) UnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	m.Duration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
	m.Requests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
	return resp, err
}
