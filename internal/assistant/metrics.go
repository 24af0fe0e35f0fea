package assistant

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_requests_total",
			Help: "Assistant calls by result",
		},
		[]string{"result"},
	)

	requestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_request_duration_seconds",
			Help:    "Assistant call latency",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// 0 closed, 1 half-open, 2 open
	breakerState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_breaker_state",
			Help: "Assistant circuit breaker state",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, breakerState)
}
