package request

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the bridge's per-route HTTP metrics.
type Metrics struct {
	Duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campuscard_bridge_request_duration_seconds",
			Help:    "Card bridge HTTP request latency by route and status class",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) observe(route string, status int, d time.Duration) {
	m.Duration.WithLabelValues(route, statusClass(status)).Observe(d.Seconds())
}
