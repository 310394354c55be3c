package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the basic namespace where all metrics are defined under.
const Namespace = "agewitness"

// Subsystem groups the metrics of one component, e.g. agewitness_witness_*.
type Subsystem string

// Counter registers a counter vector in the default registry.
func (s Subsystem) Counter(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: string(s),
		Name:      name,
		Help:      help,
	}, labels)
}

// Gauge registers a gauge vector in the default registry.
func (s Subsystem) Gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: string(s),
		Name:      name,
		Help:      help,
	}, labels)
}

// Histogram registers a histogram vector with the given buckets in the default registry.
func (s Subsystem) Histogram(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: string(s),
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

// LatencyBuckets spans 10ms to about 5s, for network round trips and database maintenance.
var LatencyBuckets = prometheus.ExponentialBuckets(0.01, 2, 10)
