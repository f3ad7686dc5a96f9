package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/nutrition-advisor/pkg/metrics"
)

// PromRecorder exports domain instrumentation as Prometheus series.
type PromRecorder struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	skipped *prometheus.CounterVec
}

// NewPromRecorder registers the collectors on reg.
func NewPromRecorder(reg prometheus.Registerer) *PromRecorder {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrition_external_calls_total",
		Help: "External calls by service and outcome.",
	}, []string{"service", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nutrition_external_call_duration_seconds",
		Help:    "Round trip time of external calls.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"service"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nutrition_samples_skipped_total",
		Help: "Time series points dropped because they carried no value.",
	}, []string{"metric"})

	reg.MustRegister(calls, latency, skipped)

	return &PromRecorder{calls: calls, latency: latency, skipped: skipped}
}

func (p *PromRecorder) ObserveExternalCall(service, outcome string, elapsed time.Duration) {
	p.calls.WithLabelValues(service, outcome).Inc()
	p.latency.WithLabelValues(service).Observe(elapsed.Seconds())
}

func (p *PromRecorder) AddSkippedSamples(metric string, n int) {
	if n <= 0 {
		return
	}
	p.skipped.WithLabelValues(metric).Add(float64(n))
}

var _ metrics.Recorder = (*PromRecorder)(nil)
