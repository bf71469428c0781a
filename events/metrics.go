package events

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	EmitterMetricsSubsystem = "event_emitter"
)

type EmitterMetrics struct {
	HandlerGauge      *prometheus.GaugeVec
	EmitCount         *prometheus.CounterVec
	HandlerErrorCount *prometheus.CounterVec
	AsyncErrorCount   *prometheus.CounterVec
}

func NewEmitterMetrics() *EmitterMetrics {
	// Initialize Prometheus metrics
	var HandlerGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: EmitterMetricsSubsystem,
			Name:      "handlers_gauge",
			Help:      "Number of handlers registered per subject",
		},
		[]string{"subject"},
	)

	var EmitCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: EmitterMetricsSubsystem,
			Name:      "emit_count",
			Help:      "Number of events dispatched per subject",
		},
		[]string{"subject"},
	)

	var HandlerErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: EmitterMetricsSubsystem,
			Name:      "handler_error_count",
			Help:      "Number of handler failures that aborted a dispatch",
		},
		[]string{"subject"},
	)

	var AsyncErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: EmitterMetricsSubsystem,
			Name:      "async_error_count",
			Help:      "Number of asynchronous dispatches that failed",
		},
		[]string{"subject"},
	)

	prometheus.MustRegister(HandlerGauge)
	prometheus.MustRegister(EmitCount)
	prometheus.MustRegister(HandlerErrorCount)
	prometheus.MustRegister(AsyncErrorCount)

	return &EmitterMetrics{
		HandlerGauge:      HandlerGauge,
		EmitCount:         EmitCount,
		HandlerErrorCount: HandlerErrorCount,
		AsyncErrorCount:   AsyncErrorCount,
	}
}
