package stream

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	StreamMetricsSubsystem = "event_stream"
)

type StreamMetrics struct {
	ListenerGauge *prometheus.GaugeVec
	ReadCount     *prometheus.CounterVec
	WriteCount    *prometheus.CounterVec
	DropCount     *prometheus.CounterVec
}

func NewStreamMetrics() *StreamMetrics {
	// Initialize Prometheus metrics
	var ListenerGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Subsystem: StreamMetricsSubsystem,
			Name:      "listeners_gauge",
			Help:      "Number of stream listeners",
		},
		[]string{"stream"},
	)

	var ReadCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: StreamMetricsSubsystem,
			Name:      "value_read_count",
			Help:      "Number of values read from the stream source",
		},
		[]string{"stream"},
	)

	var WriteCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: StreamMetricsSubsystem,
			Name:      "value_write_count",
			Help:      "Number of values delivered to stream listeners",
		},
		[]string{"stream"},
	)

	var DropCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: StreamMetricsSubsystem,
			Name:      "value_drop_count",
			Help:      "Number of values dropped cause listener buffer is full",
		},
		[]string{"stream"},
	)

	prometheus.MustRegister(ListenerGauge)
	prometheus.MustRegister(ReadCount)
	prometheus.MustRegister(WriteCount)
	prometheus.MustRegister(DropCount)

	return &StreamMetrics{
		ListenerGauge: ListenerGauge,
		ReadCount:     ReadCount,
		WriteCount:    WriteCount,
		DropCount:     DropCount,
	}
}
