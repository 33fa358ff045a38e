package observability

import (
	"github.com/couchcryptid/weather-sensor-bridge/internal/sink"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the bridge.
type Metrics struct {
	Ticks             *prometheus.CounterVec // labels: outcome={decoded,no_data,decode_error}
	ReadingsRejected  *prometheus.CounterVec // labels: reason={identity,sensor_type}
	RecordsDispatched prometheus.Counter
	TriggerErrors     prometheus.Counter
	PipelineRunning   prometheus.Gauge
	TickDuration      prometheus.Histogram

	// Last published value per record field.
	SensorValue *prometheus.GaugeVec // labels: field
}

// NewMetrics creates and registers all bridge metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Ticks,
		m.ReadingsRejected,
		m.RecordsDispatched,
		m.TriggerErrors,
		m.PipelineRunning,
		m.TickDuration,
		m.SensorValue,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that no registry exports, for
// offline tools that run the pipeline without a /metrics endpoint.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_bridge",
			Name:      "ticks_total",
			Help:      "Polling ticks by decode outcome.",
		}, []string{"outcome"}),
		ReadingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_bridge",
			Name:      "readings_rejected_total",
			Help:      "Decoded readings dropped before normalization, by reason.",
		}, []string{"reason"}),
		RecordsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_bridge",
			Name:      "records_dispatched_total",
			Help:      "Canonical records handed to sinks and subscribers.",
		}),
		TriggerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_bridge",
			Name:      "trigger_errors_total",
			Help:      "Records a trigger failed to re-emit.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_bridge",
			Name:      "pipeline_running",
			Help:      "1 while the polling loop is active, 0 otherwise.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_bridge",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one decode-filter-normalize-fanout tick, excluding the throttle delay.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		SensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "weather_bridge",
			Name:      "sensor_value",
			Help:      "Last value published for each record field.",
		}, []string{"field"}),
	}
}

// GaugeSink returns a numeric sink that sets the sensor_value gauge for field.
func (m *Metrics) GaugeSink(field string) sink.Numeric {
	g := m.SensorValue.WithLabelValues(field)
	return sink.NumericFunc(g.Set)
}

// BinaryGaugeSink returns a binary sink that sets the sensor_value gauge for
// field to 1 or 0.
func (m *Metrics) BinaryGaugeSink(field string) sink.Binary {
	g := m.SensorValue.WithLabelValues(field)
	return sink.BinaryFunc(func(on bool) {
		if on {
			g.Set(1)
			return
		}
		g.Set(0)
	})
}
