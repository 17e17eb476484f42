package syncsim

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an EventSink that exports event counts and the live reader
// count to Prometheus.
type Metrics struct {
	events  *prometheus.CounterVec
	readers prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg, if reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "syncsim",
				Name:      "events_total",
				Help:      "Total number of events reported by simulation actors.",
			}, []string{"role", "kind"}),
		readers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "syncsim",
				Name:      "active_readers",
				Help:      "Number of readers holding the shared resource.",
			}),
	}
	if reg != nil {
		reg.MustRegister(m.events, m.readers)
	}
	return m
}

// Append implements EventSink.
func (m *Metrics) Append(ev Event) {
	m.events.WithLabelValues(ev.Actor.Role.String(), ev.Kind.String()).Inc()
	switch ev.Kind {
	case KindReading, KindReaderFinished:
		m.readers.Set(float64(ev.Readers))
	case KindReaderUnlocksResource:
		m.readers.Set(0)
	}
}
