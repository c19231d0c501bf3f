// Package metrics provides Prometheus counters for rdfkit writers and stores.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compaction pass labels.
const (
	PassInline   = "inline"
	PassCondense = "condense"
)

// Metrics holds the rdfkit collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	StatementsWritten *prometheus.CounterVec
	WriteErrors       *prometheus.CounterVec
	Compactions       *prometheus.CounterVec
	StoreSelects      *prometheus.CounterVec
	StoreRegistered   prometheus.Gauge
	ReasonersAttached prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		StatementsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rdfkit_statements_written_total",
				Help: "Total number of statements accepted by writers",
			},
			[]string{"format"},
		),
		WriteErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rdfkit_write_errors_total",
				Help: "Total number of rejected or failed statement writes",
			},
			[]string{"format"},
		),
		Compactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rdfkit_rdfxml_compactions_total",
				Help: "Total number of RDF/XML elements rewritten by compaction passes",
			},
			[]string{"pass"},
		),
		StoreSelects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rdfkit_store_selects_total",
				Help: "Total number of select calls per composition layer",
			},
			[]string{"layer"},
		),
		StoreRegistered: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rdfkit_knowledge_stores",
				Help: "Number of backing stores registered with a knowledge model",
			},
		),
		ReasonersAttached: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rdfkit_knowledge_reasoners",
				Help: "Number of reasoning layers attached to a knowledge model",
			},
		),
	}
}

// RecordWrite records the outcome of one statement write.
func (m *Metrics) RecordWrite(format string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.WriteErrors.WithLabelValues(format).Inc()
		return
	}
	m.StatementsWritten.WithLabelValues(format).Inc()
}

// RecordCompaction records n elements rewritten by a compaction pass.
func (m *Metrics) RecordCompaction(pass string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Compactions.WithLabelValues(pass).Add(float64(n))
}

// RecordSelect records a select call served by a composition layer.
func (m *Metrics) RecordSelect(layer string) {
	if m == nil {
		return
	}
	m.StoreSelects.WithLabelValues(layer).Inc()
}

// RecordStore records a backing store registration.
func (m *Metrics) RecordStore() {
	if m == nil {
		return
	}
	m.StoreRegistered.Inc()
}

// RecordReasoner records a reasoning layer attachment.
func (m *Metrics) RecordReasoner() {
	if m == nil {
		return
	}
	m.ReasonersAttached.Inc()
}
