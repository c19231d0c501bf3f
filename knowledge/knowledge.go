// Package knowledge provides Model, a read-and-compose facade over a set of
// backing stores with optional reasoning layers.
//
// Select, Contains and FindEntities go through the main store, so they see
// inferred statements. Entities, Predicates and StatementCount query the
// aggregate of backing stores directly and report asserted data only.
// Mutation happens on the backing stores reachable through Storage.
package knowledge

import (
	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
	"github.com/geoknoesis/rdfkit/rdf"
	"github.com/geoknoesis/rdfkit/store"
)

// Model aggregates backing stores and layers reasoners over them.
type Model struct {
	storage   *store.MultiStore
	main      store.Store
	reasoners int
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithMetrics sets the metrics sink shared with the compositions.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Model) { m.metrics = mt }
}

// New returns an empty model.
func New(opts ...Option) *Model {
	m := &Model{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	m.storage = store.NewMultiStore(m.storeOptions()...)
	m.main = m.storage
	return m
}

func (m *Model) storeOptions() []store.Option {
	return []store.Option{store.WithLogger(m.logger), store.WithMetrics(m.metrics)}
}

// AddStore registers a backing store with the aggregate.
func (m *Model) AddStore(s store.Store) {
	before := len(m.storage.Stores())
	m.storage.AddStore(s)
	if len(m.storage.Stores()) > before {
		m.metrics.RecordStore()
	}
}

// AddReasoning wraps the current main store with r. Layers accumulate and
// cannot be removed.
func (m *Model) AddReasoning(r store.Reasoner) {
	m.main = store.NewInferenceStore(m.main, r, m.storeOptions()...)
	m.reasoners++
	m.metrics.RecordReasoner()
	m.logger.Debug().Int("layers", m.reasoners).Msg("reasoning attached")
}

// Storage returns the aggregate of backing stores.
func (m *Model) Storage() *store.MultiStore { return m.storage }

// MainStore returns the outermost layer queries go through.
func (m *Model) MainStore() store.Store { return m.main }

// Contains reports whether stmt is asserted or inferred.
func (m *Model) Contains(stmt rdf.Statement) (bool, error) {
	return m.main.Contains(stmt)
}

// Select streams asserted then inferred statements matching f.
func (m *Model) Select(f store.Filter, sink store.Sink) error {
	return m.main.Select(f, sink)
}

// FindEntities intersects the resources bound by each filter, inferred
// statements included.
func (m *Model) FindEntities(filters []rdf.Statement) ([]rdf.Node, error) {
	return m.main.FindEntities(filters)
}

// Entities lists asserted entities from the aggregate.
func (m *Model) Entities() []rdf.Node { return m.storage.Entities() }

// Predicates lists asserted predicates from the aggregate.
func (m *Model) Predicates() []rdf.Node { return m.storage.Predicates() }

// StatementCount counts asserted statements in the aggregate.
func (m *Model) StatementCount() int { return m.storage.StatementCount() }

// Add is unsupported; add to a backing store instead.
func (m *Model) Add(rdf.Statement) error { return store.ErrUnsupported }

// Remove is unsupported; remove from a backing store instead.
func (m *Model) Remove(rdf.Statement) error { return store.ErrUnsupported }

// Clear is unsupported.
func (m *Model) Clear() error { return store.ErrUnsupported }

// Replace substitutes replacement for find in every backing store.
func (m *Model) Replace(find, replacement rdf.Node) error {
	return m.main.Replace(find, replacement)
}

// ReplaceStatement substitutes one statement for another in every backing
// store.
func (m *Model) ReplaceStatement(find, replacement rdf.Statement) error {
	return m.main.ReplaceStatement(find, replacement)
}

// Write selects every statement through the main store into w. It does not
// close w.
func (m *Model) Write(w rdf.Writer) error {
	n := 0
	err := m.main.Select(store.All, func(stmt rdf.Statement) error {
		n++
		return w.Write(stmt)
	})
	if err != nil {
		return err
	}
	m.logger.Debug().Int("statements", n).Msg("model written")
	return w.Flush()
}

var _ store.Store = (*Model)(nil)
