package store

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
	"github.com/geoknoesis/rdfkit/rdf"
)

// MultiStore fans every query out over its registered stores in
// registration order. Results are concatenated without deduplication.
// It refuses Add, Remove and Clear; Replace and ReplaceStatement are
// forwarded to every store.
type MultiStore struct {
	stores  []Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewMultiStore returns a composition with no stores.
func NewMultiStore(opts ...Option) *MultiStore {
	o := buildOptions(opts)
	return &MultiStore{logger: o.logger, metrics: o.metrics}
}

// AddStore registers s. Registering the same store twice is a no-op.
func (m *MultiStore) AddStore(s Store) {
	if s == nil || slices.Contains(m.stores, s) {
		return
	}
	m.stores = append(m.stores, s)
	m.logger.Debug().Int("stores", len(m.stores)).Msg("store registered")
}

// RemoveStore unregisters s and reports whether it was registered.
func (m *MultiStore) RemoveStore(s Store) bool {
	i := slices.Index(m.stores, s)
	if i < 0 {
		return false
	}
	m.stores = slices.Delete(m.stores, i, i+1)
	m.logger.Debug().Int("stores", len(m.stores)).Msg("store removed")
	return true
}

// Stores returns the registered stores in registration order.
func (m *MultiStore) Stores() []Store {
	return slices.Clone(m.stores)
}

// Contains reports whether any store contains stmt.
func (m *MultiStore) Contains(stmt rdf.Statement) (bool, error) {
	for _, s := range m.stores {
		ok, err := s.Contains(stmt)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Select runs f against each store in turn. A limit applies to the
// combined stream.
func (m *MultiStore) Select(f Filter, sink Sink) error {
	m.metrics.RecordSelect("multi")
	f, sink = limited(f, sink)
	st := &stopper{sink: sink}
	for _, s := range m.stores {
		if err := finish(s.Select(f, st.emit)); err != nil {
			return err
		}
		if st.stopped {
			return nil
		}
	}
	return nil
}

// FindEntities concatenates each store's answer. Filters are not joined
// across stores.
func (m *MultiStore) FindEntities(filters []rdf.Statement) ([]rdf.Node, error) {
	var out []rdf.Node
	for _, s := range m.stores {
		found, err := s.FindEntities(filters)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// Entities concatenates each store's entities.
func (m *MultiStore) Entities() []rdf.Node {
	var out []rdf.Node
	for _, s := range m.stores {
		out = append(out, s.Entities()...)
	}
	return out
}

// Predicates concatenates each store's predicates.
func (m *MultiStore) Predicates() []rdf.Node {
	var out []rdf.Node
	for _, s := range m.stores {
		out = append(out, s.Predicates()...)
	}
	return out
}

// StatementCount sums the stores' counts.
func (m *MultiStore) StatementCount() int {
	n := 0
	for _, s := range m.stores {
		n += s.StatementCount()
	}
	return n
}

// Add is unsupported; add to a registered store instead.
func (m *MultiStore) Add(rdf.Statement) error { return ErrUnsupported }

// Remove is unsupported; remove from a registered store instead.
func (m *MultiStore) Remove(rdf.Statement) error { return ErrUnsupported }

// Clear is unsupported.
func (m *MultiStore) Clear() error { return ErrUnsupported }

// Replace forwards to every store, stopping at the first error.
func (m *MultiStore) Replace(find, replacement rdf.Node) error {
	for _, s := range m.stores {
		if err := s.Replace(find, replacement); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceStatement forwards to every store, stopping at the first error.
func (m *MultiStore) ReplaceStatement(find, replacement rdf.Statement) error {
	for _, s := range m.stores {
		if err := s.ReplaceStatement(find, replacement); err != nil {
			return err
		}
	}
	return nil
}
