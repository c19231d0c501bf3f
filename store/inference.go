package store

import (
	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
	"github.com/geoknoesis/rdfkit/rdf"
)

// Reasoner derives statements from a base store. Infer emits every
// derivable statement matching f to sink. It may emit statements the base
// already asserts and may emit a statement more than once.
type Reasoner interface {
	Infer(base Store, f Filter, sink Sink) error
}

// ReasonerFunc adapts a function to Reasoner.
type ReasonerFunc func(base Store, f Filter, sink Sink) error

// Infer calls fn.
func (fn ReasonerFunc) Infer(base Store, f Filter, sink Sink) error {
	return fn(base, f, sink)
}

// InferenceStore layers a reasoner over a base store without mutating it.
// Queries see asserted statements followed by derived ones; enumeration and
// counts reflect the base only. InferenceStores chain: the base may itself
// be an InferenceStore.
type InferenceStore struct {
	base     Store
	reasoner Reasoner
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewInferenceStore wraps base with reasoner.
func NewInferenceStore(base Store, reasoner Reasoner, opts ...Option) *InferenceStore {
	o := buildOptions(opts)
	return &InferenceStore{base: base, reasoner: reasoner, logger: o.logger, metrics: o.metrics}
}

// Base returns the wrapped store.
func (s *InferenceStore) Base() Store { return s.base }

// Select emits base matches, then derived matches the base does not
// assert. Each derived statement is emitted at most once per call.
func (s *InferenceStore) Select(f Filter, sink Sink) error {
	s.metrics.RecordSelect("inference")
	f, sink = limited(f, sink)
	st := &stopper{sink: sink}
	if err := finish(s.base.Select(f, st.emit)); err != nil || st.stopped {
		return err
	}
	seen := newStatementSet()
	err := s.reasoner.Infer(s.base, f, func(stmt rdf.Statement) error {
		if !f.Matches(stmt) || !seen.add(stmt) {
			return nil
		}
		asserted, err := s.base.Contains(stmt)
		if err != nil {
			return err
		}
		if asserted {
			return nil
		}
		return st.emit(stmt)
	})
	return finish(err)
}

// Contains reports whether stmt is asserted in the base or derivable.
func (s *InferenceStore) Contains(stmt rdf.Statement) (bool, error) {
	ok, err := s.base.Contains(stmt)
	if err != nil || ok {
		return ok, err
	}
	found := false
	err = s.reasoner.Infer(s.base, Pattern(stmt.Subject, stmt.Predicate, stmt.Object), func(derived rdf.Statement) error {
		if !Pattern(stmt.Subject, stmt.Predicate, stmt.Object).Matches(derived) {
			return nil
		}
		found = true
		return ErrStop
	})
	return found, finish(err)
}

// FindEntities answers through Select, so derived statements count.
func (s *InferenceStore) FindEntities(filters []rdf.Statement) ([]rdf.Node, error) {
	return findEntities(s, filters)
}

// Entities lists the base store's entities.
func (s *InferenceStore) Entities() []rdf.Node { return s.base.Entities() }

// Predicates lists the base store's predicates.
func (s *InferenceStore) Predicates() []rdf.Node { return s.base.Predicates() }

// StatementCount counts asserted statements only.
func (s *InferenceStore) StatementCount() int { return s.base.StatementCount() }

// Add is unsupported; the base store is never mutated through a layer.
func (s *InferenceStore) Add(rdf.Statement) error { return ErrUnsupported }

// Remove is unsupported.
func (s *InferenceStore) Remove(rdf.Statement) error { return ErrUnsupported }

// Clear is unsupported.
func (s *InferenceStore) Clear() error { return ErrUnsupported }

// Replace forwards to the base store.
func (s *InferenceStore) Replace(find, replacement rdf.Node) error {
	return s.base.Replace(find, replacement)
}

// ReplaceStatement forwards to the base store.
func (s *InferenceStore) ReplaceStatement(find, replacement rdf.Statement) error {
	return s.base.ReplaceStatement(find, replacement)
}

// statementSet deduplicates statements under Statement.Equal.
type statementSet struct {
	buckets map[uint64][]rdf.Statement
}

func newStatementSet() *statementSet {
	return &statementSet{buckets: map[uint64][]rdf.Statement{}}
}

func (s *statementSet) add(stmt rdf.Statement) bool {
	h := rdf.Hash(stmt.Subject)*31*31 + rdf.Hash(stmt.Predicate)*31 + rdf.Hash(stmt.Object)
	for _, o := range s.buckets[h] {
		if o.Equal(stmt) {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], stmt)
	return true
}
