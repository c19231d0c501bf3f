// Package store defines the read-oriented store contract and the two
// compositions built on it: MultiStore, which fans queries out over several
// backing stores, and InferenceStore, which layers a reasoner's derived
// statements over a base store. MemoryStore is a simple backing store.
//
// Compositions perform no locking. Backing stores are responsible for their
// own thread safety.
package store

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
	"github.com/geoknoesis/rdfkit/rdf"
)

var (
	// ErrUnsupported is returned by compositions for mutations they refuse.
	ErrUnsupported = rdf.ErrUnsupportedOperation

	// ErrStop may be returned by a Sink to end a selection early. Select
	// then returns nil.
	ErrStop = errors.New("store: stop selection")

	// ErrInvalidPattern indicates a FindEntities filter that does not leave
	// exactly one of subject or object open.
	ErrInvalidPattern = errors.New("store: entity filter must leave exactly one of subject or object open")
)

// Sink receives selected statements.
type Sink func(rdf.Statement) error

// Store is the contract every backing store and composition satisfies.
type Store interface {
	// Contains reports whether a statement matching stmt exists. Nil or
	// variable components match anything.
	Contains(stmt rdf.Statement) (bool, error)

	// Select streams every statement matching f to sink, in store order.
	Select(f Filter, sink Sink) error

	// FindEntities returns the resources that satisfy every filter. Each
	// filter leaves exactly one of subject or object open; the resources
	// bound at the open position are intersected across filters.
	FindEntities(filters []rdf.Statement) ([]rdf.Node, error)

	// Entities lists the distinct subjects and non-literal objects.
	Entities() []rdf.Node

	// Predicates lists the distinct predicates.
	Predicates() []rdf.Node

	// StatementCount returns the number of statements held.
	StatementCount() int

	Add(stmt rdf.Statement) error
	// Remove deletes every statement matching the pattern.
	Remove(pattern rdf.Statement) error
	// Replace substitutes replacement for find in every position.
	Replace(find, replacement rdf.Node) error
	// ReplaceStatement substitutes one statement for another.
	ReplaceStatement(find, replacement rdf.Statement) error
	Clear() error
}

// Option configures stores and compositions.
type Option func(*options)

type options struct {
	scope   string
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

func buildOptions(opts []Option) options {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithScope names a MemoryStore. The scope appears in the resource keys the
// store attaches to blank nodes.
func WithScope(scope string) Option {
	return func(o *options) { o.scope = scope }
}

// stopper wraps a sink so a composition can tell whether a callee ended a
// selection because the sink asked it to.
type stopper struct {
	sink    Sink
	stopped bool
}

func (s *stopper) emit(stmt rdf.Statement) error {
	if s.stopped {
		return ErrStop
	}
	if err := s.sink(stmt); err != nil {
		if errors.Is(err, ErrStop) {
			s.stopped = true
		}
		return err
	}
	return nil
}

// limited applies f.Limit to sink. The returned filter has no limit.
func limited(f Filter, sink Sink) (Filter, Sink) {
	if f.Limit <= 0 {
		return f, sink
	}
	remaining := f.Limit
	f.Limit = 0
	return f, func(stmt rdf.Statement) error {
		if remaining == 0 {
			return ErrStop
		}
		remaining--
		if err := sink(stmt); err != nil {
			return err
		}
		if remaining == 0 {
			return ErrStop
		}
		return nil
	}
}

// finish maps ErrStop to a clean end of selection.
func finish(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// containsVia answers Contains through Select.
func containsVia(s Store, stmt rdf.Statement) (bool, error) {
	found := false
	err := s.Select(Pattern(stmt.Subject, stmt.Predicate, stmt.Object), func(rdf.Statement) error {
		found = true
		return ErrStop
	})
	return found, err
}

// findEntities answers FindEntities through Select.
func findEntities(s Store, filters []rdf.Statement) ([]rdf.Node, error) {
	var result *nodeSet
	for _, filter := range filters {
		openSubject := rdf.IsWildcard(filter.Subject)
		openObject := rdf.IsWildcard(filter.Object)
		if openSubject == openObject {
			return nil, ErrInvalidPattern
		}
		bound := newNodeSet()
		err := s.Select(Pattern(filter.Subject, filter.Predicate, filter.Object), func(stmt rdf.Statement) error {
			if openSubject {
				bound.add(stmt.Subject)
			} else if node, ok := stmt.Object.(rdf.Node); ok {
				bound.add(node)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = bound
		} else {
			result = result.intersect(bound)
		}
		if result.len() == 0 {
			break
		}
	}
	if result == nil {
		return nil, nil
	}
	return result.items, nil
}

// nodeSet is an insertion-ordered set of nodes under rdf.Equal.
type nodeSet struct {
	items   []rdf.Node
	buckets map[uint64][]int
}

func newNodeSet() *nodeSet {
	return &nodeSet{buckets: map[uint64][]int{}}
}

func (s *nodeSet) contains(n rdf.Node) bool {
	for _, i := range s.buckets[rdf.Hash(n)] {
		if rdf.Equal(s.items[i], n) {
			return true
		}
	}
	return false
}

func (s *nodeSet) add(n rdf.Node) bool {
	if s.contains(n) {
		return false
	}
	h := rdf.Hash(n)
	s.buckets[h] = append(s.buckets[h], len(s.items))
	s.items = append(s.items, n)
	return true
}

func (s *nodeSet) len() int { return len(s.items) }

func (s *nodeSet) intersect(o *nodeSet) *nodeSet {
	out := newNodeSet()
	for _, n := range s.items {
		if o.contains(n) {
			out.add(n)
		}
	}
	return out
}
