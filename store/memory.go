package store

import (
	"io"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
	"github.com/geoknoesis/rdfkit/rdf"
)

// MemoryStore keeps statements in insertion order with a subject index.
// Statements form a set: adding a statement already present is a no-op.
// Unkeyed blank nodes receive a resource key scoped to the store when
// added, so distinct instances read back for the same node stay equal.
// MemoryStore is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	scope      string
	statements []rdf.Statement
	bySubject  map[uint64][]int
	nextKey    int
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewMemoryStore returns an empty store. Without WithScope the scope is a
// random UUID.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	if o.scope == "" {
		o.scope = uuid.NewString()
	}
	return &MemoryStore{
		scope:     o.scope,
		bySubject: map[uint64][]int{},
		logger:    o.logger,
		metrics:   o.metrics,
	}
}

// Scope returns the scope used in attached resource keys.
func (s *MemoryStore) Scope() string { return s.scope }

// Add inserts stmt. Statements with a missing component are rejected.
func (s *MemoryStore) Add(stmt rdf.Statement) error {
	if stmt.AnyNull() {
		return rdf.ErrNullComponent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range []rdf.Resource{stmt.Subject, stmt.Predicate, stmt.Object} {
		if err := s.identify(r); err != nil {
			return err
		}
	}
	if s.indexOf(stmt) >= 0 {
		return nil
	}
	s.append(stmt)
	return nil
}

// identify attaches a store-scoped key to an unkeyed blank node.
func (s *MemoryStore) identify(r rdf.Resource) error {
	b, ok := r.(*rdf.BNode)
	if !ok {
		return nil
	}
	if _, keyed := b.ResourceKey(); keyed {
		return nil
	}
	key := rdf.ResourceKey{Scope: s.scope, ID: strconv.Itoa(s.nextKey)}
	s.nextKey++
	return b.SetResourceKey(key)
}

func (s *MemoryStore) append(stmt rdf.Statement) {
	h := rdf.Hash(stmt.Subject)
	s.bySubject[h] = append(s.bySubject[h], len(s.statements))
	s.statements = append(s.statements, stmt)
}

func (s *MemoryStore) indexOf(stmt rdf.Statement) int {
	for _, i := range s.bySubject[rdf.Hash(stmt.Subject)] {
		if s.statements[i].Equal(stmt) {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) reindex() {
	s.bySubject = make(map[uint64][]int, len(s.bySubject))
	for i, stmt := range s.statements {
		h := rdf.Hash(stmt.Subject)
		s.bySubject[h] = append(s.bySubject[h], i)
	}
}

// Import adds every statement from r until io.EOF and returns the number
// read.
func (s *MemoryStore) Import(r rdf.Reader) (int, error) {
	n := 0
	for {
		stmt, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if err := s.Add(stmt); err != nil {
			return n, err
		}
		n++
	}
	s.logger.Debug().Str("scope", s.scope).Int("statements", n).Msg("memory store import")
	return n, nil
}

// Contains reports whether a statement matching stmt is held.
func (s *MemoryStore) Contains(stmt rdf.Statement) (bool, error) {
	return containsVia(s, stmt)
}

// Select streams matching statements in insertion order.
func (s *MemoryStore) Select(f Filter, sink Sink) error {
	s.metrics.RecordSelect("memory")
	f, sink = limited(f, sink)
	for _, stmt := range s.candidates(f) {
		if !f.Matches(stmt) {
			continue
		}
		if err := sink(stmt); err != nil {
			return finish(err)
		}
	}
	return nil
}

// candidates snapshots the statements worth testing against f, using the
// subject index when the filter names subjects.
func (s *MemoryStore) candidates(f Filter) []rdf.Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(f.Subjects) == 0 || slices.ContainsFunc(f.Subjects, isWildcardNode) {
		return slices.Clone(s.statements)
	}
	var idxs []int
	for _, subject := range f.Subjects {
		idxs = append(idxs, s.bySubject[rdf.Hash(subject)]...)
	}
	slices.Sort(idxs)
	idxs = slices.Compact(idxs)
	out := make([]rdf.Statement, len(idxs))
	for i, idx := range idxs {
		out[i] = s.statements[idx]
	}
	return out
}

// FindEntities intersects the resources bound by each filter.
func (s *MemoryStore) FindEntities(filters []rdf.Statement) ([]rdf.Node, error) {
	return findEntities(s, filters)
}

// Entities lists distinct subjects and non-literal objects in Compare
// order.
func (s *MemoryStore) Entities() []rdf.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := newNodeSet()
	for _, stmt := range s.statements {
		set.add(stmt.Subject)
		if node, ok := stmt.Object.(rdf.Node); ok {
			set.add(node)
		}
	}
	return sortedNodes(set.items)
}

// Predicates lists distinct predicates in Compare order.
func (s *MemoryStore) Predicates() []rdf.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := newNodeSet()
	for _, stmt := range s.statements {
		set.add(stmt.Predicate)
	}
	return sortedNodes(set.items)
}

func isWildcardNode(n rdf.Node) bool { return rdf.IsWildcard(n) }

func sortedNodes(nodes []rdf.Node) []rdf.Node {
	slices.SortFunc(nodes, func(a, b rdf.Node) int { return rdf.Compare(a, b) })
	return nodes
}

// StatementCount returns the number of statements held.
func (s *MemoryStore) StatementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statements)
}

// Remove deletes every statement matching pattern.
func (s *MemoryStore) Remove(pattern rdf.Statement) error {
	f := Pattern(pattern.Subject, pattern.Predicate, pattern.Object)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.statements[:0]
	for _, stmt := range s.statements {
		if !f.Matches(stmt) {
			kept = append(kept, stmt)
		}
	}
	clear(s.statements[len(kept):])
	s.statements = kept
	s.reindex()
	return nil
}

// Replace substitutes replacement for find wherever it occurs.
func (s *MemoryStore) Replace(find, replacement rdf.Node) error {
	if rdf.IsWildcard(find) || rdf.IsWildcard(replacement) {
		return rdf.ErrNullComponent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.identify(replacement); err != nil {
		return err
	}
	swap := func(r rdf.Resource) rdf.Resource {
		if rdf.Equal(r, find) {
			return replacement
		}
		return r
	}
	old := s.statements
	s.statements = make([]rdf.Statement, 0, len(old))
	s.bySubject = map[uint64][]int{}
	for _, stmt := range old {
		next := rdf.Statement{
			Subject:   swap(stmt.Subject).(rdf.Node),
			Predicate: swap(stmt.Predicate).(rdf.Node),
			Object:    swap(stmt.Object),
		}
		if s.indexOf(next) < 0 {
			s.append(next)
		}
	}
	return nil
}

// ReplaceStatement substitutes replacement for find when find is held.
func (s *MemoryStore) ReplaceStatement(find, replacement rdf.Statement) error {
	if replacement.AnyNull() {
		return rdf.ErrNullComponent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(find)
	if i < 0 {
		return nil
	}
	for _, r := range []rdf.Resource{replacement.Subject, replacement.Predicate, replacement.Object} {
		if err := s.identify(r); err != nil {
			return err
		}
	}
	if s.indexOf(replacement) >= 0 {
		s.statements = slices.Delete(s.statements, i, i+1)
	} else {
		s.statements[i] = replacement
	}
	s.reindex()
	return nil
}

// Clear removes every statement.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements = nil
	s.bySubject = map[uint64][]int{}
	return nil
}
