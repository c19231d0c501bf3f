package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfkit/rdf"
)

var (
	rdfType  = rdf.NewEntity(rdf.RDFType)
	subClass = rdf.NewEntity(rdf.RDFSSubClass)
)

// subClassReasoner derives "x type C" from "x type B" and "B subClassOf C".
// It re-emits asserted statements, which the inference store must hide.
var subClassReasoner = ReasonerFunc(func(base Store, f Filter, sink Sink) error {
	var typings, axioms []rdf.Statement
	err := base.Select(All, func(st rdf.Statement) error {
		switch {
		case rdf.Equal(st.Predicate, rdfType):
			typings = append(typings, st)
		case rdf.Equal(st.Predicate, subClass):
			axioms = append(axioms, st)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, typing := range typings {
		if err := sink(typing); err != nil {
			return err
		}
		for _, axiom := range axioms {
			if !rdf.Equal(typing.Object, axiom.Subject) {
				continue
			}
			if err := sink(rdf.NewStatement(typing.Subject, rdfType, axiom.Object)); err != nil {
				return err
			}
		}
	}
	return nil
})

func newOntology(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	for _, st := range []rdf.Statement{
		rdf.NewStatement(ent("Student"), subClass, ent("Person")),
		rdf.NewStatement(ent("Person"), subClass, ent("Agent")),
		rdf.NewStatement(ent("alice"), rdfType, ent("Student")),
		rdf.NewStatement(ent("bob"), rdfType, ent("Person")),
	} {
		require.NoError(t, s.Add(st))
	}
	return s
}

func TestInferenceStoreSelect(t *testing.T) {
	s := NewInferenceStore(newOntology(t), subClassReasoner)

	got := collect(t, s, Pattern(nil, rdfType, nil))
	require.Len(t, got, 4)
	assert.True(t, got[0].Equal(rdf.NewStatement(ent("alice"), rdfType, ent("Student"))), "asserted statements come first")
	assert.True(t, got[1].Equal(rdf.NewStatement(ent("bob"), rdfType, ent("Person"))))
	assert.True(t, got[2].Equal(rdf.NewStatement(ent("alice"), rdfType, ent("Person"))))
	assert.True(t, got[3].Equal(rdf.NewStatement(ent("bob"), rdfType, ent("Agent"))))

	got = collect(t, s, Pattern(ent("alice"), rdfType, nil))
	assert.Len(t, got, 2, "derived statements are filtered too")

	assert.Len(t, collect(t, s, Filter{Predicates: []rdf.Node{rdfType}, Limit: 3}), 3)
}

func TestInferenceStoreChains(t *testing.T) {
	base := newOntology(t)
	inner := NewInferenceStore(base, subClassReasoner)
	outer := NewInferenceStore(inner, subClassReasoner)

	found, err := inner.Contains(rdf.NewStatement(ent("alice"), rdfType, ent("Agent")))
	require.NoError(t, err)
	assert.False(t, found, "one layer derives one step")

	found, err = outer.Contains(rdf.NewStatement(ent("alice"), rdfType, ent("Agent")))
	require.NoError(t, err)
	assert.True(t, found)

	agents, err := outer.FindEntities([]rdf.Statement{{Predicate: rdfType, Object: ent("Agent")}})
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	got := collect(t, outer, Pattern(nil, rdfType, nil))
	assert.Len(t, got, 5, "each derived statement appears once")

	assert.Same(t, inner, outer.Base())
}

func TestInferenceStoreEnumeratesBase(t *testing.T) {
	base := newOntology(t)
	s := NewInferenceStore(base, subClassReasoner)

	assert.Equal(t, base.StatementCount(), s.StatementCount())
	assert.Equal(t, base.Entities(), s.Entities())
	assert.Equal(t, base.Predicates(), s.Predicates())
}

func TestInferenceStoreMutations(t *testing.T) {
	base := newOntology(t)
	s := NewInferenceStore(base, subClassReasoner)

	assert.ErrorIs(t, s.Add(rdf.NewStatement(ent("x"), rdfType, ent("y"))), ErrUnsupported)
	assert.ErrorIs(t, s.Remove(rdf.Statement{}), ErrUnsupported)
	assert.ErrorIs(t, s.Clear(), ErrUnsupported)

	require.NoError(t, s.Replace(ent("bob"), ent("carol")))
	found, err := base.Contains(rdf.NewStatement(ent("carol"), rdfType, ent("Person")))
	require.NoError(t, err)
	assert.True(t, found, "replace reaches the base")

	require.NoError(t, s.ReplaceStatement(
		rdf.NewStatement(ent("carol"), rdfType, ent("Person")),
		rdf.NewStatement(ent("carol"), rdfType, ent("Student")),
	))
	found, err = s.Contains(rdf.NewStatement(ent("carol"), rdfType, ent("Person")))
	require.NoError(t, err)
	assert.True(t, found, "the replaced statement is still derivable")
}

func TestInferenceStoreReasonerError(t *testing.T) {
	boom := errors.New("boom")
	s := NewInferenceStore(newOntology(t), ReasonerFunc(func(Store, Filter, Sink) error { return boom }))

	err := s.Select(All, func(rdf.Statement) error { return nil })
	assert.ErrorIs(t, err, boom)

	_, err = s.Contains(rdf.NewStatement(ent("nobody"), rdfType, nil))
	assert.ErrorIs(t, err, boom)

	calls := 0
	require.NoError(t, s.Select(All, func(rdf.Statement) error {
		calls++
		return ErrStop
	}), "stopping during the base phase skips the reasoner")
	assert.Equal(t, 1, calls)
}
