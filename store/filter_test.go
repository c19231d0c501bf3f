package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdfkit/rdf"
)

const ex = "http://example.org/"

func ent(local string) rdf.Entity { return rdf.NewEntity(ex + local) }

func stmt(s, p string, o rdf.Resource) rdf.Statement {
	return rdf.NewStatement(ent(s), ent(p), o)
}

func typedLiteral(t *testing.T, value, datatype string) rdf.Literal {
	t.Helper()
	lit, err := rdf.NewLiteral(value, rdf.WithDatatype(datatype))
	require.NoError(t, err)
	return lit
}

func TestPattern(t *testing.T) {
	f := Pattern(nil, ent("p"), rdf.NewVariable("o"))
	assert.Empty(t, f.Subjects)
	assert.Len(t, f.Predicates, 1)
	assert.Empty(t, f.Objects)

	assert.True(t, f.Matches(stmt("a", "p", rdf.PlainLiteral("x"))))
	assert.True(t, f.Matches(stmt("b", "p", ent("c"))))
	assert.False(t, f.Matches(stmt("a", "q", ent("c"))))
	assert.True(t, All.Matches(stmt("a", "q", ent("c"))))
}

func TestFilterAlternatives(t *testing.T) {
	f := Filter{
		Subjects: []rdf.Node{ent("a"), ent("b")},
		Objects:  []rdf.Resource{rdf.PlainLiteral("x"), ent("c")},
	}
	assert.True(t, f.Matches(stmt("a", "p", rdf.PlainLiteral("x"))))
	assert.True(t, f.Matches(stmt("b", "q", ent("c"))))
	assert.False(t, f.Matches(stmt("c", "p", ent("c"))))
	assert.False(t, f.Matches(stmt("a", "p", rdf.PlainLiteral("y"))))

	withVariable := Filter{Subjects: []rdf.Node{ent("a"), rdf.NewVariable("s")}}
	assert.True(t, withVariable.Matches(stmt("z", "p", ent("c"))), "a variable alternative matches anything")
}

func TestLiteralFilters(t *testing.T) {
	name := stmt("a", "name", rdf.PlainLiteral("Alice Liddell"))
	link := stmt("a", "knows", ent("b"))

	f := Filter{LiteralFilters: []LiteralFilter{StringStartsWith("Alice"), StringContains("Lid")}}
	assert.True(t, f.Matches(name))
	assert.False(t, f.Matches(link), "non-literal objects never pass literal filters")

	f.LiteralFilters = append(f.LiteralFilters, StringContains("Bob"))
	assert.False(t, f.Matches(name), "every literal filter must pass")
}

func TestNumericCompare(t *testing.T) {
	age := typedLiteral(t, " 42 ", rdf.XSDInteger)
	ten := decimal.NewFromInt(10)
	tests := []struct {
		op   CompareOp
		want bool
	}{
		{LessThan, false},
		{LessOrEqual, false},
		{Equal, false},
		{NotEqual, true},
		{GreaterOrEqual, true},
		{GreaterThan, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumericCompare(tt.op, ten)(age), "op %d", tt.op)
	}

	assert.True(t, NumericCompare(Equal, decimal.RequireFromString("42.0"))(age))
	assert.True(t, NumericCompare(LessThan, ten)(rdf.PlainLiteral("-3.5")))
	assert.False(t, NumericCompare(NotEqual, ten)(rdf.PlainLiteral("forty-two")))
}
