package store

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/geoknoesis/rdfkit/rdf"
)

// Filter selects statements. Each component list is a set of alternatives;
// an empty list, or one holding nil or a variable, matches anything.
// LiteralFilters further restrict literal objects; a statement with a
// non-literal object never passes a non-empty LiteralFilters list.
type Filter struct {
	Subjects       []rdf.Node
	Predicates     []rdf.Node
	Objects        []rdf.Resource
	LiteralFilters []LiteralFilter
	// Limit caps the number of statements selected. Zero means no limit.
	Limit int
}

// All matches every statement.
var All = Filter{}

// Pattern builds a single-pattern filter. Nil or variable components match
// anything.
func Pattern(subject, predicate rdf.Node, object rdf.Resource) Filter {
	var f Filter
	if !rdf.IsWildcard(subject) {
		f.Subjects = []rdf.Node{subject}
	}
	if !rdf.IsWildcard(predicate) {
		f.Predicates = []rdf.Node{predicate}
	}
	if !rdf.IsWildcard(object) {
		f.Objects = []rdf.Resource{object}
	}
	return f
}

// Matches reports whether stmt passes the filter, ignoring Limit.
func (f Filter) Matches(stmt rdf.Statement) bool {
	if !matchAny(f.Subjects, stmt.Subject) ||
		!matchAny(f.Predicates, stmt.Predicate) ||
		!matchAny(f.Objects, stmt.Object) {
		return false
	}
	if len(f.LiteralFilters) == 0 {
		return true
	}
	lit, ok := stmt.Object.(rdf.Literal)
	if !ok {
		return false
	}
	for _, lf := range f.LiteralFilters {
		if !lf(lit) {
			return false
		}
	}
	return true
}

func matchAny[T rdf.Resource](alternatives []T, value rdf.Resource) bool {
	if len(alternatives) == 0 {
		return true
	}
	for _, alt := range alternatives {
		if rdf.IsWildcard(alt) || rdf.Equal(alt, value) {
			return true
		}
	}
	return false
}

// LiteralFilter is a partial-match predicate on literal objects.
type LiteralFilter func(rdf.Literal) bool

// StringContains matches literals whose value contains substr.
func StringContains(substr string) LiteralFilter {
	return func(l rdf.Literal) bool { return strings.Contains(l.Value(), substr) }
}

// StringStartsWith matches literals whose value starts with prefix.
func StringStartsWith(prefix string) LiteralFilter {
	return func(l rdf.Literal) bool { return strings.HasPrefix(l.Value(), prefix) }
}

// CompareOp is a numeric comparison operator.
type CompareOp int

// Comparison operators for NumericCompare. The literal's value is the left
// operand.
const (
	LessThan CompareOp = iota
	LessOrEqual
	Equal
	NotEqual
	GreaterOrEqual
	GreaterThan
)

// NumericCompare matches literals whose value parses as a number and
// compares to value as op says. Non-numeric literals never match.
func NumericCompare(op CompareOp, value decimal.Decimal) LiteralFilter {
	return func(l rdf.Literal) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(l.Value()))
		if err != nil {
			return false
		}
		c := d.Cmp(value)
		switch op {
		case LessThan:
			return c < 0
		case LessOrEqual:
			return c <= 0
		case Equal:
			return c == 0
		case NotEqual:
			return c != 0
		case GreaterOrEqual:
			return c >= 0
		case GreaterThan:
			return c > 0
		}
		return false
	}
}
