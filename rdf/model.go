package rdf

import (
	"bytes"
	"cmp"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Kind identifies the variant of a Resource.
type Kind uint8

const (
	// KindEntity is a resource named by a URI.
	KindEntity Kind = iota
	// KindBNode is a blank node.
	KindBNode
	// KindVariable is a blank node used as a pattern wildcard.
	KindVariable
	// KindLiteral is a data value.
	KindLiteral
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindBNode:
		return "bnode"
	case KindVariable:
		return "variable"
	case KindLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Resource is a value that can appear in a statement: an Entity, a *BNode,
// a *Variable or a Literal.
type Resource interface {
	Kind() Kind
	String() string
	resource()
}

// Node is a resource that can be used as a subject or predicate.
type Node interface {
	Resource
	node()
}

// Entity is a resource named by a URI.
type Entity struct {
	uri string
}

// NewEntity returns the entity named by uri.
func NewEntity(uri string) Entity { return Entity{uri: uri} }

// URI returns the entity's URI.
func (e Entity) URI() string { return e.uri }

// Kind returns KindEntity.
func (Entity) Kind() Kind { return KindEntity }

// String returns the URI in angle brackets.
func (e Entity) String() string { return "<" + e.uri + ">" }

func (Entity) resource() {}
func (Entity) node()     {}

// ResourceKey links blank nodes that a backing store knows to be the same
// node. Scope names the store, ID the node within it.
type ResourceKey struct {
	Scope string
	ID    string
}

// BNode is a blank node. Two distinct instances are equal only when they
// carry equal resource keys.
type BNode struct {
	id        uuid.UUID
	localName string
	key       *ResourceKey
}

// NewBNode returns a fresh anonymous blank node.
func NewBNode() *BNode {
	return &BNode{id: newIdentity()}
}

// NewNamedBNode returns a fresh blank node carrying a local name. The name is
// a serialization hint and plays no part in identity.
func NewNamedBNode(localName string) *BNode {
	return &BNode{id: newIdentity(), localName: localName}
}

func newIdentity() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// LocalName returns the serialization hint, or "".
func (b *BNode) LocalName() string { return b.localName }

// ResourceKey returns the attached key, if any.
func (b *BNode) ResourceKey() (ResourceKey, bool) {
	if b.key == nil {
		return ResourceKey{}, false
	}
	return *b.key, true
}

// SetResourceKey attaches key to the node. A node holds at most one key:
// attaching a different key fails with ErrResourceKeyConflict, attaching
// the same key again is a no-op.
func (b *BNode) SetResourceKey(key ResourceKey) error {
	if b.key != nil {
		if *b.key == key {
			return nil
		}
		return ErrResourceKeyConflict
	}
	b.key = &key
	return nil
}

// Kind returns KindBNode.
func (*BNode) Kind() Kind { return KindBNode }

// String returns "_:" followed by the local name or the node identity.
func (b *BNode) String() string {
	if b.localName != "" {
		return "_:" + b.localName
	}
	return "_:b" + strings.ReplaceAll(b.id.String(), "-", "")
}

func (*BNode) resource() {}
func (*BNode) node()     {}

func (b *BNode) sameAs(o *BNode) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b == o {
		return true
	}
	return b.key != nil && o.key != nil && *b.key == *o.key
}

func (b *BNode) hash() uint64 {
	if b.key != nil {
		return xxhash.Sum64String(b.key.Scope + "\x00" + b.key.ID)
	}
	return xxhash.Sum64(b.id[:])
}

// Variable is a blank node that matches anything in a query pattern.
type Variable struct {
	BNode
}

// NewVariable returns a fresh variable. name may be empty.
func NewVariable(name string) *Variable {
	return &Variable{BNode: BNode{id: newIdentity(), localName: name}}
}

// Kind returns KindVariable.
func (*Variable) Kind() Kind { return KindVariable }

// String returns "?name", or the blank node form for unnamed variables.
func (v *Variable) String() string {
	if v.localName != "" {
		return "?" + v.localName
	}
	return v.BNode.String()
}

// blankOf returns the blank node behind a *BNode or *Variable.
func blankOf(r Resource) (b *BNode, variable bool) {
	switch v := r.(type) {
	case *BNode:
		return v, false
	case *Variable:
		if v == nil {
			return nil, true
		}
		return &v.BNode, true
	}
	return nil, false
}

// IsWildcard reports whether r matches anything in a pattern: nil or a
// variable.
func IsWildcard(r Resource) bool {
	if isNil(r) {
		return true
	}
	return r.Kind() == KindVariable
}

func isNil(r Resource) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *BNode:
		return v == nil
	case *Variable:
		return v == nil
	}
	return false
}

// Equal reports whether a and b denote the same resource.
func Equal(a, b Resource) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	switch x := a.(type) {
	case Entity:
		y, ok := b.(Entity)
		return ok && x.uri == y.uri
	case Literal:
		y, ok := b.(Literal)
		return ok && x == y
	}
	x, xv := blankOf(a)
	y, yv := blankOf(b)
	if x == nil || y == nil || xv != yv {
		return false
	}
	return x.sameAs(y)
}

// Hash returns a hash consistent with Equal.
func Hash(r Resource) uint64 {
	if isNil(r) {
		return 0
	}
	switch v := r.(type) {
	case Entity:
		return xxhash.Sum64String(v.uri)
	case Literal:
		d := xxhash.New()
		_, _ = d.WriteString(v.value)
		_, _ = d.WriteString("\x00" + v.lang)
		_, _ = d.WriteString("\x00" + v.datatype)
		return d.Sum64()
	}
	b, _ := blankOf(r)
	return b.hash()
}

func tier(r Resource) int {
	switch r.Kind() {
	case KindEntity:
		return 0
	case KindLiteral:
		return 2
	default:
		return 1
	}
}

// Compare orders resources: named entities before blank nodes before
// literals. Entities sort by URI; keyed blank nodes before unkeyed ones,
// keyed by key and unkeyed by identity; literals by value, language and
// datatype. nil sorts first. Compare(a, b) == 0 iff Equal(a, b).
func Compare(a, b Resource) int {
	switch {
	case isNil(a) && isNil(b):
		return 0
	case isNil(a):
		return -1
	case isNil(b):
		return 1
	}
	if ta, tb := tier(a), tier(b); ta != tb {
		return cmp.Compare(ta, tb)
	}
	switch x := a.(type) {
	case Entity:
		return strings.Compare(x.uri, b.(Entity).uri)
	case Literal:
		y := b.(Literal)
		if c := strings.Compare(x.value, y.value); c != 0 {
			return c
		}
		if c := strings.Compare(x.lang, y.lang); c != 0 {
			return c
		}
		return strings.Compare(x.datatype, y.datatype)
	}
	return compareBlank(a, b)
}

func compareBlank(a, b Resource) int {
	x, xv := blankOf(a)
	y, yv := blankOf(b)
	switch {
	case x.key != nil && y.key != nil:
		if c := strings.Compare(x.key.Scope, y.key.Scope); c != 0 {
			return c
		}
		if c := strings.Compare(x.key.ID, y.key.ID); c != 0 {
			return c
		}
		return compareBool(xv, yv)
	case x.key != nil:
		return -1
	case y.key != nil:
		return 1
	}
	if x == y {
		return 0
	}
	if c := bytes.Compare(x.id[:], y.id[:]); c != 0 {
		return c
	}
	return compareBool(xv, yv)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Sort sorts resources in Compare order.
func Sort(resources []Resource) {
	slices.SortFunc(resources, Compare)
}

// Statement is a (subject, predicate, object) triple.
type Statement struct {
	Subject   Node
	Predicate Node
	Object    Resource
}

// NewStatement builds a statement.
func NewStatement(subject, predicate Node, object Resource) Statement {
	return Statement{Subject: subject, Predicate: predicate, Object: object}
}

// AnyNull reports whether any component is missing. Writers reject such
// statements.
func (s Statement) AnyNull() bool {
	return isNil(s.Subject) || isNil(s.Predicate) || isNil(s.Object)
}

// Invert swaps subject and object. It fails with ErrLiteralSubject when the
// object is a literal.
func (s Statement) Invert() (Statement, error) {
	object, ok := s.Object.(Node)
	if !ok {
		return Statement{}, ErrLiteralSubject
	}
	return Statement{Subject: object, Predicate: s.Predicate, Object: s.Subject}, nil
}

// Equal reports component-wise equality.
func (s Statement) Equal(o Statement) bool {
	return Equal(s.Subject, o.Subject) && Equal(s.Predicate, o.Predicate) && Equal(s.Object, o.Object)
}

// Compare orders statements by subject, predicate, then object.
func (s Statement) Compare(o Statement) int {
	if c := Compare(s.Subject, o.Subject); c != 0 {
		return c
	}
	if c := Compare(s.Predicate, o.Predicate); c != 0 {
		return c
	}
	return Compare(s.Object, o.Object)
}

// String returns an N-Triples-like rendering for diagnostics.
func (s Statement) String() string {
	return stringOf(s.Subject) + " " + stringOf(s.Predicate) + " " + stringOf(s.Object) + " ."
}

func stringOf(r Resource) string {
	if isNil(r) {
		return "(null)"
	}
	return r.String()
}
