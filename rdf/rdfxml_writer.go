package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
)

// RDFXMLWriter builds an RDF/XML document from statements and writes it on
// Close, after nesting singly referenced nodes and condensing simple
// descriptions into attributes. Namespaces without a registered prefix get
// one derived from the URI. An RDFXMLWriter is not safe for concurrent use.
type RDFXMLWriter struct {
	writer  *bufio.Writer
	ns      *Namespaces
	base    string
	indent  string
	logger  zerolog.Logger
	metrics *metrics.Metrics

	tree    xmlTree
	nodes   map[any]int
	refs    map[int]nodeRef
	nodeIDs map[string]struct{}
	nextID  int
	written int

	closed bool
	err    error
}

// NewRDFXMLWriter returns a writer emitting to w.
func NewRDFXMLWriter(w io.Writer, opts ...Option) *RDFXMLWriter {
	options := buildOptions(opts)
	ns := NewNamespaces()
	if options.Namespaces != nil {
		ns = options.Namespaces.Clone()
	}
	ns.AddNamespace(RDFNamespace, "rdf")
	return &RDFXMLWriter{
		writer:  bufio.NewWriter(w),
		ns:      ns,
		base:    options.BaseURI,
		indent:  options.Indent,
		logger:  options.Logger,
		metrics: options.Metrics,
		tree:    newXMLTree(),
		nodes:   map[any]int{},
		refs:    map[int]nodeRef{},
		nodeIDs: map[string]struct{}{},
	}
}

// Namespaces returns the prefixes declared on the document root, including
// synthesized ones.
func (w *RDFXMLWriter) Namespaces() *Namespaces { return w.ns.Clone() }

// Write adds a statement to the document.
func (w *RDFXMLWriter) Write(stmt Statement) error {
	err := w.add(stmt)
	w.metrics.RecordWrite(string(FormatRDFXML), err)
	return err
}

func (w *RDFXMLWriter) add(stmt Statement) error {
	if w.closed {
		return ErrWriterClosed
	}
	if stmt.AnyNull() {
		return ErrNullComponent
	}
	predicate, ok := stmt.Predicate.(Entity)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedPredicate, stmt.Predicate)
	}

	if class, ok := stmt.Object.(Entity); ok && predicate.uri == RDFType {
		subject, exists := w.nodes[nodeIdentity(stmt.Subject)]
		if !exists || w.tree.elems[subject].name == descrQName {
			name, err := w.qname(class.uri)
			if err != nil {
				return err
			}
			if !exists {
				subject = w.newNode(rootElem, stmt.Subject)
			}
			w.tree.elems[subject].name = name
			w.written++
			return nil
		}
	}

	name, err := w.qname(predicate.uri)
	if err != nil {
		return err
	}
	subject := w.node(stmt.Subject)
	prop := w.tree.add(subject, elemProp, name)

	switch object := stmt.Object.(type) {
	case Literal:
		w.setLiteral(prop, object)
	case Node:
		w.setObject(prop, object)
	}
	w.written++
	return nil
}

func (w *RDFXMLWriter) setLiteral(prop int, lit Literal) {
	w.tree.elems[prop].text = lit.value
	w.tree.elems[prop].literal = true
	if lit.datatype == RDFXMLLiteral {
		w.tree.elems[prop].markup = true
		w.tree.setAttr(prop, attrParseType, "Literal")
		return
	}
	if lit.lang != "" {
		w.tree.setAttr(prop, attrLang, lit.lang)
	}
	if lit.datatype != "" {
		w.tree.setAttr(prop, attrDatatype, lit.datatype)
	}
}

func (w *RDFXMLWriter) setObject(prop int, object Node) {
	idx, exists := w.nodes[nodeIdentity(object)]
	if !exists {
		w.newNode(prop, object)
		return
	}
	if entity, ok := object.(Entity); ok {
		w.tree.setAttr(prop, attrResource, w.relative(entity.uri))
	} else {
		w.tree.setAttr(prop, attrNodeID, w.nodeID(idx, object))
	}
	ref := w.refs[idx]
	ref.count++
	ref.prop = prop
	w.refs[idx] = ref
}

// node returns the element describing n, creating a top-level
// rdf:Description on first use.
func (w *RDFXMLWriter) node(n Node) int {
	if idx, ok := w.nodes[nodeIdentity(n)]; ok {
		return idx
	}
	return w.newNode(rootElem, n)
}

func (w *RDFXMLWriter) newNode(parent int, n Node) int {
	idx := w.tree.add(parent, elemNode, descrQName)
	if entity, ok := n.(Entity); ok {
		w.tree.setAttr(idx, attrAbout, w.relative(entity.uri))
	}
	w.nodes[nodeIdentity(n)] = idx
	return idx
}

// nodeID returns the rdf:nodeID of a blank node element, assigning one on
// first reference.
func (w *RDFXMLWriter) nodeID(idx int, n Node) string {
	if id, ok := w.tree.attr(idx, attrNodeID); ok {
		return id
	}
	var id string
	if b, _ := blankOf(n); b != nil && isQNameLocal(b.localName) {
		if _, taken := w.nodeIDs[b.localName]; !taken {
			id = b.localName
		}
	}
	for id == "" {
		candidate := "n" + strconv.Itoa(w.nextID)
		w.nextID++
		if _, taken := w.nodeIDs[candidate]; !taken {
			id = candidate
		}
	}
	w.nodeIDs[id] = struct{}{}
	w.tree.setAttr(idx, attrNodeID, id)
	return id
}

func nodeIdentity(n Resource) any {
	if b, _ := blankOf(n); b != nil {
		return blankIdentity(b)
	}
	return n
}

// relative shortens base#fragment to #fragment when a base URI is set.
func (w *RDFXMLWriter) relative(uri string) string {
	if w.base == "" {
		return uri
	}
	if rest, ok := strings.CutPrefix(uri, w.base); ok && strings.HasPrefix(rest, "#") {
		return rest
	}
	return uri
}

// qname returns the element name for uri, registering a derived prefix
// when no namespace applies.
func (w *RDFXMLWriter) qname(uri string) (string, error) {
	if uri == "" {
		return "", ErrEmptyElementURI
	}
	if prefix, local, ok := w.ns.Split(uri); ok && prefix != "" {
		return prefix + ":" + local, nil
	}
	end := strings.LastIndexAny(uri, "#/")
	if end < 0 || !isQNameLocal(uri[end+1:]) {
		return "", fmt.Errorf("%w: %q", ErrNoPrefix, uri)
	}
	namespace, local := uri[:end+1], uri[end+1:]
	start := strings.LastIndexAny(uri[:end], "#/") + 1

	candidate := lettersOnly(uri[start:end])
	if candidate == "" || strings.HasPrefix(strings.ToLower(candidate), "xml") {
		candidate = "ns"
	}
	prefix := candidate
	for n := 1; ; n++ {
		if _, taken := w.ns.Namespace(prefix); !taken {
			break
		}
		prefix = candidate + strconv.Itoa(n)
	}
	w.ns.AddNamespace(namespace, prefix)
	w.logger.Debug().Str("prefix", prefix).Str("namespace", namespace).Msg("rdfxml prefix synthesized")
	return prefix + ":" + local, nil
}

func lettersOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if isASCIILetter(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Flush is a no-op until Close: the document is written as a whole.
func (w *RDFXMLWriter) Flush() error {
	return w.err
}

// Close compacts the document and writes it. Closing twice is a no-op.
func (w *RDFXMLWriter) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true

	tree, inlined := inlineNodes(w.tree, w.refs)
	tree, condensed := condense(tree)
	w.metrics.RecordCompaction(metrics.PassInline, inlined)
	w.metrics.RecordCompaction(metrics.PassCondense, condensed)

	w.emit(tree)
	if w.err == nil {
		if err := w.writer.Flush(); err != nil {
			w.err = err
		}
	}
	w.logger.Debug().
		Int("statements", w.written).
		Int("inlined", inlined).
		Int("condensed", condensed).
		Msg("rdfxml writer closed")
	return w.err
}

func (w *RDFXMLWriter) emit(t xmlTree) {
	w.writeString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	w.writeString(`<rdf:RDF xmlns:rdf="` + escapeXMLAttr(RDFNamespace) + `"`)
	for _, prefix := range w.ns.Prefixes() {
		if prefix == "rdf" || prefix == "" {
			continue
		}
		uri, _ := w.ns.Namespace(prefix)
		w.writeString(` xmlns:` + prefix + `="` + escapeXMLAttr(uri) + `"`)
	}
	if w.base != "" {
		w.writeString(` xml:base="` + escapeXMLAttr(w.base) + `"`)
	}
	w.writeString(">\n")
	for _, child := range t.elems[rootElem].children {
		w.emitElem(t, child, 1)
	}
	w.writeString("</rdf:RDF>\n")
}

func (w *RDFXMLWriter) emitElem(t xmlTree, idx, depth int) {
	e := t.elems[idx]
	pad := strings.Repeat(w.indent, depth)
	w.writeString(pad + "<" + e.name)
	for _, a := range e.attrs {
		w.writeString(" " + a.name + `="` + escapeXMLAttr(a.value) + `"`)
	}
	switch {
	case len(e.children) > 0:
		w.writeString(">\n")
		for _, child := range e.children {
			w.emitElem(t, child, depth+1)
		}
		w.writeString(pad + "</" + e.name + ">\n")
	case e.markup:
		w.writeString(">" + e.text + "</" + e.name + ">\n")
	case e.literal:
		w.writeString(">" + escapeXML(e.text) + "</" + e.name + ">\n")
	default:
		w.writeString("/>\n")
	}
}

func (w *RDFXMLWriter) writeString(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.writer.WriteString(s); err != nil {
		w.err = err
	}
}

var (
	xmlTextEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", "\r", "&#13;")
	xmlAttrEscaper = strings.NewReplacer(
		`&`, "&amp;",
		`<`, "&lt;",
		`>`, "&gt;",
		`"`, "&quot;",
		"\t", "&#9;",
		"\n", "&#10;",
		"\r", "&#13;",
	)
)

func escapeXML(value string) string {
	return xmlTextEscaper.Replace(value)
}

func escapeXMLAttr(value string) string {
	return xmlAttrEscaper.Replace(value)
}
