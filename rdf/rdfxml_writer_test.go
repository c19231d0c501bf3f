package rdf

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/geoknoesis/rdfkit/metrics"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
	`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:ex="http://example.org/">` + "\n"

func writeRDFXML(t *testing.T, stmts []Statement, opts ...Option) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewRDFXMLWriter(&buf, append([]Option{WithNamespaces(exNamespaces())}, opts...)...)
	for _, stmt := range stmts {
		if err := w.Write(stmt); err != nil {
			t.Fatalf("write %v: %v", stmt, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.String()
}

func TestRDFXMLLiteralProperties(t *testing.T) {
	stmts := []Statement{
		NewStatement(exEntity("a"), exEntity("name"), PlainLiteral("a<b&c")),
		NewStatement(exEntity("a"), exEntity("label"), mustLiteral(t, "chat", WithLanguage("fr"))),
		NewStatement(exEntity("a"), exEntity("age"), mustLiteral(t, "42", WithDatatype(XSDInteger))),
		NewStatement(exEntity("a"), exEntity("note"), mustLiteral(t, "<b>bold</b>", WithDatatype(RDFXMLLiteral))),
	}
	got := writeRDFXML(t, stmts)
	want := xmlHeader +
		`  <rdf:Description rdf:about="http://example.org/a">` + "\n" +
		`    <ex:name>a&lt;b&amp;c</ex:name>` + "\n" +
		`    <ex:label xml:lang="fr">chat</ex:label>` + "\n" +
		`    <ex:age rdf:datatype="http://www.w3.org/2001/XMLSchema#integer">42</ex:age>` + "\n" +
		`    <ex:note rdf:parseType="Literal"><b>bold</b></ex:note>` + "\n" +
		`  </rdf:Description>` + "\n" +
		`</rdf:RDF>` + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRDFXMLTypedNode(t *testing.T) {
	stmts := []Statement{
		NewStatement(exEntity("a"), NewEntity(RDFType), exEntity("Person")),
		NewStatement(exEntity("a"), exEntity("name"), PlainLiteral("Alice")),
		NewStatement(exEntity("a"), NewEntity(RDFType), exEntity("Agent")),
	}
	got := writeRDFXML(t, stmts)
	want := xmlHeader +
		`  <ex:Person rdf:about="http://example.org/a">` + "\n" +
		`    <ex:name>Alice</ex:name>` + "\n" +
		`    <rdf:type rdf:resource="http://example.org/Agent"/>` + "\n" +
		`  </ex:Person>` + "\n" +
		`</rdf:RDF>` + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRDFXMLCondensesSimpleDescriptions(t *testing.T) {
	stmts := []Statement{
		NewStatement(exEntity("a"), exEntity("knows"), exEntity("b")),
		NewStatement(exEntity("b"), exEntity("name"), PlainLiteral("Bob")),
		NewStatement(exEntity("a"), exEntity("seeAlso"), exEntity("c")),
	}
	got := writeRDFXML(t, stmts)
	want := xmlHeader +
		`  <rdf:Description rdf:about="http://example.org/a">` + "\n" +
		`    <ex:knows rdf:resource="http://example.org/b" ex:name="Bob"/>` + "\n" +
		`    <ex:seeAlso rdf:resource="http://example.org/c"/>` + "\n" +
		`  </rdf:Description>` + "\n" +
		`</rdf:RDF>` + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRDFXMLParseTypeResource(t *testing.T) {
	addr := NewBNode()
	stmts := []Statement{
		NewStatement(exEntity("a"), exEntity("address"), addr),
		NewStatement(addr, exEntity("city"), PlainLiteral("Paris")),
		NewStatement(addr, exEntity("country"), exEntity("fr")),
	}
	got := writeRDFXML(t, stmts)
	want := xmlHeader +
		`  <rdf:Description rdf:about="http://example.org/a">` + "\n" +
		`    <ex:address rdf:parseType="Resource">` + "\n" +
		`      <ex:city>Paris</ex:city>` + "\n" +
		`      <ex:country rdf:resource="http://example.org/fr"/>` + "\n" +
		`    </ex:address>` + "\n" +
		`  </rdf:Description>` + "\n" +
		`</rdf:RDF>` + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRDFXMLInlinesSinglyReferencedNodes(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	addr := NewBNode()
	stmts := []Statement{
		NewStatement(addr, exEntity("city"), PlainLiteral("Paris")),
		NewStatement(exEntity("a"), exEntity("address"), addr),
	}
	got := writeRDFXML(t, stmts, WithMetrics(m))
	want := xmlHeader +
		`  <rdf:Description rdf:about="http://example.org/a">` + "\n" +
		`    <ex:address ex:city="Paris"/>` + "\n" +
		`  </rdf:Description>` + "\n" +
		`</rdf:RDF>` + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
	if n := testutil.ToFloat64(m.Compactions.WithLabelValues(metrics.PassInline)); n != 1 {
		t.Fatalf("inline compactions = %v, want 1", n)
	}
	if n := testutil.ToFloat64(m.Compactions.WithLabelValues(metrics.PassCondense)); n != 1 {
		t.Fatalf("condense compactions = %v, want 1", n)
	}
}

func TestRDFXMLSharedBlankNodeKeepsNodeID(t *testing.T) {
	shared := NewBNode()
	stmts := []Statement{
		NewStatement(exEntity("a"), exEntity("p"), shared),
		NewStatement(exEntity("c"), exEntity("p"), shared),
		NewStatement(shared, exEntity("name"), PlainLiteral("x")),
	}
	got := writeRDFXML(t, stmts)
	want := xmlHeader +
		`  <rdf:Description rdf:about="http://example.org/a">` + "\n" +
		`    <ex:p>` + "\n" +
		`      <rdf:Description rdf:nodeID="n0">` + "\n" +
		`        <ex:name>x</ex:name>` + "\n" +
		`      </rdf:Description>` + "\n" +
		`    </ex:p>` + "\n" +
		`  </rdf:Description>` + "\n" +
		`  <rdf:Description rdf:about="http://example.org/c">` + "\n" +
		`    <ex:p rdf:nodeID="n0"/>` + "\n" +
		`  </rdf:Description>` + "\n" +
		`</rdf:RDF>` + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRDFXMLSelfReferenceIsNotInlined(t *testing.T) {
	b := NewNamedBNode("loop")
	stmts := []Statement{
		NewStatement(b, exEntity("next"), b),
	}
	got := writeRDFXML(t, stmts)
	want := xmlHeader +
		`  <rdf:Description rdf:nodeID="loop">` + "\n" +
		`    <ex:next rdf:nodeID="loop"/>` + "\n" +
		`  </rdf:Description>` + "\n" +
		`</rdf:RDF>` + "\n"
	if got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRDFXMLBaseURI(t *testing.T) {
	base := "http://example.org/doc"
	stmts := []Statement{
		NewStatement(NewEntity(base+"#a"), exEntity("p"), NewEntity(base+"#b")),
		NewStatement(NewEntity(base+"#c"), exEntity("p"), NewEntity(base+"#a")),
	}
	got := writeRDFXML(t, stmts, WithBaseURI(base))
	if !strings.Contains(got, ` xml:base="http://example.org/doc">`) {
		t.Fatalf("missing xml:base:\n%s", got)
	}
	if !strings.Contains(got, `<rdf:Description rdf:about="#a">`) {
		t.Fatalf("subject not made relative:\n%s", got)
	}
	if !strings.Contains(got, `<ex:p rdf:resource="#b"/>`) {
		t.Fatalf("reference not made relative:\n%s", got)
	}
	// #a is referenced once, so its description moves under #c.
	if strings.Index(got, `rdf:about="#c"`) > strings.Index(got, `rdf:about="#a"`) {
		t.Fatalf("#a was not nested under #c:\n%s", got)
	}
}

func TestRDFXMLPrefixSynthesis(t *testing.T) {
	var buf bytes.Buffer
	w := NewRDFXMLWriter(&buf)
	stmts := []Statement{
		NewStatement(exEntity("a"), NewEntity("http://other.org/vocab/name"), PlainLiteral("x")),
		NewStatement(exEntity("a"), NewEntity("http://third.org/vocab#title"), PlainLiteral("y")),
		NewStatement(exEntity("a"), NewEntity("http://x.org/123/p"), PlainLiteral("z")),
		NewStatement(exEntity("a"), NewEntity("http://x.org/xmlish/q"), PlainLiteral("w")),
	}
	for _, stmt := range stmts {
		if err := w.Write(stmt); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	ns := w.Namespaces()
	for prefix, uri := range map[string]string{
		"vocab":  "http://other.org/vocab/",
		"vocab1": "http://third.org/vocab#",
		"ns":     "http://x.org/123/",
		"ns1":    "http://x.org/xmlish/",
	} {
		if got, ok := ns.Namespace(prefix); !ok || got != uri {
			t.Errorf("prefix %s = %q, want %q", prefix, got, uri)
		}
	}
	for _, fragment := range []string{
		`xmlns:vocab="http://other.org/vocab/"`,
		`<vocab:name>x</vocab:name>`,
		`<vocab1:title>y</vocab1:title>`,
		`<ns:p>z</ns:p>`,
		`<ns1:q>w</ns1:q>`,
	} {
		if !strings.Contains(buf.String(), fragment) {
			t.Errorf("output lacks %s:\n%s", fragment, buf.String())
		}
	}
}

func TestRDFXMLErrors(t *testing.T) {
	w := NewRDFXMLWriter(&bytes.Buffer{})
	s := exEntity("s")

	if err := w.Write(NewStatement(s, NewEntity(""), PlainLiteral("x"))); !errors.Is(err, ErrEmptyElementURI) {
		t.Errorf("expected ErrEmptyElementURI, got %v", err)
	}
	if err := w.Write(NewStatement(s, NewEntity("http://example.org/123"), PlainLiteral("x"))); !errors.Is(err, ErrNoPrefix) {
		t.Errorf("expected ErrNoPrefix, got %v", err)
	}
	if err := w.Write(NewStatement(s, NewEntity("urn:isbn"), PlainLiteral("x"))); !errors.Is(err, ErrNoPrefix) {
		t.Errorf("expected ErrNoPrefix, got %v", err)
	}
	if err := w.Write(NewStatement(s, NewBNode(), PlainLiteral("x"))); !errors.Is(err, ErrUnsupportedPredicate) {
		t.Errorf("expected ErrUnsupportedPredicate, got %v", err)
	}
	if err := w.Write(Statement{Subject: s}); !errors.Is(err, ErrNullComponent) {
		t.Errorf("expected ErrNullComponent, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Write(NewStatement(s, exEntity("p"), PlainLiteral("x"))); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("expected ErrWriterClosed, got %v", err)
	}
}

func TestRDFXMLCompactionIsPure(t *testing.T) {
	tree := newXMLTree()
	a := tree.add(rootElem, elemNode, descrQName)
	tree.setAttr(a, attrAbout, "http://example.org/a")
	prop := tree.add(a, elemProp, "ex:p")
	b := tree.add(rootElem, elemNode, descrQName)
	tree.setAttr(prop, attrNodeID, "n0")
	tree.setAttr(b, attrNodeID, "n0")
	refs := map[int]nodeRef{b: {count: 1, prop: prop}}

	inlined, moved := inlineNodes(tree, refs)
	if moved != 1 {
		t.Fatalf("moved = %d, want 1", moved)
	}
	if len(tree.elems[rootElem].children) != 2 {
		t.Fatal("inlineNodes modified its input")
	}
	if inlined.elems[b].parent != prop {
		t.Fatal("node was not moved under its referencing property")
	}

	condensed, removed := condense(inlined)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(inlined.elems[prop].children) != 1 {
		t.Fatal("condense modified its input")
	}
	if v, _ := condensed.attr(prop, attrParseType); v != "Resource" {
		t.Fatalf("expected parseType Resource, got %q", v)
	}
}

func TestRDFXMLCarriageReturnsRoundTrip(t *testing.T) {
	stmts := []Statement{
		NewStatement(exEntity("a"), exEntity("note"), PlainLiteral("one\r\ntwo\rthree")),
		NewStatement(exEntity("a"), exEntity("knows"), exEntity("b")),
		NewStatement(exEntity("b"), exEntity("name"), PlainLiteral("x\ry")),
	}
	got := writeRDFXML(t, stmts)

	var note, name string
	dec := xml.NewDecoder(strings.NewReader(got))
	inNote := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("output is not well-formed: %v\n%s", err, got)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			inNote = el.Name.Local == "note"
			for _, attr := range el.Attr {
				if attr.Name.Local == "name" {
					name = attr.Value
				}
			}
		case xml.CharData:
			if inNote {
				note += string(el)
			}
		case xml.EndElement:
			inNote = false
		}
	}
	if note != "one\r\ntwo\rthree" {
		t.Fatalf("element text read back as %q", note)
	}
	if name != "x\ry" {
		t.Fatalf("attribute read back as %q\n%s", name, got)
	}
}
