package rdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestJSONLDExpanded(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLDWriter(&buf)
	if err := w.Write(NewStatement(exEntity("a"), exEntity("name"), PlainLiteral("Alice"))); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var doc []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if len(doc) != 1 {
		t.Fatalf("expected one node, got %d", len(doc))
	}
	if doc[0]["@id"] != "http://example.org/a" {
		t.Fatalf("unexpected @id %v", doc[0]["@id"])
	}
	values, ok := doc[0]["http://example.org/name"].([]any)
	if !ok || len(values) != 1 {
		t.Fatalf("unexpected property %v", doc[0]["http://example.org/name"])
	}
	if v := values[0].(map[string]any)["@value"]; v != "Alice" {
		t.Fatalf("unexpected value %v", v)
	}
}

func TestJSONLDCompacted(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLDWriter(&buf, WithNamespaces(exNamespaces()))
	stmts := []Statement{
		NewStatement(exEntity("a"), exEntity("name"), PlainLiteral("Alice")),
		NewStatement(exEntity("a"), exEntity("knows"), exEntity("b")),
	}
	if err := WriteAll(w, stmts); err != nil {
		t.Fatalf("write: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	ctx, ok := doc["@context"].(map[string]any)
	if !ok || ctx["ex"] != ex {
		t.Fatalf("unexpected context %v", doc["@context"])
	}
	if doc["@id"] != "ex:a" {
		t.Fatalf("unexpected @id %v", doc["@id"])
	}
	if doc["ex:name"] != "Alice" {
		t.Fatalf("unexpected ex:name %v", doc["ex:name"])
	}
}

func TestJSONLDRejections(t *testing.T) {
	w := NewJSONLDWriter(&bytes.Buffer{})
	if err := w.Write(NewStatement(exEntity("a"), NewVariable("p"), PlainLiteral("x"))); !errors.Is(err, ErrUnsupportedPredicate) {
		t.Fatalf("expected ErrUnsupportedPredicate, got %v", err)
	}
	if err := w.Write(Statement{}); !errors.Is(err, ErrNullComponent) {
		t.Fatalf("expected ErrNullComponent, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Write(NewStatement(exEntity("a"), exEntity("p"), PlainLiteral("x"))); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
}

func TestJSONLDVariablesBecomeBlankNodes(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLDWriter(&buf)
	stmts := []Statement{
		NewStatement(NewVariable("x"), exEntity("p"), PlainLiteral("v")),
		NewStatement(exEntity("a"), exEntity("q"), NewVariable("y")),
	}
	if err := WriteAll(w, stmts); err != nil {
		t.Fatalf("write: %v", err)
	}

	var doc []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	blanks := 0
	for _, node := range doc {
		if id, _ := node["@id"].(string); strings.HasPrefix(id, "_:") {
			blanks++
		}
	}
	if blanks == 0 {
		t.Fatalf("expected the variable subject as a blank node, got %s", buf.String())
	}
	if strings.Contains(buf.String(), "?x") || strings.Contains(buf.String(), "?y") {
		t.Fatalf("variable syntax leaked into %s", buf.String())
	}
}
