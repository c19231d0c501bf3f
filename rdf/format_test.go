package rdf

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"nt":        FormatNTriples,
		"N-Triples": FormatNTriples,
		" ttl ":     FormatTurtle,
		"notation3": FormatNotation3,
		"rdf/xml":   FormatRDFXML,
		"json-ld":   FormatJSONLD,
	}
	for input, want := range tests {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseFormat("trig"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatFromPathAndContentType(t *testing.T) {
	if f, err := FormatFromPath("data/file.TTL"); err != nil || f != FormatTurtle {
		t.Fatalf("FormatFromPath = %q, %v", f, err)
	}
	if _, err := FormatFromPath("file.csv"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if f, err := FormatFromContentType("application/rdf+xml; charset=utf-8"); err != nil || f != FormatRDFXML {
		t.Fatalf("FormatFromContentType = %q, %v", f, err)
	}
	for _, f := range Formats {
		back, err := FormatFromContentType(f.ContentType())
		if err != nil || back != f {
			t.Errorf("content type of %q does not map back: %q, %v", f, back, err)
		}
	}
	if Format("bogus").ContentType() != "" {
		t.Fatal("unknown formats have no content type")
	}
}

func TestNewWriterFactory(t *testing.T) {
	stmt := NewStatement(exEntity("s"), exEntity("p"), PlainLiteral("v"))
	for _, format := range Formats {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, format)
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		if err := w.Write(stmt); err != nil {
			t.Fatalf("format %s: write error %v", format, err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("format %s: flush error %v", format, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("format %s: close error %v", format, err)
		}
		if !strings.Contains(buf.String(), "v") {
			t.Fatalf("format %s: value missing from %q", format, buf.String())
		}
	}
	if n3, _ := NewWriter(&bytes.Buffer{}, FormatNotation3); n3.(*N3Writer).Format() != FormatNotation3 {
		t.Fatal("factory should pass the dialect to the N3 writer")
	}
	if _, err := NewWriter(&bytes.Buffer{}, Format("bogus")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := NewReader(strings.NewReader(""), FormatTurtle); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseStopsOnHandlerError(t *testing.T) {
	input := strings.Repeat("<http://example.org/s> <http://example.org/p> \"o\" .\n", 3)
	stop := errors.New("stop")
	calls := 0
	err := Parse(strings.NewReader(input), FormatNTriples, func(Statement) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("err = %v after %d calls", err, calls)
	}
}

func TestNamespaces(t *testing.T) {
	ns := NewNamespacesFromMap(map[string]string{
		"ex":  ex,
		"exv": ex + "vocab/",
	})
	if got := ns.Normalize(ex + "vocab/term"); got != "exv:term" {
		t.Fatalf("longest namespace should win, got %q", got)
	}
	if got := ns.Normalize(ex + "a b"); got != "<http://example.org/a b>" {
		t.Fatalf("invalid local names are not abbreviated, got %q", got)
	}
	uri, err := ns.Resolve("ex:thing")
	if err != nil || uri != ex+"thing" {
		t.Fatalf("Resolve = %q, %v", uri, err)
	}
	if _, err := ns.Resolve("nope:thing"); !errors.Is(err, ErrUnknownPrefix) {
		t.Fatalf("expected ErrUnknownPrefix, got %v", err)
	}

	clone := ns.Clone()
	clone.AddNamespace("http://other.org/", "ex")
	if got, _ := ns.Namespace("ex"); got != ex {
		t.Fatal("clone shares state with the original")
	}
	if _, ok := clone.Prefix(ex); ok {
		t.Fatal("rebinding a prefix should drop the old URI")
	}
	if got := clone.Prefixes(); len(got) != 2 || got[0] != "ex" || got[1] != "exv" {
		t.Fatalf("unexpected prefixes %v", got)
	}
}
