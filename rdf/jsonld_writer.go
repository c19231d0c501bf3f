package rdf

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	ld "github.com/piprate/json-gold/ld"
	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
)

// JSONLDWriter buffers statements and writes them as a JSON-LD document on
// Close. When namespaces are configured the document is compacted against a
// context built from them; otherwise the expanded form is written.
type JSONLDWriter struct {
	out     io.Writer
	ns      *Namespaces
	base    string
	indent  string
	logger  zerolog.Logger
	metrics *metrics.Metrics

	terms   *N3Writer
	nquads  strings.Builder
	written int
	closed  bool
	err     error
}

// NewJSONLDWriter returns a writer emitting to w.
func NewJSONLDWriter(w io.Writer, opts ...Option) *JSONLDWriter {
	options := buildOptions(opts)
	return &JSONLDWriter{
		out:     w,
		ns:      options.Namespaces,
		base:    options.BaseURI,
		indent:  options.Indent,
		logger:  options.Logger,
		metrics: options.Metrics,
		terms:   NewN3Writer(io.Discard, WithFormat(FormatNTriples)),
	}
}

// Write buffers a statement.
func (w *JSONLDWriter) Write(stmt Statement) error {
	err := w.add(stmt)
	w.metrics.RecordWrite(string(FormatJSONLD), err)
	return err
}

func (w *JSONLDWriter) add(stmt Statement) error {
	if w.closed {
		return ErrWriterClosed
	}
	if stmt.AnyNull() {
		return ErrNullComponent
	}
	if _, ok := stmt.Predicate.(Entity); !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedPredicate, stmt.Predicate)
	}
	w.nquads.WriteString(w.term(stmt.Subject))
	w.nquads.WriteByte(' ')
	w.nquads.WriteString(w.term(stmt.Predicate))
	w.nquads.WriteByte(' ')
	w.nquads.WriteString(w.term(stmt.Object))
	w.nquads.WriteString(" .\n")
	w.written++
	return nil
}

// term renders r in N-Quads syntax. Variables become blank nodes.
func (w *JSONLDWriter) term(r Resource) string {
	if v, ok := r.(*Variable); ok {
		return w.terms.blankText(&v.BNode)
	}
	return w.terms.URI(r)
}

// Flush is a no-op until Close.
func (w *JSONLDWriter) Flush() error { return w.err }

// Close converts the buffered statements and writes the document. Closing
// twice is a no-op.
func (w *JSONLDWriter) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true

	doc, err := w.document()
	if err != nil {
		w.err = fmt.Errorf("jsonld: %w", err)
		return w.err
	}
	data, err := json.MarshalIndent(doc, "", w.indent)
	if err != nil {
		w.err = fmt.Errorf("jsonld: %w", err)
		return w.err
	}
	if _, err := w.out.Write(append(data, '\n')); err != nil {
		w.err = err
		return err
	}
	w.logger.Debug().Int("statements", w.written).Bool("compacted", w.compacts()).Msg("jsonld writer closed")
	return nil
}

func (w *JSONLDWriter) compacts() bool {
	return w.ns != nil && w.ns.Len() > 0
}

func (w *JSONLDWriter) document() (any, error) {
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(w.base)
	opts.Format = "application/n-quads"
	expanded, err := proc.FromRDF(w.nquads.String(), opts)
	if err != nil {
		return nil, err
	}
	if !w.compacts() {
		return expanded, nil
	}
	context := map[string]any{}
	for prefix, uri := range w.ns.Map() {
		if prefix != "" {
			context[prefix] = uri
		}
	}
	if w.base != "" {
		context["@base"] = w.base
	}
	compactOpts := ld.NewJsonLdOptions(w.base)
	return proc.Compact(expanded, map[string]any{"@context": context}, compactOpts)
}
