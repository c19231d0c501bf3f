package rdf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
)

const generatedBNodePrefix = "bnode"

// N3Writer streams statements as N-Triples, Turtle or Notation3. Outside
// N-Triples mode consecutive statements sharing a subject are abbreviated
// with ";" and ",", and Notation3 additionally uses the "is P of S" form.
// An N3Writer is not safe for concurrent use.
type N3Writer struct {
	writer  *bufio.Writer
	format  Format
	ns      *Namespaces
	base    string
	logger  zerolog.Logger
	metrics *metrics.Metrics

	lastSubject   string
	lastPredicate string
	hasWritten    bool
	closed        bool
	err           error
	written       int

	// display names allocated per blank node identity, and local names
	// already claimed by a blank node identity
	allocated map[any]string
	claimed   map[string]any
}

// NewN3Writer returns a writer in the format chosen with WithFormat,
// Turtle by default.
func NewN3Writer(w io.Writer, opts ...Option) *N3Writer {
	options := buildOptions(opts)
	format := options.Format
	switch format {
	case FormatNTriples, FormatTurtle, FormatNotation3:
	default:
		format = FormatTurtle
	}
	return &N3Writer{
		writer:    bufio.NewWriter(w),
		format:    format,
		ns:        options.Namespaces,
		base:      options.BaseURI,
		logger:    options.Logger,
		metrics:   options.Metrics,
		allocated: map[any]string{},
		claimed:   map[string]any{},
	}
}

// Format returns the dialect being written.
func (w *N3Writer) Format() Format { return w.format }

// Write resolves the statement's components to text and writes them. A
// statement with a missing component fails with ErrNullComponent and
// writes nothing.
func (w *N3Writer) Write(stmt Statement) error {
	if stmt.AnyNull() {
		w.metrics.RecordWrite(string(w.format), ErrNullComponent)
		return ErrNullComponent
	}
	return w.WriteStatement(w.URI(stmt.Subject), w.URI(stmt.Predicate), w.URI(stmt.Object))
}

// WriteStatement writes one statement from already resolved text forms.
func (w *N3Writer) WriteStatement(subject, predicate, object string) error {
	err := w.writeStatement(subject, predicate, object)
	w.metrics.RecordWrite(string(w.format), err)
	return err
}

func (w *N3Writer) writeStatement(subject, predicate, object string) error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return ErrWriterClosed
	}
	if !w.hasWritten && w.format != FormatNTriples {
		if err := w.writeHeader(); err != nil {
			return err
		}
	}

	abbreviate := w.format != FormatNTriples
	switch {
	case abbreviate && w.hasWritten && subject == w.lastSubject && predicate == w.lastPredicate:
		w.writeString(",\n\t\t" + object)
	case abbreviate && w.hasWritten && subject == w.lastSubject:
		w.writeString(";\n\t" + predicate + " " + object)
		w.lastPredicate = predicate
	case w.format == FormatNotation3 && w.hasWritten && object == w.lastSubject:
		w.writeString(";\n\tis " + predicate + " of " + subject)
		w.lastPredicate = ""
	default:
		if w.hasWritten {
			w.writeString(".\n")
		}
		w.writeString(subject + " " + predicate + " " + object)
		w.lastSubject = subject
		w.lastPredicate = predicate
	}
	w.hasWritten = true
	w.written++
	return w.err
}

func (w *N3Writer) writeHeader() error {
	if w.ns != nil {
		for _, prefix := range w.ns.Prefixes() {
			uri, _ := w.ns.Namespace(prefix)
			w.writeString("@prefix " + prefix + ": <" + EscapeNTriples(uri) + "> .\n")
		}
	}
	if w.base != "" && !w.hasEmptyPrefix() {
		w.writeString("@prefix : <" + EscapeNTriples(w.base) + "> .\n")
	}
	return w.err
}

func (w *N3Writer) hasEmptyPrefix() bool {
	if w.ns == nil {
		return false
	}
	_, ok := w.ns.Namespace("")
	return ok
}

func (w *N3Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.writer.WriteString(s); err != nil {
		w.err = err
	}
}

// URI returns the text form of r in the writer's dialect: "?name" for
// named variables, "_:label" for blank nodes, ":suffix" for entities under
// the base URI, prefix:local when a namespace applies and "<uri>"
// otherwise. Literals use their canonical form.
func (w *N3Writer) URI(r Resource) string {
	if isNil(r) {
		return ""
	}
	switch v := r.(type) {
	case Literal:
		return v.String()
	case Entity:
		return w.entityText(v.uri)
	case *Variable:
		if v.localName != "" {
			return "?" + v.localName
		}
		return w.blankText(&v.BNode)
	case *BNode:
		return w.blankText(v)
	}
	return r.String()
}

func (w *N3Writer) entityText(uri string) string {
	if w.format != FormatNTriples {
		base := w.base
		if base == "" {
			base = "#"
		}
		if suffix, ok := strings.CutPrefix(uri, base); ok && isAlphanumeric(suffix) {
			return ":" + suffix
		}
	}
	if w.format == FormatNTriples || w.ns == nil {
		return "<" + EscapeNTriples(uri) + ">"
	}
	text := w.ns.Normalize(uri)
	if strings.HasPrefix(text, "<") {
		return "<" + EscapeNTriples(uri) + ">"
	}
	return text
}

func (w *N3Writer) blankText(b *BNode) string {
	id := blankIdentity(b)
	if name := b.localName; name != "" && !isGeneratedName(name) && isBlankLabel(name) {
		if owner, ok := w.claimed[name]; !ok || owner == id {
			w.claimed[name] = id
			return "_:" + name
		}
	}
	if name, ok := w.allocated[id]; ok {
		return name
	}
	name := "_:" + generatedBNodePrefix + strconv.Itoa(len(w.allocated))
	w.allocated[id] = name
	return name
}

// blankIdentity returns a comparable value shared by all blank nodes that
// are Equal to b.
func blankIdentity(b *BNode) any {
	if b.key != nil {
		return *b.key
	}
	return b
}

func isGeneratedName(name string) bool {
	digits, ok := strings.CutPrefix(name, generatedBNodePrefix)
	if !ok || digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

func isBlankLabel(name string) bool {
	if name[len(name)-1] == '.' {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if !isASCIILetterOrDigit(ch) && ch != '_' && ch != '-' && (ch != '.' || i == 0) {
			return false
		}
	}
	return true
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isASCIILetterOrDigit(s[i]) {
			return false
		}
	}
	return true
}

// Flush writes buffered output to the underlying writer.
func (w *N3Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.writer.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Close terminates the last statement and flushes. Closing twice is a
// no-op.
func (w *N3Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if w.hasWritten {
		w.writeString(".\n")
	}
	if w.err == nil {
		if err := w.writer.Flush(); err != nil {
			w.err = err
		}
	}
	w.logger.Debug().
		Str("format", string(w.format)).
		Int("statements", w.written).
		Int("bnodes", len(w.allocated)+len(w.claimed)).
		Msg("n3 writer closed")
	return w.err
}
