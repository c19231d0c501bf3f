package rdf

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/geoknoesis/rdfkit/metrics"
)

// Reader streams statements from an input.
type Reader interface {
	Next() (Statement, error)
	Close() error
}

// Writer streams statements to an output.
type Writer interface {
	Write(Statement) error
	Flush() error
	Close() error
}

// Handler processes statements in push mode.
type Handler func(Statement) error

// Option configures reader and writer behavior.
type Option func(*Options)

// Options configures readers and writers.
type Options struct {
	// Context for cancellation of reading
	Context context.Context

	// Format selects the N3 writer dialect (N-Triples, Turtle or Notation3).
	Format Format

	// Namespaces used for prefix:local abbreviation. Writers never mutate
	// the caller's manager.
	Namespaces *Namespaces

	// BaseURI enables ":local" abbreviation in Turtle and Notation3 and
	// xml:base in RDF/XML.
	BaseURI string

	// Indent is the per-level indentation of RDF/XML output.
	Indent string

	// MaxLineBytes limits the size of a single N-Triples input line.
	MaxLineBytes int

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// DefaultMaxLineBytes is the default input line limit for readers.
const DefaultMaxLineBytes = 1 << 20

func defaultOptions() Options {
	return Options{
		Context:      context.Background(),
		Format:       FormatTurtle,
		Indent:       "  ",
		MaxLineBytes: DefaultMaxLineBytes,
		Logger:       zerolog.Nop(),
	}
}

func buildOptions(opts []Option) Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithContext sets the context checked between statements by readers and
// Parse.
func WithContext(ctx context.Context) Option {
	return func(opts *Options) {
		if ctx != nil {
			opts.Context = ctx
		}
	}
}

// WithFormat selects the N3 writer dialect.
func WithFormat(format Format) Option {
	return func(opts *Options) {
		opts.Format = format
	}
}

// WithNamespaces sets the namespace manager.
func WithNamespaces(ns *Namespaces) Option {
	return func(opts *Options) {
		opts.Namespaces = ns
	}
}

// WithBaseURI sets the base URI.
func WithBaseURI(uri string) Option {
	return func(opts *Options) {
		opts.BaseURI = uri
	}
}

// WithIndent sets the RDF/XML indentation unit. An empty string writes
// every element on its own line without indentation.
func WithIndent(indent string) Option {
	return func(opts *Options) {
		opts.Indent = indent
	}
}

// WithMaxLineBytes limits the size of input lines.
func WithMaxLineBytes(maxBytes int) Option {
	return func(opts *Options) {
		opts.MaxLineBytes = maxBytes
	}
}

// WithLogger sets the logger for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics sets the metrics sink. nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// NewReader creates a reader for the specified format. Only N-Triples is
// readable.
func NewReader(r io.Reader, format Format, opts ...Option) (Reader, error) {
	if format != FormatNTriples {
		return nil, ErrUnsupportedFormat
	}
	return NewNTriplesReader(r, opts...), nil
}

// Parse reads statements from r and streams them to handler. The context
// set with WithContext is checked between statements.
func Parse(r io.Reader, format Format, handler Handler, opts ...Option) error {
	options := buildOptions(opts)
	reader, err := NewReader(r, format, opts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		if err := options.Context.Err(); err != nil {
			return err
		}
		stmt, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handler(stmt); err != nil {
			return err
		}
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...Option) (Writer, error) {
	switch format {
	case FormatNTriples, FormatTurtle, FormatNotation3:
		return NewN3Writer(w, append(opts, WithFormat(format))...), nil
	case FormatRDFXML:
		return NewRDFXMLWriter(w, opts...), nil
	case FormatJSONLD:
		return NewJSONLDWriter(w, opts...), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// WriteAll writes every statement and closes w.
func WriteAll(w Writer, statements []Statement) error {
	for _, stmt := range statements {
		if err := w.Write(stmt); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
