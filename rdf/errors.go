package rdf

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorCode classifies an error for programmatic handling.
type ErrorCode string

const (
	// CodeNullArgument indicates a statement with a missing component.
	CodeNullArgument ErrorCode = "NULL_ARGUMENT"
	// CodeInvalidOperation indicates an operation the target cannot perform
	// in its current state.
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"
	// CodeInvalidArgument indicates an argument with an invalid value.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// CodeFormat indicates malformed input text.
	CodeFormat ErrorCode = "FORMAT"
	// CodeUnsupportedFormat indicates an unknown serialization format.
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// CodeIO indicates a failure of the underlying reader or writer.
	CodeIO ErrorCode = "IO_ERROR"
)

var (
	// ErrNullComponent indicates a statement with a missing subject,
	// predicate or object.
	ErrNullComponent = errors.New("rdf: statement has a null component")
	// ErrLiteralSubject indicates an attempt to use a literal as a subject.
	ErrLiteralSubject = errors.New("rdf: a literal cannot be a subject")
	// ErrResourceKeyConflict indicates a second, different resource key on a
	// blank node.
	ErrResourceKeyConflict = errors.New("rdf: blank node already has a different resource key")
	// ErrWriterClosed indicates a write after Close.
	ErrWriterClosed = errors.New("rdf: writer closed")
	// ErrEmptyElementURI indicates the empty URI used as an XML element name.
	ErrEmptyElementURI = errors.New("rdf: the empty URI cannot be used as an element name")
	// ErrNoPrefix indicates a URI for which no namespace prefix could be
	// found or derived.
	ErrNoPrefix = errors.New("rdf: no namespace prefix for URI")
	// ErrUnsupportedOperation indicates an operation a store or facade
	// refuses, such as mutating a read-only composition.
	ErrUnsupportedOperation = errors.New("rdf: operation not supported")
	// ErrUnsupportedPredicate indicates a predicate the target format cannot
	// express.
	ErrUnsupportedPredicate = errors.New("rdf: predicate must be a named entity")

	// ErrEmptyLanguage indicates an empty, rather than absent, language tag.
	ErrEmptyLanguage = errors.New("rdf: literal language tag is empty")
	// ErrEmptyDatatype indicates an empty, rather than absent, datatype.
	ErrEmptyDatatype = errors.New("rdf: literal datatype is empty")

	// ErrUnterminatedLiteral indicates literal text without a closing quote.
	ErrUnterminatedLiteral = errors.New("rdf: literal is missing its closing quote")
	// ErrNoNamespaces indicates a prefixed name with no namespaces to
	// resolve it against.
	ErrNoNamespaces = errors.New("rdf: prefixed name needs a namespace manager")
	// ErrUnknownPrefix indicates a prefixed name whose prefix is not
	// registered.
	ErrUnknownPrefix = errors.New("rdf: unknown namespace prefix")
	// ErrInvalidLexical indicates a lexical form its datatype cannot parse.
	ErrInvalidLexical = errors.New("rdf: invalid lexical form")

	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("rdf: unsupported format")
)

// Code returns the error code for err. It returns "" for nil and io.EOF.
func Code(err error) ErrorCode {
	if err == nil || err == io.EOF {
		return ""
	}
	switch {
	case errors.Is(err, ErrNullComponent):
		return CodeNullArgument
	case errors.Is(err, ErrLiteralSubject),
		errors.Is(err, ErrResourceKeyConflict),
		errors.Is(err, ErrWriterClosed),
		errors.Is(err, ErrEmptyElementURI),
		errors.Is(err, ErrNoPrefix),
		errors.Is(err, ErrUnsupportedOperation),
		errors.Is(err, ErrUnsupportedPredicate):
		return CodeInvalidOperation
	case errors.Is(err, ErrEmptyLanguage), errors.Is(err, ErrEmptyDatatype):
		return CodeInvalidArgument
	case errors.Is(err, ErrUnterminatedLiteral),
		errors.Is(err, ErrNoNamespaces),
		errors.Is(err, ErrUnknownPrefix),
		errors.Is(err, ErrInvalidLexical):
		return CodeFormat
	case errors.Is(err, ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return CodeFormat
	}
	return CodeIO
}

// ParseError provides position context for reader failures.
type ParseError struct {
	Format    string // Format name, e.g. "ntriples"
	Statement string // Offending line
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if excerpt := e.formatExcerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

// formatExcerpt shows the statement around the error column with a caret.
func (e *ParseError) formatExcerpt() string {
	if e.Statement == "" {
		return ""
	}
	const maxExcerptLen = 80
	const contextLen = 40

	if e.Column > 0 {
		start := e.Column - 1
		excerptStart := max(start-contextLen, 0)
		excerptEnd := min(start+contextLen, len(e.Statement))
		if excerptStart > excerptEnd {
			excerptStart = excerptEnd
		}
		excerpt := e.Statement[excerptStart:excerptEnd]
		caretPos := start - excerptStart
		if excerptStart > 0 {
			excerpt = "..." + excerpt
			caretPos += 3
		}
		if excerptEnd < len(e.Statement) {
			excerpt += "..."
		}
		caretPos = max(min(caretPos, len(excerpt)-1), 0)
		return excerpt + "\n  " + strings.Repeat(" ", caretPos) + "^"
	}
	if len(e.Statement) > maxExcerptLen {
		return e.Statement[:maxExcerptLen] + "..."
	}
	return e.Statement
}

func (e *ParseError) Unwrap() error { return e.Err }
