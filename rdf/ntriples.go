package rdf

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NTriplesReader reads statements from N-Triples input, one per line.
// Each blank node label maps to a single *BNode for the lifetime of the
// reader.
type NTriplesReader struct {
	ctx     context.Context
	reader  *bufio.Reader
	maxLine int
	line    int
	blanks  map[string]*BNode
	err     error
}

// NewNTriplesReader returns a reader over r.
func NewNTriplesReader(r io.Reader, opts ...Option) *NTriplesReader {
	options := buildOptions(opts)
	return &NTriplesReader{
		ctx:     options.Context,
		reader:  bufio.NewReader(r),
		maxLine: options.MaxLineBytes,
		blanks:  map[string]*BNode{},
	}
}

// Next returns the next statement, or io.EOF at the end of input. It fails
// with the context error once the reader's context is done.
func (d *NTriplesReader) Next() (Statement, error) {
	if d.err != nil {
		return Statement{}, d.err
	}
	if err := d.ctx.Err(); err != nil {
		return Statement{}, err
	}
	for {
		line, err := d.readLine()
		if err != nil {
			d.err = err
			return Statement{}, err
		}
		d.line++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		stmt, err := d.parseLine(line)
		if err != nil {
			d.err = err
			return Statement{}, err
		}
		return stmt, nil
	}
}

// ReadAll reads every remaining statement.
func (d *NTriplesReader) ReadAll() ([]Statement, error) {
	var out []Statement
	for {
		stmt, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, stmt)
	}
}

// Close releases nothing; it exists to satisfy Reader.
func (d *NTriplesReader) Close() error { return nil }

// readLine reads one line, failing as soon as it grows past maxLine so an
// unterminated line never has to fit in memory.
func (d *NTriplesReader) readLine() (string, error) {
	var line []byte
	for {
		chunk, err := d.reader.ReadSlice('\n')
		if d.maxLine > 0 && len(line)+len(chunk) > d.maxLine {
			return "", &ParseError{
				Format: string(FormatNTriples),
				Line:   d.line + 1,
				Err:    fmt.Errorf("line exceeds %d bytes", d.maxLine),
			}
		}
		line = append(line, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err == io.EOF && len(line) > 0 {
			break
		}
		if err != nil {
			return "", err
		}
		break
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}

func (d *NTriplesReader) parseLine(line string) (Statement, error) {
	c := &ntCursor{input: line, reader: d}
	subject, err := c.parseNode()
	if err != nil {
		return Statement{}, c.wrap(err)
	}
	predicate, err := c.parseEntity()
	if err != nil {
		return Statement{}, c.wrap(err)
	}
	object, err := c.parseObject()
	if err != nil {
		return Statement{}, c.wrap(err)
	}
	if !c.consume('.') {
		return Statement{}, c.wrap(errors.New("expected '.' at end of statement"))
	}
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] != '#' {
		return Statement{}, c.wrap(errors.New("unexpected content after '.'"))
	}
	return Statement{Subject: subject, Predicate: predicate, Object: object}, nil
}

func (d *NTriplesReader) blank(label string) *BNode {
	if b, ok := d.blanks[label]; ok {
		return b
	}
	b := NewNamedBNode(label)
	d.blanks[label] = b
	return b
}

type ntCursor struct {
	input  string
	pos    int
	reader *NTriplesReader
}

func (c *ntCursor) wrap(err error) error {
	return &ParseError{
		Format:    string(FormatNTriples),
		Statement: c.input,
		Line:      c.reader.line,
		Column:    c.pos + 1,
		Err:       err,
	}
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) peek() byte {
	c.skipWS()
	if c.pos >= len(c.input) {
		return 0
	}
	return c.input[c.pos]
}

func (c *ntCursor) parseNode() (Node, error) {
	switch c.peek() {
	case '<':
		return c.parseEntity()
	case '_':
		return c.parseBlankNode()
	case 0:
		return nil, errors.New("unexpected end of line")
	default:
		return nil, errors.New("expected IRI or blank node")
	}
}

func (c *ntCursor) parseObject() (Resource, error) {
	if c.peek() == '"' {
		return c.parseLiteral()
	}
	return c.parseNode()
}

func (c *ntCursor) parseEntity() (Entity, error) {
	if !c.consume('<') {
		return Entity{}, errors.New("expected IRI")
	}
	end := strings.IndexByte(c.input[c.pos:], '>')
	if end < 0 {
		return Entity{}, errors.New("unterminated IRI")
	}
	raw := c.input[c.pos : c.pos+end]
	if strings.ContainsAny(raw, " <\"{}|^`") {
		return Entity{}, fmt.Errorf("invalid character in IRI %q", raw)
	}
	uri, err := UnescapeString(raw)
	if err != nil {
		return Entity{}, err
	}
	c.pos += end + 1
	return NewEntity(uri), nil
}

func (c *ntCursor) parseBlankNode() (*BNode, error) {
	if !strings.HasPrefix(c.input[c.pos:], "_:") {
		return nil, errors.New("expected blank node")
	}
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// a label cannot end with '.'
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return nil, errors.New("blank node label missing")
	}
	return c.reader.blank(c.input[start:c.pos]), nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	end := closingQuote(c.input[c.pos:])
	if end < 0 {
		return Literal{}, ErrUnterminatedLiteral
	}
	value, err := UnescapeString(c.input[c.pos+1 : c.pos+end])
	if err != nil {
		return Literal{}, err
	}
	c.pos += end + 1

	var opts []LiteralOption
	switch {
	case strings.HasPrefix(c.input[c.pos:], "@"):
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && (isASCIILetterOrDigit(c.input[c.pos]) || c.input[c.pos] == '-') {
			c.pos++
		}
		opts = append(opts, WithLanguage(c.input[start:c.pos]))
	case strings.HasPrefix(c.input[c.pos:], "^^"):
		c.pos += 2
		datatype, err := c.parseEntity()
		if err != nil {
			return Literal{}, err
		}
		opts = append(opts, WithDatatype(datatype.uri))
	}
	return NewLiteral(value, opts...)
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '<', '"':
		return true
	default:
		return false
	}
}
