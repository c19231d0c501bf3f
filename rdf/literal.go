package rdf

import (
	"fmt"
	"strings"
)

// Literal is an immutable data value: a lexical form with an optional
// language tag and an optional datatype URI.
type Literal struct {
	value    string
	lang     string
	datatype string
}

// LiteralOption configures NewLiteral.
type LiteralOption func(*literalConfig)

type literalConfig struct {
	lang     *string
	datatype *string
}

// WithLanguage sets the language tag.
func WithLanguage(tag string) LiteralOption {
	return func(c *literalConfig) { c.lang = &tag }
}

// WithDatatype sets the datatype URI.
func WithDatatype(uri string) LiteralOption {
	return func(c *literalConfig) { c.datatype = &uri }
}

// NewLiteral builds a literal. A language tag or datatype that is given but
// empty fails with ErrEmptyLanguage or ErrEmptyDatatype.
func NewLiteral(value string, opts ...LiteralOption) (Literal, error) {
	var cfg literalConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	lit := Literal{value: value}
	if cfg.lang != nil {
		if *cfg.lang == "" {
			return Literal{}, ErrEmptyLanguage
		}
		lit.lang = *cfg.lang
	}
	if cfg.datatype != nil {
		if *cfg.datatype == "" {
			return Literal{}, ErrEmptyDatatype
		}
		lit.datatype = *cfg.datatype
	}
	return lit, nil
}

// PlainLiteral returns a literal with neither language nor datatype.
func PlainLiteral(value string) Literal { return Literal{value: value} }

// Value returns the lexical form.
func (l Literal) Value() string { return l.value }

// Language returns the language tag, or "".
func (l Literal) Language() string { return l.lang }

// Datatype returns the datatype URI, or "".
func (l Literal) Datatype() string { return l.datatype }

// HasLanguage reports whether a language tag is set.
func (l Literal) HasLanguage() bool { return l.lang != "" }

// HasDatatype reports whether a datatype is set.
func (l Literal) HasDatatype() bool { return l.datatype != "" }

// Kind returns KindLiteral.
func (Literal) Kind() Kind { return KindLiteral }

func (Literal) resource() {}

// String returns the canonical text form: the escaped quoted value, then
// "@lang" and "^^<datatype>" when present.
func (l Literal) String() string {
	var b strings.Builder
	b.Grow(len(l.value) + len(l.datatype) + len(l.lang) + 8)
	b.WriteByte('"')
	b.WriteString(EscapeNTriples(l.value))
	b.WriteByte('"')
	if l.lang != "" {
		b.WriteByte('@')
		b.WriteString(l.lang)
	}
	if l.datatype != "" {
		b.WriteString("^^<")
		b.WriteString(EscapeNTriples(l.datatype))
		b.WriteByte('>')
	}
	return b.String()
}

// ParseLiteral parses the text form produced by String. A datatype may also
// be written as prefix:local, which is resolved against ns.
func ParseLiteral(text string, ns *Namespaces) (Literal, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, `"`) {
		return Literal{}, fmt.Errorf("%w: literal must start with a quote", ErrInvalidLexical)
	}
	end := closingQuote(text)
	if end < 0 {
		return Literal{}, ErrUnterminatedLiteral
	}
	value, err := UnescapeString(text[1:end])
	if err != nil {
		return Literal{}, err
	}
	rest := text[end+1:]

	var opts []LiteralOption
	if strings.HasPrefix(rest, "@") {
		lang := rest[1:]
		if i := strings.Index(lang, "^^"); i >= 0 {
			lang, rest = lang[:i], lang[i:]
		} else {
			rest = ""
		}
		opts = append(opts, WithLanguage(lang))
	}
	if strings.HasPrefix(rest, "^^") {
		datatype, err := parseDatatype(rest[2:], ns)
		if err != nil {
			return Literal{}, err
		}
		opts = append(opts, WithDatatype(datatype))
	} else if rest != "" {
		return Literal{}, fmt.Errorf("%w: unexpected %q after literal", ErrInvalidLexical, rest)
	}
	return NewLiteral(value, opts...)
}

func closingQuote(text string) int {
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func parseDatatype(text string, ns *Namespaces) (string, error) {
	if strings.HasPrefix(text, "<") {
		if !strings.HasSuffix(text, ">") {
			return "", fmt.Errorf("%w: unterminated datatype URI", ErrInvalidLexical)
		}
		return UnescapeString(text[1 : len(text)-1])
	}
	if ns == nil {
		return "", fmt.Errorf("%w: datatype %q", ErrNoNamespaces, text)
	}
	return ns.Resolve(text)
}
