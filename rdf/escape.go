package rdf

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	surrogateHighStart = 0xD800
	surrogateHighEnd   = 0xDBFF
	surrogateLowStart  = 0xDC00
	surrogateLowEnd    = 0xDFFF

	unicodeEscapeLength     = 6  // \uXXXX
	unicodeLongEscapeLength = 10 // \UXXXXXXXX
)

const upperHex = "0123456789ABCDEF"

// EscapeNTriples escapes s for use inside an N-Triples string or IRI.
// 0x20-0x21, 0x23-0x5B and 0x5D-0x7E pass through; tab, newline, carriage
// return, quote and backslash use short escapes; everything else becomes
// \uXXXX per UTF-16 code unit, so characters outside the BMP are written
// as a surrogate pair.
func EscapeNTriples(s string) string {
	if !needsEscape(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch {
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case passThrough(r):
			b.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			writeUnicodeEscape(&b, hi)
			writeUnicodeEscape(&b, lo)
		default:
			writeUnicodeEscape(&b, r)
		}
	}
	return b.String()
}

func passThrough(r rune) bool {
	return (r >= 0x20 && r <= 0x21) || (r >= 0x23 && r <= 0x5B) || (r >= 0x5D && r <= 0x7E)
}

func needsEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if !passThrough(rune(s[i])) {
			return true
		}
	}
	return false
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(upperHex[(r>>12)&0xF])
	b.WriteByte(upperHex[(r>>8)&0xF])
	b.WriteByte(upperHex[(r>>4)&0xF])
	b.WriteByte(upperHex[r&0xF])
}

// UnescapeString decodes \t \n \r \b \f \" \' \\ \uXXXX (surrogate pairs
// included) and \UXXXXXXXX escapes.
func UnescapeString(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	pos := 0
	for pos < len(s) {
		ch := s[pos]
		if ch != '\\' {
			b.WriteByte(ch)
			pos++
			continue
		}
		if pos+1 >= len(s) {
			return "", fmt.Errorf("%w: unterminated escape", ErrInvalidLexical)
		}
		var advance int
		var err error
		switch next := s[pos+1]; next {
		case 'n':
			b.WriteByte('\n')
			advance = 2
		case 't':
			b.WriteByte('\t')
			advance = 2
		case 'r':
			b.WriteByte('\r')
			advance = 2
		case 'b':
			b.WriteByte('\b')
			advance = 2
		case 'f':
			b.WriteByte('\f')
			advance = 2
		case '"', '\'', '\\':
			b.WriteByte(next)
			advance = 2
		case 'u':
			advance, err = unescapeUnicode(&b, s, pos)
		case 'U':
			advance, err = unescapeUnicodeLong(&b, s, pos)
		default:
			return "", fmt.Errorf("%w: invalid escape sequence \\%c", ErrInvalidLexical, next)
		}
		if err != nil {
			return "", err
		}
		pos += advance
	}
	return b.String(), nil
}

func unescapeUnicode(b *strings.Builder, s string, pos int) (int, error) {
	if pos+unicodeEscapeLength > len(s) {
		return 0, fmt.Errorf("%w: short \\u escape", ErrInvalidLexical)
	}
	code := decodeHex(s[pos+2 : pos+unicodeEscapeLength])
	if code < 0 {
		return 0, fmt.Errorf("%w: bad \\u escape", ErrInvalidLexical)
	}
	if code >= surrogateHighStart && code <= surrogateHighEnd {
		end := pos + 2*unicodeEscapeLength
		if end > len(s) || s[pos+6] != '\\' || s[pos+7] != 'u' {
			return 0, fmt.Errorf("%w: unpaired surrogate", ErrInvalidLexical)
		}
		low := decodeHex(s[pos+8 : end])
		if low < surrogateLowStart || low > surrogateLowEnd {
			return 0, fmt.Errorf("%w: unpaired surrogate", ErrInvalidLexical)
		}
		b.WriteRune(utf16.DecodeRune(code, low))
		return 2 * unicodeEscapeLength, nil
	}
	if code >= surrogateLowStart && code <= surrogateLowEnd {
		return 0, fmt.Errorf("%w: unpaired surrogate", ErrInvalidLexical)
	}
	b.WriteRune(code)
	return unicodeEscapeLength, nil
}

func unescapeUnicodeLong(b *strings.Builder, s string, pos int) (int, error) {
	if pos+unicodeLongEscapeLength > len(s) {
		return 0, fmt.Errorf("%w: short \\U escape", ErrInvalidLexical)
	}
	code := decodeHex(s[pos+2 : pos+unicodeLongEscapeLength])
	if code < 0 || code > utf8.MaxRune || (code >= surrogateHighStart && code <= surrogateLowEnd) {
		return 0, fmt.Errorf("%w: bad \\U escape", ErrInvalidLexical)
	}
	b.WriteRune(code)
	return unicodeLongEscapeLength, nil
}

func decodeHex(hex string) rune {
	var code rune
	for i := 0; i < len(hex); i++ {
		ch := hex[i]
		var digit byte
		switch {
		case ch >= '0' && ch <= '9':
			digit = ch - '0'
		case ch >= 'a' && ch <= 'f':
			digit = ch - 'a' + 10
		case ch >= 'A' && ch <= 'F':
			digit = ch - 'A' + 10
		default:
			return -1
		}
		code = code*16 + rune(digit)
	}
	return code
}
