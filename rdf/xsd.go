package rdf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// XML Schema datatypes with a native mapping.
const (
	XSDString             = XSDNamespace + "string"
	XSDBoolean            = XSDNamespace + "boolean"
	XSDDecimal            = XSDNamespace + "decimal"
	XSDInteger            = XSDNamespace + "integer"
	XSDNonNegativeInteger = XSDNamespace + "nonNegativeInteger"
	XSDPositiveInteger    = XSDNamespace + "positiveInteger"
	XSDNonPositiveInteger = XSDNamespace + "nonPositiveInteger"
	XSDNegativeInteger    = XSDNamespace + "negativeInteger"
	XSDLong               = XSDNamespace + "long"
	XSDInt                = XSDNamespace + "int"
	XSDShort              = XSDNamespace + "short"
	XSDByte               = XSDNamespace + "byte"
	XSDUnsignedLong       = XSDNamespace + "unsignedLong"
	XSDUnsignedInt        = XSDNamespace + "unsignedInt"
	XSDUnsignedShort      = XSDNamespace + "unsignedShort"
	XSDUnsignedByte       = XSDNamespace + "unsignedByte"
	XSDFloat              = XSDNamespace + "float"
	XSDDouble             = XSDNamespace + "double"
	XSDDuration           = XSDNamespace + "duration"
	XSDDateTime           = XSDNamespace + "dateTime"
	XSDDate               = XSDNamespace + "date"
	XSDTime               = XSDNamespace + "time"
)

var (
	dateTimeLayouts = []string{"2006-01-02T15:04:05.999999999Z07:00", "2006-01-02T15:04:05.999999999"}
	dateLayouts     = []string{"2006-01-02Z07:00", "2006-01-02"}
	timeLayouts     = []string{"15:04:05.999999999Z07:00", "15:04:05.999999999"}
)

// ParseValue maps the lexical form to a native Go value according to the
// XML Schema datatype: bool, decimal.Decimal, the sized int and uint types,
// float32, float64, time.Duration or time.Time. Literals without a
// recognized datatype yield their lexical form as a string.
func (l Literal) ParseValue() (any, error) {
	v := strings.TrimSpace(l.value)
	var (
		out any
		err error
	)
	switch l.datatype {
	case XSDBoolean:
		return v == "true" || v == "1", nil
	case XSDDecimal, XSDInteger, XSDNonNegativeInteger, XSDPositiveInteger,
		XSDNonPositiveInteger, XSDNegativeInteger:
		out, err = decimal.NewFromString(v)
	case XSDLong:
		out, err = strconv.ParseInt(v, 10, 64)
	case XSDInt:
		out, err = parseSigned[int32](v, 32)
	case XSDShort:
		out, err = parseSigned[int16](v, 16)
	case XSDByte:
		out, err = parseSigned[int8](v, 8)
	case XSDUnsignedLong:
		out, err = strconv.ParseUint(v, 10, 64)
	case XSDUnsignedInt:
		out, err = parseUnsigned[uint32](v, 32)
	case XSDUnsignedShort:
		out, err = parseUnsigned[uint16](v, 16)
	case XSDUnsignedByte:
		out, err = parseUnsigned[uint8](v, 8)
	case XSDFloat:
		var f float64
		f, err = strconv.ParseFloat(v, 32)
		out = float32(f)
	case XSDDouble:
		out, err = strconv.ParseFloat(v, 64)
	case XSDDuration:
		out, err = parseDuration(v)
	case XSDDateTime:
		out, err = parseTime(v, dateTimeLayouts)
	case XSDDate:
		out, err = parseTime(v, dateLayouts)
	case XSDTime:
		out, err = parseTime(v, timeLayouts)
	default:
		return l.value, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q as <%s>: %v", ErrInvalidLexical, l.value, l.datatype, err)
	}
	return out, nil
}

func parseSigned[T int8 | int16 | int32](v string, bits int) (T, error) {
	n, err := strconv.ParseInt(v, 10, bits)
	return T(n), err
}

func parseUnsigned[T uint8 | uint16 | uint32](v string, bits int) (T, error) {
	n, err := strconv.ParseUint(v, 10, bits)
	return T(n), err
}

func parseTime(v string, layouts []string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Normalize reparses a typed literal and restringifies its native value,
// canonicalizing the lexical form ("0012" becomes "12"). Literals without a
// recognized datatype are returned unchanged.
func (l Literal) Normalize() (Literal, error) {
	v, err := l.ParseValue()
	if err != nil {
		return Literal{}, err
	}
	if _, raw := v.(string); raw {
		return l, nil
	}
	lexical := formatValue(v, l.datatype, hasZone(strings.TrimSpace(l.value)))
	return Literal{value: lexical, lang: l.lang, datatype: l.datatype}, nil
}

// FromValue builds a typed literal from a native Go value. Strings become
// plain literals.
func FromValue(v any) (Literal, error) {
	var datatype string
	switch x := v.(type) {
	case string:
		return PlainLiteral(x), nil
	case bool:
		datatype = XSDBoolean
	case decimal.Decimal:
		datatype = XSDDecimal
	case int, int64:
		datatype = XSDLong
	case int32:
		datatype = XSDInt
	case int16:
		datatype = XSDShort
	case int8:
		datatype = XSDByte
	case uint, uint64:
		datatype = XSDUnsignedLong
	case uint32:
		datatype = XSDUnsignedInt
	case uint16:
		datatype = XSDUnsignedShort
	case uint8:
		datatype = XSDUnsignedByte
	case float32:
		datatype = XSDFloat
	case float64:
		datatype = XSDDouble
	case time.Duration:
		datatype = XSDDuration
	case time.Time:
		datatype = XSDDateTime
	default:
		return Literal{}, fmt.Errorf("%w: no datatype for %T", ErrInvalidLexical, v)
	}
	return Literal{value: formatValue(v, datatype, true), datatype: datatype}, nil
}

func formatValue(v any, datatype string, zoned bool) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case decimal.Decimal:
		return x.String()
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case time.Duration:
		return formatDuration(x)
	case time.Time:
		return formatTime(x, datatype, zoned)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func formatTime(t time.Time, datatype string, zoned bool) string {
	var layout string
	switch datatype {
	case XSDDate:
		layout = "2006-01-02"
	case XSDTime:
		layout = "15:04:05.999999999"
	default:
		layout = "2006-01-02T15:04:05.999999999"
	}
	if zoned {
		layout += "Z07:00"
	}
	return t.Format(layout)
}

// hasZone reports whether a date/time lexical form ends in a zone
// designator.
func hasZone(v string) bool {
	if strings.HasSuffix(v, "Z") {
		return true
	}
	if len(v) < 6 {
		return false
	}
	tail := v[len(v)-6:]
	return (tail[0] == '+' || tail[0] == '-') && tail[3] == ':'
}

// parseDuration reads an xsd:duration ("-P1Y2M3DT4H5M6.5S"). Years count
// as 365 days and months as 30 days.
func parseDuration(v string) (time.Duration, error) {
	neg := strings.HasPrefix(v, "-")
	s := strings.TrimPrefix(v, "-")
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return 0, fmt.Errorf("duration must start with P")
	}
	s = s[1:]
	const day = 24 * time.Hour
	var total time.Duration
	inTime := false
	seen := false
	for s != "" {
		if s[0] == 'T' {
			if inTime {
				return 0, fmt.Errorf("duplicate T designator")
			}
			inTime = true
			s = s[1:]
			if s == "" {
				return 0, fmt.Errorf("empty time part")
			}
			continue
		}
		i := strings.IndexAny(s, "YMDHS")
		if i <= 0 {
			return 0, fmt.Errorf("malformed duration component %q", s)
		}
		num, unit := s[:i], s[i]
		s = s[i+1:]
		n, err := strconv.ParseFloat(num, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed number %q", num)
		}
		var scale time.Duration
		switch {
		case !inTime && unit == 'Y':
			scale = 365 * day
		case !inTime && unit == 'M':
			scale = 30 * day
		case !inTime && unit == 'D':
			scale = day
		case inTime && unit == 'H':
			scale = time.Hour
		case inTime && unit == 'M':
			scale = time.Minute
		case inTime && unit == 'S':
			scale = time.Second
		default:
			return 0, fmt.Errorf("unexpected designator %c", unit)
		}
		part := n * float64(scale)
		if part >= math.MaxInt64 || float64(total)+part >= math.MaxInt64 {
			return 0, fmt.Errorf("duration out of range")
		}
		total += time.Duration(part)
		seen = true
	}
	if !seen {
		return 0, fmt.Errorf("duration has no components")
	}
	if neg {
		total = -total
	}
	return total, nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')
	const day = 24 * time.Hour
	if days := d / day; days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10) + "D")
		d -= days * day
	}
	if d == 0 {
		return b.String()
	}
	b.WriteByte('T')
	if h := d / time.Hour; h > 0 {
		b.WriteString(strconv.FormatInt(int64(h), 10) + "H")
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		b.WriteString(strconv.FormatInt(int64(m), 10) + "M")
		d -= m * time.Minute
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "S")
	}
	return b.String()
}
