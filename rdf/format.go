package rdf

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an RDF serialization format.
type Format string

const (
	FormatNTriples  Format = "ntriples"
	FormatTurtle    Format = "turtle"
	FormatNotation3 Format = "n3"
	FormatRDFXML    Format = "rdfxml"
	FormatJSONLD    Format = "jsonld"
)

// Formats lists the writable formats.
var Formats = []Format{FormatNTriples, FormatTurtle, FormatNotation3, FormatRDFXML, FormatJSONLD}

// ParseFormat normalizes a format name or alias.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ntriples", "nt", "n-triples":
		return FormatNTriples, nil
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "n3", "notation3":
		return FormatNotation3, nil
	case "rdfxml", "rdf", "xml", "rdf/xml":
		return FormatRDFXML, nil
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nt":
		return FormatNTriples, nil
	case ".ttl":
		return FormatTurtle, nil
	case ".n3":
		return FormatNotation3, nil
	case ".rdf", ".xml", ".owl":
		return FormatRDFXML, nil
	case ".jsonld", ".json":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("%w: path %q", ErrUnsupportedFormat, path)
	}
}

// FormatFromContentType infers the format from a media type. Parameters
// such as charset are ignored.
func FormatFromContentType(contentType string) (Format, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "application/n-triples":
		return FormatNTriples, nil
	case "text/turtle", "application/x-turtle":
		return FormatTurtle, nil
	case "text/n3", "text/rdf+n3":
		return FormatNotation3, nil
	case "application/rdf+xml", "application/xml", "text/xml":
		return FormatRDFXML, nil
	case "application/ld+json":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
}

// ContentType returns the preferred media type.
func (f Format) ContentType() string {
	switch f {
	case FormatNTriples:
		return "application/n-triples"
	case FormatTurtle:
		return "text/turtle"
	case FormatNotation3:
		return "text/n3"
	case FormatRDFXML:
		return "application/rdf+xml"
	case FormatJSONLD:
		return "application/ld+json"
	default:
		return ""
	}
}
