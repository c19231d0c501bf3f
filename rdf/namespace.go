package rdf

import (
	"fmt"
	"sort"
	"strings"
)

// Well-known namespaces.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XMLNamespace  = "http://www.w3.org/XML/1998/namespace"
)

// Well-known URIs.
const (
	RDFType       = RDFNamespace + "type"
	RDFXMLLiteral = RDFNamespace + "XMLLiteral"
	RDFSSubClass  = RDFSNamespace + "subClassOf"
)

// Namespaces maps namespace URIs to short prefixes. It is not safe for
// concurrent mutation.
type Namespaces struct {
	byPrefix map[string]string
	byURI    map[string]string
}

// NewNamespaces returns an empty namespace manager.
func NewNamespaces() *Namespaces {
	return &Namespaces{byPrefix: map[string]string{}, byURI: map[string]string{}}
}

// NewNamespacesFromMap builds a manager from a prefix to URI map.
func NewNamespacesFromMap(prefixes map[string]string) *Namespaces {
	ns := NewNamespaces()
	for _, prefix := range sortedPrefixKeys(prefixes) {
		ns.AddNamespace(prefixes[prefix], prefix)
	}
	return ns
}

// AddNamespace registers prefix for uri, replacing any earlier binding of
// either.
func (n *Namespaces) AddNamespace(uri, prefix string) {
	if old, ok := n.byPrefix[prefix]; ok {
		delete(n.byURI, old)
	}
	if old, ok := n.byURI[uri]; ok {
		delete(n.byPrefix, old)
	}
	n.byPrefix[prefix] = uri
	n.byURI[uri] = prefix
}

// Namespace returns the URI bound to prefix.
func (n *Namespaces) Namespace(prefix string) (string, bool) {
	uri, ok := n.byPrefix[prefix]
	return uri, ok
}

// Prefix returns the prefix bound to a namespace URI.
func (n *Namespaces) Prefix(uri string) (string, bool) {
	prefix, ok := n.byURI[uri]
	return prefix, ok
}

// Prefixes returns the registered prefixes in sorted order.
func (n *Namespaces) Prefixes() []string {
	return sortedPrefixKeys(n.byPrefix)
}

// Len returns the number of registered namespaces.
func (n *Namespaces) Len() int { return len(n.byPrefix) }

// Split finds the longest registered namespace that prefixes uri and leaves a
// valid local name.
func (n *Namespaces) Split(uri string) (prefix, local string, ok bool) {
	best := ""
	for ns, p := range n.byURI {
		if len(ns) <= len(best) || !strings.HasPrefix(uri, ns) {
			continue
		}
		if !isQNameLocal(uri[len(ns):]) {
			continue
		}
		best, prefix = ns, p
		ok = true
	}
	if !ok {
		return "", "", false
	}
	return prefix, uri[len(best):], true
}

// Normalize returns uri as prefix:local, or "<uri>" when no registered
// namespace applies.
func (n *Namespaces) Normalize(uri string) string {
	prefix, local, ok := n.Split(uri)
	if !ok {
		return "<" + uri + ">"
	}
	return prefix + ":" + local
}

// Resolve expands a prefix:local name.
func (n *Namespaces) Resolve(qname string) (string, error) {
	prefix, local, found := strings.Cut(qname, ":")
	if !found {
		return "", fmt.Errorf("%w: %q is not a prefixed name", ErrUnknownPrefix, qname)
	}
	ns, ok := n.byPrefix[prefix]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}
	return ns + local, nil
}

// Clone returns an independent copy.
func (n *Namespaces) Clone() *Namespaces {
	out := NewNamespaces()
	for prefix, uri := range n.byPrefix {
		out.byPrefix[prefix] = uri
		out.byURI[uri] = prefix
	}
	return out
}

// Map returns a prefix to URI copy of the bindings.
func (n *Namespaces) Map() map[string]string {
	out := make(map[string]string, len(n.byPrefix))
	for prefix, uri := range n.byPrefix {
		out[prefix] = uri
	}
	return out
}

func sortedPrefixKeys(prefixes map[string]string) []string {
	keys := make([]string, 0, len(prefixes))
	for key := range prefixes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
