// Package rdf provides an RDF resource model with streaming serializers.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// The model is a closed set of resource kinds:
//   - Entity: a resource named by a URI, compared by URI.
//   - *BNode: a blank node whose identity is its instance, unless a backing
//     store links instances with a ResourceKey.
//   - *Variable: a blank node used as a wildcard in query patterns.
//   - Literal: a lexical value with optional language tag and datatype.
//
// Statements combine a subject, predicate and object. Compare defines a
// total order over resources (entities, then blank nodes, then literals).
//
// Writers share the Writer interface and are created with NewWriter:
//   - N3Writer writes N-Triples, Turtle or Notation3 in a single pass,
//     abbreviating repeated subjects and predicates.
//   - RDFXMLWriter builds a document tree and compacts it on Close.
//   - JSONLDWriter converts through json-gold and compacts against the
//     configured namespaces.
//
// Example (Turtle):
//
//	ns := rdf.NewNamespaces()
//	ns.AddNamespace("http://example.org/", "ex")
//	w := rdf.NewN3Writer(os.Stdout, rdf.WithNamespaces(ns))
//	defer w.Close()
//	_ = w.Write(rdf.NewStatement(
//	    rdf.NewEntity("http://example.org/a"),
//	    rdf.NewEntity("http://example.org/p"),
//	    rdf.PlainLiteral("hello"),
//	))
//
// NTriplesReader reads N-Triples input and is the only reader provided.
//
// Writers are not safe for concurrent use. Attaching a ResourceKey is the
// only mutation of a resource; stores doing so concurrently with
// serialization must synchronize access themselves.
package rdf
