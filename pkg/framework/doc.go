// Package framework loads and resolves AutoML framework definitions.
//
// # Overview
//
// Benchmark runs are configured through YAML documents that map framework
// names to definition entries. Entries can inherit from each other through
// an extends field, so a family of related integrations (say, a predictor
// and its encoded variant) shares one base definition. This package turns
// those raw documents into a validated, immutable [Catalog] of
// [Definition] values with all inheritance and defaults applied.
//
// # Basic Usage
//
// Parse a document and resolve it into a catalog:
//
//	doc, err := framework.ParseDocument(data)
//	if err != nil {
//	    return err
//	}
//	catalog, err := framework.Resolve(doc, framework.Options{})
//	if err != nil {
//	    return err
//	}
//	def, ok := catalog.Get("constantpredictor")
//
// [LoadPaths] reads one or more files or directories and merges them into a
// single document before resolution; later files replace same-named entries.
//
// # Resolution
//
// Resolution happens in two passes. The first pass collects every entry
// verbatim, so extends can reference entries defined later in the document.
// The second pass walks each entry's inheritance chain, merging child fields
// over parent fields: scalars replace, params merge key-wise, docker image
// coordinates merge field-wise. Defaults are applied after inheritance, so
// a child that never sets module still gets its own name as module rather
// than the parent's.
//
// Resolution is eager and fail-closed. Every malformed entry, unknown
// parent, cyclic chain, and missing version is collected and reported in a
// single aggregated error; no partial catalog is returned.
//
// # Templates
//
// Entries named with the reserved double-underscore pattern (__base__) or
// carrying abstract: true are documentation-only templates. They can be
// extended by concrete entries but are excluded from the catalog and are
// not required to declare a version.
//
// # Concurrency
//
// A resolved [Catalog] is immutable and safe for concurrent readers.
// Lookups return deep copies, so callers can freely modify the results.
package framework
