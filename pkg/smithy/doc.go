// Package smithy loads Smithy 2.0 JSON AST model documents into the
// format-agnostic shape table. It performs no semantic interpretation beyond
// kind classification: member targets are copied verbatim as unresolved shape
// IDs and validated later by the resolver.
package smithy
