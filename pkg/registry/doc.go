// Package registry holds derived resource schemas: an in-memory registry
// serving lookups (schema by type name, alias resolution) and a SQLite-backed
// store persisting schemas and derivation run records across invocations.
package registry
