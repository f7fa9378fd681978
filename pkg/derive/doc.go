// Package derive runs the schema derivation pipeline end to end: format
// detection, model loading, reference resolution, trait merging, and schema
// assembly. It is the package the CLI and the registry build on; the
// individual stages live in pkg/smithy, pkg/cloudschema, pkg/resolve, and
// pkg/schema.
package derive
