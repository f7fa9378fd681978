// Package model defines the format-agnostic intermediate representation for
// API model documents: shapes, members, traits, and the shape table that owns
// them. Loaders (pkg/smithy, pkg/cloudschema) produce a model.Table; the
// resolver and derivation stages consume it without knowing which upstream
// format produced it.
package model
