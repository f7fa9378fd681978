// Package schema derives canonical, provider-agnostic resource schemas from
// a resolved shape table. It contains the attribute extractor, the enum
// normalizer, and the schema assembler; everything upstream (loading,
// reference resolution, trait merging) lives in pkg/smithy, pkg/cloudschema,
// and pkg/resolve.
package schema
