// Package cloudschema adapts cloud resource schema documents (the
// properties/required/createOnlyProperties style used by cloud control
// planes) into the same shape table the Smithy loader produces. It is the
// seam where the second upstream format plugs in: everything downstream of
// the resolver is format-agnostic.
package cloudschema
