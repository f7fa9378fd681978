package cloudschema

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// docValidator validates raw resource schema documents against the embedded
// CUE schema before they are decoded into the shape table.
type docValidator struct {
	ctx    *cue.Context
	schema cue.Value
	once   sync.Once
	err    error
}

func (v *docValidator) compile() {
	v.ctx = cuecontext.New()
	v.schema = v.ctx.CompileString(builtinDocumentSchema)
	if err := v.schema.Err(); err != nil {
		v.err = fmt.Errorf("failed to compile document schema: %w", err)
	}
}

// validate unifies the decoded document with the schema and reports any
// structural violation.
func (v *docValidator) validate(doc any) error {
	v.once.Do(v.compile)
	if v.err != nil {
		return v.err
	}
	dataVal := v.ctx.Encode(doc)
	if err := dataVal.Err(); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	unified := v.schema.LookupPath(cue.ParsePath("#Document")).Unify(dataVal)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("document schema validation failed: %w", err)
	}
	return nil
}

// builtinDocumentSchema constrains the parts of a resource schema document
// the adapter depends on. Unknown fields are allowed; the upstream format
// carries many vendor extensions this engine ignores.
const builtinDocumentSchema = `
#Document: {
	// typeName is the upstream resource type (e.g. "AWS::EC2::VPC")
	typeName: string & =~"^[A-Za-z0-9]+::[A-Za-z0-9]+::[A-Za-z0-9]+$"

	description?: string

	// properties maps property names to property schemas
	properties: {[string]: _}

	// required lists property names that must be supplied on create
	required?: [...string]

	// property pointers of the form "/properties/Name"
	createOnlyProperties?: [...string]
	readOnlyProperties?: [...string]
	writeOnlyProperties?: [...string]
	primaryIdentifier?: [...string]

	definitions?: {[string]: _}

	tagging?: {
		taggable?: bool
		...
	}

	...
}
`
