package schema

import (
	"sort"

	"github.com/resmod/resmod/pkg/model"
)

// Extractor derives attribute schemas from resolved resource shapes.
//
// Two member layouts feed it. Resource shapes produced by the cloud schema
// adapter carry their data members directly. Resource shapes from Smithy
// models carry lifecycle operation references instead: the create operation's
// input structure contributes the writable attributes, and read output
// members absent from the create input surface as read-only attributes.
type Extractor struct {
	table *model.Table
}

// NewExtractor creates an extractor over a resolved shape table.
func NewExtractor(table *model.Table) *Extractor {
	return &Extractor{table: table}
}

// lifecycleSkip names resource members that reference operations with no
// attribute contribution.
var lifecycleSkip = map[string]bool{
	"update": true,
	"delete": true,
	"list":   true,
}

// Extract derives the schema of one resource shape. Extraction errors are
// collected, not fatal: every defect in the resource is reported and the
// schema carries the attributes that derived cleanly.
func (x *Extractor) Extract(resource *model.Shape) (*ResourceSchema, ErrorList) {
	traits := resource.EffectiveTraits()

	typeName := traits.GetString(model.TraitResourceType)
	if typeName == "" {
		typeName = model.SnakeCase(resource.ID.Name())
	}

	st := &extraction{
		extractor: x,
		schema: &ResourceSchema{
			TypeName:     typeName,
			UpstreamType: traits.GetString(model.TraitUpstreamType),
			Description:  traits.GetString(model.TraitDocumentation),
			HasTags:      traits.Has(model.TraitTaggable),
		},
		seen:  make(map[string]bool),
		enums: make(map[model.ShapeID]*EnumDefinition),
	}

	var createOp, readOp *model.Shape
	for _, m := range resource.Members {
		switch {
		case m.Name == "create" || m.Name == "put":
			if createOp == nil {
				createOp = m.Shape
			}
		case m.Name == "read":
			readOp = m.Shape
		case lifecycleSkip[m.Name] || isSyntheticRef(m.Name):
			// Bound operations, sub-resources, and remaining lifecycle refs
			// carry no attributes.
		case m.Shape != nil && isDataKind(m.Shape.Kind):
			st.addAttribute(m, false)
		}
	}

	if in := operationStructure(createOp, "input"); in != nil {
		for _, m := range in.Members {
			st.addAttribute(m, false)
		}
	}
	if out := operationStructure(readOp, "output"); out != nil {
		for _, m := range out.Members {
			if st.seen[model.SnakeCase(m.Name)] {
				continue
			}
			// Only the provider produces these values.
			st.addAttribute(m, true)
		}
	}

	// Walk enums in first-reference order so a name collision always keeps
	// the same definition. Two distinct shapes normalizing to one definition
	// name is a defect: the dropped value set would silently shadow the
	// surviving one otherwise.
	names := make([]string, 0, len(st.enumOrder))
	byName := make(map[string]*EnumDefinition, len(st.enumOrder))
	for _, id := range st.enumOrder {
		def := st.enums[id]
		if _, dup := byName[def.Name]; dup {
			st.errs = append(st.errs, NewEnumNameCollisionError(typeName, def.Name))
			continue
		}
		byName[def.Name] = def
		names = append(names, def.Name)
	}
	sort.Strings(names)
	for _, name := range names {
		st.schema.Enums = append(st.schema.Enums, *byName[name])
	}

	for i := range st.errs {
		if st.errs[i].Resource == "" {
			st.errs[i].Resource = typeName
		}
	}
	return st.schema, st.errs
}

// extraction is the per-resource working state of one Extract call.
type extraction struct {
	extractor *Extractor
	schema    *ResourceSchema
	seen      map[string]bool
	enums     map[model.ShapeID]*EnumDefinition
	enumOrder []model.ShapeID
	errs      ErrorList
}

func (st *extraction) addAttribute(m *model.Member, forceReadOnly bool) {
	traits := m.EffectiveTraits()
	name := model.SnakeCase(m.Name)

	// Tag members never surface as attributes; tagging is a resource-level
	// capability.
	if name == "tags" {
		st.schema.HasTags = true
		return
	}

	if st.seen[name] {
		st.errs = append(st.errs, NewDuplicateAttributeError(st.schema.TypeName, name))
		return
	}
	st.seen[name] = true

	readOnly := forceReadOnly || traits.Has(model.TraitReadOnly)
	required := traits.Has(model.TraitRequired)
	if readOnly && required {
		st.errs = append(st.errs, NewInvalidAttributeConstraintError(
			st.schema.TypeName, name, "read-only attribute cannot be required"))
		return
	}

	providerName := traits.GetString(model.TraitProviderName)
	if providerName == "" {
		providerName = m.Name
	}

	st.schema.Attributes = append(st.schema.Attributes, AttributeSchema{
		Name:         name,
		ProviderName: providerName,
		Type:         st.typeOf(m.Shape, make(map[model.ShapeID]bool)),
		Required:     required,
		CreateOnly:   traits.Has(model.TraitCreateOnly),
		ReadOnly:     readOnly,
		WriteOnly:    traits.Has(model.TraitWriteOnly),
		Description:  traits.GetString(model.TraitDocumentation),
	})
}

// typeOf maps a target shape to its canonical attribute type. The visited set
// breaks recursion through self-referencing structures: the inner occurrence
// degrades to an opaque object.
func (st *extraction) typeOf(s *model.Shape, visited map[model.ShapeID]bool) AttributeType {
	if s == nil {
		return AttributeType{Kind: TypeString}
	}

	switch s.Kind {
	case model.KindString, model.KindBlob, model.KindTimestamp:
		return AttributeType{Kind: TypeString}
	case model.KindBoolean:
		return AttributeType{Kind: TypeBool}
	case model.KindInteger, model.KindLong:
		return AttributeType{Kind: TypeInt}
	case model.KindFloat, model.KindDouble:
		return AttributeType{Kind: TypeFloat}

	case model.KindEnum, model.KindIntEnum:
		def, ok := st.enums[s.ID]
		if !ok {
			var errs ErrorList
			def, errs = NormalizeEnum(s)
			st.errs = append(st.errs, errs...)
			st.enums[s.ID] = def
			st.enumOrder = append(st.enumOrder, s.ID)
		}
		return AttributeType{Kind: TypeString, Enum: def.Name}

	case model.KindList:
		elem := AttributeType{Kind: TypeString}
		if m := s.Member("member"); m != nil {
			elem = st.typeOf(m.Shape, visited)
		}
		return AttributeType{Kind: TypeList, Elem: &elem}

	case model.KindMap:
		elem := AttributeType{Kind: TypeString}
		if m := s.Member("value"); m != nil {
			elem = st.typeOf(m.Shape, visited)
		}
		return AttributeType{Kind: TypeMap, Elem: &elem}

	case model.KindStructure, model.KindUnion:
		if visited[s.ID] {
			return AttributeType{Kind: TypeObject}
		}
		visited[s.ID] = true
		typ := AttributeType{Kind: TypeObject}
		for _, m := range s.Members {
			traits := m.EffectiveTraits()
			providerName := traits.GetString(model.TraitProviderName)
			if providerName == "" {
				providerName = m.Name
			}
			typ.Attributes = append(typ.Attributes, AttributeSchema{
				Name:         model.SnakeCase(m.Name),
				ProviderName: providerName,
				Type:         st.typeOf(m.Shape, visited),
				Required:     traits.Has(model.TraitRequired),
				Description:  traits.GetString(model.TraitDocumentation),
			})
		}
		delete(visited, s.ID)
		return typ
	}

	return AttributeType{Kind: TypeObject}
}

// operationStructure resolves an operation shape's input or output member to
// its structure, or nil when the chain is incomplete.
func operationStructure(op *model.Shape, member string) *model.Shape {
	if op == nil || op.Kind != model.KindOperation {
		return nil
	}
	m := op.Member(member)
	if m == nil || m.Shape == nil || m.Shape.Kind != model.KindStructure {
		return nil
	}
	return m.Shape
}

// isSyntheticRef reports whether a member name is a structural reference
// injected by the loader ("operations[0]", "resources[1]", "errors[2]").
func isSyntheticRef(name string) bool {
	for _, prefix := range []string{"operations[", "resources[", "errors["} {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// isDataKind reports whether a target shape kind contributes an attribute
// when referenced directly from a resource.
func isDataKind(k model.ShapeKind) bool {
	switch k {
	case model.KindService, model.KindOperation, model.KindResource, model.KindUnit:
		return false
	}
	return true
}
