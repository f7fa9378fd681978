package cloudschema

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/resmod/resmod/pkg/model"
)

// FormatName identifies this loader in logs, metrics, and stored run records.
const FormatName = "cloudschema"

// Prelude targets shared with the Smithy loader so primitive properties
// resolve through the same path regardless of input format.
const (
	targetString  = model.ShapeID("smithy.api#String")
	targetBoolean = model.ShapeID("smithy.api#Boolean")
	targetInteger = model.ShapeID("smithy.api#Integer")
	targetDouble  = model.ShapeID("smithy.api#Double")
)

// Loader adapts resource schema documents into the shape table.
type Loader struct {
	validator docValidator

	// aliases maps property name -> ergonomic alias -> canonical value.
	// Resource schema documents carry no alias vocabulary of their own, so
	// aliases are registered by the caller and attached to the synthetic
	// enum shapes during loading.
	aliases map[string]map[string]string
}

// NewLoader creates a resource schema document loader.
func NewLoader() *Loader {
	return &Loader{aliases: make(map[string]map[string]string)}
}

// Format returns the loader's format name.
func (l *Loader) Format() string { return FormatName }

// AddAlias registers an ergonomic alias for a canonical enum value of the
// named property.
func (l *Loader) AddAlias(property, alias, canonical string) {
	if l.aliases[property] == nil {
		l.aliases[property] = make(map[string]string)
	}
	l.aliases[property][alias] = canonical
}

// Detect reports whether the document looks like a resource schema document.
func Detect(data []byte) bool {
	var probe struct {
		TypeName   string          `json:"typeName"`
		Properties json.RawMessage `json:"properties"`
	}
	return json.Unmarshal(data, &probe) == nil && probe.TypeName != "" && len(probe.Properties) > 0
}

type document struct {
	TypeName             string          `json:"typeName"`
	Description          string          `json:"description"`
	Properties           json.RawMessage `json:"properties"`
	Required             []string        `json:"required"`
	CreateOnlyProperties []string        `json:"createOnlyProperties"`
	ReadOnlyProperties   []string        `json:"readOnlyProperties"`
	WriteOnlyProperties  []string        `json:"writeOnlyProperties"`
	PrimaryIdentifier    []string        `json:"primaryIdentifier"`
	Definitions          json.RawMessage `json:"definitions"`
	Tagging              *struct {
		Taggable bool `json:"taggable"`
	} `json:"tagging"`
}

type property struct {
	Type        json.RawMessage `json:"type"`
	Description string          `json:"description"`
	Enum        []any           `json:"enum"`
	Items       *property       `json:"items"`
	Ref         string          `json:"$ref"`
	Properties  json.RawMessage `json:"properties"`
	Required    []string        `json:"required"`
}

// typeName returns the property's JSON schema type. Union types ("type":
// ["string","object"]) collapse to their first entry, matching upstream
// codegen behavior.
func (p *property) typeName() string {
	if len(p.Type) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(p.Type, &single); err == nil {
		return single
	}
	var multi []string
	if err := json.Unmarshal(p.Type, &multi); err == nil && len(multi) > 0 {
		return multi[0]
	}
	return ""
}

// Load parses one resource schema document into a shape table containing the
// resource shape plus synthetic shapes for enums, lists, and nested objects.
func (l *Loader) Load(_ context.Context, data []byte) (*model.Table, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, model.NewParseError("malformed resource schema document", err)
	}
	if doc.TypeName == "" {
		return nil, model.NewParseError(`document missing "typeName" field`, nil)
	}

	// Structural validation against the embedded CUE schema before any
	// semantic interpretation.
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, model.NewParseError("malformed resource schema document", err)
	}
	if err := l.validator.validate(generic); err != nil {
		return nil, model.NewParseError("invalid resource schema document", err)
	}

	ns, resName, resourceType, err := splitTypeName(doc.TypeName)
	if err != nil {
		return nil, err
	}

	table := model.NewTable()
	b := &tableBuilder{
		table:   table,
		ns:      ns,
		aliases: l.aliases,
	}

	if err := b.addDefinitions(doc.Definitions); err != nil {
		return nil, err
	}

	resource := &model.Shape{
		ID:   model.ShapeID(ns + "#" + resName),
		Kind: model.KindResource,
		Traits: model.TraitSet{
			model.TraitResourceType: resourceType,
			model.TraitUpstreamType: doc.TypeName,
		},
	}
	if doc.Description != "" {
		resource.Traits[model.TraitDocumentation] = doc.Description
	}

	required := toSet(doc.Required)
	createOnly := pointerSet(doc.CreateOnlyProperties)
	readOnly := pointerSet(doc.ReadOnlyProperties)
	writeOnly := pointerSet(doc.WriteOnlyProperties)
	identifier := pointerSet(doc.PrimaryIdentifier)

	hasTags := doc.Tagging != nil && doc.Tagging.Taggable

	err = model.EachOrderedKey(doc.Properties, func(name string, raw json.RawMessage) error {
		if name == "Tags" {
			hasTags = true
			return nil
		}

		var prop property
		if err := json.Unmarshal(raw, &prop); err != nil {
			return model.NewParseError("malformed property", err).
				WithShape(resource.ID).WithMember(name)
		}

		target, err := b.targetFor(resName, name, &prop)
		if err != nil {
			return err
		}

		traits := model.TraitSet{model.TraitProviderName: name}
		if prop.Description != "" {
			traits[model.TraitDocumentation] = prop.Description
		}
		if required[name] {
			traits[model.TraitRequired] = nil
		}
		if createOnly[name] {
			traits[model.TraitCreateOnly] = nil
		}
		if readOnly[name] || identifier[name] {
			traits[model.TraitReadOnly] = nil
		}
		if writeOnly[name] {
			traits[model.TraitWriteOnly] = nil
		}

		resource.Members = append(resource.Members, &model.Member{
			Name:   name,
			Target: target,
			Traits: traits,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if hasTags {
		resource.Traits[model.TraitTaggable] = nil
	}

	table.Put(resource)
	return table, nil
}

// tableBuilder accumulates synthetic shapes while converting one document.
type tableBuilder struct {
	table   *model.Table
	ns      string
	aliases map[string]map[string]string
}

// targetFor converts a property schema into a member target, adding synthetic
// shapes to the table as needed.
func (b *tableBuilder) targetFor(owner, name string, prop *property) (model.ShapeID, error) {
	if prop.Ref != "" {
		defName, ok := strings.CutPrefix(prop.Ref, "#/definitions/")
		if !ok {
			return "", model.NewParseError(fmt.Sprintf("unsupported $ref %q", prop.Ref), nil).
				WithMember(name)
		}
		return model.ShapeID(b.ns + "#" + defName), nil
	}

	if len(prop.Enum) > 0 {
		return b.addEnum(owner, name, prop.Enum)
	}

	switch prop.typeName() {
	case "string":
		return targetString, nil
	case "boolean":
		return targetBoolean, nil
	case "integer":
		return targetInteger, nil
	case "number":
		return targetDouble, nil
	case "array":
		if prop.Items == nil {
			return "", model.NewParseError("array property missing items", nil).WithMember(name)
		}
		elem, err := b.targetFor(owner, name+"Item", prop.Items)
		if err != nil {
			return "", err
		}
		id := model.ShapeID(fmt.Sprintf("%s#%s%sList", b.ns, owner, name))
		b.table.Put(&model.Shape{
			ID:     id,
			Kind:   model.KindList,
			Traits: model.TraitSet{},
			Members: []*model.Member{
				{Name: "member", Target: elem, Traits: model.TraitSet{}},
			},
		})
		return id, nil
	case "object", "":
		if len(prop.Properties) > 0 {
			return b.addStructure(owner+name, prop.Properties, prop.Required)
		}
		// Free-form objects degrade to a string-valued map; there is nothing
		// further to derive from them.
		id := model.ShapeID(fmt.Sprintf("%s#%s%sMap", b.ns, owner, name))
		b.table.Put(&model.Shape{
			ID:     id,
			Kind:   model.KindMap,
			Traits: model.TraitSet{},
			Members: []*model.Member{
				{Name: "key", Target: targetString, Traits: model.TraitSet{}},
				{Name: "value", Target: targetString, Traits: model.TraitSet{}},
			},
		})
		return id, nil
	default:
		return "", model.NewParseError(
			fmt.Sprintf("unsupported property type %q", prop.typeName()), nil).WithMember(name)
	}
}

// addEnum creates a synthetic enum shape for a property carrying an enum
// list. Integer enum values canonicalize to their decimal string form.
func (b *tableBuilder) addEnum(owner, name string, values []any) (model.ShapeID, error) {
	id := model.ShapeID(fmt.Sprintf("%s#%s%sEnum", b.ns, owner, name))
	shape := &model.Shape{ID: id, Kind: model.KindEnum, Traits: model.TraitSet{}}

	aliasesByCanonical := make(map[string][]string)
	for alias, canonical := range b.aliases[name] {
		aliasesByCanonical[canonical] = append(aliasesByCanonical[canonical], alias)
	}

	for _, v := range values {
		canonical, err := enumValueString(v)
		if err != nil {
			return "", model.NewParseError("unsupported enum value", err).WithShape(id)
		}
		traits := model.TraitSet{model.TraitEnumValue: canonical}
		if aliases := aliasesByCanonical[canonical]; len(aliases) > 0 {
			traits[model.TraitEnumAlias] = aliases
		}
		shape.Members = append(shape.Members, &model.Member{
			Name:   canonical,
			Target: targetString,
			Traits: traits,
		})
	}

	b.table.Put(shape)
	return id, nil
}

// addStructure creates a synthetic structure shape for an inline object.
func (b *tableBuilder) addStructure(name string, props json.RawMessage, required []string) (model.ShapeID, error) {
	id := model.ShapeID(b.ns + "#" + name)
	shape := &model.Shape{ID: id, Kind: model.KindStructure, Traits: model.TraitSet{}}

	req := toSet(required)
	err := model.EachOrderedKey(props, func(memberName string, raw json.RawMessage) error {
		var prop property
		if err := json.Unmarshal(raw, &prop); err != nil {
			return model.NewParseError("malformed property", err).
				WithShape(id).WithMember(memberName)
		}
		target, err := b.targetFor(name, memberName, &prop)
		if err != nil {
			return err
		}
		traits := model.TraitSet{model.TraitProviderName: memberName}
		if prop.Description != "" {
			traits[model.TraitDocumentation] = prop.Description
		}
		if req[memberName] {
			traits[model.TraitRequired] = nil
		}
		shape.Members = append(shape.Members, &model.Member{
			Name:   memberName,
			Target: target,
			Traits: traits,
		})
		return nil
	})
	if err != nil {
		return "", err
	}

	b.table.Put(shape)
	return id, nil
}

// addDefinitions converts the document's definitions block into shapes so
// $ref targets resolve through the regular reference resolver.
func (b *tableBuilder) addDefinitions(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	return model.EachOrderedKey(raw, func(name string, defRaw json.RawMessage) error {
		var def property
		if err := json.Unmarshal(defRaw, &def); err != nil {
			return model.NewParseError("malformed definition", err).
				WithShape(model.ShapeID(b.ns + "#" + name))
		}

		switch {
		case len(def.Enum) > 0:
			// Definition-level enums keep the definition name as shape name.
			id := model.ShapeID(b.ns + "#" + name)
			shape := &model.Shape{ID: id, Kind: model.KindEnum, Traits: model.TraitSet{}}
			for _, v := range def.Enum {
				canonical, err := enumValueString(v)
				if err != nil {
					return model.NewParseError("unsupported enum value", err).WithShape(id)
				}
				shape.Members = append(shape.Members, &model.Member{
					Name:   canonical,
					Target: targetString,
					Traits: model.TraitSet{model.TraitEnumValue: canonical},
				})
			}
			b.table.Put(shape)
			return nil
		case len(def.Properties) > 0:
			_, err := b.addStructure(name, def.Properties, def.Required)
			return err
		default:
			// Scalar definition: alias it as a structure-free shape by
			// resolving to the primitive target under the definition's name.
			target, err := b.targetFor(name, name, &def)
			if err != nil {
				return err
			}
			prelude := model.PreludeShape(target)
			if prelude == nil {
				// Non-primitive scalar definitions (arrays, maps) already
				// produced a synthetic shape; re-key it under the def name.
				if s := b.table.Get(target); s != nil {
					b.table.Put(&model.Shape{
						ID:      model.ShapeID(b.ns + "#" + name),
						Kind:    s.Kind,
						Members: s.Members,
						Traits:  s.Traits,
					})
					return nil
				}
				return model.NewParseError("unsupported definition", nil).
					WithShape(model.ShapeID(b.ns + "#" + name))
			}
			b.table.Put(&model.Shape{
				ID:     model.ShapeID(b.ns + "#" + name),
				Kind:   prelude.Kind,
				Traits: model.TraitSet{},
			})
			return nil
		}
	})
}

// splitTypeName parses an upstream type name of the form
// "AWS::EC2::VPC" into a namespace ("aws.ec2"), shape name ("VPC"), and
// canonical resource type name ("ec2_vpc").
func splitTypeName(typeName string) (ns, shapeName, resourceType string, err error) {
	parts := strings.Split(typeName, "::")
	if len(parts) != 3 {
		return "", "", "", model.NewParseError(
			fmt.Sprintf("invalid type name format %q", typeName), nil)
	}
	vendor := strings.ToLower(parts[0])
	service := strings.ToLower(parts[1])
	ns = vendor + "." + service
	shapeName = parts[2]
	resourceType = service + "_" + model.SnakeCase(parts[2])
	return ns, shapeName, resourceType, nil
}

func enumValueString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("enum value %v has unsupported type %T", v, v)
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// pointerSet converts property pointers ("/properties/CidrBlock") into a set
// of property names. Nested pointers keep only the top-level property.
func pointerSet(pointers []string) map[string]bool {
	set := make(map[string]bool, len(pointers))
	for _, p := range pointers {
		name, ok := strings.CutPrefix(p, "/properties/")
		if !ok {
			continue
		}
		if i := strings.IndexByte(name, '/'); i >= 0 {
			name = name[:i]
		}
		set[name] = true
	}
	return set
}
