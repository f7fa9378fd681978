package schema

// TypeKind is the closed set of canonical attribute type kinds. Upstream
// shape kinds collapse into this set: long and integer both become int,
// float and double both become float, blobs and timestamps surface as
// strings.
type TypeKind string

const (
	TypeString TypeKind = "string"
	TypeBool   TypeKind = "bool"
	TypeInt    TypeKind = "int"
	TypeFloat  TypeKind = "float"
	TypeList   TypeKind = "list"
	TypeMap    TypeKind = "map"
	TypeObject TypeKind = "object"
)

// AttributeType is the canonical type of an attribute. Lists carry their
// element type in Elem, maps their value type (map keys are always strings).
// String-kinded types may reference an enum definition by name.
type AttributeType struct {
	// Kind is the canonical type kind.
	Kind TypeKind `json:"kind" validate:"required,oneof=string bool int float list map object"`

	// Elem is the element type for lists and the value type for maps.
	Elem *AttributeType `json:"elem,omitempty"`

	// Enum names the enum definition constraining this value, if any.
	Enum string `json:"enum,omitempty"`

	// Attributes are the nested attributes of an object type, in
	// declaration order.
	Attributes []AttributeSchema `json:"attributes,omitempty"`
}

// AttributeSchema is one derived attribute of a resource schema.
type AttributeSchema struct {
	// Name is the canonical snake_case attribute name.
	Name string `json:"name" validate:"required"`

	// ProviderName is the upstream field name the provider wire format uses.
	ProviderName string `json:"provider_name" validate:"required"`

	// Type is the canonical attribute type.
	Type AttributeType `json:"type"`

	// Required marks attributes that must be supplied on create.
	Required bool `json:"required,omitempty"`

	// CreateOnly marks attributes that cannot change without replacement.
	CreateOnly bool `json:"create_only,omitempty"`

	// ReadOnly marks attributes whose value only the provider supplies.
	ReadOnly bool `json:"read_only,omitempty"`

	// WriteOnly marks attributes the provider never reads back (secrets).
	WriteOnly bool `json:"write_only,omitempty"`

	// Description is the upstream documentation string, if any.
	Description string `json:"description,omitempty"`
}

// EnumDefinition is a normalized enumeration: canonical values in their
// declared order plus a reverse map from ergonomic aliases to canonical
// values. All matching is case-sensitive and exact.
type EnumDefinition struct {
	// Name is the enum's name, unique within one resource schema.
	Name string `json:"name" validate:"required"`

	// Values are the canonical values in canonical order.
	Values []string `json:"values" validate:"required,min=1"`

	// Aliases maps each alias to its canonical value.
	Aliases map[string]string `json:"aliases,omitempty"`
}

// Resolve maps an alias to its canonical value. Canonical values themselves
// have no mapping: passing one returns ok=false, which callers read as
// "use the input as-is".
func (e *EnumDefinition) Resolve(value string) (string, bool) {
	canonical, ok := e.Aliases[value]
	return canonical, ok
}

// IsCanonical reports whether value is one of the canonical values.
func (e *EnumDefinition) IsCanonical(value string) bool {
	for _, v := range e.Values {
		if v == value {
			return true
		}
	}
	return false
}

// ResourceSchema is the canonical derived schema of one resource type.
type ResourceSchema struct {
	// TypeName is the canonical resource type name (e.g. "ec2_vpc").
	TypeName string `json:"type_name" validate:"required"`

	// UpstreamType is the provider's native type identifier
	// (e.g. "AWS::EC2::VPC"), when the source model carries one.
	UpstreamType string `json:"upstream_type,omitempty"`

	// Description is the upstream documentation string, if any.
	Description string `json:"description,omitempty"`

	// Attributes are the derived attributes in declaration order.
	Attributes []AttributeSchema `json:"attributes" validate:"dive"`

	// Enums are the enum definitions referenced by the attributes, ordered
	// by name for deterministic output.
	Enums []EnumDefinition `json:"enums,omitempty" validate:"dive"`

	// HasTags marks resources that support provider-managed tagging.
	HasTags bool `json:"has_tags,omitempty"`
}

// Attribute returns the attribute with the given canonical name, or nil.
func (r *ResourceSchema) Attribute(name string) *AttributeSchema {
	for i := range r.Attributes {
		if r.Attributes[i].Name == name {
			return &r.Attributes[i]
		}
	}
	return nil
}

// Enum returns the enum definition with the given name, or nil.
func (r *ResourceSchema) Enum(name string) *EnumDefinition {
	for i := range r.Enums {
		if r.Enums[i].Name == name {
			return &r.Enums[i]
		}
	}
	return nil
}

// Set is the output of one derivation run: every derived resource schema in
// source declaration order.
type Set struct {
	// Resources are the derived schemas in declaration order.
	Resources []*ResourceSchema `json:"resources"`

	byType map[string]*ResourceSchema
}

// NewSet creates an empty schema set.
func NewSet() *Set {
	return &Set{byType: make(map[string]*ResourceSchema)}
}

// Add inserts a schema. It returns a DUPLICATE_RESOURCE_TYPE error if a
// schema with the same type name is already present.
func (s *Set) Add(rs *ResourceSchema) error {
	if _, exists := s.byType[rs.TypeName]; exists {
		return NewDuplicateResourceTypeError(rs.TypeName)
	}
	s.Resources = append(s.Resources, rs)
	s.byType[rs.TypeName] = rs
	return nil
}

// Get returns the schema with the given resource type name, or nil.
func (s *Set) Get(typeName string) *ResourceSchema {
	return s.byType[typeName]
}

// Len returns the number of schemas in the set.
func (s *Set) Len() int { return len(s.Resources) }
