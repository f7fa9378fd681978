package model

import (
	"sort"
	"strings"
)

// ShapeID is the globally-unique, namespace-qualified identifier of a shape
// within a model (e.g. "com.amazonaws.ec2#Vpc"). It is immutable and used as
// the shape table key.
type ShapeID string

// Name returns the shape name portion of the ID (after the '#').
func (id ShapeID) Name() string {
	if _, name, ok := strings.Cut(string(id), "#"); ok {
		return name
	}
	return string(id)
}

// Namespace returns the namespace portion of the ID (before the '#').
func (id ShapeID) Namespace() string {
	if ns, _, ok := strings.Cut(string(id), "#"); ok {
		return ns
	}
	return string(id)
}

// String implements fmt.Stringer.
func (id ShapeID) String() string { return string(id) }

// Trait IDs understood by the derivation stages. Smithy core traits keep
// their upstream IDs; constraints that Smithy has no core trait for (mutability,
// provider field renames, enum aliases) live under the resmod.api namespace so
// both loaders can attach them uniformly.
const (
	TraitRequired      = "smithy.api#required"
	TraitDocumentation = "smithy.api#documentation"
	TraitEnumValue     = "smithy.api#enumValue"
	TraitInput         = "smithy.api#input"
	TraitOutput        = "smithy.api#output"

	TraitCreateOnly   = "resmod.api#createOnly"
	TraitReadOnly     = "resmod.api#readOnly"
	TraitWriteOnly    = "resmod.api#writeOnly"
	TraitProviderName = "resmod.api#providerName"
	TraitEnumAlias    = "resmod.api#enumAlias"
	TraitResourceType = "resmod.api#resourceType"
	TraitUpstreamType = "resmod.api#upstreamType"
	TraitTaggable     = "resmod.api#taggable"
)

// TraitSet is a set of traits keyed by trait ID. Values hold the decoded JSON
// payload of the trait; annotation traits (required, createOnly, ...) carry nil.
type TraitSet map[string]any

// Has reports whether the trait with the given ID is present.
func (ts TraitSet) Has(id string) bool {
	_, ok := ts[id]
	return ok
}

// GetString returns the string payload of a trait, or "" if the trait is
// absent or not a string.
func (ts TraitSet) GetString(id string) string {
	if s, ok := ts[id].(string); ok {
		return s
	}
	return ""
}

// GetStrings returns the string-list payload of a trait. Single string
// payloads are returned as a one-element list.
func (ts TraitSet) GetStrings(id string) []string {
	switch v := ts[id].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Clone returns a shallow copy of the trait set.
func (ts TraitSet) Clone() TraitSet {
	out := make(TraitSet, len(ts))
	for k, v := range ts {
		out[k] = v
	}
	return out
}

// IDs returns the trait IDs in sorted order.
func (ts TraitSet) IDs() []string {
	ids := make([]string, 0, len(ts))
	for id := range ts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Member is a named reference from a shape to a target shape. Target is a
// reference, never ownership: the referenced shape stays owned by the Table.
// Shape (the resolved handle) and Effective (the merged trait set) are filled
// in by the resolver and are nil until resolution completes.
type Member struct {
	// Name is the member name as declared in the model document.
	Name string

	// Target is the unresolved shape ID this member points at.
	Target ShapeID

	// Traits are the traits attached directly to this member.
	Traits TraitSet

	// Shape is the resolved handle to the target shape. Set by the resolver.
	Shape *Shape

	// Effective is the merged trait set (direct traits over inherited ones).
	// Set by the trait merger; falls back to Traits when merging found
	// nothing to inherit.
	Effective TraitSet
}

// EffectiveTraits returns the merged trait set if resolution has run, and the
// directly-attached traits otherwise.
func (m *Member) EffectiveTraits() TraitSet {
	if m.Effective != nil {
		return m.Effective
	}
	return m.Traits
}

// Shape is one node of the model graph: a kind-tagged record with ordered
// members, attached traits, and mixin references. Shapes are owned exclusively
// by the Table and are never mutated after resolution completes.
type Shape struct {
	// ID is the shape's table key.
	ID ShapeID

	// Kind is the classified semantic kind.
	Kind ShapeKind

	// Members are the shape's members in declaration order. List shapes carry
	// a single "member" entry; map shapes carry "key" and "value" entries.
	Members []*Member

	// Traits are the traits attached directly to the shape.
	Traits TraitSet

	// Mixins are the shape IDs this shape composes, in declaration order.
	Mixins []ShapeID

	// Effective is the merged trait set computed by the trait merger.
	Effective TraitSet
}

// Member returns the member with the given name, or nil.
func (s *Shape) Member(name string) *Member {
	for _, m := range s.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// EffectiveTraits returns the merged trait set if resolution has run, and the
// directly-attached traits otherwise.
func (s *Shape) EffectiveTraits() TraitSet {
	if s.Effective != nil {
		return s.Effective
	}
	return s.Traits
}

// Table is the arena owning every shape of one model document, keyed by shape
// ID. References between shapes are IDs into this table, never recursive
// ownership, which makes cyclic shape graphs safe by construction.
type Table struct {
	shapes map[ShapeID]*Shape
	order  []ShapeID
}

// NewTable returns an empty shape table.
func NewTable() *Table {
	return &Table{shapes: make(map[ShapeID]*Shape)}
}

// Put inserts a shape, replacing any previous shape with the same ID.
func (t *Table) Put(s *Shape) {
	if _, exists := t.shapes[s.ID]; !exists {
		t.order = append(t.order, s.ID)
	}
	t.shapes[s.ID] = s
}

// Get returns the shape with the given ID, or nil.
func (t *Table) Get(id ShapeID) *Shape {
	return t.shapes[id]
}

// Len returns the number of shapes in the table.
func (t *Table) Len() int { return len(t.shapes) }

// IDs returns all shape IDs in document declaration order.
func (t *Table) IDs() []ShapeID {
	out := make([]ShapeID, len(t.order))
	copy(out, t.order)
	return out
}

// Shapes returns all shapes in document declaration order.
func (t *Table) Shapes() []*Shape {
	out := make([]*Shape, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.shapes[id])
	}
	return out
}

// ShapesOfKind returns all shapes of the given kind in declaration order.
func (t *Table) ShapesOfKind(kind ShapeKind) []*Shape {
	var out []*Shape
	for _, id := range t.order {
		if s := t.shapes[id]; s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
