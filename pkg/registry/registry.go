package registry

import (
	"sync"

	"github.com/resmod/resmod/pkg/schema"
)

// Registry is an in-memory index of derived resource schemas. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	byType  map[string]*schema.ResourceSchema
	ordered []*schema.ResourceSchema
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byType: make(map[string]*schema.ResourceSchema)}
}

// Put inserts one schema. Inserting a type name that is already present is a
// DUPLICATE_RESOURCE_TYPE error.
func (r *Registry) Put(rs *schema.ResourceSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byType[rs.TypeName]; exists {
		return schema.NewDuplicateResourceTypeError(rs.TypeName)
	}
	r.byType[rs.TypeName] = rs
	r.ordered = append(r.ordered, rs)
	return nil
}

// PutSet inserts every schema of a derivation result. The first duplicate
// aborts the insert; schemas added before it stay registered.
func (r *Registry) PutSet(set *schema.Set) error {
	for _, rs := range set.Resources {
		if err := r.Put(rs); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the schema with the given resource type name, or nil.
func (r *Registry) Get(typeName string) *schema.ResourceSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[typeName]
}

// List returns all registered schemas in insertion order.
func (r *Registry) List() []*schema.ResourceSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*schema.ResourceSchema, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// EnumFor returns the enum definition backing an attribute, or nil when the
// attribute carries no enum values. List-of-enum attributes return their
// element definition.
func (r *Registry) EnumFor(typeName, attribute string) *schema.EnumDefinition {
	rs := r.Get(typeName)
	if rs == nil {
		return nil
	}
	attr := rs.Attribute(attribute)
	if attr == nil {
		return nil
	}

	enumName := attr.Type.Enum
	if enumName == "" && attr.Type.Elem != nil {
		enumName = attr.Type.Elem.Enum
	}
	if enumName == "" {
		return nil
	}
	return rs.Enum(enumName)
}

// LookupAlias resolves a declared enum alias for one attribute of one
// resource type to its canonical value. Matching is case-sensitive and
// exact. A value that is already canonical has no alias mapping and returns
// ok=false, as does an unknown value, attribute, or resource type.
func (r *Registry) LookupAlias(typeName, attribute, value string) (string, bool) {
	def := r.EnumFor(typeName, attribute)
	if def == nil {
		return "", false
	}
	return def.Resolve(value)
}
