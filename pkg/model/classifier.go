package model

// ShapeKind is the closed set of semantic shape kinds. The classifier fails
// loudly for anything outside this set so new upstream kinds surface as errors
// instead of being silently mis-extracted.
type ShapeKind string

const (
	KindService   ShapeKind = "service"
	KindOperation ShapeKind = "operation"
	KindResource  ShapeKind = "resource"
	KindStructure ShapeKind = "structure"
	KindUnion     ShapeKind = "union"
	KindEnum      ShapeKind = "enum"
	KindIntEnum   ShapeKind = "intEnum"
	KindList      ShapeKind = "list"
	KindMap       ShapeKind = "map"
	KindString    ShapeKind = "string"
	KindBoolean   ShapeKind = "boolean"
	KindInteger   ShapeKind = "integer"
	KindLong      ShapeKind = "long"
	KindFloat     ShapeKind = "float"
	KindDouble    ShapeKind = "double"
	KindBlob      ShapeKind = "blob"
	KindTimestamp ShapeKind = "timestamp"
	KindUnit      ShapeKind = "unit"
)

var shapeKinds = map[string]ShapeKind{
	"service":   KindService,
	"operation": KindOperation,
	"resource":  KindResource,
	"structure": KindStructure,
	"union":     KindUnion,
	"enum":      KindEnum,
	"intEnum":   KindIntEnum,
	"list":      KindList,
	"map":       KindMap,
	"string":    KindString,
	"boolean":   KindBoolean,
	"integer":   KindInteger,
	"long":      KindLong,
	"float":     KindFloat,
	"double":    KindDouble,
	"blob":      KindBlob,
	"timestamp": KindTimestamp,
	"unit":      KindUnit,
}

// ClassifyKind maps a raw model "type" field to a ShapeKind. It returns an
// UNKNOWN_SHAPE_KIND error for any value outside the closed set.
func ClassifyKind(raw string) (ShapeKind, error) {
	if kind, ok := shapeKinds[raw]; ok {
		return kind, nil
	}
	return "", NewUnknownShapeKindError(raw)
}

// IsPrimitive reports whether the kind maps directly to a scalar attribute type.
func (k ShapeKind) IsPrimitive() bool {
	switch k {
	case KindString, KindBoolean, KindInteger, KindLong, KindFloat, KindDouble,
		KindBlob, KindTimestamp:
		return true
	}
	return false
}

// IsEnum reports whether the kind is a string or integer enumeration.
func (k ShapeKind) IsEnum() bool {
	return k == KindEnum || k == KindIntEnum
}

// preludeShapes maps well-known Smithy prelude shape IDs to their kinds.
// Prelude shapes are resolvable even when the model document does not carry
// them in its shape map.
var preludeShapes = map[ShapeID]ShapeKind{
	"smithy.api#String":           KindString,
	"smithy.api#Boolean":          KindBoolean,
	"smithy.api#PrimitiveBoolean": KindBoolean,
	"smithy.api#Integer":          KindInteger,
	"smithy.api#PrimitiveInteger": KindInteger,
	"smithy.api#Long":             KindLong,
	"smithy.api#PrimitiveLong":    KindLong,
	"smithy.api#Float":            KindFloat,
	"smithy.api#PrimitiveFloat":   KindFloat,
	"smithy.api#Double":           KindDouble,
	"smithy.api#PrimitiveDouble":  KindDouble,
	"smithy.api#Blob":             KindBlob,
	"smithy.api#Timestamp":        KindTimestamp,
	"smithy.api#Unit":             KindUnit,
}

// PreludeShape returns a synthetic shape for a well-known prelude ID, or nil
// if the ID is not a prelude shape.
func PreludeShape(id ShapeID) *Shape {
	kind, ok := preludeShapes[id]
	if !ok {
		return nil
	}
	return &Shape{ID: id, Kind: kind, Traits: TraitSet{}}
}
