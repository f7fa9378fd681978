package smithy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/resmod/resmod/pkg/model"
)

// FormatName identifies this loader in logs, metrics, and stored run records.
const FormatName = "smithy"

// Document is the decoded top-level envelope of a Smithy JSON AST model.
type Document struct {
	// Version is the Smithy IDL version (e.g. "2.0").
	Version string

	// Metadata is the model's free-form metadata block.
	Metadata map[string]any

	// Table is the loaded shape table.
	Table *model.Table
}

// Loader parses Smithy 2.0 JSON AST documents.
type Loader struct{}

// NewLoader creates a Smithy model loader.
func NewLoader() *Loader { return &Loader{} }

// Format returns the loader's format name.
func (l *Loader) Format() string { return FormatName }

// Load parses a model document into a shape table. Member declaration order
// is preserved; targets are not yet validated to exist.
func (l *Loader) Load(_ context.Context, data []byte) (*model.Table, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.Table, nil
}

// Detect reports whether the document looks like a Smithy JSON AST.
func Detect(data []byte) bool {
	var probe struct {
		Smithy string `json:"smithy"`
	}
	return json.Unmarshal(data, &probe) == nil && probe.Smithy != ""
}

type envelope struct {
	Smithy   string          `json:"smithy"`
	Metadata map[string]any  `json:"metadata"`
	Shapes   json.RawMessage `json:"shapes"`
}

type shapeRef struct {
	Target string          `json:"target"`
	Traits json.RawMessage `json:"traits"`
}

type rawShape struct {
	Type        string          `json:"type"`
	Members     json.RawMessage `json:"members"`
	Member      *shapeRef       `json:"member"`
	Key         *shapeRef       `json:"key"`
	Value       *shapeRef       `json:"value"`
	Input       *shapeRef       `json:"input"`
	Output      *shapeRef       `json:"output"`
	Errors      []shapeRef      `json:"errors"`
	Create      *shapeRef       `json:"create"`
	Put         *shapeRef       `json:"put"`
	Read        *shapeRef       `json:"read"`
	Update      *shapeRef       `json:"update"`
	Delete      *shapeRef       `json:"delete"`
	List        *shapeRef       `json:"list"`
	Identifiers json.RawMessage `json:"identifiers"`
	Operations  []shapeRef      `json:"operations"`
	Resources   []shapeRef      `json:"resources"`
	Traits      json.RawMessage `json:"traits"`
	Mixins      []shapeRef      `json:"mixins"`
}

// Parse decodes a full Smithy JSON AST document.
func Parse(data []byte) (*Document, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, model.NewParseError("malformed model document", err)
	}
	if env.Smithy == "" {
		return nil, model.NewParseError(`missing "smithy" version field`, nil)
	}

	doc := &Document{
		Version:  env.Smithy,
		Metadata: env.Metadata,
		Table:    model.NewTable(),
	}
	if len(env.Shapes) == 0 {
		return doc, nil
	}

	err := eachOrderedKey(env.Shapes, func(id string, raw json.RawMessage) error {
		shape, err := decodeShape(model.ShapeID(id), raw)
		if err != nil {
			return err
		}
		doc.Table.Put(shape)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeShape(id model.ShapeID, raw json.RawMessage) (*model.Shape, error) {
	var rs rawShape
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, model.NewParseError("malformed shape record", err).WithShape(id)
	}
	if rs.Type == "" {
		return nil, model.NewParseError(`shape record missing "type" field`, nil).WithShape(id)
	}

	kind, err := model.ClassifyKind(rs.Type)
	if err != nil {
		var me *model.Error
		if errors.As(err, &me) {
			return nil, me.WithShape(id)
		}
		return nil, err
	}

	traits, err := decodeTraits(rs.Traits)
	if err != nil {
		return nil, model.NewParseError("malformed traits", err).WithShape(id)
	}

	shape := &model.Shape{ID: id, Kind: kind, Traits: traits}

	for _, mix := range rs.Mixins {
		shape.Mixins = append(shape.Mixins, model.ShapeID(mix.Target))
	}

	// Resource identifiers come first: the provider supplies their values, so
	// they surface as read-only attributes.
	if len(rs.Identifiers) > 0 {
		err := eachOrderedKey(rs.Identifiers, func(name string, refRaw json.RawMessage) error {
			m, err := decodeMember(id, name, refRaw)
			if err != nil {
				return err
			}
			if m.Traits == nil {
				m.Traits = model.TraitSet{}
			}
			m.Traits[model.TraitReadOnly] = nil
			shape.Members = append(shape.Members, m)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(rs.Members) > 0 {
		err := eachOrderedKey(rs.Members, func(name string, refRaw json.RawMessage) error {
			m, err := decodeMember(id, name, refRaw)
			if err != nil {
				return err
			}
			shape.Members = append(shape.Members, m)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// Structural single references become synthetic members so the resolver
	// treats every outgoing edge uniformly.
	appendRef := func(name string, ref *shapeRef) error {
		if ref == nil {
			return nil
		}
		traits, err := decodeTraits(ref.Traits)
		if err != nil {
			return model.NewParseError("malformed member traits", err).WithShape(id).WithMember(name)
		}
		shape.Members = append(shape.Members, &model.Member{
			Name:   name,
			Target: model.ShapeID(ref.Target),
			Traits: traits,
		})
		return nil
	}
	if err := appendRef("member", rs.Member); err != nil {
		return nil, err
	}
	if err := appendRef("key", rs.Key); err != nil {
		return nil, err
	}
	if err := appendRef("value", rs.Value); err != nil {
		return nil, err
	}
	if err := appendRef("input", rs.Input); err != nil {
		return nil, err
	}
	if err := appendRef("output", rs.Output); err != nil {
		return nil, err
	}
	// Resource lifecycle operations keep their lifecycle role as the member
	// name so the extractor can tell create input from read output.
	if err := appendRef("create", rs.Create); err != nil {
		return nil, err
	}
	if err := appendRef("put", rs.Put); err != nil {
		return nil, err
	}
	if err := appendRef("read", rs.Read); err != nil {
		return nil, err
	}
	if err := appendRef("update", rs.Update); err != nil {
		return nil, err
	}
	if err := appendRef("delete", rs.Delete); err != nil {
		return nil, err
	}
	if err := appendRef("list", rs.List); err != nil {
		return nil, err
	}
	for i := range rs.Operations {
		if err := appendRef(fmt.Sprintf("operations[%d]", i), &rs.Operations[i]); err != nil {
			return nil, err
		}
	}
	for i := range rs.Resources {
		if err := appendRef(fmt.Sprintf("resources[%d]", i), &rs.Resources[i]); err != nil {
			return nil, err
		}
	}
	for i := range rs.Errors {
		if err := appendRef(fmt.Sprintf("errors[%d]", i), &rs.Errors[i]); err != nil {
			return nil, err
		}
	}

	return shape, nil
}

func decodeMember(shape model.ShapeID, name string, raw json.RawMessage) (*model.Member, error) {
	var ref shapeRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, model.NewParseError("malformed member record", err).WithShape(shape).WithMember(name)
	}
	if ref.Target == "" {
		return nil, model.NewParseError(`member missing "target" field`, nil).WithShape(shape).WithMember(name)
	}
	traits, err := decodeTraits(ref.Traits)
	if err != nil {
		return nil, model.NewParseError("malformed member traits", err).WithShape(shape).WithMember(name)
	}
	return &model.Member{
		Name:   name,
		Target: model.ShapeID(ref.Target),
		Traits: traits,
	}, nil
}

func decodeTraits(raw json.RawMessage) (model.TraitSet, error) {
	ts := model.TraitSet{}
	if len(raw) == 0 {
		return ts, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	for id, v := range m {
		// Annotation traits are encoded as empty objects; normalize to nil so
		// presence checks stay uniform.
		if obj, ok := v.(map[string]any); ok && len(obj) == 0 {
			v = nil
		}
		ts[id] = v
	}
	return ts, nil
}

func eachOrderedKey(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	return model.EachOrderedKey(raw, fn)
}
