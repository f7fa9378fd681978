package resolve

import (
	"github.com/resmod/resmod/pkg/model"
)

// exclusiveTraits lists trait pairs that cannot both be declared at the same
// precedence level. When the pair arrives from different levels, the higher
// precedence declaration wins and the other trait is dropped.
var exclusiveTraits = [][2]string{
	{model.TraitCreateOnly, model.TraitReadOnly},
	{model.TraitWriteOnly, model.TraitReadOnly},
}

// MergeTraits computes the effective trait set of every shape and member in
// the table. Precedence is: traits declared directly on the shape or member
// override inherited ones, and later mixins override earlier mixins.
// Structure members contributed by mixins are flattened into the shape ahead
// of its directly declared members, preserving mixin declaration order.
//
// Resolve must have run first so mixin references are known to exist.
func MergeTraits(table *model.Table) error {
	m := &merger{
		table: table,
		state: make(map[model.ShapeID]visitState, table.Len()),
	}
	for _, shape := range table.Shapes() {
		if err := m.merge(shape); err != nil {
			return err
		}
	}
	return nil
}

type visitState int

const (
	unvisited visitState = iota
	visiting
	done
)

type merger struct {
	table *model.Table
	state map[model.ShapeID]visitState
}

func (mg *merger) merge(s *model.Shape) error {
	switch mg.state[s.ID] {
	case done:
		return nil
	case visiting:
		// Mixin cycle. The shape's own traits stand; inheritance through the
		// cycle edge is dropped rather than recursing forever.
		return nil
	}
	mg.state[s.ID] = visiting
	defer func() { mg.state[s.ID] = done }()

	effective := model.TraitSet{}
	level := make(map[string]int)
	directLevel := len(s.Mixins)

	var inherited []*model.Member
	for i, id := range s.Mixins {
		mx := mg.table.Get(id)
		if mx == nil {
			continue
		}
		if err := mg.merge(mx); err != nil {
			return err
		}
		for tid, v := range mx.EffectiveTraits() {
			effective[tid] = v
			level[tid] = i
		}
		for _, im := range mx.Members {
			if s.Member(im.Name) != nil || memberNamed(inherited, im.Name) != nil {
				continue
			}
			inherited = append(inherited, &model.Member{
				Name:   im.Name,
				Target: im.Target,
				Traits: model.TraitSet{},
				Shape:  im.Shape,
			})
		}
	}
	if len(inherited) > 0 {
		s.Members = append(inherited, s.Members...)
	}

	for tid, v := range s.Traits {
		effective[tid] = v
		level[tid] = directLevel
	}
	if err := resolveExclusive(s.ID, "", effective, level); err != nil {
		return err
	}
	s.Effective = effective

	for _, mem := range s.Members {
		memEffective := model.TraitSet{}
		memLevel := make(map[string]int)
		for i, id := range s.Mixins {
			mx := mg.table.Get(id)
			if mx == nil {
				continue
			}
			base := mx.Member(mem.Name)
			if base == nil {
				continue
			}
			for tid, v := range base.EffectiveTraits() {
				memEffective[tid] = v
				memLevel[tid] = i
			}
		}
		for tid, v := range mem.Traits {
			memEffective[tid] = v
			memLevel[tid] = directLevel
		}
		if err := resolveExclusive(s.ID, mem.Name, memEffective, memLevel); err != nil {
			return err
		}
		mem.Effective = memEffective
	}
	return nil
}

func memberNamed(members []*model.Member, name string) *model.Member {
	for _, m := range members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// resolveExclusive enforces mutual exclusion between trait pairs. Same level
// is a conflict; across levels the higher precedence trait survives.
func resolveExclusive(shape model.ShapeID, member string, effective model.TraitSet, level map[string]int) error {
	for _, pair := range exclusiveTraits {
		a, b := pair[0], pair[1]
		if !effective.Has(a) || !effective.Has(b) {
			continue
		}
		la, lb := level[a], level[b]
		switch {
		case la == lb:
			return model.NewConflictingTraitError(shape, member, a, b)
		case la > lb:
			delete(effective, b)
		default:
			delete(effective, a)
		}
	}
	return nil
}
