package resolve

import (
	"github.com/resmod/resmod/pkg/model"
)

// Resolve links every member and mixin reference in the table to its target
// shape. Well-known prelude shapes are materialized on demand; any other
// missing target is a fatal dangling reference.
//
// Resolution walks the table iteratively and stores handles, never copies, so
// cycles terminate: each shape is visited exactly once regardless of how many
// references point back at it.
func Resolve(table *model.Table) error {
	for _, shape := range table.Shapes() {
		for _, mixin := range shape.Mixins {
			if table.Get(mixin) != nil {
				continue
			}
			if p := model.PreludeShape(mixin); p != nil {
				table.Put(p)
				continue
			}
			return model.NewDanglingReferenceError(shape.ID, "", mixin)
		}

		for _, m := range shape.Members {
			target := table.Get(m.Target)
			if target == nil {
				p := model.PreludeShape(m.Target)
				if p == nil {
					return model.NewDanglingReferenceError(shape.ID, m.Name, m.Target)
				}
				table.Put(p)
				target = p
			}
			m.Shape = target
		}
	}
	return nil
}
