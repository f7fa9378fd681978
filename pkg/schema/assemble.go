package schema

import (
	"github.com/go-playground/validator/v10"

	"github.com/resmod/resmod/pkg/model"
)

// Assembler derives and collects the schemas of every resource shape in a
// resolved table into one schema set.
type Assembler struct {
	validate *validator.Validate
}

// NewAssembler creates a schema assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Assemble extracts every resource shape of the table, in declaration order,
// into a schema set. Extraction and assembly errors are collected across the
// whole table; the returned set carries every schema that derived cleanly
// even when the error list is non-empty.
func (a *Assembler) Assemble(table *model.Table) (*Set, ErrorList) {
	extractor := NewExtractor(table)
	set := NewSet()
	var errs ErrorList

	for _, resource := range table.ShapesOfKind(model.KindResource) {
		rs, rsErrs := extractor.Extract(resource)
		errs = append(errs, rsErrs...)

		if err := a.validate.Struct(rs); err != nil {
			errs = append(errs, NewInvalidSchemaError(rs.TypeName, err))
			continue
		}

		if err := set.Add(rs); err != nil {
			var e *Error
			if de, ok := err.(*Error); ok {
				e = de
			} else {
				e = NewDuplicateResourceTypeError(rs.TypeName)
			}
			errs = append(errs, e)
		}
	}

	return set, errs
}
