package schema

import (
	"encoding/json"
	"strconv"

	"github.com/resmod/resmod/pkg/model"
)

// NormalizeEnum converts an enum or intEnum shape into a normalized
// definition: canonical values in declaration order plus an alias reverse
// map. Integer enum values canonicalize to their decimal string form so
// downstream consumers never branch on the value type.
//
// An alias that equals another alias or any canonical value is a
// DUPLICATE_ALIAS error; allowing it would make alias resolution ambiguous.
func NormalizeEnum(shape *model.Shape) (*EnumDefinition, ErrorList) {
	def := &EnumDefinition{Name: model.SnakeCase(shape.ID.Name())}
	var errs ErrorList

	canonical := make(map[string]bool, len(shape.Members))
	var pending []struct {
		alias, canonical string
	}

	for _, m := range shape.Members {
		traits := m.EffectiveTraits()
		value := enumMemberValue(m, traits)
		if canonical[value] {
			errs = append(errs, NewDuplicateAliasError(def.Name, value))
			continue
		}
		canonical[value] = true
		def.Values = append(def.Values, value)

		for _, alias := range traits.GetStrings(model.TraitEnumAlias) {
			pending = append(pending, struct{ alias, canonical string }{alias, value})
		}
	}

	// Aliases are checked after all canonical values are known: an alias may
	// precede the canonical value it collides with in declaration order.
	for _, p := range pending {
		if canonical[p.alias] {
			errs = append(errs, NewDuplicateAliasError(def.Name, p.alias))
			continue
		}
		if _, exists := def.Aliases[p.alias]; exists {
			errs = append(errs, NewDuplicateAliasError(def.Name, p.alias))
			continue
		}
		if def.Aliases == nil {
			def.Aliases = make(map[string]string)
		}
		def.Aliases[p.alias] = p.canonical
	}

	return def, errs
}

// enumMemberValue returns the canonical value of one enum member: the
// enumValue trait payload when present, the member name otherwise.
func enumMemberValue(m *model.Member, traits model.TraitSet) string {
	switch v := traits[model.TraitEnumValue].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return m.Name
}
