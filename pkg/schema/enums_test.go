package schema

import (
	"testing"

	"github.com/resmod/resmod/pkg/model"
)

func enumShape(id model.ShapeID, members ...*model.Member) *model.Shape {
	return &model.Shape{ID: id, Kind: model.KindEnum, Members: members}
}

func enumMember(name string, value any, aliases ...string) *model.Member {
	traits := model.TraitSet{model.TraitEnumValue: value}
	if len(aliases) > 0 {
		vals := make([]any, len(aliases))
		for i, a := range aliases {
			vals[i] = a
		}
		traits[model.TraitEnumAlias] = vals
	}
	return &model.Member{Name: name, Target: "smithy.api#Unit", Traits: traits}
}

func TestNormalizeEnumOrderAndName(t *testing.T) {
	def, errs := NormalizeEnum(enumShape("a#InstanceTenancy",
		enumMember("DEFAULT", "default"),
		enumMember("DEDICATED", "dedicated"),
		enumMember("HOST", "host"),
	))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if def.Name != "instance_tenancy" {
		t.Errorf("name = %q", def.Name)
	}
	want := []string{"default", "dedicated", "host"}
	if len(def.Values) != len(want) {
		t.Fatalf("values = %v", def.Values)
	}
	for i, v := range want {
		if def.Values[i] != v {
			t.Errorf("value %d = %q, want %q", i, def.Values[i], v)
		}
	}
}

func TestNormalizeEnumIntegerValues(t *testing.T) {
	def, errs := NormalizeEnum(&model.Shape{
		ID:   "a#Protocol",
		Kind: model.KindIntEnum,
		Members: []*model.Member{
			enumMember("ALL", float64(-1)),
			enumMember("TCP", float64(6)),
			enumMember("UDP", float64(17)),
		},
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{"-1", "6", "17"}
	for i, v := range want {
		if def.Values[i] != v {
			t.Errorf("value %d = %q, want %q", i, def.Values[i], v)
		}
	}
}

func TestNormalizeEnumMemberNameFallback(t *testing.T) {
	def, errs := NormalizeEnum(enumShape("a#State",
		&model.Member{Name: "available", Target: "smithy.api#Unit", Traits: model.TraitSet{}},
	))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(def.Values) != 1 || def.Values[0] != "available" {
		t.Errorf("values = %v", def.Values)
	}
}

func TestNormalizeEnumAliases(t *testing.T) {
	def, errs := NormalizeEnum(enumShape("a#IpProtocol",
		enumMember("TCP", "tcp"),
		enumMember("ALL", "-1", "all", "any"),
	))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if got, ok := def.Resolve("all"); !ok || got != "-1" {
		t.Errorf("Resolve(all) = %q, %v", got, ok)
	}
	if got, ok := def.Resolve("any"); !ok || got != "-1" {
		t.Errorf("Resolve(any) = %q, %v", got, ok)
	}
	// Canonical values have no mapping of their own.
	if _, ok := def.Resolve("-1"); ok {
		t.Error("expected no mapping for a canonical value")
	}
	if !def.IsCanonical("-1") || def.IsCanonical("all") {
		t.Error("IsCanonical misclassified values")
	}
	// Matching is case-sensitive.
	if _, ok := def.Resolve("ALL"); ok {
		t.Error("expected alias matching to be case-sensitive")
	}
}

func TestNormalizeEnumAliasCollidesWithCanonical(t *testing.T) {
	// The alias precedes the canonical value it collides with; detection must
	// wait until all canonical values are collected.
	_, errs := NormalizeEnum(enumShape("a#IpProtocol",
		enumMember("ALL", "-1", "tcp"),
		enumMember("TCP", "tcp"),
	))
	if len(errs) != 1 || errs[0].Code != ErrCodeDuplicateAlias {
		t.Fatalf("expected one DUPLICATE_ALIAS error, got %v", errs)
	}
	if errs[0].Attribute != "ip_protocol" {
		t.Errorf("error enum = %q", errs[0].Attribute)
	}
}

func TestNormalizeEnumAliasCollidesWithAlias(t *testing.T) {
	def, errs := NormalizeEnum(enumShape("a#IpProtocol",
		enumMember("ALL", "-1", "any"),
		enumMember("TCP", "6", "any"),
	))
	if len(errs) != 1 || errs[0].Code != ErrCodeDuplicateAlias {
		t.Fatalf("expected one DUPLICATE_ALIAS error, got %v", errs)
	}
	// First declaration stands.
	if got, ok := def.Resolve("any"); !ok || got != "-1" {
		t.Errorf("Resolve(any) = %q, %v", got, ok)
	}
}

func TestNormalizeEnumDuplicateCanonicalValue(t *testing.T) {
	def, errs := NormalizeEnum(enumShape("a#State",
		enumMember("A", "on"),
		enumMember("B", "on"),
	))
	if len(errs) != 1 || errs[0].Code != ErrCodeDuplicateAlias {
		t.Fatalf("expected one DUPLICATE_ALIAS error, got %v", errs)
	}
	if len(def.Values) != 1 {
		t.Errorf("values = %v, want the duplicate dropped", def.Values)
	}
}
