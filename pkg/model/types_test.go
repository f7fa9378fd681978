package model

import (
	"testing"
)

func TestShapeIDParts(t *testing.T) {
	tests := []struct {
		id        ShapeID
		namespace string
		name      string
	}{
		{"com.amazonaws.ec2#Vpc", "com.amazonaws.ec2", "Vpc"},
		{"smithy.api#String", "smithy.api", "String"},
		{"NoNamespace", "NoNamespace", "NoNamespace"},
	}

	for _, tt := range tests {
		if got := tt.id.Namespace(); got != tt.namespace {
			t.Errorf("Namespace(%q) = %q, want %q", tt.id, got, tt.namespace)
		}
		if got := tt.id.Name(); got != tt.name {
			t.Errorf("Name(%q) = %q, want %q", tt.id, got, tt.name)
		}
	}
}

func TestTablePreservesDeclarationOrder(t *testing.T) {
	table := NewTable()
	ids := []ShapeID{"a#Z", "a#A", "a#M", "a#B"}
	for _, id := range ids {
		table.Put(&Shape{ID: id, Kind: KindStructure})
	}

	got := table.IDs()
	if len(got) != len(ids) {
		t.Fatalf("expected %d shapes, got %d", len(ids), len(got))
	}
	for i, id := range ids {
		if got[i] != id {
			t.Errorf("position %d: got %s, want %s", i, got[i], id)
		}
	}
}

func TestTablePutReplacesWithoutReordering(t *testing.T) {
	table := NewTable()
	table.Put(&Shape{ID: "a#First", Kind: KindString})
	table.Put(&Shape{ID: "a#Second", Kind: KindString})
	table.Put(&Shape{ID: "a#First", Kind: KindInteger})

	if table.Len() != 2 {
		t.Fatalf("expected 2 shapes, got %d", table.Len())
	}
	if got := table.Get("a#First").Kind; got != KindInteger {
		t.Errorf("expected replaced shape kind integer, got %s", got)
	}
	if ids := table.IDs(); ids[0] != "a#First" {
		t.Errorf("replacement changed order: %v", ids)
	}
}

func TestShapesOfKind(t *testing.T) {
	table := NewTable()
	table.Put(&Shape{ID: "a#R1", Kind: KindResource})
	table.Put(&Shape{ID: "a#S", Kind: KindStructure})
	table.Put(&Shape{ID: "a#R2", Kind: KindResource})

	resources := table.ShapesOfKind(KindResource)
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
	if resources[0].ID != "a#R1" || resources[1].ID != "a#R2" {
		t.Errorf("resources out of order: %s, %s", resources[0].ID, resources[1].ID)
	}
}

func TestTraitSet(t *testing.T) {
	ts := TraitSet{
		TraitRequired:      nil,
		TraitDocumentation: "a VPC",
		TraitEnumAlias:     []any{"all", "any"},
	}

	if !ts.Has(TraitRequired) {
		t.Error("expected required trait present")
	}
	if ts.Has(TraitReadOnly) {
		t.Error("expected readOnly trait absent")
	}
	if got := ts.GetString(TraitDocumentation); got != "a VPC" {
		t.Errorf("GetString = %q", got)
	}
	if got := ts.GetString(TraitRequired); got != "" {
		t.Errorf("GetString on annotation trait = %q, want empty", got)
	}
	aliases := ts.GetStrings(TraitEnumAlias)
	if len(aliases) != 2 || aliases[0] != "all" || aliases[1] != "any" {
		t.Errorf("GetStrings = %v", aliases)
	}

	clone := ts.Clone()
	clone[TraitReadOnly] = nil
	if ts.Has(TraitReadOnly) {
		t.Error("Clone is not independent of the original")
	}
}

func TestEffectiveTraitsFallback(t *testing.T) {
	m := &Member{Name: "CidrBlock", Traits: TraitSet{TraitRequired: nil}}
	if !m.EffectiveTraits().Has(TraitRequired) {
		t.Error("expected fallback to direct traits before merging")
	}

	m.Effective = TraitSet{TraitReadOnly: nil}
	if m.EffectiveTraits().Has(TraitRequired) {
		t.Error("expected merged traits to win once set")
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CidrBlock", "cidr_block"},
		{"VPC", "vpc"},
		{"VpcId", "vpc_id"},
		{"EnableDNSSupport", "enable_dns_support"},
		{"SecurityGroupEgress", "security_group_egress"},
		{"IpProtocol", "ip_protocol"},
		{"already_snake", "already_snake"},
		{"Ipv6CidrBlock", "ipv6_cidr_block"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SnakeCase(tt.in); got != tt.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
