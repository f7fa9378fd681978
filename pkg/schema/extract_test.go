package schema

import (
	"testing"

	"github.com/resmod/resmod/pkg/model"
	"github.com/resmod/resmod/pkg/resolve"
)

// resolved builds a table from the given shapes and links all references.
func resolved(t *testing.T, shapes ...*model.Shape) *model.Table {
	t.Helper()
	table := model.NewTable()
	for _, s := range shapes {
		if s.Traits == nil {
			s.Traits = model.TraitSet{}
		}
		for _, m := range s.Members {
			if m.Traits == nil {
				m.Traits = model.TraitSet{}
			}
		}
		table.Put(s)
	}
	if err := resolve.Resolve(table); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := resolve.MergeTraits(table); err != nil {
		t.Fatalf("MergeTraits: %v", err)
	}
	return table
}

func TestExtractDirectMembers(t *testing.T) {
	table := resolved(t,
		&model.Shape{
			ID:   "aws.ec2#VPC",
			Kind: model.KindResource,
			Traits: model.TraitSet{
				model.TraitResourceType:  "ec2_vpc",
				model.TraitUpstreamType:  "AWS::EC2::VPC",
				model.TraitDocumentation: "A virtual network.",
				model.TraitTaggable:      nil,
			},
			Members: []*model.Member{
				{
					Name:   "VpcId",
					Target: "smithy.api#String",
					Traits: model.TraitSet{model.TraitReadOnly: nil, model.TraitProviderName: "VpcId"},
				},
				{
					Name:   "CidrBlock",
					Target: "smithy.api#String",
					Traits: model.TraitSet{
						model.TraitRequired:     nil,
						model.TraitCreateOnly:   nil,
						model.TraitProviderName: "CidrBlock",
					},
				},
				{
					Name:   "EnableDnsSupport",
					Target: "smithy.api#Boolean",
					Traits: model.TraitSet{model.TraitProviderName: "EnableDnsSupport"},
				},
			},
		},
	)

	rs, errs := NewExtractor(table).Extract(table.Get("aws.ec2#VPC"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if rs.TypeName != "ec2_vpc" || rs.UpstreamType != "AWS::EC2::VPC" {
		t.Errorf("identity = %q / %q", rs.TypeName, rs.UpstreamType)
	}
	if rs.Description != "A virtual network." || !rs.HasTags {
		t.Errorf("description/tags lost: %+v", rs)
	}
	if len(rs.Attributes) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(rs.Attributes))
	}

	id := rs.Attribute("vpc_id")
	if id == nil || !id.ReadOnly || id.ProviderName != "VpcId" {
		t.Errorf("vpc_id = %+v", id)
	}
	cidr := rs.Attribute("cidr_block")
	if cidr == nil || !cidr.Required || !cidr.CreateOnly || cidr.Type.Kind != TypeString {
		t.Errorf("cidr_block = %+v", cidr)
	}
	dns := rs.Attribute("enable_dns_support")
	if dns == nil || dns.Type.Kind != TypeBool || dns.Required || dns.ReadOnly {
		t.Errorf("enable_dns_support = %+v", dns)
	}
}

func TestExtractTypeNameFallback(t *testing.T) {
	table := resolved(t, &model.Shape{
		ID:   "com.example#SecurityGroupEgress",
		Kind: model.KindResource,
	})
	rs, _ := NewExtractor(table).Extract(table.Get("com.example#SecurityGroupEgress"))
	if rs.TypeName != "security_group_egress" {
		t.Errorf("type name = %q", rs.TypeName)
	}
}

func TestExtractEnumAttribute(t *testing.T) {
	table := resolved(t,
		&model.Shape{
			ID:   "a#Vpc",
			Kind: model.KindResource,
			Members: []*model.Member{
				{Name: "InstanceTenancy", Target: "a#Tenancy"},
			},
		},
		enumShape("a#Tenancy",
			enumMember("DEFAULT", "default"),
			enumMember("DEDICATED", "dedicated"),
		),
	)

	rs, errs := NewExtractor(table).Extract(table.Get("a#Vpc"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	attr := rs.Attribute("instance_tenancy")
	if attr == nil || attr.Type.Kind != TypeString || attr.Type.Enum != "tenancy" {
		t.Fatalf("instance_tenancy = %+v", attr)
	}
	def := rs.Enum("tenancy")
	if def == nil || len(def.Values) != 2 {
		t.Fatalf("enum definition missing: %+v", rs.Enums)
	}
}

func TestExtractListAndMapTypes(t *testing.T) {
	table := resolved(t,
		&model.Shape{
			ID:   "a#Vpc",
			Kind: model.KindResource,
			Members: []*model.Member{
				{Name: "CidrBlocks", Target: "a#CidrList"},
				{Name: "Options", Target: "a#OptionMap"},
			},
		},
		&model.Shape{
			ID:   "a#CidrList",
			Kind: model.KindList,
			Members: []*model.Member{
				{Name: "member", Target: "smithy.api#String"},
			},
		},
		&model.Shape{
			ID:   "a#OptionMap",
			Kind: model.KindMap,
			Members: []*model.Member{
				{Name: "key", Target: "smithy.api#String"},
				{Name: "value", Target: "smithy.api#Integer"},
			},
		},
	)

	rs, errs := NewExtractor(table).Extract(table.Get("a#Vpc"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	list := rs.Attribute("cidr_blocks")
	if list == nil || list.Type.Kind != TypeList || list.Type.Elem == nil || list.Type.Elem.Kind != TypeString {
		t.Errorf("cidr_blocks = %+v", list)
	}
	opts := rs.Attribute("options")
	if opts == nil || opts.Type.Kind != TypeMap || opts.Type.Elem == nil || opts.Type.Elem.Kind != TypeInt {
		t.Errorf("options = %+v", opts)
	}
}

func TestExtractNestedObject(t *testing.T) {
	table := resolved(t,
		&model.Shape{
			ID:   "a#Bucket",
			Kind: model.KindResource,
			Members: []*model.Member{
				{Name: "Encryption", Target: "a#EncryptionConfig"},
			},
		},
		&model.Shape{
			ID:   "a#EncryptionConfig",
			Kind: model.KindStructure,
			Members: []*model.Member{
				{
					Name:   "KmsKeyId",
					Target: "smithy.api#String",
					Traits: model.TraitSet{model.TraitRequired: nil},
				},
				{Name: "Enabled", Target: "smithy.api#Boolean"},
			},
		},
	)

	rs, errs := NewExtractor(table).Extract(table.Get("a#Bucket"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	enc := rs.Attribute("encryption")
	if enc == nil || enc.Type.Kind != TypeObject {
		t.Fatalf("encryption = %+v", enc)
	}
	if len(enc.Type.Attributes) != 2 {
		t.Fatalf("nested attributes = %+v", enc.Type.Attributes)
	}
	if enc.Type.Attributes[0].Name != "kms_key_id" || !enc.Type.Attributes[0].Required {
		t.Errorf("nested kms_key_id = %+v", enc.Type.Attributes[0])
	}
}

func TestExtractRecursiveStructure(t *testing.T) {
	table := resolved(t,
		&model.Shape{
			ID:   "a#Statement",
			Kind: model.KindResource,
			Members: []*model.Member{
				{Name: "Root", Target: "a#Node"},
			},
		},
		&model.Shape{
			ID:   "a#Node",
			Kind: model.KindStructure,
			Members: []*model.Member{
				{Name: "Value", Target: "smithy.api#String"},
				{Name: "Next", Target: "a#Node"},
			},
		},
	)

	rs, errs := NewExtractor(table).Extract(table.Get("a#Statement"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	root := rs.Attribute("root")
	if root == nil || root.Type.Kind != TypeObject {
		t.Fatalf("root = %+v", root)
	}
	// The recursive edge degrades to an opaque object instead of recursing.
	next := root.Type.Attributes[1]
	if next.Name != "next" || next.Type.Kind != TypeObject || len(next.Type.Attributes) != 0 {
		t.Errorf("next = %+v", next)
	}
}

func TestExtractDuplicateAttribute(t *testing.T) {
	table := resolved(t, &model.Shape{
		ID:   "a#Vpc",
		Kind: model.KindResource,
		Members: []*model.Member{
			{Name: "CidrBlock", Target: "smithy.api#String"},
			{Name: "cidr_block", Target: "smithy.api#String"},
		},
	})

	rs, errs := NewExtractor(table).Extract(table.Get("a#Vpc"))
	if len(errs) != 1 || errs[0].Code != ErrCodeDuplicateAttribute {
		t.Fatalf("expected one DUPLICATE_ATTRIBUTE error, got %v", errs)
	}
	if len(rs.Attributes) != 1 {
		t.Errorf("expected first declaration kept, got %d attributes", len(rs.Attributes))
	}
}

func TestExtractReadOnlyRequiredConstraint(t *testing.T) {
	table := resolved(t, &model.Shape{
		ID:   "a#Vpc",
		Kind: model.KindResource,
		Members: []*model.Member{
			{
				Name:   "VpcId",
				Target: "smithy.api#String",
				Traits: model.TraitSet{
					model.TraitReadOnly: nil,
					model.TraitRequired: nil,
				},
			},
			{Name: "CidrBlock", Target: "smithy.api#String"},
		},
	})

	rs, errs := NewExtractor(table).Extract(table.Get("a#Vpc"))
	if len(errs) != 1 || errs[0].Code != ErrCodeInvalidAttributeConstraint {
		t.Fatalf("expected one INVALID_ATTRIBUTE_CONSTRAINT error, got %v", errs)
	}
	if errs[0].Resource != "vpc" || errs[0].Attribute != "vpc_id" {
		t.Errorf("error diagnostics = %+v", errs[0])
	}
	// The defective attribute is skipped; the rest of the schema stands.
	if rs.Attribute("vpc_id") != nil || rs.Attribute("cidr_block") == nil {
		t.Errorf("attributes = %+v", rs.Attributes)
	}
}

func TestExtractEnumNameCollision(t *testing.T) {
	table := resolved(t,
		&model.Shape{
			ID:   "a#Vpc",
			Kind: model.KindResource,
			Members: []*model.Member{
				{Name: "InstanceTenancy", Target: "x#Tenancy"},
				{Name: "HostTenancy", Target: "y#Tenancy"},
			},
		},
		enumShape("x#Tenancy", enumMember("DEFAULT", "default")),
		enumShape("y#Tenancy", enumMember("DEDICATED", "dedicated")),
	)

	// Repeated extraction keeps the first-referenced definition every time.
	for i := 0; i < 20; i++ {
		rs, errs := NewExtractor(table).Extract(table.Get("a#Vpc"))
		if len(errs) != 1 || errs[0].Code != ErrCodeInvalidSchema {
			t.Fatalf("expected one INVALID_SCHEMA error, got %v", errs)
		}
		if errs[0].Attribute != "tenancy" {
			t.Errorf("error diagnostics = %+v", errs[0])
		}
		if len(rs.Enums) != 1 {
			t.Fatalf("enums = %+v", rs.Enums)
		}
		def := rs.Enums[0]
		if def.Name != "tenancy" || len(def.Values) != 1 || def.Values[0] != "default" {
			t.Fatalf("iteration %d: surviving definition = %+v", i, def)
		}
	}
}

func TestExtractWriteOnlyAttribute(t *testing.T) {
	table := resolved(t, &model.Shape{
		ID:   "a#DBInstance",
		Kind: model.KindResource,
		Members: []*model.Member{
			{
				Name:   "MasterUserPassword",
				Target: "smithy.api#String",
				Traits: model.TraitSet{model.TraitWriteOnly: nil},
			},
			{
				Name:   "Endpoint",
				Target: "smithy.api#String",
				Traits: model.TraitSet{model.TraitReadOnly: nil},
			},
		},
	})

	rs, errs := NewExtractor(table).Extract(table.Get("a#DBInstance"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	pw := rs.Attribute("master_user_password")
	if pw == nil || !pw.WriteOnly || pw.ReadOnly {
		t.Errorf("master_user_password = %+v", pw)
	}
	ep := rs.Attribute("endpoint")
	if ep == nil || ep.WriteOnly || !ep.ReadOnly {
		t.Errorf("endpoint = %+v", ep)
	}
}

func TestExtractSmithyLifecycle(t *testing.T) {
	table := resolved(t,
		&model.Shape{
			ID:   "a#Vpc",
			Kind: model.KindResource,
			Traits: model.TraitSet{
				model.TraitResourceType: "ec2_vpc",
			},
			Members: []*model.Member{
				{
					Name:   "VpcId",
					Target: "smithy.api#String",
					Traits: model.TraitSet{model.TraitReadOnly: nil},
				},
				{Name: "create", Target: "a#CreateVpc"},
				{Name: "read", Target: "a#DescribeVpc"},
				{Name: "delete", Target: "a#DeleteVpc"},
			},
		},
		&model.Shape{
			ID:   "a#CreateVpc",
			Kind: model.KindOperation,
			Members: []*model.Member{
				{Name: "input", Target: "a#CreateVpcInput"},
			},
		},
		&model.Shape{
			ID:   "a#DescribeVpc",
			Kind: model.KindOperation,
			Members: []*model.Member{
				{Name: "output", Target: "a#DescribeVpcOutput"},
			},
		},
		&model.Shape{ID: "a#DeleteVpc", Kind: model.KindOperation},
		&model.Shape{
			ID:   "a#CreateVpcInput",
			Kind: model.KindStructure,
			Members: []*model.Member{
				{
					Name:   "CidrBlock",
					Target: "smithy.api#String",
					Traits: model.TraitSet{model.TraitRequired: nil},
				},
			},
		},
		&model.Shape{
			ID:   "a#DescribeVpcOutput",
			Kind: model.KindStructure,
			Members: []*model.Member{
				{Name: "CidrBlock", Target: "smithy.api#String"},
				{Name: "State", Target: "smithy.api#String"},
				{Name: "Tags", Target: "smithy.api#String"},
			},
		},
	)

	rs, errs := NewExtractor(table).Extract(table.Get("a#Vpc"))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	// Identifier member, then create input, then read output extras.
	if len(rs.Attributes) != 3 {
		t.Fatalf("attributes = %+v", rs.Attributes)
	}
	if rs.Attributes[0].Name != "vpc_id" || !rs.Attributes[0].ReadOnly {
		t.Errorf("vpc_id = %+v", rs.Attributes[0])
	}
	cidr := rs.Attribute("cidr_block")
	if cidr == nil || !cidr.Required || cidr.ReadOnly {
		t.Errorf("cidr_block = %+v", cidr)
	}
	// State appears only in the read output, so only the provider writes it.
	state := rs.Attribute("state")
	if state == nil || !state.ReadOnly {
		t.Errorf("state = %+v", state)
	}
	if !rs.HasTags || rs.Attribute("tags") != nil {
		t.Error("expected Tags output member to fold into HasTags")
	}
}
