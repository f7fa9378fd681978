package derive

import (
	"context"
	"testing"

	"github.com/resmod/resmod/pkg/cloudschema"
	"github.com/resmod/resmod/pkg/model"
	"github.com/resmod/resmod/pkg/schema"
)

const smithyDoc = `{
	"smithy": "2.0",
	"shapes": {
		"com.example.ec2#Subnet": {
			"type": "resource",
			"identifiers": {
				"SubnetId": {"target": "smithy.api#String"}
			},
			"create": {"target": "com.example.ec2#CreateSubnet"},
			"traits": {"resmod.api#resourceType": "ec2_subnet"}
		},
		"com.example.ec2#CreateSubnet": {
			"type": "operation",
			"input": {"target": "com.example.ec2#CreateSubnetInput"}
		},
		"com.example.ec2#CreateSubnetInput": {
			"type": "structure",
			"members": {
				"CidrBlock": {
					"target": "smithy.api#String",
					"traits": {"smithy.api#required": {}}
				},
				"AvailabilityZone": {"target": "smithy.api#String"}
			}
		}
	}
}`

const cloudDoc = `{
	"typeName": "AWS::EC2::VPC",
	"properties": {
		"VpcId": {"type": "string"},
		"CidrBlock": {"type": "string"},
		"InstanceTenancy": {"type": "string", "enum": ["default", "dedicated"]}
	},
	"required": ["CidrBlock"],
	"primaryIdentifier": ["/properties/VpcId"]
}`

func TestRunSingleSmithyDocument(t *testing.T) {
	result, err := New().Run(context.Background(), [][]byte{[]byte(smithyDoc)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if result.Format != "smithy" {
		t.Errorf("format = %q", result.Format)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	rs := result.Set.Get("ec2_subnet")
	if rs == nil {
		t.Fatal("expected ec2_subnet schema")
	}
	if a := rs.Attribute("subnet_id"); a == nil || !a.ReadOnly {
		t.Errorf("subnet_id = %+v", a)
	}
	if a := rs.Attribute("cidr_block"); a == nil || !a.Required {
		t.Errorf("cidr_block = %+v", a)
	}
}

func TestRunMixedFormats(t *testing.T) {
	docs := [][]byte{[]byte(smithyDoc), []byte(cloudDoc)}
	result, err := New().Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Format != "mixed" {
		t.Errorf("format = %q, want mixed", result.Format)
	}
	if result.Set.Len() != 2 {
		t.Fatalf("expected 2 schemas, got %d", result.Set.Len())
	}
	// Document order carries through to the output.
	if result.Set.Resources[0].TypeName != "ec2_subnet" || result.Set.Resources[1].TypeName != "ec2_vpc" {
		t.Errorf("order = [%s, %s]",
			result.Set.Resources[0].TypeName, result.Set.Resources[1].TypeName)
	}
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	docs := [][]byte{[]byte(smithyDoc), []byte(cloudDoc)}

	first, err := New(WithWorkers(1)).Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run(1 worker): %v", err)
	}
	second, err := New(WithWorkers(8)).Run(context.Background(), docs)
	if err != nil {
		t.Fatalf("Run(8 workers): %v", err)
	}

	if first.Set.Len() != second.Set.Len() {
		t.Fatalf("schema counts differ: %d vs %d", first.Set.Len(), second.Set.Len())
	}
	for i := range first.Set.Resources {
		if first.Set.Resources[i].TypeName != second.Set.Resources[i].TypeName {
			t.Errorf("position %d differs: %s vs %s", i,
				first.Set.Resources[i].TypeName, second.Set.Resources[i].TypeName)
		}
	}
}

func TestRunRegisteredAliases(t *testing.T) {
	loader := cloudschema.NewLoader()
	loader.AddAlias("InstanceTenancy", "shared", "default")

	result, err := New(WithCloudLoader(loader)).Run(context.Background(), [][]byte{[]byte(cloudDoc)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rs := result.Set.Get("ec2_vpc")
	if rs == nil {
		t.Fatal("expected ec2_vpc schema")
	}
	def := rs.Enum("vpc_instance_tenancy_enum")
	if def == nil {
		t.Fatalf("enum definitions = %+v", rs.Enums)
	}
	if got, ok := def.Resolve("shared"); !ok || got != "default" {
		t.Errorf("Resolve(shared) = %q, %v", got, ok)
	}
}

func TestRunAbortsOnParseError(t *testing.T) {
	_, err := New().Run(context.Background(), [][]byte{
		[]byte(smithyDoc),
		[]byte(`{"smithy": "2.0", "shapes": {`),
	})
	if err == nil {
		t.Fatal("expected run to abort on parse error")
	}
	if !model.IsCode(err, model.ErrCodeParse) {
		t.Errorf("expected MODEL_PARSE_ERROR, got %v", err)
	}
}

func TestRunAbortsOnDanglingReference(t *testing.T) {
	doc := `{
		"smithy": "2.0",
		"shapes": {
			"a#Thing": {
				"type": "structure",
				"members": {
					"Ref": {"target": "a#Missing"}
				}
			}
		}
	}`
	_, err := New().Run(context.Background(), [][]byte{[]byte(doc)})
	if !model.IsCode(err, model.ErrCodeDanglingReference) {
		t.Fatalf("expected DANGLING_REFERENCE, got %v", err)
	}
}

func TestRunNoDocuments(t *testing.T) {
	_, err := New().Run(context.Background(), nil)
	if !model.IsCode(err, model.ErrCodeParse) {
		t.Fatalf("expected MODEL_PARSE_ERROR, got %v", err)
	}
}

func TestRunCollectsDerivationErrors(t *testing.T) {
	// Two documents deriving the same resource type: the duplicate is a
	// collected error, not a run failure.
	dup := `{
		"typeName": "AWS::EC2::Subnet",
		"properties": {
			"SubnetId": {"type": "string"}
		},
		"primaryIdentifier": ["/properties/SubnetId"]
	}`
	result, err := New().Run(context.Background(), [][]byte{[]byte(smithyDoc), []byte(dup)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one collected error, got %v", result.Errors)
	}
	if !schema.IsCode(result.Errors.ErrOrNil(), schema.ErrCodeDuplicateResourceType) {
		t.Errorf("expected DUPLICATE_RESOURCE_TYPE, got %v", result.Errors)
	}
	if result.Set.Len() != 1 {
		t.Errorf("expected first schema kept, got %d", result.Set.Len())
	}
}

func TestMergeTablesReportsRedefinedShapes(t *testing.T) {
	first := model.NewTable()
	first.Put(&model.Shape{ID: "a#Vpc", Kind: model.KindResource})
	first.Put(&model.Shape{ID: "a#Tag", Kind: model.KindStructure})

	second := model.NewTable()
	redefinition := &model.Shape{
		ID:   "a#Vpc",
		Kind: model.KindResource,
		Members: []*model.Member{
			{Name: "VpcId", Target: "smithy.api#String", Traits: model.TraitSet{}},
		},
	}
	second.Put(redefinition)
	second.Put(&model.Shape{ID: "a#Subnet", Kind: model.KindResource})

	merged, redefined := mergeTables([]*model.Table{first, second})

	if merged.Len() != 3 {
		t.Fatalf("merged table has %d shapes", merged.Len())
	}
	if len(redefined) != 1 || redefined[0] != "a#Vpc" {
		t.Fatalf("redefined = %v, want [a#Vpc]", redefined)
	}
	// The later document's definition wins.
	if merged.Get("a#Vpc") != redefinition {
		t.Error("expected later definition to replace the earlier one")
	}

	_, none := mergeTables([]*model.Table{second})
	if len(none) != 0 {
		t.Errorf("single-table merge reported redefinitions: %v", none)
	}
}

func TestDetectLoader(t *testing.T) {
	d := New()

	l, err := d.DetectLoader([]byte(smithyDoc))
	if err != nil || l.Format() != "smithy" {
		t.Errorf("smithy detection = %v, %v", l, err)
	}
	l, err = d.DetectLoader([]byte(cloudDoc))
	if err != nil || l.Format() != "cloudschema" {
		t.Errorf("cloudschema detection = %v, %v", l, err)
	}
	if _, err := d.DetectLoader([]byte(`{"neither": true}`)); err == nil {
		t.Error("expected unknown format error")
	}
}

func TestLoadAndResolve(t *testing.T) {
	table, format, err := New().LoadAndResolve(context.Background(), []byte(cloudDoc))
	if err != nil {
		t.Fatalf("LoadAndResolve: %v", err)
	}
	if format != "cloudschema" {
		t.Errorf("format = %q", format)
	}
	vpc := table.Get("aws.ec2#VPC")
	if vpc == nil {
		t.Fatal("expected resolved VPC shape")
	}
	if m := vpc.Member("CidrBlock"); m == nil || m.Shape == nil {
		t.Error("expected member references linked")
	}
}
