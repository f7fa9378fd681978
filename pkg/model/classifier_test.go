package model

import (
	"errors"
	"testing"
)

func TestClassifyKind(t *testing.T) {
	for raw, want := range map[string]ShapeKind{
		"structure": KindStructure,
		"resource":  KindResource,
		"enum":      KindEnum,
		"intEnum":   KindIntEnum,
		"list":      KindList,
		"timestamp": KindTimestamp,
	} {
		got, err := ClassifyKind(raw)
		if err != nil {
			t.Fatalf("ClassifyKind(%q): %v", raw, err)
		}
		if got != want {
			t.Errorf("ClassifyKind(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestClassifyKindUnknown(t *testing.T) {
	_, err := ClassifyKind("document")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !IsCode(err, ErrCodeUnknownShapeKind) {
		t.Errorf("expected UNKNOWN_SHAPE_KIND, got %v", err)
	}

	var me *Error
	if !errors.As(err, &me) {
		t.Fatal("expected *model.Error")
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindString.IsPrimitive() || !KindTimestamp.IsPrimitive() {
		t.Error("expected string and timestamp to be primitive")
	}
	if KindStructure.IsPrimitive() || KindEnum.IsPrimitive() {
		t.Error("expected structure and enum to be non-primitive")
	}
	if !KindEnum.IsEnum() || !KindIntEnum.IsEnum() {
		t.Error("expected enum kinds to report IsEnum")
	}
}

func TestPreludeShape(t *testing.T) {
	s := PreludeShape("smithy.api#String")
	if s == nil || s.Kind != KindString {
		t.Fatalf("expected prelude string shape, got %+v", s)
	}
	if PreludeShape("com.example#String") != nil {
		t.Error("expected nil for non-prelude ID")
	}
}

func TestErrorCodesMatchWithErrorsIs(t *testing.T) {
	err := NewDanglingReferenceError("a#Vpc", "CidrBlock", "a#Missing")
	if !errors.Is(err, &Error{Code: ErrCodeDanglingReference}) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, &Error{Code: ErrCodeParse}) {
		t.Error("expected mismatched codes not to match")
	}
	if err.Target != "a#Missing" || err.Member != "CidrBlock" {
		t.Errorf("error lost diagnostics: %+v", err)
	}
}
