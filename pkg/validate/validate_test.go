package validate

import (
	"testing"

	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
)

type sampleInput struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
	Method   string `json:"method" validate:"required,oneof=original wallet"`
}

func TestStructPasses(t *testing.T) {
	input := sampleInput{Name: "acme", Quantity: 2, Method: "wallet"}
	if err := Struct(input); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestStructReportsFieldsByJSONTag(t *testing.T) {
	err := Struct(sampleInput{Quantity: 0, Method: "cheque"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatal("expected coded error")
	}
	details, ok := coded.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected detail map, got %T", coded.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
	if details["quantity"] != "must be at least 1" {
		t.Fatalf("unexpected quantity detail %q", details["quantity"])
	}
	if details["method"] != "must be one of original wallet" {
		t.Fatalf("unexpected method detail %q", details["method"])
	}
}
