package policy

import (
	"testing"

	"github.com/vendaro/payout-core/pkg/config"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/money"
)

func newTestPolicy(t *testing.T) *ConditionPolicy {
	t.Helper()
	p, err := New(config.PolicyConfig{OpenedDeductionPct: 10, DamagedDeductionPct: 25})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestRefundFor(t *testing.T) {
	p := newTestPolicy(t)

	cases := []struct {
		name      string
		condition enums.ItemCondition
		price     money.Cents
		quantity  int
		want      money.Cents
	}{
		{"sealed refunds in full", enums.ItemConditionSealed, 5000, 1, 5000},
		{"opened loses ten percent", enums.ItemConditionOpened, 5000, 2, 9000},
		{"damaged loses a quarter", enums.ItemConditionDamaged, 3000, 1, 2250},
		{"deduction truncates toward zero", enums.ItemConditionDamaged, 99, 1, 75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.RefundFor(tc.condition, tc.price, tc.quantity)
			if err != nil {
				t.Fatalf("RefundFor failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d cents, got %d", tc.want, got)
			}
		})
	}
}

func TestRefundFor_rejectsBadInput(t *testing.T) {
	p := newTestPolicy(t)

	if _, err := p.RefundFor(enums.ItemConditionSealed, 5000, 0); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := p.RefundFor(enums.ItemConditionSealed, -1, 1); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
	if _, err := p.RefundFor(enums.ItemCondition("shredded"), 5000, 1); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown condition, got %v", err)
	}
}

func TestNew_rejectsOutOfRangePercent(t *testing.T) {
	if _, err := New(config.PolicyConfig{OpenedDeductionPct: -1}); err == nil {
		t.Fatal("expected error for negative percent")
	}
	if _, err := New(config.PolicyConfig{DamagedDeductionPct: 101}); err == nil {
		t.Fatal("expected error for percent above 100")
	}
}
