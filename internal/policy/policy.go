package policy

import (
	"fmt"

	"github.com/vendaro/payout-core/pkg/config"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/money"
)

// ConditionPolicy maps an item's return condition to the percentage of its
// original price withheld from the refund. Sealed items always refund in
// full; opened and damaged deductions come from configuration.
type ConditionPolicy struct {
	openedPct  int64
	damagedPct int64
}

// New builds a condition policy from configuration. Percentages outside
// [0, 100] are rejected rather than clamped.
func New(cfg config.PolicyConfig) (*ConditionPolicy, error) {
	for _, pct := range []int64{cfg.OpenedDeductionPct, cfg.DamagedDeductionPct} {
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("deduction percent %d out of range", pct)
		}
	}
	return &ConditionPolicy{
		openedPct:  cfg.OpenedDeductionPct,
		damagedPct: cfg.DamagedDeductionPct,
	}, nil
}

// DeductionPercent returns the withheld percentage for the condition.
func (p *ConditionPolicy) DeductionPercent(condition enums.ItemCondition) (int64, error) {
	switch condition {
	case enums.ItemConditionSealed:
		return 0, nil
	case enums.ItemConditionOpened:
		return p.openedPct, nil
	case enums.ItemConditionDamaged:
		return p.damagedPct, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid item condition %q", condition))
	}
}

// RefundFor computes the per-line refund: original price times quantity,
// less the condition deduction. Truncation happens once on the line total
// so a deduction never rounds the refund above the paid amount.
func (p *ConditionPolicy) RefundFor(condition enums.ItemCondition, originalPrice money.Cents, quantity int) (money.Cents, error) {
	if quantity < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if originalPrice.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "original price must not be negative")
	}

	pct, err := p.DeductionPercent(condition)
	if err != nil {
		return 0, err
	}

	gross := money.Cents(int64(originalPrice) * int64(quantity))
	deduction := gross.PercentOf(pct)
	return gross - deduction, nil
}
