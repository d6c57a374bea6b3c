package shippingrules

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	pkgerrors "github.com/vendaro/payout-core/pkg/errors"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/types"
)

// Resolver picks the return-shipping rule that applies to an item and
// freezes it into a snapshot. Resolution happens once, at approval.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	Resolve(ctx context.Context, storeID, variantID uuid.UUID, categoryID *uuid.UUID, refundBase money.Cents) (*types.ReturnShipping, error)
}

type resolver struct {
	repo Repository
}

// NewResolver wires a rule resolver with the required repository.
func NewResolver(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping rule repository required")
	}
	return &resolver{repo: repo}, nil
}

func (r *resolver) WithTx(tx *gorm.DB) Resolver {
	if tx == nil {
		return r
	}
	return &resolver{repo: r.repo.WithTx(tx)}
}

// Resolve returns the frozen liability for one item, or nil when no rule
// matches. SKU rules beat category rules beat global ones; within a scope
// the oldest rule wins so resolution stays deterministic.
func (r *resolver) Resolve(ctx context.Context, storeID, variantID uuid.UUID, categoryID *uuid.UUID, refundBase money.Cents) (*types.ReturnShipping, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if refundBase.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund base must not be negative")
	}

	rules, err := r.repo.ListActive(ctx, storeID)
	if err != nil {
		return nil, err
	}

	var best *models.ReturnShippingRule
	for i := range rules {
		rule := &rules[i]
		if !matches(rule, variantID, categoryID) {
			continue
		}
		if best == nil || rule.Scope.Precedence() < best.Scope.Precedence() {
			best = rule
		}
	}
	if best == nil {
		return nil, nil
	}

	amount, err := chargeFor(best, refundBase)
	if err != nil {
		return nil, err
	}
	return &types.ReturnShipping{
		Payer:       best.Payer,
		AmountCents: amount,
		RuleSnapshot: types.RuleSnapshot{
			RuleID:      best.ID,
			Scope:       best.Scope,
			Payer:       best.Payer,
			ChargeType:  best.ChargeType,
			ChargeValue: best.ChargeValue,
		},
	}, nil
}

func matches(rule *models.ReturnShippingRule, variantID uuid.UUID, categoryID *uuid.UUID) bool {
	switch rule.Scope {
	case enums.RuleScopeSKU:
		return rule.VariantID != nil && *rule.VariantID == variantID
	case enums.RuleScopeCategory:
		return rule.CategoryID != nil && categoryID != nil && *rule.CategoryID == *categoryID
	case enums.RuleScopeGlobal:
		return true
	default:
		return false
	}
}

func chargeFor(rule *models.ReturnShippingRule, refundBase money.Cents) (money.Cents, error) {
	switch rule.ChargeType {
	case enums.ChargeTypeFlat:
		return money.Cents(rule.ChargeValue), nil
	case enums.ChargeTypePercent:
		if rule.ChargeValue < 0 || rule.ChargeValue > 100 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("percent charge %d out of range", rule.ChargeValue))
		}
		return refundBase.PercentOf(rule.ChargeValue), nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid charge type %q", rule.ChargeType))
	}
}
