package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/enums"
	"github.com/vendaro/payout-core/pkg/money"
)

// RuleSnapshot captures the return-shipping rule exactly as it was when an
// RMA was approved. Immutable after approval: later rule edits must never
// change the economics of an already-approved return.
type RuleSnapshot struct {
	RuleID      uuid.UUID           `json:"rule_id"`
	Scope       enums.RuleScope     `json:"scope"`
	Payer       enums.ShippingPayer `json:"payer"`
	ChargeType  enums.ChargeType    `json:"charge_type"`
	ChargeValue int64               `json:"charge_value"`
}

// ReturnShipping is the frozen return-shipping liability for one RMA item.
type ReturnShipping struct {
	Payer        enums.ShippingPayer `json:"payer"`
	AmountCents  money.Cents         `json:"amount_cents"`
	RuleSnapshot RuleSnapshot        `json:"rule_snapshot"`
}

// Value serializes the snapshot to JSON.
func (r *ReturnShipping) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

// Scan decodes JSONB into the snapshot struct.
func (r *ReturnShipping) Scan(value interface{}) error {
	if value == nil {
		*r = ReturnShipping{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, r)
}
