package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/enums"
)

// RMAApprovedEvent is emitted when a return request is approved and the
// shipping rule snapshot has been frozen.
type RMAApprovedEvent struct {
	RMAID         uuid.UUID           `json:"rma_id"`
	RMANumber     string              `json:"rma_number"`
	StoreID       uuid.UUID           `json:"store_id"`
	OrderID       uuid.UUID           `json:"order_id"`
	RefundMethod  enums.RefundMethod  `json:"refund_method"`
	ShippingPayer enums.ShippingPayer `json:"shipping_payer"`
	ApprovedBy    uuid.UUID           `json:"approved_by"`
	ApprovedAt    time.Time           `json:"approved_at"`
}

// RMARejectedEvent carries the rejection reason for downstream notification.
type RMARejectedEvent struct {
	RMAID      uuid.UUID `json:"rma_id"`
	RMANumber  string    `json:"rma_number"`
	StoreID    uuid.UUID `json:"store_id"`
	OrderID    uuid.UUID `json:"order_id"`
	Reason     string    `json:"reason"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	RejectedAt time.Time `json:"rejected_at"`
}

// RMARefundedEvent is emitted once the refund amount is fixed and the
// credit note has been issued.
type RMARefundedEvent struct {
	RMAID        uuid.UUID          `json:"rma_id"`
	RMANumber    string             `json:"rma_number"`
	StoreID      uuid.UUID          `json:"store_id"`
	OrderID      uuid.UUID          `json:"order_id"`
	RefundMethod enums.RefundMethod `json:"refund_method"`
	RefundCents  int64              `json:"refund_cents"`
	CreditNoteID *uuid.UUID         `json:"credit_note_id,omitempty"`
	RefundedAt   time.Time          `json:"refunded_at"`
}

// EarningRecordedEvent signals a new ledger entry in pending state.
type EarningRecordedEvent struct {
	EntryID     uuid.UUID              `json:"entry_id"`
	StoreID     uuid.UUID              `json:"store_id"`
	EntityType  enums.PayoutEntityType `json:"entity_type"`
	EntityID    uuid.UUID              `json:"entity_id"`
	OrderID     uuid.UUID              `json:"order_id"`
	SourceRef   string                 `json:"source_ref"`
	AmountCents int64                  `json:"amount_cents"`
}

// AdjustmentRecordedEvent signals a correction entry, usually negative.
type AdjustmentRecordedEvent struct {
	EntryID     uuid.UUID              `json:"entry_id"`
	StoreID     uuid.UUID              `json:"store_id"`
	EntityType  enums.PayoutEntityType `json:"entity_type"`
	EntityID    uuid.UUID              `json:"entity_id"`
	SourceRef   string                 `json:"source_ref"`
	AmountCents int64                  `json:"amount_cents"`
	Reason      string                 `json:"reason,omitempty"`
}

// EntriesPaidEvent reports a settled payout run.
type EntriesPaidEvent struct {
	PayoutRunID uuid.UUID   `json:"payout_run_id"`
	StoreID     uuid.UUID   `json:"store_id"`
	EntryIDs    []uuid.UUID `json:"entry_ids"`
	TotalCents  int64       `json:"total_cents"`
	PaidAt      time.Time   `json:"paid_at"`
}
