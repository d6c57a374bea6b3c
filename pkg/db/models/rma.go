package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/enums"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/types"
)

// RMA is one return authorization for an order. Partial and multi-origin
// returns are expressed through the item rows.
type RMA struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID         uuid.UUID          `gorm:"column:store_id;type:uuid;not null;index:idx_rmas_store_status"`
	OrderID         uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	RMANumber       string             `gorm:"column:rma_number;not null;uniqueIndex"`
	CustomerID      *uuid.UUID         `gorm:"column:customer_id;type:uuid"`
	Status          enums.RMAStatus    `gorm:"column:status;type:rma_status;not null;default:'requested';index:idx_rmas_store_status"`
	RefundMethod    enums.RefundMethod `gorm:"column:refund_method;type:refund_method;not null"`
	RefundCents     money.Cents        `gorm:"column:refund_cents;not null;default:0"`
	RefundStatus    *enums.RefundStatus `gorm:"column:refund_status;type:refund_status"`
	RejectionReason *string            `gorm:"column:rejection_reason"`
	ApprovedBy      *uuid.UUID         `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time         `gorm:"column:approved_at"`
	RejectedBy      *uuid.UUID         `gorm:"column:rejected_by;type:uuid"`
	RejectedAt      *time.Time         `gorm:"column:rejected_at"`
	ReceivedAt      *time.Time         `gorm:"column:received_at"`
	RefundedAt      *time.Time         `gorm:"column:refunded_at"`
	CreditNoteID    *uuid.UUID         `gorm:"column:credit_note_id;type:uuid"`
	Metadata        types.JSONMap      `gorm:"column:metadata;type:jsonb"`
	Items           []RMAItem          `gorm:"foreignKey:RMAID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// RMAItem is one returned line. OriginalPriceCents is the order-time price
// snapshot and never changes after creation.
type RMAItem struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RMAID              uuid.UUID             `gorm:"column:rma_id;type:uuid;not null;index"`
	VariantID          uuid.UUID             `gorm:"column:variant_id;type:uuid;not null"`
	OriginID           uuid.UUID             `gorm:"column:origin_id;type:uuid;not null"`
	ShipmentID         *uuid.UUID            `gorm:"column:shipment_id;type:uuid"`
	Quantity           int                   `gorm:"column:quantity;not null"`
	Reason             string                `gorm:"column:reason;not null"`
	Condition          enums.ItemCondition   `gorm:"column:condition;type:item_condition;not null"`
	OriginalPriceCents money.Cents           `gorm:"column:original_price_cents;not null"`
	RefundCents        money.Cents           `gorm:"column:refund_cents;not null;default:0"`
	ReturnShipping     *types.ReturnShipping `gorm:"column:return_shipping;type:jsonb"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
}
