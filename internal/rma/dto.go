package rma

import (
	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/enums"
	"github.com/vendaro/payout-core/pkg/types"
)

// Actor identifies who is performing a state change. Authorization is the
// caller's job; this core only stamps identity onto the record and its
// audit trail.
type Actor struct {
	ID   uuid.UUID `json:"id" validate:"required"`
	Role string    `json:"role" validate:"required"`
}

// RequestItemInput is one line of a return request.
type RequestItemInput struct {
	VariantID  uuid.UUID           `json:"variant_id" validate:"required"`
	OriginID   uuid.UUID           `json:"origin_id" validate:"required"`
	ShipmentID *uuid.UUID          `json:"shipment_id,omitempty"`
	Quantity   int                 `json:"quantity" validate:"min=1"`
	Reason     string              `json:"reason" validate:"required"`
	Condition  enums.ItemCondition `json:"condition" validate:"required,oneof=sealed opened damaged"`
}

// RequestInput opens a return authorization for an order.
type RequestInput struct {
	StoreID      uuid.UUID          `json:"store_id" validate:"required"`
	OrderID      uuid.UUID          `json:"order_id" validate:"required"`
	CustomerID   *uuid.UUID         `json:"customer_id,omitempty"`
	RefundMethod enums.RefundMethod `json:"refund_method" validate:"required,oneof=original wallet cod_adjustment"`
	Items        []RequestItemInput `json:"items" validate:"required,min=1,dive"`
	Metadata     types.JSONMap      `json:"metadata,omitempty"`
	Actor        Actor              `json:"actor"`
}

// ApproveInput authorizes the return and freezes its economics.
type ApproveInput struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
	RMAID   uuid.UUID `json:"rma_id" validate:"required"`
	Actor   Actor     `json:"actor"`
}

// RejectInput declines the return with a required reason.
type RejectInput struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
	RMAID   uuid.UUID `json:"rma_id" validate:"required"`
	Reason  string    `json:"reason" validate:"required"`
	Actor   Actor     `json:"actor"`
}

// TransitionInput moves an RMA one step along the fulfillment path
// (schedule pickup, mark picked up, receive, close).
type TransitionInput struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
	RMAID   uuid.UUID `json:"rma_id" validate:"required"`
	Actor   Actor     `json:"actor"`
}

// RefundInput settles the return financially.
type RefundInput struct {
	StoreID uuid.UUID `json:"store_id" validate:"required"`
	RMAID   uuid.UUID `json:"rma_id" validate:"required"`
	Actor   Actor     `json:"actor"`
}

// ListInput is a filtered, paginated RMA query.
type ListInput struct {
	StoreID uuid.UUID       `json:"store_id" validate:"required"`
	Status  enums.RMAStatus `json:"status,omitempty"`
	OrderID uuid.UUID       `json:"order_id,omitempty"`
}
