package rma

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaro/payout-core/internal/audit"
	"github.com/vendaro/payout-core/internal/ledger"
	"github.com/vendaro/payout-core/pkg/db/models"
	"github.com/vendaro/payout-core/pkg/enums"
	"github.com/vendaro/payout-core/pkg/money"
	"github.com/vendaro/payout-core/pkg/outbox"
	"github.com/vendaro/payout-core/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// OrderReader answers questions about the originating order. The order
// service lives outside this core; callers inject an implementation.
type OrderReader interface {
	// ReturnableQuantity is the quantity of the variant shipped from the
	// origin that has not already been returned on another RMA.
	ReturnableQuantity(ctx context.Context, storeID, orderID, variantID, originID uuid.UUID) (int, error)
	// LineAttribution identifies who earned from the line, so refunds can
	// claw the earning back.
	LineAttribution(ctx context.Context, storeID, orderID, variantID, originID uuid.UUID) (enums.PayoutEntityType, uuid.UUID, error)
}

// CatalogReader resolves the category a variant belongs to, for
// category-scoped shipping rules. A nil category means "uncategorized".
type CatalogReader interface {
	CategoryFor(ctx context.Context, storeID, variantID uuid.UUID) (*uuid.UUID, error)
	// OriginalUnitPrice is the order-time price snapshot for the line.
	OriginalUnitPrice(ctx context.Context, storeID, orderID, variantID uuid.UUID) (money.Cents, error)
}

// numberIssuer draws document numbers inside the caller's transaction.
type numberIssuer interface {
	Next(ctx context.Context, storeID uuid.UUID, kind enums.NumberKind) (string, error)
}

// ruleResolver freezes the applicable return-shipping rule at approval.
type ruleResolver interface {
	Resolve(ctx context.Context, storeID, variantID uuid.UUID, categoryID *uuid.UUID, refundBase money.Cents) (*types.ReturnShipping, error)
}

// refundPolicy computes condition-deducted line refunds.
type refundPolicy interface {
	RefundFor(condition enums.ItemCondition, originalPrice money.Cents, quantity int) (money.Cents, error)
}

// adjustmentRecorder claws earnings back through the payout ledger inside
// the refund transaction.
type adjustmentRecorder interface {
	RecordAdjustmentInTx(ctx context.Context, tx *gorm.DB, input ledger.RecordAdjustmentInput) (*models.PayoutEntry, error)
}

// auditTrail appends audit records after the state change commits.
type auditTrail interface {
	Record(ctx context.Context, tx *gorm.DB, entry audit.Entry)
}
