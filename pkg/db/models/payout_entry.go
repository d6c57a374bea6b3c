package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/enums"
	"github.com/vendaro/payout-core/pkg/money"
)

// PayoutEntry is one append-only ledger row: money owed to (or clawed back
// from) a supplier or reseller. AmountCents is immutable after creation;
// corrections are new offsetting entries. The unique index on
// (store_id, entity_type, entity_id, source_ref) is what makes earning
// recording idempotent under concurrent retries.
type PayoutEntry struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID              `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_payout_entries_source;index:idx_payout_entries_entity"`
	EntityType  enums.PayoutEntityType `gorm:"column:entity_type;type:payout_entity_type;not null;uniqueIndex:ux_payout_entries_source;index:idx_payout_entries_entity"`
	EntityID    uuid.UUID              `gorm:"column:entity_id;type:uuid;not null;uniqueIndex:ux_payout_entries_source;index:idx_payout_entries_entity"`
	OrderID     uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	SourceRef   string                 `gorm:"column:source_ref;not null;uniqueIndex:ux_payout_entries_source"`
	AmountCents money.Cents            `gorm:"column:amount_cents;not null"`
	Status      enums.PayoutStatus     `gorm:"column:status;type:payout_status;not null;default:'pending'"`
	PayoutRunID *uuid.UUID             `gorm:"column:payout_run_id;type:uuid"`
	EligibleAt  *time.Time             `gorm:"column:eligible_at"`
	PaidAt      *time.Time             `gorm:"column:paid_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
