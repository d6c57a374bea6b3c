package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/money"
)

// CreditNote records a refund issued to a customer as a financial document.
type CreditNote struct {
	ID          uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID   `gorm:"column:store_id;type:uuid;not null;index"`
	RMAID       uuid.UUID   `gorm:"column:rma_id;type:uuid;not null;index"`
	Number      string      `gorm:"column:number;not null;uniqueIndex"`
	AmountCents money.Cents `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
}
