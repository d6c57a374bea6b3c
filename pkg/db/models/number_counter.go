package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/enums"
)

// NumberCounter holds one per-store-per-year document sequence. The row is
// incremented with a single atomic upsert so concurrent issuance never gaps
// or repeats.
type NumberCounter struct {
	StoreID   uuid.UUID        `gorm:"column:store_id;type:uuid;primaryKey"`
	Kind      enums.NumberKind `gorm:"column:kind;type:number_kind;primaryKey"`
	Year      int              `gorm:"column:year;primaryKey"`
	Sequence  int64            `gorm:"column:sequence;not null;default:0"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
