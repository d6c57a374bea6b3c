package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/enums"
)

// ReturnShippingRule is the live pricing policy for return shipping. RMAs
// never reference these rows after approval; they carry their own frozen
// snapshot instead.
type ReturnShippingRule struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	Scope       enums.RuleScope     `gorm:"column:scope;type:rule_scope;not null"`
	VariantID   *uuid.UUID          `gorm:"column:variant_id;type:uuid"`
	CategoryID  *uuid.UUID          `gorm:"column:category_id;type:uuid"`
	Payer       enums.ShippingPayer `gorm:"column:payer;type:shipping_payer;not null"`
	ChargeType  enums.ChargeType    `gorm:"column:charge_type;type:charge_type;not null"`
	ChargeValue int64               `gorm:"column:charge_value;not null"`
	Active      bool                `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
