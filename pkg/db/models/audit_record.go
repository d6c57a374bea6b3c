package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaro/payout-core/pkg/types"
)

// AuditRecord is one append-only entry in the state-change trail. Failures
// writing these never roll back the business transaction they describe.
type AuditRecord struct {
	ID           uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID      uuid.UUID     `gorm:"column:store_id;type:uuid;not null;index"`
	ActorID      uuid.UUID     `gorm:"column:actor_id;type:uuid;not null"`
	ActorRole    string        `gorm:"column:actor_role;not null"`
	Action       string        `gorm:"column:action;not null"`
	SubjectType  string        `gorm:"column:subject_type;not null;index:idx_audit_records_subject"`
	SubjectID    uuid.UUID     `gorm:"column:subject_id;type:uuid;not null;index:idx_audit_records_subject"`
	BeforeStatus *string       `gorm:"column:before_status"`
	AfterStatus  *string       `gorm:"column:after_status"`
	Context      types.JSONMap `gorm:"column:context;type:jsonb"`
	CreatedAt    time.Time     `gorm:"column:created_at;autoCreateTime"`
}
