package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is the tenant every record in this core is scoped to. Only the
// fields the payout core needs live here; profile data belongs to the
// platform's store service.
type Store struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
