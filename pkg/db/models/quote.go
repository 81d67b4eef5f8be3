package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velocimech/velocimech-backend/pkg/types"
)

// Quote persists a pricing snapshot verbatim under a public identifier.
// Rows are write-once; later references must reproduce the snapshot exactly.
type Quote struct {
	ID        uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PublicID  string                `gorm:"column:public_id;not null;uniqueIndex"`
	Plate     *string               `gorm:"column:plate"`
	Snapshot  types.PricingSnapshot `gorm:"column:snapshot;type:jsonb;serializer:json;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (Quote) TableName() string { return "quotes" }
