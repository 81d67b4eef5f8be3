package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityBlock is an operator-defined occupied range (leave, supplier
// runs, vehicle maintenance). Blocks count as occupied for slot generation
// independently of bookings.
type AvailabilityBlock struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StartsAt  time.Time `gorm:"column:starts_at;not null;index"`
	EndsAt    time.Time `gorm:"column:ends_at;not null"`
	Reason    *string   `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AvailabilityBlock) TableName() string { return "availability_blocks" }
