package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velocimech/velocimech-backend/pkg/enums"
)

// LookupLog is the append-only audit row for every identity lookup attempt.
// It doubles as the rate-limit counter and the registry cost ledger; rows are
// never updated or deleted.
type LookupLog struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PlateHash   string             `gorm:"column:plate_hash;not null;index"`
	RequesterIP string             `gorm:"column:requester_ip;not null;index:idx_lookup_logs_ip_created"`
	Fingerprint *string            `gorm:"column:fingerprint;index"`
	Source      enums.LookupSource `gorm:"column:source;not null"`
	Status      enums.LookupStatus `gorm:"column:status;not null"`
	CostCents   int64              `gorm:"column:cost_cents;not null;default:0"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime;index:idx_lookup_logs_ip_created"`
}

func (LookupLog) TableName() string { return "lookup_logs" }
