package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey records that an external event has been accepted for
// processing. The (scope, key) pair is unique; insertion is the atomic
// create-or-detect that gives the webhook pipeline its exactly-once guarantee.
type IdempotencyKey struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Scope     string          `gorm:"column:scope;not null;uniqueIndex:idx_idempotency_scope_key"`
	Key       string          `gorm:"column:key;not null;uniqueIndex:idx_idempotency_scope_key"`
	Response  json.RawMessage `gorm:"column:response;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (IdempotencyKey) TableName() string { return "idempotency_keys" }
