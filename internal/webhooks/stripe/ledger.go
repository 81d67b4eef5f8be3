package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

// PaymentWebhookScope namespaces payment gateway event ids in the ledger.
const PaymentWebhookScope = "payment_webhook"

// Ledger is the durable exactly-once gate for at-least-once webhook
// deliveries. Unlike a TTL cache, rows live as long as the gateway may
// redeliver, which in practice means forever.
type Ledger struct {
	db    *gorm.DB
	scope string
}

// NewLedger builds an idempotency ledger for one event scope.
func NewLedger(db *gorm.DB, scope string) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("ledger db handle is required")
	}
	if scope == "" {
		return nil, errors.New("ledger scope is required")
	}
	return &Ledger{db: db, scope: scope}, nil
}

// Accept atomically records the event id. The return value reports whether
// this delivery is the first one: the insert either creates the row or hits
// the (scope, key) unique pair and affects nothing.
func (l *Ledger) Accept(ctx context.Context, eventID string, response json.RawMessage) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	row := &models.IdempotencyKey{
		Scope:    l.scope,
		Key:      eventID,
		Response: response,
	}
	result := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scope"}, {Name: "key"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, fmt.Errorf("accepting event into ledger: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Forget releases the event id after a processing failure so the gateway's
// next redelivery is treated as first again.
func (l *Ledger) Forget(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return l.db.WithContext(ctx).
		Where("scope = ? AND key = ?", l.scope, eventID).
		Delete(&models.IdempotencyKey{}).Error
}
