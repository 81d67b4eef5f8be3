package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velocimech/velocimech-backend/pkg/enums"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

// Booking is a reserved slot plus the frozen pricing it was sold at.
// SlotStart/SlotEnd are UTC instants; SlotEnd includes travel and admin
// buffers on top of the billed service duration.
type Booking struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Reference string              `gorm:"column:reference;not null;uniqueIndex"`
	Intent    enums.ServiceIntent `gorm:"column:intent;not null"`
	Status    enums.BookingStatus `gorm:"column:status;not null;index"`

	SlotStart time.Time `gorm:"column:slot_start;not null;index"`
	SlotEnd   time.Time `gorm:"column:slot_end;not null"`

	CustomerName  string        `gorm:"column:customer_name;not null"`
	CustomerEmail string        `gorm:"column:customer_email;not null"`
	CustomerPhone string        `gorm:"column:customer_phone;not null"`
	Address       types.Address `gorm:"column:address;type:jsonb;serializer:json;not null"`

	VehiclePlate       string  `gorm:"column:vehicle_plate;not null"`
	VehicleDescription string  `gorm:"column:vehicle_description"`
	Notes              *string `gorm:"column:notes"`

	Snapshot types.PricingSnapshot `gorm:"column:snapshot;type:jsonb;serializer:json;not null"`

	PaymentExpiresAt  *time.Time `gorm:"column:payment_expires_at;index"`
	CheckoutSessionID *string    `gorm:"column:checkout_session_id;uniqueIndex"`
	ExternalJobID     *string    `gorm:"column:external_job_id"`

	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	ExpiredAt   *time.Time `gorm:"column:expired_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Booking) TableName() string { return "bookings" }
