package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/internal/pricing"
	"github.com/velocimech/velocimech-backend/internal/scheduling"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type quoteReader interface {
	GetQuote(ctx context.Context, quoteID string) (*pricing.QuoteResult, error)
}

// Repository persists bookings and availability blocks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBooking(ctx context.Context, booking *models.Booking) error
	UpdateCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	FindBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	CountLiveOverlapping(ctx context.Context, start, end, now time.Time) (int64, error)
	ExpireStaleOverlappingPending(ctx context.Context, start, end, now time.Time) (int64, error)
	ExpireDuePending(ctx context.Context, now time.Time) (int64, error)
	ConfirmBooking(ctx context.Context, id uuid.UUID, sessionID string, at time.Time) error
	SetExternalJobID(ctx context.Context, id uuid.UUID, externalJobID string) error
	OccupiedRanges(ctx context.Context, windowStart, windowEnd, now time.Time) ([]scheduling.Range, error)
}

// Service is the booking reservation state machine.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Availability(ctx context.Context, date string, durationMinutes int) ([]scheduling.Slot, error)
	ConfirmPayment(ctx context.Context, reference, sessionID string) (*models.Booking, error)
	ExpireDue(ctx context.Context) (int64, error)
	RecordExternalJobID(ctx context.Context, reference, externalJobID string) error
}
