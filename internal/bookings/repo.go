package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/internal/scheduling"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) UpdateCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("checkout_session_id", sessionID).Error
}

func (r *repository) FindBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CountLiveOverlapping counts bookings that hold the slot against the
// half-open window [start, end): confirmed or in-progress rows always,
// pending rows only while their payment deadline is in the future.
func (r *repository) CountLiveOverlapping(ctx context.Context, start, end, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("slot_start < ? AND slot_end > ?", end, start).
		Where(
			r.db.Where("status IN ?", []enums.BookingStatus{
				enums.BookingStatusConfirmed,
				enums.BookingStatusInProgress,
			}).Or("status = ? AND payment_expires_at > ?", enums.BookingStatusPendingPayment, now),
		).
		Count(&count).Error
	return count, err
}

// ExpireStaleOverlappingPending frees pending holds whose payment deadline
// already passed, so they stop blocking the exclusion constraint for the
// window about to be inserted.
func (r *repository) ExpireStaleOverlappingPending(ctx context.Context, start, end, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("slot_start < ? AND slot_end > ?", end, start).
		Where("status = ? AND payment_expires_at <= ?", enums.BookingStatusPendingPayment, now).
		Updates(map[string]any{
			"status":     enums.BookingStatusExpired,
			"expired_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) ExpireDuePending(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("status = ? AND payment_expires_at <= ?", enums.BookingStatusPendingPayment, now).
		Updates(map[string]any{
			"status":     enums.BookingStatusExpired,
			"expired_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) ConfirmBooking(ctx context.Context, id uuid.UUID, sessionID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, enums.BookingStatusPendingPayment).
		Updates(map[string]any{
			"status":              enums.BookingStatusConfirmed,
			"confirmed_at":        at,
			"checkout_session_id": sessionID,
		}).Error
}

func (r *repository) SetExternalJobID(ctx context.Context, id uuid.UUID, externalJobID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("external_job_id", externalJobID).Error
}

// OccupiedRanges collects everything that blocks slots inside the window:
// live bookings plus operator availability blocks.
func (r *repository) OccupiedRanges(ctx context.Context, windowStart, windowEnd, now time.Time) ([]scheduling.Range, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("slot_start < ? AND slot_end > ?", windowEnd, windowStart).
		Where(
			r.db.Where("status IN ?", []enums.BookingStatus{
				enums.BookingStatusConfirmed,
				enums.BookingStatusInProgress,
			}).Or("status = ? AND payment_expires_at > ?", enums.BookingStatusPendingPayment, now),
		).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	var blocks []models.AvailabilityBlock
	err = r.db.WithContext(ctx).
		Where("starts_at < ? AND ends_at > ?", windowEnd, windowStart).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}

	ranges := make([]scheduling.Range, 0, len(bookings)+len(blocks))
	for _, booking := range bookings {
		ranges = append(ranges, scheduling.Range{Start: booking.SlotStart, End: booking.SlotEnd})
	}
	for _, block := range blocks {
		ranges = append(ranges, scheduling.Range{Start: block.StartsAt, End: block.EndsAt})
	}
	return ranges, nil
}
