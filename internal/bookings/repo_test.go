package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/enums"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:bookings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	bookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL UNIQUE,
  intent TEXT NOT NULL,
  status TEXT NOT NULL,
  slot_start DATETIME NOT NULL,
  slot_end DATETIME NOT NULL,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  address TEXT NOT NULL,
  vehicle_plate TEXT NOT NULL,
  vehicle_description TEXT,
  notes TEXT,
  snapshot TEXT NOT NULL,
  payment_expires_at DATETIME,
  checkout_session_id TEXT UNIQUE,
  external_job_id TEXT,
  confirmed_at DATETIME,
  cancelled_at DATETIME,
  expired_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	blocks := `
CREATE TABLE IF NOT EXISTS availability_blocks (
  id TEXT PRIMARY KEY,
  starts_at DATETIME NOT NULL,
  ends_at DATETIME NOT NULL,
  reason TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(bookings).Error)
	require.NoError(t, db.Exec(blocks).Error)
	return db
}

func seedBooking(t *testing.T, db *gorm.DB, reference string, status enums.BookingStatus, start, end time.Time, expiresAt *time.Time) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		ID:            uuid.New(),
		Reference:     reference,
		Intent:        enums.ServiceIntentService,
		Status:        status,
		SlotStart:     start,
		SlotEnd:       end,
		CustomerName:  "Mere Kingi",
		CustomerEmail: "mere@example.co.nz",
		CustomerPhone: "+64 21 555 0101",
		Address: types.Address{
			Line1:    "12 Karaka Street",
			Suburb:   "Te Atatu",
			City:     "Auckland",
			Postcode: "0610",
		},
		VehiclePlate:     "KPD123",
		Snapshot:         types.PricingSnapshot{},
		PaymentExpiresAt: expiresAt,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func TestRepositoryCountLiveOverlapping(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	slotStart := now.Add(9 * time.Hour)
	slotEnd := slotStart.Add(90 * time.Minute)

	held := now.Add(time.Hour)
	lapsed := now.Add(-time.Hour)

	seedBooking(t, db, "VM-CONFIRMD", enums.BookingStatusConfirmed, slotStart, slotEnd, nil)
	seedBooking(t, db, "VM-PENDLIVE", enums.BookingStatusPendingPayment, slotStart, slotEnd, &held)
	seedBooking(t, db, "VM-PENDDEAD", enums.BookingStatusPendingPayment, slotStart, slotEnd, &lapsed)
	seedBooking(t, db, "VM-CANCELED", enums.BookingStatusCancelled, slotStart, slotEnd, nil)
	// Adjacent slot must not count against the half-open window.
	seedBooking(t, db, "VM-ADJACENT", enums.BookingStatusConfirmed, slotEnd, slotEnd.Add(time.Hour), nil)

	count, err := repo.CountLiveOverlapping(context.Background(), slotStart, slotEnd, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRepositoryExpireStaleOverlappingPending(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	slotStart := now.Add(2 * time.Hour)
	slotEnd := slotStart.Add(90 * time.Minute)

	lapsed := now.Add(-5 * time.Minute)
	held := now.Add(30 * time.Minute)

	stale := seedBooking(t, db, "VM-STALEPND", enums.BookingStatusPendingPayment, slotStart, slotEnd, &lapsed)
	live := seedBooking(t, db, "VM-LIVEPEND", enums.BookingStatusPendingPayment, slotStart, slotEnd, &held)

	freed, err := repo.ExpireStaleOverlappingPending(context.Background(), slotStart, slotEnd, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), freed)

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.Equal(t, enums.BookingStatusExpired, reloaded.Status)
	require.NotNil(t, reloaded.ExpiredAt)

	reloaded = models.Booking{}
	require.NoError(t, db.First(&reloaded, "id = ?", live.ID).Error)
	assert.Equal(t, enums.BookingStatusPendingPayment, reloaded.Status)
}

func TestRepositoryExpireDuePending(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	lapsed := now.Add(-time.Minute)
	held := now.Add(time.Hour)

	seedBooking(t, db, "VM-DUEONE00", enums.BookingStatusPendingPayment, now, now.Add(time.Hour), &lapsed)
	seedBooking(t, db, "VM-DUETWO00", enums.BookingStatusPendingPayment, now.Add(2*time.Hour), now.Add(3*time.Hour), &lapsed)
	seedBooking(t, db, "VM-NOTDUE00", enums.BookingStatusPendingPayment, now.Add(4*time.Hour), now.Add(5*time.Hour), &held)

	expired, err := repo.ExpireDuePending(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	var remaining int64
	require.NoError(t, db.Model(&models.Booking{}).
		Where("status = ?", enums.BookingStatusPendingPayment).
		Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining)
}

func TestRepositoryConfirmBooking(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	held := now.Add(time.Hour)
	pending := seedBooking(t, db, "VM-PENDCONF", enums.BookingStatusPendingPayment, now, now.Add(time.Hour), &held)
	cancelled := seedBooking(t, db, "VM-CANCCONF", enums.BookingStatusCancelled, now.Add(2*time.Hour), now.Add(3*time.Hour), nil)

	require.NoError(t, repo.ConfirmBooking(context.Background(), pending.ID, "cs_test_123", now))

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", pending.ID).Error)
	assert.Equal(t, enums.BookingStatusConfirmed, reloaded.Status)
	require.NotNil(t, reloaded.CheckoutSessionID)
	assert.Equal(t, "cs_test_123", *reloaded.CheckoutSessionID)
	require.NotNil(t, reloaded.ConfirmedAt)

	// Confirming a cancelled booking is a no-op, not a resurrection.
	require.NoError(t, repo.ConfirmBooking(context.Background(), cancelled.ID, "cs_test_456", now))
	reloaded = models.Booking{}
	require.NoError(t, db.First(&reloaded, "id = ?", cancelled.ID).Error)
	assert.Equal(t, enums.BookingStatusCancelled, reloaded.Status)
	assert.Nil(t, reloaded.CheckoutSessionID)
}

func TestRepositoryFindBookingByReference(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seeded := seedBooking(t, db, "VM-FINDREF0", enums.BookingStatusConfirmed, now, now.Add(time.Hour), nil)

	found, err := repo.FindBookingByReference(context.Background(), "VM-FINDREF0")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	_, err = repo.FindBookingByReference(context.Background(), "VM-MISSING0")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySetExternalJobID(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	booking := seedBooking(t, db, "VM-EXTJOB00", enums.BookingStatusConfirmed, now, now.Add(time.Hour), nil)

	require.NoError(t, repo.SetExternalJobID(context.Background(), booking.ID, "ws-job-42"))

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", booking.ID).Error)
	require.NotNil(t, reloaded.ExternalJobID)
	assert.Equal(t, "ws-job-42", *reloaded.ExternalJobID)
}

func TestRepositoryOccupiedRanges(t *testing.T) {
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	windowStart := now.Add(8 * time.Hour)
	windowEnd := now.Add(18 * time.Hour)

	held := now.Add(time.Hour)
	lapsed := now.Add(-time.Hour)

	confirmed := seedBooking(t, db, "VM-OCCCONF0", enums.BookingStatusConfirmed, windowStart.Add(time.Hour), windowStart.Add(2*time.Hour), nil)
	seedBooking(t, db, "VM-OCCLIVE0", enums.BookingStatusPendingPayment, windowStart.Add(3*time.Hour), windowStart.Add(4*time.Hour), &held)
	seedBooking(t, db, "VM-OCCDEAD0", enums.BookingStatusPendingPayment, windowStart.Add(5*time.Hour), windowStart.Add(6*time.Hour), &lapsed)
	seedBooking(t, db, "VM-OUTSIDE0", enums.BookingStatusConfirmed, windowEnd.Add(time.Hour), windowEnd.Add(2*time.Hour), nil)

	block := &models.AvailabilityBlock{
		ID:       uuid.New(),
		StartsAt: windowStart.Add(7 * time.Hour),
		EndsAt:   windowStart.Add(8 * time.Hour),
	}
	require.NoError(t, db.Create(block).Error)

	ranges, err := repo.OccupiedRanges(context.Background(), windowStart, windowEnd, now)
	require.NoError(t, err)
	require.Len(t, ranges, 3)

	containsStart := func(at time.Time) bool {
		for _, r := range ranges {
			if r.Start.Equal(at) {
				return true
			}
		}
		return false
	}
	assert.True(t, containsStart(confirmed.SlotStart))
	assert.True(t, containsStart(block.StartsAt))
}
