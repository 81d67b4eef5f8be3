package bookings

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/internal/scheduling"
	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/enums"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/stripe"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

// slotConstraintName matches the exclusion constraint in the init migration.
const slotConstraintName = "bookings_no_overlap"

// CreateInput is one inbound reservation request. SlotStart is a UTC instant;
// the HTTP boundary converts the customer's local time before calling.
type CreateInput struct {
	QuoteID            string
	SlotStart          time.Time
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	Address            types.Address
	VehiclePlate       string
	VehicleDescription string
	Notes              *string
}

// CreateResult hands the customer off to hosted checkout.
type CreateResult struct {
	BookingRef       string    `json:"bookingRef"`
	CheckoutURL      string    `json:"checkoutUrl"`
	PaymentExpiresAt time.Time `json:"paymentExpiresAt"`
}

type service struct {
	repo     Repository
	tx       txRunner
	quotes   quoteReader
	payments stripe.SessionCreator
	cfg      config.BookingsConfig
	business config.BusinessConfig
	loc      *time.Location
	logg     *logger.Logger
	now      func() time.Time
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Quotes   quoteReader
	Payments stripe.SessionCreator
	Config   config.BookingsConfig
	Business config.BusinessConfig
	Location *time.Location
	Logger   *logger.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewService builds the booking reservation service.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Quotes == nil {
		return nil, fmt.Errorf("quote reader required")
	}
	if p.Payments == nil {
		return nil, fmt.Errorf("payment session creator required")
	}
	if p.Location == nil {
		return nil, fmt.Errorf("business location required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:     p.Repo,
		tx:       p.Tx,
		quotes:   p.Quotes,
		payments: p.Payments,
		cfg:      p.Config,
		business: p.Business,
		loc:      p.Location,
		logg:     p.Logger,
		now:      p.Now,
	}, nil
}

// Create validates the request, holds the slot as a pending booking and opens
// a hosted checkout session, all in one transaction. A gateway failure rolls
// the pending booking back so no hold survives without a way to pay for it.
func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(ctx, input.QuoteID)
	if err != nil {
		return nil, err
	}
	snapshot := quote.Snapshot
	if snapshot.DurationMinutes <= 0 || snapshot.TotalCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote is not bookable")
	}

	serviceDuration := time.Duration(snapshot.DurationMinutes) * time.Minute
	if !scheduling.WithinBusinessHours(input.SlotStart, s.loc, serviceDuration) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"requested start is outside business hours (Mon-Fri 09:00-17:00)")
	}

	now := s.now()
	booking := &models.Booking{
		Reference:          newReference(),
		Intent:             snapshot.Intent,
		Status:             enums.BookingStatusPendingPayment,
		SlotStart:          input.SlotStart.UTC(),
		SlotEnd:            input.SlotStart.Add(serviceDuration + s.cfg.SlotBuffer()).UTC(),
		CustomerName:       input.CustomerName,
		CustomerEmail:      input.CustomerEmail,
		CustomerPhone:      input.CustomerPhone,
		Address:            input.Address,
		VehiclePlate:       input.VehiclePlate,
		VehicleDescription: input.VehicleDescription,
		Notes:              input.Notes,
		Snapshot:           snapshot,
	}
	deadline := now.Add(s.cfg.PaymentHold())
	booking.PaymentExpiresAt = &deadline

	ctx = s.logg.WithBookingRef(ctx, booking.Reference)

	var checkoutURL string
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Free holds that already lapsed so they cannot block the exclusion
		// constraint for the window being inserted.
		if _, err := repo.ExpireStaleOverlappingPending(ctx, booking.SlotStart, booking.SlotEnd, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "freeing stale holds failed")
		}

		overlapping, err := repo.CountLiveOverlapping(ctx, booking.SlotStart, booking.SlotEnd, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "conflict check failed")
		}
		if overlapping > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "the requested slot is no longer available")
		}

		if err := repo.CreateBooking(ctx, booking); err != nil {
			if db.IsExclusionViolation(err, slotConstraintName) {
				// A concurrent request won the slot between the check and
				// the insert.
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "the requested slot is no longer available")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting booking failed")
		}

		session, err := s.payments.CreateCheckoutSession(ctx, stripe.CheckoutSessionInput{
			BookingRef:    booking.Reference,
			Description:   checkoutDescription(snapshot),
			AmountCents:   snapshot.TotalCents,
			Currency:      string(snapshot.Currency),
			CustomerEmail: booking.CustomerEmail,
			SuccessURL:    s.cfg.CheckoutSuccessURL,
			CancelURL:     s.cfg.CheckoutCancelURL,
			ExpiresAt:     deadline,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway unavailable")
		}
		if err := repo.UpdateCheckoutSession(ctx, booking.ID, session.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording checkout session failed")
		}

		checkoutURL = session.URL
		return nil
	})
	if txErr != nil {
		return nil, s.degrade(ctx, txErr)
	}

	s.logg.Info(ctx, "booking.pending_created")
	return &CreateResult{
		BookingRef:       booking.Reference,
		CheckoutURL:      checkoutURL,
		PaymentExpiresAt: deadline,
	}, nil
}

// Availability returns the slot grid for one business day, with operator
// blocks and live bookings marked unavailable.
func (s *service) Availability(ctx context.Context, date string, durationMinutes int) ([]scheduling.Slot, error) {
	if durationMinutes <= 0 || durationMinutes > 8*60 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "durationMinutes must be between 1 and 480")
	}
	day, err := scheduling.ParseDay(date, s.loc)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be formatted YYYY-MM-DD")
	}
	if !scheduling.IsBusinessDay(day, s.loc) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bookings are available Monday to Friday only")
	}

	windowStart := day.UTC()
	windowEnd := day.AddDate(0, 0, 1).UTC()
	occupied, err := s.repo.OccupiedRanges(ctx, windowStart, windowEnd, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading occupied ranges failed")
	}

	return scheduling.DaySlots(day, s.loc, time.Duration(durationMinutes)*time.Minute, occupied), nil
}

// ConfirmPayment moves PENDING_PAYMENT to CONFIRMED. Only the webhook
// reconciler calls this; replays are screened out by the idempotency ledger
// before they get here. Confirming an already-confirmed booking is a no-op.
func (s *service) ConfirmPayment(ctx context.Context, reference, sessionID string) (*models.Booking, error) {
	var confirmed *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.FindBookingByReference(ctx, reference)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking failed")
		}

		switch booking.Status {
		case enums.BookingStatusConfirmed:
			confirmed = booking
			return nil
		case enums.BookingStatusPendingPayment:
			// Payment may land moments after the deadline; money has moved,
			// so the hold wins over the sweep.
		default:
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("booking is %s and cannot be confirmed", booking.Status))
		}

		at := s.now()
		if err := repo.ConfirmBooking(ctx, booking.ID, sessionID, at); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirming booking failed")
		}
		booking.Status = enums.BookingStatusConfirmed
		booking.ConfirmedAt = &at
		booking.CheckoutSessionID = &sessionID
		confirmed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// ExpireDue sweeps pending bookings past their payment deadline. Re-running
// with nothing due is a no-op.
func (s *service) ExpireDue(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireDuePending(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expiry sweep failed")
	}
	if expired > 0 {
		s.logg.Info(s.logg.WithField(ctx, "expired", expired), "booking.holds_expired")
	}
	return expired, nil
}

// RecordExternalJobID stores the workshop system's job identifier against
// the booking once the paid-job push succeeds.
func (s *service) RecordExternalJobID(ctx context.Context, reference, externalJobID string) error {
	booking, err := s.repo.FindBookingByReference(ctx, reference)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking failed")
	}
	if err := s.repo.SetExternalJobID(ctx, booking.ID, externalJobID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording workshop job id failed")
	}
	return nil
}

func (s *service) validateCreate(input CreateInput) error {
	var missing []string
	if input.QuoteID == "" {
		missing = append(missing, "quoteId")
	}
	if input.SlotStart.IsZero() {
		missing = append(missing, "slotStart")
	}
	if input.CustomerName == "" {
		missing = append(missing, "customerName")
	}
	if input.CustomerEmail == "" {
		missing = append(missing, "customerEmail")
	}
	if input.CustomerPhone == "" {
		missing = append(missing, "customerPhone")
	}
	if input.VehiclePlate == "" {
		missing = append(missing, "vehiclePlate")
	}
	if input.Address.Line1 == "" || input.Address.City == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

// degrade attaches the phone fallback to dependency failures so the customer
// always has a way to book.
func (s *service) degrade(ctx context.Context, err error) error {
	domainErr := pkgerrors.As(err)
	if domainErr == nil {
		domainErr = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking creation failed")
	}
	if domainErr.Code() == pkgerrors.CodeDependency {
		s.logg.Error(ctx, "booking.create_degraded", err)
		return domainErr.WithDetails(map[string]any{
			"contactPhone": s.business.ContactPhone,
			"message":      "Online booking is temporarily unavailable. Call us and we will book you in.",
		})
	}
	return domainErr
}

func checkoutDescription(snapshot types.PricingSnapshot) string {
	if len(snapshot.LineItems) > 0 {
		return fmt.Sprintf("VelociMech %s", snapshot.LineItems[0].Label)
	}
	return "VelociMech mobile vehicle service"
}

var referenceEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newReference mints a public booking reference like VM-3KDPX7Q2. References
// are customer-facing, so no ambiguity-prone lowercase or symbols.
func newReference() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("reading randomness: %v", err))
	}
	return "VM-" + strings.ToUpper(referenceEncoding.EncodeToString(buf))
}
