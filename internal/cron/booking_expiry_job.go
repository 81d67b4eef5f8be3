package cron

import (
	"context"
	"fmt"

	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type holdSweeper interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// NewBookingExpiryJob builds the job that releases slots whose payment hold
// lapsed without a completed checkout.
func NewBookingExpiryJob(logg *logger.Logger, bookings holdSweeper) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if bookings == nil {
		return nil, fmt.Errorf("booking sweeper required")
	}
	return &bookingExpiryJob{logg: logg, bookings: bookings}, nil
}

type bookingExpiryJob struct {
	logg     *logger.Logger
	bookings holdSweeper
}

func (j *bookingExpiryJob) Name() string { return "booking-expiry" }

func (j *bookingExpiryJob) Run(ctx context.Context) error {
	expired, err := j.bookings.ExpireDue(ctx)
	if err != nil {
		return fmt.Errorf("expiring due bookings: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithField(ctx, "expired", expired), "cron.booking_holds_released")
	}
	return nil
}
