package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type jobIDRecorder interface {
	RecordExternalJobID(ctx context.Context, bookingRef, externalJobID string) error
}

// Dispatcher runs the post-confirmation fanout: confirmation message to the
// customer and a paid-job push to the workshop system. Both are best-effort
// with backoff; neither can undo a confirmation.
type Dispatcher struct {
	sender   Sender
	workshop WorkshopPusher
	recorder jobIDRecorder
	cfg      config.NotificationsConfig
	logg     *logger.Logger

	// wg lets tests and shutdown wait for detached deliveries.
	wg sync.WaitGroup
}

// DispatcherParams carries the dependencies for NewDispatcher.
type DispatcherParams struct {
	Sender   Sender
	Workshop WorkshopPusher
	Recorder jobIDRecorder
	Config   config.NotificationsConfig
	Logger   *logger.Logger
}

// NewDispatcher builds the confirmation fanout dispatcher. Workshop and
// Recorder are optional; without them only the confirmation message is sent.
func NewDispatcher(p DispatcherParams) (*Dispatcher, error) {
	if p.Sender == nil {
		return nil, fmt.Errorf("confirmation sender required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Config.PushMaxRetries == 0 {
		p.Config.PushMaxRetries = 5
	}
	if p.Config.PushBaseDelay <= 0 {
		p.Config.PushBaseDelay = 2 * time.Second
	}
	return &Dispatcher{
		sender:   p.Sender,
		workshop: p.Workshop,
		recorder: p.Recorder,
		cfg:      p.Config,
		logg:     p.Logger,
	}, nil
}

// ConfirmationFanout fires the downstream deliveries in a detached goroutine.
// The caller's context may end with its HTTP request, so the deliveries run
// on a context that survives cancellation but keeps the log fields.
func (d *Dispatcher) ConfirmationFanout(ctx context.Context, booking *models.Booking) {
	if booking == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(detached, booking)
	}()
}

// Wait blocks until all in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, booking *models.Booking) {
	if err := d.withBackoff(ctx, func(ctx context.Context) error {
		return d.sender.SendBookingConfirmation(ctx, booking)
	}); err != nil {
		d.logg.Error(ctx, "notifications.confirmation_send_failed", err)
	}

	if d.workshop == nil {
		return
	}
	var jobID string
	if err := d.withBackoff(ctx, func(ctx context.Context) error {
		id, err := d.workshop.PushPaidJob(ctx, booking)
		if err != nil {
			return err
		}
		jobID = id
		return nil
	}); err != nil {
		d.logg.Error(ctx, "notifications.workshop_push_failed", err)
		return
	}

	if d.recorder != nil && jobID != "" {
		if err := d.recorder.RecordExternalJobID(ctx, booking.Reference, jobID); err != nil {
			d.logg.Error(ctx, "notifications.job_id_record_failed", err)
		}
	}
}

func (d *Dispatcher) withBackoff(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(d.cfg.PushMaxRetries, retry.NewExponential(d.cfg.PushBaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
