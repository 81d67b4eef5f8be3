package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/metrics"
)

type bookingConfirmer interface {
	ConfirmPayment(ctx context.Context, reference, sessionID string) (*models.Booking, error)
}

type eventLedger interface {
	Accept(ctx context.Context, eventID string, response json.RawMessage) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type confirmationDispatcher interface {
	ConfirmationFanout(ctx context.Context, booking *models.Booking)
}

// Outcome is the acknowledgment returned to the payment gateway.
type Outcome struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Ledger     eventLedger
	Bookings   bookingConfirmer
	Dispatcher confirmationDispatcher
	Metrics    *metrics.WebhookMetrics
	Logger     *logger.Logger
}

// Service reconciles at-least-once payment events into exactly-once booking
// confirmations.
type Service struct {
	ledger     eventLedger
	bookings   bookingConfirmer
	dispatcher confirmationDispatcher
	metrics    *metrics.WebhookMetrics
	logg       *logger.Logger
}

// NewService builds the payment webhook reconciler.
func NewService(params ServiceParams) (*Service, error) {
	if params.Ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "event ledger required")
	}
	if params.Bookings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking confirmer required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "confirmation dispatcher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		ledger:     params.Ledger,
		bookings:   params.Bookings,
		dispatcher: params.Dispatcher,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// HandleEvent processes one verified gateway event. Every event passes the
// ledger first; duplicates are acknowledged with zero side effects. A
// processing failure releases the ledger entry so the gateway's retry gets a
// clean run.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	if event == nil || event.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe event required")
	}
	ctx = s.logg.WithField(ctx, "event_id", event.ID)

	first, err := s.ledger.Accept(ctx, event.ID, nil)
	if err != nil {
		s.metrics.IncOutcome(metrics.WebhookOutcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency ledger unavailable")
	}
	if !first {
		s.metrics.IncOutcome(metrics.WebhookOutcomeDuplicate)
		s.logg.Info(ctx, "webhook.duplicate_delivery")
		return &Outcome{Received: true, Duplicate: true}, nil
	}

	outcome, err := s.process(ctx, event)
	if err != nil {
		// Release the ledger entry so the redelivery is not swallowed as a
		// duplicate of a failed run.
		if forgetErr := s.ledger.Forget(ctx, event.ID); forgetErr != nil {
			s.logg.Error(ctx, "webhook.ledger_release_failed", forgetErr)
		}
		s.metrics.IncOutcome(metrics.WebhookOutcomeError)
		return nil, err
	}
	return outcome, nil
}

func (s *Service) process(ctx context.Context, event *stripe.Event) (*Outcome, error) {
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.metrics.IncOutcome(metrics.WebhookOutcomeIgnored)
		return &Outcome{Received: true}, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
	}
	ctx = s.logg.WithField(ctx, "checkout_session_id", session.ID)

	// A completed checkout is not necessarily a successful payment: deferred
	// payment methods complete the session before the money moves.
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		s.metrics.IncOutcome(metrics.WebhookOutcomeIgnored)
		s.logg.Info(ctx, "webhook.completed_session_not_paid")
		return &Outcome{Received: true}, nil
	}

	reference := session.ClientReferenceID
	if reference == "" {
		return s.orphan(ctx, nil), nil
	}
	ctx = s.logg.WithBookingRef(ctx, reference)

	booking, err := s.bookings.ConfirmPayment(ctx, reference, session.ID)
	if err != nil {
		domainErr := pkgerrors.As(err)
		if domainErr != nil {
			switch domainErr.Code() {
			case pkgerrors.CodeNotFound, pkgerrors.CodeConflict:
				// Money moved but no booking can absorb it. Never guess and
				// never drop revenue: alert for manual reconciliation.
				return s.orphan(ctx, err), nil
			}
		}
		return nil, err
	}

	s.metrics.IncOutcome(metrics.WebhookOutcomeConfirmed)
	s.logg.Info(ctx, "webhook.booking_confirmed")
	s.dispatcher.ConfirmationFanout(ctx, booking)

	return &Outcome{Received: true}, nil
}

func (s *Service) orphan(ctx context.Context, cause error) *Outcome {
	s.metrics.IncOutcome(metrics.WebhookOutcomeOrphan)
	s.metrics.IncOrphan()
	s.logg.Error(ctx, "webhook.orphan_payment_alert", cause)
	return &Outcome{Received: true}
}
