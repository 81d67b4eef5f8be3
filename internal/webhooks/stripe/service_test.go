package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v84"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/enums"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type stubLedger struct {
	seen      map[string]bool
	acceptErr error
	forgotten []string
}

func (s *stubLedger) Accept(ctx context.Context, eventID string, response json.RawMessage) (bool, error) {
	if s.acceptErr != nil {
		return false, s.acceptErr
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *stubLedger) Forget(ctx context.Context, eventID string) error {
	s.forgotten = append(s.forgotten, eventID)
	delete(s.seen, eventID)
	return nil
}

type stubConfirmer struct {
	calls   int
	lastRef string
	err     error
	booking *models.Booking
}

func (s *stubConfirmer) ConfirmPayment(ctx context.Context, reference, sessionID string) (*models.Booking, error) {
	s.calls++
	s.lastRef = reference
	if s.err != nil {
		return nil, s.err
	}
	return s.booking, nil
}

type stubDispatcher struct {
	fanouts int
}

func (s *stubDispatcher) ConfirmationFanout(ctx context.Context, booking *models.Booking) {
	s.fanouts++
}

func newWebhookService(t *testing.T, ledger *stubLedger, confirmer *stubConfirmer, dispatcher *stubDispatcher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Ledger:     ledger,
		Bookings:   confirmer,
		Dispatcher: dispatcher,
		Logger:     logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func paidCheckoutEvent(t *testing.T, eventID, sessionID, reference string, paid bool) *stripe.Event {
	t.Helper()
	status := "unpaid"
	if paid {
		status = "paid"
	}
	raw, err := json.Marshal(map[string]any{
		"id":                  sessionID,
		"client_reference_id": reference,
		"payment_status":      status,
	})
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   eventID,
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventConfirmsAndFansOutOnce(t *testing.T) {
	ledger := &stubLedger{}
	confirmer := &stubConfirmer{booking: &models.Booking{
		Reference: "VM-TEST1",
		Status:    enums.BookingStatusConfirmed,
	}}
	dispatcher := &stubDispatcher{}
	svc := newWebhookService(t, ledger, confirmer, dispatcher)

	event := paidCheckoutEvent(t, "evt_1", "cs_1", "VM-TEST1", true)

	outcome, err := svc.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if !outcome.Received || outcome.Duplicate {
		t.Fatalf("first delivery outcome: %+v", outcome)
	}
	if confirmer.calls != 1 || confirmer.lastRef != "VM-TEST1" {
		t.Fatalf("expected one confirm call for VM-TEST1, got %d/%q", confirmer.calls, confirmer.lastRef)
	}
	if dispatcher.fanouts != 1 {
		t.Fatalf("expected one fanout, got %d", dispatcher.fanouts)
	}

	// Replay the identical event: duplicate acknowledgment, zero side effects.
	outcome, err = svc.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !outcome.Duplicate {
		t.Fatal("replay must be flagged duplicate")
	}
	if confirmer.calls != 1 || dispatcher.fanouts != 1 {
		t.Fatalf("replay caused side effects: confirms=%d fanouts=%d", confirmer.calls, dispatcher.fanouts)
	}
}

func TestHandleEventIgnoresUnpaidCompletedSession(t *testing.T) {
	confirmer := &stubConfirmer{}
	dispatcher := &stubDispatcher{}
	svc := newWebhookService(t, &stubLedger{}, confirmer, dispatcher)

	outcome, err := svc.HandleEvent(context.Background(), paidCheckoutEvent(t, "evt_2", "cs_2", "VM-TEST1", false))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !outcome.Received {
		t.Fatal("unpaid sessions are acknowledged")
	}
	if confirmer.calls != 0 || dispatcher.fanouts != 0 {
		t.Fatal("unpaid sessions must not confirm or notify")
	}
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	confirmer := &stubConfirmer{}
	svc := newWebhookService(t, &stubLedger{}, confirmer, &stubDispatcher{})

	outcome, err := svc.HandleEvent(context.Background(), &stripe.Event{
		ID:   "evt_3",
		Type: stripe.EventTypeChargeRefunded,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !outcome.Received || confirmer.calls != 0 {
		t.Fatal("unrelated events are acknowledged without side effects")
	}
}

func TestHandleEventOrphanPaymentIsAcknowledged(t *testing.T) {
	cases := []struct {
		name      string
		reference string
		err       error
	}{
		{name: "missing reference", reference: ""},
		{name: "unknown booking", reference: "VM-GHOST", err: pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")},
		{name: "unconfirmable booking", reference: "VM-DEAD", err: pkgerrors.New(pkgerrors.CodeConflict, "booking is cancelled")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			confirmer := &stubConfirmer{err: tc.err}
			dispatcher := &stubDispatcher{}
			svc := newWebhookService(t, &stubLedger{}, confirmer, dispatcher)

			outcome, err := svc.HandleEvent(context.Background(),
				paidCheckoutEvent(t, "evt_4", "cs_4", tc.reference, true))
			if err != nil {
				t.Fatalf("orphans must still be acknowledged: %v", err)
			}
			if !outcome.Received || outcome.Duplicate {
				t.Fatalf("outcome: %+v", outcome)
			}
			if dispatcher.fanouts != 0 {
				t.Fatal("orphans must not notify")
			}
		})
	}
}

func TestHandleEventTransientFailureReleasesLedger(t *testing.T) {
	ledger := &stubLedger{}
	confirmer := &stubConfirmer{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}
	svc := newWebhookService(t, ledger, confirmer, &stubDispatcher{})

	event := paidCheckoutEvent(t, "evt_5", "cs_5", "VM-TEST1", true)

	if _, err := svc.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("transient failure must propagate so the gateway retries")
	}
	if len(ledger.forgotten) != 1 || ledger.forgotten[0] != "evt_5" {
		t.Fatalf("ledger entry must be released on failure, got %v", ledger.forgotten)
	}

	// Retry after the outage succeeds as a first delivery.
	confirmer.err = nil
	confirmer.booking = &models.Booking{Reference: "VM-TEST1"}
	outcome, err := svc.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if outcome.Duplicate {
		t.Fatal("retry after a released failure is not a duplicate")
	}
}

func TestHandleEventLedgerOutage(t *testing.T) {
	ledger := &stubLedger{acceptErr: fmt.Errorf("connection refused")}
	svc := newWebhookService(t, ledger, &stubConfirmer{}, &stubDispatcher{})

	_, err := svc.HandleEvent(context.Background(), paidCheckoutEvent(t, "evt_6", "cs_6", "VM-TEST1", true))
	domainErr := pkgerrors.As(err)
	if domainErr == nil || domainErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
