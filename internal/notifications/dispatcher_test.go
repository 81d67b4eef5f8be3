package notifications

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type stubSender struct {
	mu       sync.Mutex
	failures int
	sent     []string
}

func (s *stubSender) SendBookingConfirmation(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("mail relay timeout")
	}
	s.sent = append(s.sent, booking.Reference)
	return nil
}

type stubWorkshop struct {
	mu       sync.Mutex
	failures int
	jobID    string
	pushed   []string
}

func (s *stubWorkshop) PushPaidJob(_ context.Context, booking *models.Booking) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return "", fmt.Errorf("workshop system returned status 503")
	}
	s.pushed = append(s.pushed, booking.Reference)
	return s.jobID, nil
}

type stubRecorder struct {
	mu       sync.Mutex
	err      error
	recorded map[string]string
}

func (s *stubRecorder) RecordExternalJobID(_ context.Context, bookingRef, externalJobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.recorded == nil {
		s.recorded = map[string]string{}
	}
	s.recorded[bookingRef] = externalJobID
	return nil
}

func testBooking() *models.Booking {
	return &models.Booking{
		Reference:     "VM-ABCDEFGH",
		CustomerName:  "Mere Kapa",
		CustomerEmail: "mere@example.co.nz",
	}
}

func newTestDispatcher(t *testing.T, sender *stubSender, workshop *stubWorkshop, recorder *stubRecorder) *Dispatcher {
	t.Helper()
	params := DispatcherParams{
		Sender: sender,
		Config: config.NotificationsConfig{
			PushMaxRetries: 3,
			PushBaseDelay:  time.Millisecond,
		},
		Logger: logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}),
	}
	if workshop != nil {
		params.Workshop = workshop
	}
	if recorder != nil {
		params.Recorder = recorder
	}
	d, err := NewDispatcher(params)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d
}

func TestConfirmationFanoutDeliversOnceAndRecordsJobID(t *testing.T) {
	sender := &stubSender{}
	workshop := &stubWorkshop{jobID: "wj_5501"}
	recorder := &stubRecorder{}
	d := newTestDispatcher(t, sender, workshop, recorder)

	d.ConfirmationFanout(context.Background(), testBooking())
	d.Wait()

	if len(sender.sent) != 1 || sender.sent[0] != "VM-ABCDEFGH" {
		t.Fatalf("sent = %v, want one confirmation for VM-ABCDEFGH", sender.sent)
	}
	if len(workshop.pushed) != 1 {
		t.Fatalf("pushed = %v, want one workshop job", workshop.pushed)
	}
	if got := recorder.recorded["VM-ABCDEFGH"]; got != "wj_5501" {
		t.Fatalf("recorded job id = %q, want wj_5501", got)
	}
}

func TestConfirmationFanoutRetriesTransientFailures(t *testing.T) {
	sender := &stubSender{failures: 2}
	workshop := &stubWorkshop{failures: 2, jobID: "wj_7714"}
	recorder := &stubRecorder{}
	d := newTestDispatcher(t, sender, workshop, recorder)

	d.ConfirmationFanout(context.Background(), testBooking())
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v, want confirmation after retries", sender.sent)
	}
	if got := recorder.recorded["VM-ABCDEFGH"]; got != "wj_7714" {
		t.Fatalf("recorded job id = %q, want wj_7714", got)
	}
}

func TestConfirmationFanoutSendFailureDoesNotBlockWorkshopPush(t *testing.T) {
	// More failures than retries: the send is abandoned, the push still runs.
	sender := &stubSender{failures: 10}
	workshop := &stubWorkshop{jobID: "wj_8080"}
	recorder := &stubRecorder{}
	d := newTestDispatcher(t, sender, workshop, recorder)

	d.ConfirmationFanout(context.Background(), testBooking())
	d.Wait()

	if len(sender.sent) != 0 {
		t.Fatalf("sent = %v, want no confirmation", sender.sent)
	}
	if len(workshop.pushed) != 1 {
		t.Fatalf("pushed = %v, want workshop push despite email failure", workshop.pushed)
	}
	if got := recorder.recorded["VM-ABCDEFGH"]; got != "wj_8080" {
		t.Fatalf("recorded job id = %q, want wj_8080", got)
	}
}

func TestConfirmationFanoutWorkshopFailureSkipsRecorder(t *testing.T) {
	sender := &stubSender{}
	workshop := &stubWorkshop{failures: 10}
	recorder := &stubRecorder{}
	d := newTestDispatcher(t, sender, workshop, recorder)

	d.ConfirmationFanout(context.Background(), testBooking())
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v, want confirmation despite workshop outage", sender.sent)
	}
	if len(recorder.recorded) != 0 {
		t.Fatalf("recorded = %v, want nothing without a job id", recorder.recorded)
	}
}

func TestConfirmationFanoutWithoutWorkshopOnlySends(t *testing.T) {
	sender := &stubSender{}
	d := newTestDispatcher(t, sender, nil, nil)

	d.ConfirmationFanout(context.Background(), testBooking())
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v, want one confirmation", sender.sent)
	}
}

func TestConfirmationFanoutSurvivesCallerCancellation(t *testing.T) {
	sender := &stubSender{}
	d := newTestDispatcher(t, sender, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	d.ConfirmationFanout(ctx, testBooking())
	cancel()
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v, want delivery after caller context ended", sender.sent)
	}
}
