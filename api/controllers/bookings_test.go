package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/velocimech/velocimech-backend/internal/bookings"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
)

type fakeBookingService struct {
	lastInput bookings.CreateInput
	result    *bookings.CreateResult
	err       error
}

func (f *fakeBookingService) Create(_ context.Context, input bookings.CreateInput) (*bookings.CreateResult, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func validBookingBody() map[string]any {
	return map[string]any{
		"quoteId":       "5f0d8b46-7f0a-4a4e-95b1-0e63cb7a2a11",
		"slotStart":     "2026-03-16T21:00:00Z",
		"customerName":  "Mere Kapa",
		"customerEmail": "mere@example.co.nz",
		"customerPhone": "+64 21 555 0192",
		"address": map[string]any{
			"line1":    "12 Huia Road",
			"suburb":   "Titirangi",
			"city":     "Auckland",
			"postcode": "0604",
		},
		"vehiclePlate": "KRT692",
	}
}

func TestBookingCreateOpensCheckout(t *testing.T) {
	svc := &fakeBookingService{result: &bookings.CreateResult{
		BookingRef:  "VM-ABCDEFGH",
		CheckoutURL: "https://checkout.stripe.com/c/pay/cs_test_1",
	}}
	rec := postJSON(t, BookingCreate(svc, nil), "/api/v1/bookings", validBookingBody())

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d (%s), want 201", rec.Code, rec.Body.String())
	}
	want := time.Date(2026, time.March, 16, 21, 0, 0, 0, time.UTC)
	if !svc.lastInput.SlotStart.Equal(want) {
		t.Fatalf("slot start = %s, want %s", svc.lastInput.SlotStart, want)
	}
}

func TestBookingCreateRejectsMalformedSlotStart(t *testing.T) {
	svc := &fakeBookingService{}
	body := validBookingBody()
	body["slotStart"] = "tomorrow at nine"
	rec := postJSON(t, BookingCreate(svc, nil), "/api/v1/bookings", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestBookingCreateSurfacesSlotConflict(t *testing.T) {
	svc := &fakeBookingService{err: pkgerrors.New(pkgerrors.CodeConflict, "slot is no longer available")}
	rec := postJSON(t, BookingCreate(svc, nil), "/api/v1/bookings", validBookingBody())

	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
}

func TestBookingCreateDegradedGatewayKeepsPhoneFallback(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeDependency, "online payment is temporarily unavailable").
		WithDetails(map[string]any{"contactPhone": "0800 835 624"})
	svc := &fakeBookingService{err: err}
	rec := postJSON(t, BookingCreate(svc, nil), "/api/v1/bookings", validBookingBody())

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "0800 835 624") {
		t.Fatalf("phone fallback missing from response: %s", body)
	}
}
