package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/velocimech/velocimech-backend/internal/scheduling"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
)

type fakeAvailabilityService struct {
	date     string
	duration int
	slots    []scheduling.Slot
	err      error
}

func (f *fakeAvailabilityService) Availability(_ context.Context, date string, durationMinutes int) ([]scheduling.Slot, error) {
	f.date = date
	f.duration = durationMinutes
	if f.err != nil {
		return nil, f.err
	}
	return f.slots, nil
}

func TestAvailabilityReturnsSlots(t *testing.T) {
	start := time.Date(2026, time.March, 17, 21, 0, 0, 0, time.UTC)
	svc := &fakeAvailabilityService{slots: []scheduling.Slot{{Start: start, End: start.Add(time.Hour), Available: true}}}
	handler := Availability(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?date=2026-03-17&durationMinutes=90", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if svc.date != "2026-03-17" || svc.duration != 90 {
		t.Fatalf("service called with %q/%d", svc.date, svc.duration)
	}
}

func TestAvailabilityRequiresDate(t *testing.T) {
	handler := Availability(&fakeAvailabilityService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestAvailabilityBoundsDuration(t *testing.T) {
	handler := Availability(&fakeAvailabilityService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?date=2026-03-17&durationMinutes=900", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestAvailabilityRejectsWeekendViaService(t *testing.T) {
	svc := &fakeAvailabilityService{err: pkgerrors.New(pkgerrors.CodeValidation, "date is not a business day")}
	handler := Availability(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability?date=2026-03-21", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
