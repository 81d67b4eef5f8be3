package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeSweeper struct {
	expired int64
	err     error
}

func (f *fakeSweeper) ExpireDue(ctx context.Context) (int64, error) {
	return f.expired, f.err
}

func TestCronExpireBookingsReportsCount(t *testing.T) {
	handler := CronExpireBookings(&fakeSweeper{expired: 4}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cron/expire-bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"expired":4`) {
		t.Fatalf("expired count missing from response: %s", rec.Body.String())
	}
}

func TestCronExpireBookingsSurfacesFailure(t *testing.T) {
	handler := CronExpireBookings(&fakeSweeper{err: fmt.Errorf("connection refused")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cron/expire-bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
}
