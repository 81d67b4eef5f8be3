package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/velocimech/velocimech-backend/internal/identity"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

type fakeIdentityService struct {
	lastInput identity.LookupInput
	result    *identity.LookupResult
	err       error
}

func (f *fakeIdentityService) Lookup(_ context.Context, input identity.LookupInput) (*identity.LookupResult, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdentityLookupPassesClientDetails(t *testing.T) {
	svc := &fakeIdentityService{
		result: &identity.LookupResult{
			Identity: types.VehicleIdentity{Plate: "KRT692", Make: "Toyota"},
			CacheHit: true,
		},
	}
	handler := IdentityLookup(svc, nil)

	raw, _ := json.Marshal(map[string]any{"plateOrVin": "krt692", "fingerprint": "fp-1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/identity/lookup", bytes.NewReader(raw))
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if svc.lastInput.RequesterIP != "203.0.113.7" {
		t.Fatalf("requester ip = %q, want forwarded address", svc.lastInput.RequesterIP)
	}
	if svc.lastInput.Fingerprint == nil || *svc.lastInput.Fingerprint != "fp-1" {
		t.Fatal("fingerprint not forwarded")
	}
}

func TestIdentityLookupRejectsMissingPlate(t *testing.T) {
	svc := &fakeIdentityService{}
	rec := postJSON(t, IdentityLookup(svc, nil), "/api/v1/identity/lookup", map[string]any{"fingerprint": "fp-1"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestIdentityLookupSurfacesQuotaErrors(t *testing.T) {
	svc := &fakeIdentityService{err: pkgerrors.New(pkgerrors.CodeRateLimit, "daily lookup limit reached")}
	rec := postJSON(t, IdentityLookup(svc, nil), "/api/v1/identity/lookup", map[string]any{"plateOrVin": "KRT692"})

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}
}
