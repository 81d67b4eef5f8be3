package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"

	stripewebhook "github.com/velocimech/velocimech-backend/internal/webhooks/stripe"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
)

type fakeWebhookService struct {
	calls   int
	outcome *stripewebhook.Outcome
	err     error
}

func (f *fakeWebhookService) HandleEvent(_ context.Context, _ *stripe.Event) (*stripewebhook.Outcome, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

type fakeSigningClient struct {
	secret string
}

func (c *fakeSigningClient) SigningSecret() string { return c.secret }

func buildSignedEvent(t *testing.T, secret string) ([]byte, string) {
	t.Helper()
	session := map[string]any{
		"id":                  "cs_test_1",
		"client_reference_id": "VM-ABCDEFGH",
		"payment_status":      "paid",
	}
	rawSession, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	event := map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"data":        map[string]any{"object": json.RawMessage(rawSession)},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	header := fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
	return payload, header
}

func TestStripeWebhookAcknowledgesVerifiedEvent(t *testing.T) {
	payload, header := buildSignedEvent(t, "whsec_test")
	svc := &fakeWebhookService{outcome: &stripewebhook.Outcome{Received: true}}
	handler := StripeWebhook(svc, &fakeSigningClient{secret: "whsec_test"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("service calls = %d, want 1", svc.calls)
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Fatalf("acknowledgement missing from body: %s", rec.Body.String())
	}
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t, "whsec_test")
	svc := &fakeWebhookService{outcome: &stripewebhook.Outcome{Received: true}}
	handler := StripeWebhook(svc, &fakeSigningClient{secret: "whsec_test"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatal("service must not run for an unverified payload")
	}
}

func TestStripeWebhookRequiresSignatureHeader(t *testing.T) {
	payload, _ := buildSignedEvent(t, "whsec_test")
	svc := &fakeWebhookService{outcome: &stripewebhook.Outcome{Received: true}}
	handler := StripeWebhook(svc, &fakeSigningClient{secret: "whsec_test"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestStripeWebhookTransientFailureAsksForRedelivery(t *testing.T) {
	payload, header := buildSignedEvent(t, "whsec_test")
	svc := &fakeWebhookService{err: pkgerrors.New(pkgerrors.CodeDependency, "processing failed")}
	handler := StripeWebhook(svc, &fakeSigningClient{secret: "whsec_test"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", header)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503 so the gateway retries", rec.Code)
	}
}
