package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/velocimech/velocimech-backend/api/responses"
	stripewebhook "github.com/velocimech/velocimech-backend/internal/webhooks/stripe"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type stripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) (*stripewebhook.Outcome, error)
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook receives checkout events from Stripe. Replayed events are
// acknowledged without side effects; transient failures return non-2xx so
// Stripe redelivers.
func StripeWebhook(svc stripeWebhookService, client stripeClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stripe signature"))
			return
		}

		outcome, err := svc.HandleEvent(ctx, &event)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}
