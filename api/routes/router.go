package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velocimech/velocimech-backend/api/controllers"
	webhookcontrollers "github.com/velocimech/velocimech-backend/api/controllers/webhooks"
	"github.com/velocimech/velocimech-backend/api/middleware"
	"github.com/velocimech/velocimech-backend/internal/bookings"
	"github.com/velocimech/velocimech-backend/internal/identity"
	"github.com/velocimech/velocimech-backend/internal/pricing"
	stripewebhook "github.com/velocimech/velocimech-backend/internal/webhooks/stripe"
	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/redis"
	"github.com/velocimech/velocimech-backend/pkg/stripe"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams carries everything the public router mounts.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    *redis.Client
	Identity identity.Service
	Pricing  pricing.Service
	Bookings bookings.Service
	Stripe   *stripe.Client
	Webhooks *stripewebhook.Service
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis))
	})

	r.Route("/api/v1", func(r chi.Router) {
		limited := func(scope string) func(http.Handler) http.Handler {
			return middleware.PublicRateLimit(scope, p.Config.RateLimit, p.Redis, p.Logger)
		}

		r.With(limited("identity")).Post("/identity/lookup", controllers.IdentityLookup(p.Identity, p.Logger))

		r.With(limited("quotes")).Post("/quotes", controllers.QuoteCreate(p.Pricing, p.Logger))
		r.Get("/quotes/{quoteId}", controllers.QuoteFetch(p.Pricing, p.Logger))

		r.Get("/availability", controllers.Availability(p.Bookings, p.Logger))
		r.With(limited("bookings")).Post("/bookings", controllers.BookingCreate(p.Bookings, p.Logger))

		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(p.Webhooks, p.Stripe, p.Logger))

		r.Get("/cron/expire-bookings", controllers.CronExpireBookings(p.Bookings, p.Logger))
	})

	return r
}
