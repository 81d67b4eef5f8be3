package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velocimech/velocimech-backend/api/routes"
	"github.com/velocimech/velocimech-backend/internal/bookings"
	"github.com/velocimech/velocimech-backend/internal/identity"
	"github.com/velocimech/velocimech-backend/internal/notifications"
	"github.com/velocimech/velocimech-backend/internal/pricing"
	stripewebhook "github.com/velocimech/velocimech-backend/internal/webhooks/stripe"
	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/metrics"
	"github.com/velocimech/velocimech-backend/pkg/migrate"
	"github.com/velocimech/velocimech-backend/pkg/redis"
	"github.com/velocimech/velocimech-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	exitOnError(logg, "failed to load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	loc, err := time.LoadLocation(cfg.Business.Timezone)
	exitOnError(logg, "failed to load business timezone", err)

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	exitOnError(logg, "failed to bootstrap database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	exitOnError(logg, "failed to run dev migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	exitOnError(logg, "failed to bootstrap redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	exitOnError(logg, "failed to bootstrap stripe", err)

	registryClient, err := identity.NewRegistryClient(cfg.Identity)
	exitOnError(logg, "failed to bootstrap registry client", err)

	identitySvc, err := identity.NewService(identity.ServiceParams{
		Repo:     identity.NewRepository(dbClient.DB()),
		Registry: registryClient,
		Config:   cfg.Identity,
		Location: loc,
		Logger:   logg,
	})
	exitOnError(logg, "failed to create identity service", err)

	pricingSvc, err := pricing.NewService(pricing.NewRepository(dbClient.DB()))
	exitOnError(logg, "failed to create pricing service", err)

	bookingSvc, err := bookings.NewService(bookings.ServiceParams{
		Repo:     bookings.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Quotes:   pricingSvc,
		Payments: stripeClient,
		Config:   cfg.Bookings,
		Business: cfg.Business,
		Location: loc,
		Logger:   logg,
	})
	exitOnError(logg, "failed to create booking service", err)

	emailSender, err := notifications.NewEmailSender(cfg.Notifications, loc)
	exitOnError(logg, "failed to create email sender", err)

	dispatcherParams := notifications.DispatcherParams{
		Sender:   emailSender,
		Recorder: bookingSvc,
		Config:   cfg.Notifications,
		Logger:   logg,
	}
	if cfg.Notifications.WorkshopBaseURL != "" {
		workshopClient, err := notifications.NewWorkshopClient(cfg.Notifications)
		exitOnError(logg, "failed to create workshop client", err)
		dispatcherParams.Workshop = workshopClient
	}
	dispatcher, err := notifications.NewDispatcher(dispatcherParams)
	exitOnError(logg, "failed to create notification dispatcher", err)

	ledger, err := stripewebhook.NewLedger(dbClient.DB(), stripewebhook.PaymentWebhookScope)
	exitOnError(logg, "failed to create webhook ledger", err)

	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Ledger:     ledger,
		Bookings:   bookingSvc,
		Dispatcher: dispatcher,
		Metrics:    metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
		Logger:     logg,
	})
	exitOnError(logg, "failed to create webhook service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Identity: identitySvc,
			Pricing:  pricingSvc,
			Bookings: bookingSvc,
			Stripe:   stripeClient,
			Webhooks: webhookSvc,
		}),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	// In-flight confirmation fanouts finish before the process exits.
	dispatcher.Wait()
	logg.Info(ctx, "api server shut down gracefully")
}

func exitOnError(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
