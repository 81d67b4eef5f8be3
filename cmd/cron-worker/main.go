package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velocimech/velocimech-backend/internal/bookings"
	"github.com/velocimech/velocimech-backend/internal/cron"
	"github.com/velocimech/velocimech-backend/internal/identity"
	"github.com/velocimech/velocimech-backend/internal/pricing"
	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/metrics"
	"github.com/velocimech/velocimech-backend/pkg/migrate"
	"github.com/velocimech/velocimech-backend/pkg/redis"
	"github.com/velocimech/velocimech-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	exitOnError(logg, "failed to load config", err)
	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	expiryJob, err := cron.NewBookingExpiryJob(logg, bookingSvc)
	exitOnError(logg, "failed to create booking expiry job", err)

	cachePruneJob, err := cron.NewCachePruneJob(logg, identitySvc, cfg.Cron.CachePruneAfter)
	exitOnError(logg, "failed to create cache prune job", err)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker:"+cfg.App.Env), 0)
	exitOnError(logg, "failed to create cron lock", err)

	svc, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(expiryJob, cachePruneJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	exitOnError(logg, "failed to create cron service", err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down gracefully")
}

func exitOnError(logg *logger.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
