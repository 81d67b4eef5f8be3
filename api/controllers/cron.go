package controllers

import (
	"context"
	"net/http"

	"github.com/velocimech/velocimech-backend/api/responses"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type holdSweeper interface {
	ExpireDue(ctx context.Context) (int64, error)
}

// CronExpireBookings lets an external scheduler drive the payment-hold sweep.
// The sweep is idempotent: calling it with nothing due changes nothing.
func CronExpireBookings(svc holdSweeper, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		expired, err := svc.ExpireDue(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"expired": expired})
	}
}
