package controllers

import (
	"context"
	"net/http"

	"github.com/velocimech/velocimech-backend/api/responses"
	"github.com/velocimech/velocimech-backend/api/validators"
	"github.com/velocimech/velocimech-backend/internal/scheduling"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type availabilityService interface {
	Availability(ctx context.Context, date string, durationMinutes int) ([]scheduling.Slot, error)
}

// Availability lists the bookable slots for one business day.
func Availability(svc availabilityService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		date, err := validators.RequireQuery(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		duration, err := validators.ParseQueryInt(r, "durationMinutes", 60, 1, 480)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slots, err := svc.Availability(r.Context(), date, duration)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"slots": slots})
	}
}
