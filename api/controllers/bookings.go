package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/velocimech/velocimech-backend/api/responses"
	"github.com/velocimech/velocimech-backend/api/validators"
	"github.com/velocimech/velocimech-backend/internal/bookings"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

type bookingService interface {
	Create(ctx context.Context, input bookings.CreateInput) (*bookings.CreateResult, error)
}

type bookingRequest struct {
	QuoteID            string        `json:"quoteId" validate:"required,uuid4"`
	SlotStart          string        `json:"slotStart" validate:"required"`
	CustomerName       string        `json:"customerName" validate:"required,max=200"`
	CustomerEmail      string        `json:"customerEmail" validate:"required,email"`
	CustomerPhone      string        `json:"customerPhone" validate:"required,max=30"`
	Address            types.Address `json:"address" validate:"required"`
	VehiclePlate       string        `json:"vehiclePlate" validate:"required,max=17"`
	VehicleDescription string        `json:"vehicleDescription,omitempty" validate:"omitempty,max=200"`
	Notes              *string       `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// BookingCreate reserves a slot against a quote and opens hosted checkout.
func BookingCreate(svc bookingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var payload bookingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slotStart, err := time.Parse(time.RFC3339, payload.SlotStart)
		if err != nil {
			verr := pkgerrors.Wrap(pkgerrors.CodeValidation, err, "slotStart must be an RFC 3339 timestamp")
			responses.WriteError(r.Context(), logg, w, verr)
			return
		}

		result, err := svc.Create(r.Context(), bookings.CreateInput{
			QuoteID:            payload.QuoteID,
			SlotStart:          slotStart,
			CustomerName:       payload.CustomerName,
			CustomerEmail:      payload.CustomerEmail,
			CustomerPhone:      payload.CustomerPhone,
			Address:            payload.Address,
			VehiclePlate:       payload.VehiclePlate,
			VehicleDescription: payload.VehicleDescription,
			Notes:              payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
