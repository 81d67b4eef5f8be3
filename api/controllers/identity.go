package controllers

import (
	"context"
	"net/http"

	"github.com/velocimech/velocimech-backend/api/middleware"
	"github.com/velocimech/velocimech-backend/api/responses"
	"github.com/velocimech/velocimech-backend/api/validators"
	"github.com/velocimech/velocimech-backend/internal/identity"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
)

type identityLookupService interface {
	Lookup(ctx context.Context, input identity.LookupInput) (*identity.LookupResult, error)
}

type identityLookupRequest struct {
	PlateOrVIN  string  `json:"plateOrVin" validate:"required,min=2,max=17"`
	Fingerprint *string `json:"fingerprint,omitempty" validate:"omitempty,max=128"`
	// Website is a honeypot field the form hides. Humans never fill it.
	Website string `json:"website,omitempty"`
}

// IdentityLookup resolves a plate or VIN to a vehicle identity, cached or
// fresh from the registry.
func IdentityLookup(svc identityLookupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable"))
			return
		}

		var payload identityLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Lookup(r.Context(), identity.LookupInput{
			PlateOrVIN:  payload.PlateOrVIN,
			Fingerprint: payload.Fingerprint,
			RequesterIP: middleware.ClientIP(r),
			Honeypot:    payload.Website,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
