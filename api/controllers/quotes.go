package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/velocimech/velocimech-backend/api/responses"
	"github.com/velocimech/velocimech-backend/api/validators"
	"github.com/velocimech/velocimech-backend/internal/pricing"
	"github.com/velocimech/velocimech-backend/pkg/enums"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/logger"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

type quoteService interface {
	GenerateQuote(ctx context.Context, input pricing.QuoteInput) (*pricing.QuoteResult, error)
	GetQuote(ctx context.Context, quoteID string) (*pricing.QuoteResult, error)
}

type quoteRequest struct {
	Vehicle types.VehicleIdentity `json:"vehicle" validate:"required"`
	Intent  string                `json:"intent" validate:"required"`
	Tier    *string               `json:"tier,omitempty"`
	AddOns  []string              `json:"addOns,omitempty" validate:"omitempty,max=10"`
}

// QuoteCreate prices the requested work for a vehicle and persists the
// snapshot under a public quote id.
func QuoteCreate(svc quoteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := quoteInputFromRequest(payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GenerateQuote(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// QuoteFetch re-reads a persisted pricing snapshot.
func QuoteFetch(svc quoteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		quoteID := chi.URLParam(r, "quoteId")
		if quoteID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "quote id required"))
			return
		}

		result, err := svc.GetQuote(r.Context(), quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func quoteInputFromRequest(payload quoteRequest) (pricing.QuoteInput, error) {
	intent, err := enums.ParseServiceIntent(payload.Intent)
	if err != nil {
		return pricing.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid intent")
	}

	input := pricing.QuoteInput{
		Identity: payload.Vehicle,
		Intent:   intent,
	}

	if payload.Tier != nil {
		tier, err := enums.ParseServiceTier(*payload.Tier)
		if err != nil {
			return pricing.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier")
		}
		input.Tier = &tier
	}

	for _, raw := range payload.AddOns {
		addOn, err := enums.ParseAddOn(raw)
		if err != nil {
			return pricing.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid add-on")
		}
		input.AddOns = append(input.AddOns, addOn)
	}

	return input, nil
}
