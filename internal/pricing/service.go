package pricing

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
	pkgerrors "github.com/velocimech/velocimech-backend/pkg/errors"
	"github.com/velocimech/velocimech-backend/pkg/types"
)

// QuoteResult is the persisted quote handed back to callers.
type QuoteResult struct {
	QuoteID  string                `json:"quoteId"`
	Snapshot types.PricingSnapshot `json:"pricingSnapshot"`
}

type service struct {
	repo Repository
}

// NewService builds a quote service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &service{repo: repo}, nil
}

// GenerateQuote prices the input and persists the snapshot verbatim before
// returning, so every quote id resolves to an immutable record.
func (s *service) GenerateQuote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	snapshot, err := BuildSnapshot(input)
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{
		PublicID: uuid.NewString(),
		Snapshot: snapshot,
	}
	if plate := input.Identity.Plate; plate != "" {
		quote.Plate = &plate
	}

	if _, err := s.repo.CreateQuote(ctx, quote); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting quote failed")
	}

	return &QuoteResult{QuoteID: quote.PublicID, Snapshot: quote.Snapshot}, nil
}

func (s *service) GetQuote(ctx context.Context, quoteID string) (*QuoteResult, error) {
	quote, err := s.repo.FindQuoteByPublicID(ctx, quoteID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading quote failed")
	}
	return &QuoteResult{QuoteID: quote.PublicID, Snapshot: quote.Snapshot}, nil
}
