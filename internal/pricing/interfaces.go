package pricing

import (
	"context"

	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

// Repository persists quote snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	FindQuoteByPublicID(ctx context.Context, publicID string) (*models.Quote, error)
}

// Service generates and re-reads persisted quotes.
type Service interface {
	GenerateQuote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	GetQuote(ctx context.Context, quoteID string) (*QuoteResult, error)
}
