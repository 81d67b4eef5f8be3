package pricing

import (
	"context"

	"gorm.io/gorm"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a quote repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateQuote(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) FindQuoteByPublicID(ctx context.Context, publicID string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
