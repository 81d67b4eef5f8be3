package notifications

import (
	"context"

	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

// Sender delivers the customer-facing confirmation message.
type Sender interface {
	SendBookingConfirmation(ctx context.Context, booking *models.Booking) error
}

// WorkshopPusher hands a paid job to the external workshop-management system
// and returns its job identifier.
type WorkshopPusher interface {
	PushPaidJob(ctx context.Context, booking *models.Booking) (string, error)
}
