package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

// EmailSender posts the confirmation payload to the transactional email
// collaborator. Content and templating live on the other side of the fence.
type EmailSender struct {
	endpoint string
	apiKey   string
	loc      *time.Location
	http     *http.Client
}

// NewEmailSender builds the email collaborator client.
func NewEmailSender(cfg config.NotificationsConfig, loc *time.Location) (*EmailSender, error) {
	if cfg.EmailEndpoint == "" {
		return nil, fmt.Errorf("email endpoint required")
	}
	if loc == nil {
		return nil, fmt.Errorf("business location required")
	}
	return &EmailSender{
		endpoint: cfg.EmailEndpoint,
		apiKey:   cfg.EmailAPIKey,
		loc:      loc,
		http:     &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

type confirmationPayload struct {
	Template     string `json:"template"`
	To           string `json:"to"`
	CustomerName string `json:"customerName"`
	BookingRef   string `json:"bookingRef"`
	SlotStartAt  string `json:"slotStartAt"`
	Address      string `json:"address"`
	VehiclePlate string `json:"vehiclePlate"`
	TotalCents   int64  `json:"totalCents"`
	Currency     string `json:"currency"`
}

// SendBookingConfirmation delivers the confirmation email payload. Times go
// out in the customer's local zone, not UTC.
func (s *EmailSender) SendBookingConfirmation(ctx context.Context, booking *models.Booking) error {
	payload := confirmationPayload{
		Template:     "booking_confirmed",
		To:           booking.CustomerEmail,
		CustomerName: booking.CustomerName,
		BookingRef:   booking.Reference,
		SlotStartAt:  booking.SlotStart.In(s.loc).Format(time.RFC1123),
		Address:      booking.Address.Oneline(),
		VehiclePlate: booking.VehiclePlate,
		TotalCents:   booking.Snapshot.TotalCents,
		Currency:     string(booking.Snapshot.Currency),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding confirmation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building confirmation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending confirmation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("email collaborator returned status %d", resp.StatusCode)
	}
	return nil
}
