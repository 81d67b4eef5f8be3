package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/velocimech/velocimech-backend/pkg/config"
	"github.com/velocimech/velocimech-backend/pkg/db/models"
)

// WorkshopClient pushes paid jobs into the workshop-management system so the
// mechanics' run sheet stays in step with confirmed bookings.
type WorkshopClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewWorkshopClient builds the workshop-management client.
func NewWorkshopClient(cfg config.NotificationsConfig) (*WorkshopClient, error) {
	if cfg.WorkshopBaseURL == "" {
		return nil, fmt.Errorf("workshop base URL required")
	}
	return &WorkshopClient{
		baseURL: strings.TrimRight(cfg.WorkshopBaseURL, "/"),
		apiKey:  cfg.WorkshopAPIKey,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

type workshopJobRequest struct {
	BookingRef         string          `json:"bookingRef"`
	SlotStart          string          `json:"slotStart"`
	SlotEnd            string          `json:"slotEnd"`
	CustomerName       string          `json:"customerName"`
	CustomerPhone      string          `json:"customerPhone"`
	Address            string          `json:"address"`
	VehiclePlate       string          `json:"vehiclePlate"`
	VehicleDescription string          `json:"vehicleDescription,omitempty"`
	Notes              *string         `json:"notes,omitempty"`
	Snapshot           json.RawMessage `json:"pricingSnapshot"`
}

type workshopJobResponse struct {
	JobID string `json:"jobId"`
}

// PushPaidJob registers the paid booking as a workshop job and returns the
// workshop's job identifier. Instants go over the wire in UTC.
func (c *WorkshopClient) PushPaidJob(ctx context.Context, booking *models.Booking) (string, error) {
	snapshot, err := json.Marshal(booking.Snapshot)
	if err != nil {
		return "", fmt.Errorf("encoding pricing snapshot: %w", err)
	}
	payload := workshopJobRequest{
		BookingRef:         booking.Reference,
		SlotStart:          booking.SlotStart.UTC().Format(time.RFC3339),
		SlotEnd:            booking.SlotEnd.UTC().Format(time.RFC3339),
		CustomerName:       booking.CustomerName,
		CustomerPhone:      booking.CustomerPhone,
		Address:            booking.Address.Oneline(),
		VehiclePlate:       booking.VehiclePlate,
		VehicleDescription: booking.VehicleDescription,
		Notes:              booking.Notes,
		Snapshot:           snapshot,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding workshop job: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/jobs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building workshop request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pushing workshop job: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("workshop system returned status %d", resp.StatusCode)
	}

	var out workshopJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding workshop response: %w", err)
	}
	if out.JobID == "" {
		return "", fmt.Errorf("workshop response missing job id")
	}
	return out.JobID, nil
}
