package types

import "strings"

// Address is a service address inside the workshop's territory. Stored as
// jsonb on the booking row.
type Address struct {
	Line1    string  `json:"line1" validate:"required"`
	Line2    *string `json:"line2,omitempty"`
	Suburb   string  `json:"suburb" validate:"required"`
	City     string  `json:"city" validate:"required"`
	Postcode string  `json:"postcode" validate:"required"`
}

// Oneline renders the address as a single comma-joined string for
// notifications and workshop pushes.
func (a Address) Oneline() string {
	parts := []string{a.Line1}
	if a.Line2 != nil && strings.TrimSpace(*a.Line2) != "" {
		parts = append(parts, *a.Line2)
	}
	parts = append(parts, a.Suburb, a.City, a.Postcode)
	return strings.Join(parts, ", ")
}
