package types

import "github.com/velocimech/velocimech-backend/pkg/enums"

// LineItem is one priced row of a snapshot. Amounts are integer cents.
type LineItem struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amountCents"`
}

// PricingSnapshot is the immutable priced record captured at quote time.
// Bookings carry a verbatim copy; payment reconciliation trusts the copy and
// never recomputes pricing.
type PricingSnapshot struct {
	Currency        enums.Currency      `json:"currency"`
	Intent          enums.ServiceIntent `json:"intent"`
	VehicleClass    VehicleClass        `json:"vehicleClass"`
	Band            enums.VehicleBand   `json:"band"`
	Tier            *enums.ServiceTier  `json:"tier,omitempty"`
	AddOns          []enums.AddOn       `json:"addOns,omitempty"`
	LineItems       []LineItem          `json:"lineItems"`
	SubtotalCents   int64               `json:"subtotalCents"`
	TaxCents        int64               `json:"taxCents"`
	TotalCents      int64               `json:"totalCents"`
	EstimateOnly    bool                `json:"estimateOnly"`
	Disclaimers     []string            `json:"disclaimers"`
	DurationMinutes int                 `json:"durationMinutes"`
}
