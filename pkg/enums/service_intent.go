package enums

import "fmt"

// ServiceIntent is the kind of work the customer is booking.
type ServiceIntent string

const (
	ServiceIntentService     ServiceIntent = "SERVICE"
	ServiceIntentDiagnostics ServiceIntent = "DIAGNOSTICS"
	ServiceIntentPPI         ServiceIntent = "PRE_PURCHASE_INSPECTION"
)

var validServiceIntents = []ServiceIntent{
	ServiceIntentService,
	ServiceIntentDiagnostics,
	ServiceIntentPPI,
}

// String implements fmt.Stringer.
func (s ServiceIntent) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceIntent.
func (s ServiceIntent) IsValid() bool {
	for _, candidate := range validServiceIntents {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceIntent converts raw input into a ServiceIntent.
func ParseServiceIntent(value string) (ServiceIntent, error) {
	for _, candidate := range validServiceIntents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service intent %q", value)
}
