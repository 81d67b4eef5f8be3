package enums

import "fmt"

// ServiceTier selects the depth of a scheduled service.
type ServiceTier string

const (
	ServiceTierOilFilter     ServiceTier = "OIL_FILTER"
	ServiceTierBasic         ServiceTier = "BASIC"
	ServiceTierComprehensive ServiceTier = "COMPREHENSIVE"
)

var validServiceTiers = []ServiceTier{
	ServiceTierOilFilter,
	ServiceTierBasic,
	ServiceTierComprehensive,
}

// String implements fmt.Stringer.
func (s ServiceTier) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceTier.
func (s ServiceTier) IsValid() bool {
	for _, candidate := range validServiceTiers {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceTier converts raw input into a ServiceTier.
func ParseServiceTier(value string) (ServiceTier, error) {
	for _, candidate := range validServiceTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service tier %q", value)
}
